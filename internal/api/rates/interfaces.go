package rates

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
)

type RatesUsecase interface {
	Report(ctx context.Context) (*entity.RateReport, error)
}
