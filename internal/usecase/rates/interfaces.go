package rates

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
)

// TickerConnector defines the interface for the forex ticker service
type TickerConnector interface {
	GetTicker(ctx context.Context) (*entity.TickerResponse, error)
}
