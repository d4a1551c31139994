package knowledge

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
)

type KnowledgeUsecase interface {
	Ingest(ctx context.Context, urls []string) (entity.IngestResult, error)
	Clear(ctx context.Context) bool
	State() entity.KnowledgeState
}
