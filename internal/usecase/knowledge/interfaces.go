package knowledge

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
)

// DocumentLoader fetches a page as plain text
type DocumentLoader interface {
	Load(ctx context.Context, url string) (*entity.Document, error)
}

// Embedder turns texts into vectors, one per text
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// QueryRewriter turns a chat message into a search query
type QueryRewriter interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
