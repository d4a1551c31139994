package chat

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
)

// LLMConnector defines the interface for the language model
type LLMConnector interface {
	Chat(ctx context.Context, messages []entity.ChatMessage, tools []entity.ToolSpec) (entity.ModelReply, error)
}

// RatesProvider renders exchange rate reports. Failures come back as text.
type RatesProvider interface {
	AllMajorPairs(ctx context.Context) string
	Pair(ctx context.Context, symbol string) string
}

// ContextRetriever finds passages related to a message
type ContextRetriever interface {
	Retrieve(ctx context.Context, message string) []entity.Passage
}
