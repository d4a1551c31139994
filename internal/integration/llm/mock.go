package llm

import (
	"context"
	"strings"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector imitates the model offline. It asks for the rate tool whenever
// the tool is offered and the user mentions a rate, and echoes tool output afterwards.
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) Chat(ctx context.Context, messages []entity.ChatMessage, tools []entity.ToolSpec) (entity.ModelReply, error) {
	ctxzap.Info(ctx, "[MOCK] llm chat", zap.Int("message_count", len(messages)), zap.Int("tool_count", len(tools)))

	if len(messages) == 0 {
		return entity.DirectText{Text: "[MOCK] 何かお手伝いできることはありますか？"}, nil
	}

	last := messages[len(messages)-1]
	if last.Role == entity.RoleTool {
		var parts []string
		for _, msg := range messages {
			if msg.Role == entity.RoleTool {
				parts = append(parts, msg.Content)
			}
		}
		return entity.DirectText{Text: strings.Join(parts, "\n\n")}, nil
	}

	if len(tools) > 0 && strings.Contains(last.Content, "レート") {
		return entity.ToolCalls{Calls: []entity.ToolCall{{
			ID:        "mock-call-1",
			Name:      tools[0].Name,
			Arguments: map[string]any{},
		}}}, nil
	}

	return entity.DirectText{Text: "[MOCK] " + last.Content}, nil
}

// Complete answers with the last line of the prompt, which is where the query goes
func (m *MockConnector) Complete(ctx context.Context, prompt string) (string, error) {
	ctxzap.Info(ctx, "[MOCK] llm complete")

	prompt = strings.TrimSpace(prompt)
	if i := strings.LastIndex(prompt, "\n"); i >= 0 {
		prompt = prompt[i+1:]
	}
	if _, after, ok := strings.Cut(prompt, ": "); ok {
		prompt = after
	}

	return strings.TrimSpace(prompt), nil
}
