package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/entity"
	pkghttp "github.com/futig/fxchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
	"go.uber.org/zap"
)

// ChatClient is the part of the OpenAI-compatible client the connector needs
type ChatClient interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Connector talks to the LLM through its OpenAI-compatible chat completions API
type Connector struct {
	config config.LLMConnectorConfig
	client ChatClient
	logger *zap.Logger
}

func NewConnector(
	cfg config.LLMConnectorConfig,
	apiKey string,
	logger *zap.Logger,
) *Connector {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = cfg.BaseURL
	clientCfg.HTTPClient = pkghttp.NewClient(
		pkghttp.WithRequestTimeout(cfg.Timeout),
		pkghttp.WithRequestLogging(),
	)

	return NewWithClient(cfg, openai.NewClientWithConfig(clientCfg), logger)
}

// NewWithClient builds a connector around an existing client
func NewWithClient(cfg config.LLMConnectorConfig, client ChatClient, logger *zap.Logger) *Connector {
	return &Connector{
		config: cfg,
		client: client,
		logger: logger,
	}
}

// Chat sends the conversation with the given tools attached.
// With no tools the reply is always DirectText.
func (c *Connector) Chat(ctx context.Context, messages []entity.ChatMessage, tools []entity.ToolSpec) (entity.ModelReply, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    toOpenAIMessages(messages),
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	}
	if len(tools) > 0 {
		req.Tools = toOpenAITools(tools)
		req.ToolChoice = "auto"
	}

	ctxzap.Debug(ctx, "calling llm",
		zap.String("model", req.Model),
		zap.Int("message_count", len(req.Messages)),
		zap.Int("tool_count", len(req.Tools)),
	)

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, entity.ErrEmptyReply
	}

	msg := resp.Choices[0].Message
	if len(msg.ToolCalls) > 0 {
		calls := make([]entity.ToolCall, 0, len(msg.ToolCalls))
		for _, tc := range msg.ToolCalls {
			calls = append(calls, entity.ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: parseArguments(ctx, tc.Function.Arguments),
			})
		}

		ctxzap.Debug(ctx, "llm requested tools", zap.Int("call_count", len(calls)))

		return entity.ToolCalls{Calls: calls, Content: msg.Content}, nil
	}

	return entity.DirectText{Text: msg.Content}, nil
}

// Complete runs a single-prompt completion and returns the trimmed text
func (c *Connector) Complete(ctx context.Context, prompt string) (string, error) {
	reply, err := c.Chat(ctx, []entity.ChatMessage{{Role: entity.RoleUser, Content: prompt}}, nil)
	if err != nil {
		return "", err
	}

	text, ok := reply.(entity.DirectText)
	if !ok || strings.TrimSpace(text.Text) == "" {
		return "", entity.ErrEmptyReply
	}

	return strings.TrimSpace(text.Text), nil
}

func parseArguments(ctx context.Context, raw string) map[string]any {
	args := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return args
	}

	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		ctxzap.Warn(ctx, "failed to decode tool arguments", zap.String("raw", raw), zap.Error(err))
		return map[string]any{}
	}

	return args
}

func toOpenAIMessages(messages []entity.ChatMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		msg := openai.ChatCompletionMessage{
			Role:       string(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			args, err := json.Marshal(tc.Arguments)
			if err != nil {
				args = []byte("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: string(args),
				},
			})
		}
		out = append(out, msg)
	}
	return out
}

func toOpenAITools(tools []entity.ToolSpec) []openai.Tool {
	out := make([]openai.Tool, 0, len(tools))
	for _, t := range tools {
		params := jsonschema.Definition{
			Type:       jsonschema.Object,
			Properties: map[string]jsonschema.Definition{},
		}
		for _, p := range t.Params {
			params.Properties[p.Name] = jsonschema.Definition{
				Type:        jsonschema.String,
				Description: p.Description,
			}
			if p.Required {
				params.Required = append(params.Required, p.Name)
			}
		}

		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Parameters:  params,
			},
		})
	}
	return out
}
