package chat

import (
	"context"
	"fmt"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/pkg/logger"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// User-facing failure replies
const (
	NotConfiguredReply   = "申し訳ございません。システムの初期化中にエラーが発生しました。GEMINI_API_KEYが正しく設定されているか確認してください。"
	ProcessingErrorReply = "申し訳ございません。処理中にエラーが発生しました。しばらく時間をおいてから再度お試しください。"
)

const unknownCallID = "unknown"

// ChatUsecase answers one message at a time; it keeps no conversation state
type ChatUsecase struct {
	mode      string
	llm       LLMConnector
	retriever ContextRetriever
	rates     RatesProvider
	tools     *ToolExecutor
	routes    []keywordRoute
	logger    *zap.Logger
}

// NewUsecase creates the chat use case. llm may be nil when no credential is
// configured; retriever may be nil to disable document context.
func NewUsecase(
	cfg config.ChatConfig,
	llm LLMConnector,
	retriever ContextRetriever,
	rates RatesProvider,
	logger *zap.Logger,
) *ChatUsecase {
	return &ChatUsecase{
		mode:      cfg.DispatchMode,
		llm:       llm,
		retriever: retriever,
		rates:     rates,
		tools:     NewToolExecutor(rates),
		routes:    keywordRoutes(rates),
		logger:    logger,
	}
}

// ProcessMessage produces the reply to message. Upstream failures become
// reply text; an error is returned only for unexpected faults.
func (uc *ChatUsecase) ProcessMessage(ctx context.Context, message string) (reply string, err error) {
	ctx = logger.WithAction(ctx, "process_message")
	ctx = logger.AddFields(ctx, zap.String("dispatch_mode", uc.mode))

	defer func() {
		if r := recover(); r != nil {
			ctxzap.Error(ctx, "message processing panicked", zap.Any("panic", r), zap.Stack("stack"))
			reply, err = "", fmt.Errorf("process message: %v", r)
		}
	}()

	switch uc.mode {
	case config.DispatchKeyword:
		return uc.answerByKeyword(ctx, message), nil
	case config.DispatchAugmented:
		return uc.answerAugmented(ctx, message), nil
	default:
		return uc.answerWithTools(ctx, message), nil
	}
}

func (uc *ChatUsecase) answerByKeyword(ctx context.Context, message string) string {
	route, ok := matchRoute(uc.routes, message)
	if !ok {
		ctxzap.Debug(ctx, "no keyword route matched")
		return RefusalReply
	}

	ctxzap.Debug(ctx, "keyword route matched", zap.String("route", route.name))

	return route.respond(ctx)
}

func (uc *ChatUsecase) answerAugmented(ctx context.Context, message string) string {
	if uc.llm == nil {
		return NotConfiguredReply
	}

	exchangeData := NoExchangeData
	if isExchangeQuery(message) {
		exchangeData = uc.rates.AllMajorPairs(ctx)
	}

	messages := []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: BuildAugmentedPrompt(exchangeData, uc.retrieve(ctx, message))},
		{Role: entity.RoleUser, Content: message},
	}

	reply, err := uc.llm.Chat(ctx, messages, nil)
	if err != nil {
		ctxzap.Error(ctx, "llm call failed", zap.Error(err))
		return ProcessingErrorReply
	}

	return replyText(reply)
}

func (uc *ChatUsecase) answerWithTools(ctx context.Context, message string) string {
	if uc.llm == nil {
		return NotConfiguredReply
	}

	messages := []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: BuildToolPrompt(uc.retrieve(ctx, message))},
		{Role: entity.RoleUser, Content: message},
	}

	reply, err := uc.llm.Chat(ctx, messages, uc.tools.Specs())
	if err != nil {
		ctxzap.Error(ctx, "llm call failed", zap.Error(err))
		return ProcessingErrorReply
	}

	switch r := reply.(type) {
	case entity.DirectText:
		return r.Text
	case entity.ToolCalls:
		return uc.runTools(ctx, messages, r)
	default:
		ctxzap.Error(ctx, "unexpected model reply", zap.String("type", fmt.Sprintf("%T", reply)))
		return ProcessingErrorReply
	}
}

// runTools executes the requested calls in order and asks the model once more, without tools
func (uc *ChatUsecase) runTools(ctx context.Context, messages []entity.ChatMessage, calls entity.ToolCalls) string {
	requested := make([]entity.ToolCall, len(calls.Calls))
	for i, c := range calls.Calls {
		if c.ID == "" {
			c.ID = unknownCallID
		}
		requested[i] = c
	}

	messages = append(messages, entity.ChatMessage{
		Role:      entity.RoleAssistant,
		Content:   calls.Content,
		ToolCalls: requested,
	})

	for _, c := range requested {
		messages = append(messages, entity.ChatMessage{
			Role:       entity.RoleTool,
			Content:    uc.tools.Execute(ctx, c.Name, c.Arguments),
			ToolCallID: c.ID,
		})
	}

	final, err := uc.llm.Chat(ctx, messages, nil)
	if err != nil {
		ctxzap.Error(ctx, "llm call after tools failed", zap.Error(err))
		return ProcessingErrorReply
	}

	return replyText(final)
}

func (uc *ChatUsecase) retrieve(ctx context.Context, message string) []entity.Passage {
	if uc.retriever == nil {
		return nil
	}
	return uc.retriever.Retrieve(ctx, message)
}

// replyText takes the text of a reply given without tools. A stray tool
// request there carries whatever text came with it.
func replyText(reply entity.ModelReply) string {
	switch r := reply.(type) {
	case entity.DirectText:
		return r.Text
	case entity.ToolCalls:
		if r.Content != "" {
			return r.Content
		}
	}
	return ProcessingErrorReply
}
