package handlers

import (
	"context"

	"github.com/futig/fxchat-backend/internal/usecase/chat"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Bot commands
const (
	CommandStart = "start"
	CommandHelp  = "help"
)

const (
	unknownCommandReply = "不明なコマンドです。/help で使い方を確認できます。"
	textOnlyReply       = "テキストメッセージを送信してください。"
)

// API is the part of the Bot API the handlers need
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// ChatUsecase answers a single chat message
type ChatUsecase interface {
	ProcessMessage(ctx context.Context, message string) (string, error)
}

// Message represents a normalized Telegram message
type Message struct {
	ChatID    int64
	UserID    int64
	MessageID int
	Text      string
	Command   string
}

// MessageHandler forwards text messages to the chat use case
type MessageHandler struct {
	api    API
	chat   ChatUsecase
	sender *MessageSender
	logger *zap.Logger
}

func NewMessageHandler(api API, chatUC ChatUsecase, logger *zap.Logger) *MessageHandler {
	return &MessageHandler{
		api:    api,
		chat:   chatUC,
		sender: NewMessageSender(api, logger),
		logger: logger,
	}
}

// Handle replies to one message. Commands are answered locally.
func (h *MessageHandler) Handle(ctx context.Context, msg *Message) error {
	if msg.Command != "" {
		return h.sender.Send(msg.ChatID, commandReply(msg.Command))
	}

	if msg.Text == "" {
		return h.sender.Send(msg.ChatID, textOnlyReply)
	}

	typing := NewTypingNotifier(h.api, msg.ChatID, h.logger)
	typing.Start(ctx)
	reply, err := h.chat.ProcessMessage(ctx, msg.Text)
	typing.Stop()

	if err != nil {
		ctxzap.Error(ctx, "failed to process message",
			zap.Error(err),
			zap.Int64("chat_id", msg.ChatID),
		)
		reply = chat.ProcessingErrorReply
	}

	return h.sender.Send(msg.ChatID, reply)
}

func commandReply(command string) string {
	switch command {
	case CommandStart:
		return chat.GreetingReply
	case CommandHelp:
		return chat.HelpReply
	default:
		return unknownCommandReply
	}
}
