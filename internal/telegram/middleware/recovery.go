package middleware

import (
	"runtime/debug"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryReply is sent to the chat whose update caused a panic
const RecoveryReply = "❌ エラーが発生しました。しばらく時間をおいてから再度お試しください。"

// Sender delivers messages to Telegram
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// RecoveryMiddleware recovers from panics
type RecoveryMiddleware struct {
	logger *zap.Logger
	sender Sender
}

// NewRecoveryMiddleware creates a new recovery middleware
func NewRecoveryMiddleware(logger *zap.Logger, sender Sender) *RecoveryMiddleware {
	return &RecoveryMiddleware{
		logger: logger,
		sender: sender,
	}
}

// Handle recovers from panics and tells the user something went wrong
func (m *RecoveryMiddleware) Handle(update tgbotapi.Update, next func(tgbotapi.Update)) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.logger.Error("panic recovered in telegram handler",
			zap.Any("panic", r),
			zap.String("stack", string(debug.Stack())),
			zap.Int("update_id", update.UpdateID),
		)

		if update.Message == nil || update.Message.Chat == nil {
			return
		}

		chatID := update.Message.Chat.ID
		if _, err := m.sender.Send(tgbotapi.NewMessage(chatID, RecoveryReply)); err != nil {
			m.logger.Error("failed to send error message",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
		}
	}()

	next(update)
}
