package handlers

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageRunes is the Bot API limit for one text message
const maxMessageRunes = 4096

// MessageSender provides centralized message sending functionality
type MessageSender struct {
	api    API
	logger *zap.Logger
}

// NewMessageSender creates a new MessageSender
func NewMessageSender(api API, logger *zap.Logger) *MessageSender {
	return &MessageSender{
		api:    api,
		logger: logger,
	}
}

// Send sends text to the chat, split into several messages when it is too long
func (s *MessageSender) Send(chatID int64, text string) error {
	for _, part := range splitMessage(text, maxMessageRunes) {
		if _, err := s.api.Send(tgbotapi.NewMessage(chatID, part)); err != nil {
			s.logger.Error("failed to send message",
				zap.Error(err),
				zap.Int64("chat_id", chatID),
			)
			return err
		}
	}

	return nil
}

func splitMessage(text string, limit int) []string {
	runes := []rune(text)
	if len(runes) <= limit {
		return []string{text}
	}

	parts := make([]string, 0, len(runes)/limit+1)
	for len(runes) > limit {
		parts = append(parts, string(runes[:limit]))
		runes = runes[limit:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}

	return parts
}
