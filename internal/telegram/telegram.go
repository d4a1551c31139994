package telegram

import (
	"context"
	"fmt"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/telegram/bot"
	"github.com/futig/fxchat-backend/internal/telegram/handlers"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Bot is the main telegram bot interface
type Bot interface {
	Start(ctx context.Context) error
	Stop() error
}

// NewBot authorizes against the Bot API and wires the chat handler
func NewBot(
	cfg *config.TelegramConfig,
	chatUC handlers.ChatUsecase,
	logger *zap.Logger,
) (Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.BotToken)
	if err != nil {
		return nil, fmt.Errorf("create bot API: %w", err)
	}

	logger.Info("telegram bot authorized",
		zap.String("username", api.Self.UserName),
		zap.Int64("id", api.Self.ID),
	)

	handler := handlers.NewMessageHandler(api, chatUC, logger)

	return bot.New(api, cfg, handler, logger), nil
}
