package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/telegram/handlers"
	"github.com/futig/fxchat-backend/internal/telegram/middleware"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// API is the part of *tgbotapi.BotAPI the bot uses
type API interface {
	handlers.API
	GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Handler replies to a normalized message
type Handler interface {
	Handle(ctx context.Context, msg *handlers.Message) error
}

// Bot represents the Telegram bot
type Bot struct {
	api        API
	cfg        *config.TelegramConfig
	handler    Handler
	logger     *zap.Logger
	loggingMW  *middleware.LoggingMiddleware
	recoveryMW *middleware.RecoveryMiddleware
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// New creates a new Telegram bot
func New(api API, cfg *config.TelegramConfig, handler Handler, logger *zap.Logger) *Bot {
	return &Bot{
		api:        api,
		cfg:        cfg,
		handler:    handler,
		logger:     logger,
		loggingMW:  middleware.NewLoggingMiddleware(logger),
		recoveryMW: middleware.NewRecoveryMiddleware(logger, api),
		stopChan:   make(chan struct{}),
	}
}

// Start begins long polling; updates are handled until ctx ends or Stop is called
func (b *Bot) Start(ctx context.Context) error {
	b.logger.Info("starting telegram bot")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout

	updates := b.api.GetUpdatesChan(u)

	ctx = ctxzap.ToContext(ctx, b.logger)
	go b.processUpdates(ctx, updates)

	b.logger.Info("telegram bot started successfully")
	return nil
}

// Stop stops the bot gracefully with timeout
func (b *Bot) Stop() error {
	b.logger.Info("stopping telegram bot")

	b.stopOnce.Do(func() {
		close(b.stopChan)
		b.api.StopReceivingUpdates()
	})

	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()

	shutdownTimeout := time.Duration(b.cfg.ShutdownTimeout) * time.Second
	select {
	case <-done:
		b.logger.Info("all handlers completed gracefully")
	case <-time.After(shutdownTimeout):
		b.logger.Warn("shutdown timeout exceeded, some handlers may not have completed",
			zap.Duration("timeout", shutdownTimeout),
		)
		return fmt.Errorf("shutdown timeout exceeded")
	}

	b.logger.Info("telegram bot stopped successfully")
	return nil
}

func (b *Bot) processUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for {
		select {
		case <-ctx.Done():
			ctxzap.Info(ctx, "context cancelled, stopping update processing")
			return
		case <-b.stopChan:
			ctxzap.Info(ctx, "stop signal received, stopping update processing")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.wg.Add(1)
			go func(u tgbotapi.Update) {
				defer b.wg.Done()
				b.handleUpdateWithMiddleware(ctx, u)
			}(update)
		}
	}
}

func (b *Bot) handleUpdateWithMiddleware(ctx context.Context, update tgbotapi.Update) {
	b.loggingMW.Handle(update, func(u tgbotapi.Update) {
		b.recoveryMW.Handle(u, func(u tgbotapi.Update) {
			b.handleUpdate(ctx, u)
		})
	})
}

// handleUpdate ignores everything but plain messages
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.Chat == nil {
		return
	}

	msg := &handlers.Message{
		ChatID:    message.Chat.ID,
		MessageID: message.MessageID,
		Text:      message.Text,
		Command:   message.Command(),
	}
	if message.From != nil {
		msg.UserID = message.From.ID
	}

	ctx = ctxzap.ToContext(ctx, ctxzap.Extract(ctx).With(
		zap.Int64("chat_id", msg.ChatID),
		zap.Int("update_id", update.UpdateID),
	))

	if err := b.handler.Handle(ctx, msg); err != nil {
		ctxzap.Error(ctx, "failed to handle message", zap.Error(err))
	}
}
