package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/futig/fxchat-backend/internal/builder"
	"github.com/futig/fxchat-backend/internal/telegram"
	"go.uber.org/zap"
)

func main() {
	bot, logger, err := builder.BuildTelegramBot()
	if err != nil {
		log.Fatal("Failed to build fxchat telegram bot:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(ctx, bot, logger); err != nil {
		logger.Error("fxchat telegram bot exited", zap.Error(err))
		os.Exit(1)
	}
}

// serve polls updates until ctx is cancelled or polling fails.
// Cancellation is a clean shutdown and returns nil.
func serve(ctx context.Context, bot telegram.Bot, logger *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("fxchat telegram bot polling for updates")
		errCh <- bot.Start(ctx)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down fxchat telegram bot")
		if err := bot.Stop(); err != nil {
			logger.Warn("stop update polling", zap.Error(err))
		}
		logger.Info("fxchat telegram bot stopped")
		return nil
	case err := <-errCh:
		return err
	}
}
