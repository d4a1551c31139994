package main

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeBot struct {
	startErr error
	stopped  atomic.Bool
}

func (b *fakeBot) Start(ctx context.Context) error {
	if b.startErr != nil {
		return b.startErr
	}
	<-ctx.Done()
	return nil
}

func (b *fakeBot) Stop() error {
	b.stopped.Store(true)
	return nil
}

func TestServe_StopsOnCancel(t *testing.T) {
	bot := &fakeBot{}
	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	require.NoError(t, serve(ctx, bot, zap.NewNop()))
	require.True(t, bot.stopped.Load())
}

func TestServe_ReturnsPollingError(t *testing.T) {
	bot := &fakeBot{startErr: errors.New("unauthorized")}

	err := serve(context.Background(), bot, zap.NewNop())
	require.EqualError(t, err, "unauthorized")
	require.False(t, bot.stopped.Load())
}
