package handlers

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/futig/fxchat-backend/internal/usecase/chat"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.MessageConfig
	requests int
	sendErr  error
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.sent))
	for _, m := range f.sent {
		out = append(out, m.Text)
	}
	return out
}

type fakeChat struct {
	reply    string
	err      error
	received []string
}

func (f *fakeChat) ProcessMessage(ctx context.Context, message string) (string, error) {
	f.received = append(f.received, message)
	return f.reply, f.err
}

func TestMessageHandler_Commands(t *testing.T) {
	cases := []struct {
		command string
		want    string
	}{
		{command: CommandStart, want: chat.GreetingReply},
		{command: CommandHelp, want: chat.HelpReply},
		{command: "settings", want: unknownCommandReply},
	}

	for _, tc := range cases {
		t.Run(tc.command, func(t *testing.T) {
			api := &fakeAPI{}
			uc := &fakeChat{reply: "unused"}
			h := NewMessageHandler(api, uc, zap.NewNop())

			err := h.Handle(context.Background(), &Message{ChatID: 7, Text: "/" + tc.command, Command: tc.command})
			require.NoError(t, err)

			require.Equal(t, []string{tc.want}, api.texts())
			require.Empty(t, uc.received)
		})
	}
}

func TestMessageHandler_ForwardsText(t *testing.T) {
	api := &fakeAPI{}
	uc := &fakeChat{reply: "📈 現在の為替レート"}
	h := NewMessageHandler(api, uc, zap.NewNop())

	err := h.Handle(context.Background(), &Message{ChatID: 7, Text: "今日のレートは？"})
	require.NoError(t, err)

	require.Equal(t, []string{"今日のレートは？"}, uc.received)
	require.Equal(t, []string{"📈 現在の為替レート"}, api.texts())
	require.Equal(t, int64(7), api.sent[0].ChatID)
	require.GreaterOrEqual(t, api.requests, 1)
}

func TestMessageHandler_UsecaseErrorRepliesWithApology(t *testing.T) {
	api := &fakeAPI{}
	uc := &fakeChat{err: errors.New("boom")}
	h := NewMessageHandler(api, uc, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 1, Text: "hi"}))
	require.Equal(t, []string{chat.ProcessingErrorReply}, api.texts())
}

func TestMessageHandler_NonTextMessage(t *testing.T) {
	api := &fakeAPI{}
	uc := &fakeChat{}
	h := NewMessageHandler(api, uc, zap.NewNop())

	require.NoError(t, h.Handle(context.Background(), &Message{ChatID: 1}))
	require.Equal(t, []string{textOnlyReply}, api.texts())
	require.Empty(t, uc.received)
}

func TestMessageHandler_SendError(t *testing.T) {
	api := &fakeAPI{sendErr: errors.New("forbidden")}
	h := NewMessageHandler(api, &fakeChat{reply: "ok"}, zap.NewNop())

	err := h.Handle(context.Background(), &Message{ChatID: 1, Text: "hi"})
	require.EqualError(t, err, "forbidden")
}

func TestSplitMessage(t *testing.T) {
	require.Equal(t, []string{"short"}, splitMessage("short", 10))

	long := strings.Repeat("円", 25)
	parts := splitMessage(long, 10)
	require.Len(t, parts, 3)
	require.Equal(t, strings.Repeat("円", 10), parts[0])
	require.Equal(t, strings.Repeat("円", 5), parts[2])
	require.Equal(t, long, strings.Join(parts, ""))
}
