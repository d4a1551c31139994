package chat

import "context"

type ChatUsecase interface {
	ProcessMessage(ctx context.Context, message string) (string, error)
}
