package forex

import (
	"context"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// MockConnector serves a fixed ticker snapshot
type MockConnector struct {
	logger *zap.Logger
}

func NewMockConnector(logger *zap.Logger) *MockConnector {
	return &MockConnector{
		logger: logger,
	}
}

func (m *MockConnector) GetTicker(ctx context.Context) (*entity.TickerResponse, error) {
	ctxzap.Info(ctx, "[MOCK] fetching forex ticker")

	return &entity.TickerResponse{
		Status: 0,
		Data: []entity.TickerQuote{
			{Symbol: "USD_JPY", Bid: "150.123", Ask: "150.126"},
			{Symbol: "EUR_JPY", Bid: "165.456", Ask: "165.460"},
			{Symbol: "GBP_JPY", Bid: "190.789", Ask: "190.793"},
			{Symbol: "AUD_JPY", Bid: "98.321", Ask: "98.329"},
			{Symbol: "EUR_USD", Bid: "1.08412", Ask: "1.08415"},
			{Symbol: "CHF_JPY", Bid: "170.100", Ask: "170.112"},
		},
	}, nil
}
