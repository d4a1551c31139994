package forex

import (
	"context"
	"net/http"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/integration/common"
	pkghttp "github.com/futig/fxchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector talks to the public GMO Coin forex ticker API
type Connector struct {
	config    config.ForexConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.ForexConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// GetTicker fetches the latest quotes for every symbol the upstream lists.
// A non-zero upstream status is returned as a response, not an error.
func (c *Connector) GetTicker(ctx context.Context) (*entity.TickerResponse, error) {
	ctxzap.Debug(ctx, "fetching forex ticker")

	var resp entity.TickerResponse
	err := c.connector.DoRequest(ctx, http.MethodGet, c.config.TickerEndpoint, nil, &resp)
	if err != nil {
		return nil, err
	}

	ctxzap.Debug(ctx, "forex ticker fetched",
		zap.Int("status", resp.Status),
		zap.Int("quote_count", len(resp.Data)),
	)

	return &resp, nil
}
