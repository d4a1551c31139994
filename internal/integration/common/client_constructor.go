package common

import (
	"github.com/futig/fxchat-backend/internal/config"
	pkgHTTP "github.com/futig/fxchat-backend/pkg/http"
	"go.uber.org/zap"
)

// NewBaseConnector builds a JSON connector from a service's HTTP client settings.
// Extra options are applied after the configured ones.
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger, extra ...pkgHTTP.HttpOpts) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	opts := []pkgHTTP.HttpOpts{
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	}

	return pkgHTTP.NewConnector(connCfg, append(opts, extra...)...)
}
