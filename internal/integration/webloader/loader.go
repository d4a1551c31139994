package webloader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/avast/retry-go/v4"
	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/entity"
	pkghttp "github.com/futig/fxchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/net/html/charset"
)

// Loader fetches web pages and reduces them to plain text
type Loader struct {
	config    config.LoaderConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewLoader(cfg config.LoaderConfig, logger *zap.Logger) *Loader {
	connCfg := &pkghttp.ConnectorConfig{Logger: logger}

	return &Loader{
		config: cfg,
		connector: pkghttp.NewConnector(connCfg,
			pkghttp.WithRequestTimeout(cfg.Timeout),
			pkghttp.WithUserAgent(cfg.UserAgent),
			pkghttp.WithRequestLogging(),
		),
		logger: logger,
	}
}

// Load fetches url and extracts its visible text. A page with no text yields ErrEmptyDocument.
func (l *Loader) Load(ctx context.Context, url string) (*entity.Document, error) {
	var raw *pkghttp.RawResponse
	err := l.config.Retry.Do(ctx, func() error {
		var err error
		raw, err = l.connector.DoRawRequest(ctx, http.MethodGet, "",
			pkghttp.WithURL(url),
			pkghttp.WithHeader("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.8"),
		)
		var httpErr *pkghttp.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
			return retry.Unrecoverable(err)
		}
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}

	body, err := toUTF8(raw.Body, raw.ContentType)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}

	doc := &entity.Document{URL: url}
	if isHTML(raw.ContentType, body) {
		doc.Title, doc.Content, err = ExtractText(body)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", url, err)
		}
	} else {
		doc.Content = strings.TrimSpace(string(body))
	}

	if doc.Content == "" {
		return nil, fmt.Errorf("%s: %w", url, entity.ErrEmptyDocument)
	}

	ctxzap.Debug(ctx, "page loaded",
		zap.String("url", url),
		zap.String("title", doc.Title),
		zap.Int("content_length", len(doc.Content)),
	)

	return doc, nil
}

func isHTML(contentType string, body []byte) bool {
	if contentType == "" {
		contentType = http.DetectContentType(body)
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "html") || strings.Contains(ct, "xml")
}

// toUTF8 converts body to UTF-8 using the Content-Type charset, a BOM or a
// <meta> declaration. Undeclared bodies that are already valid UTF-8 pass through.
func toUTF8(body []byte, contentType string) ([]byte, error) {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || (!certain && utf8.Valid(body)) {
		return body, nil
	}

	return io.ReadAll(enc.NewDecoder().Reader(bytes.NewReader(body)))
}
