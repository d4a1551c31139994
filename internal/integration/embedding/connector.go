package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/futig/fxchat-backend/internal/config"
	pkghttp "github.com/futig/fxchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/patrickmn/go-cache"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// maxBatchSize is the most texts the provider accepts in one request
const maxBatchSize = 100

// EmbeddingClient is the part of the OpenAI-compatible client the connector needs
type EmbeddingClient interface {
	CreateEmbeddings(ctx context.Context, conv openai.EmbeddingRequestConverter) (openai.EmbeddingResponse, error)
}

// Connector turns texts into vectors. Vectors are cached by text for CacheTTL
// so repeated queries and re-ingested pages skip the provider.
type Connector struct {
	config config.EmbeddingConnectorConfig
	client EmbeddingClient
	cache  *cache.Cache
	logger *zap.Logger
}

func NewConnector(
	cfg config.EmbeddingConnectorConfig,
	llmCfg config.LLMConnectorConfig,
	apiKey string,
	logger *zap.Logger,
) *Connector {
	clientCfg := openai.DefaultConfig(apiKey)
	clientCfg.BaseURL = llmCfg.BaseURL
	clientCfg.HTTPClient = pkghttp.NewClient(
		pkghttp.WithRequestTimeout(cfg.Timeout),
		pkghttp.WithRequestLogging(),
	)

	return NewWithClient(cfg, openai.NewClientWithConfig(clientCfg), logger)
}

// NewWithClient builds a connector around an existing client
func NewWithClient(cfg config.EmbeddingConnectorConfig, client EmbeddingClient, logger *zap.Logger) *Connector {
	ttl := cfg.CacheTTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}

	return &Connector{
		config: cfg,
		client: client,
		cache:  cache.New(ttl, cleanupInterval(ttl)),
		logger: logger,
	}
}

// Embed returns one vector per text, in input order
func (c *Connector) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))

	var missing []string
	var missingIdx []int
	for i, text := range texts {
		if v, ok := c.cache.Get(c.cacheKey(text)); ok {
			out[i] = v.([]float32)
			continue
		}
		missing = append(missing, text)
		missingIdx = append(missingIdx, i)
	}

	ctxzap.Debug(ctx, "embedding texts",
		zap.Int("total", len(texts)),
		zap.Int("cache_misses", len(missing)),
	)

	if len(missing) == 0 {
		return out, nil
	}

	for start := 0; start < len(missing); start += maxBatchSize {
		end := min(start+maxBatchSize, len(missing))
		if err := c.embedBatch(ctx, missing[start:end], missingIdx[start:end], out); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// embedBatch fills out at positions idx with the vectors of texts
func (c *Connector) embedBatch(ctx context.Context, texts []string, idx []int, out [][]float32) error {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(c.config.Model),
	})
	if err != nil {
		return fmt.Errorf("create embeddings: %w", err)
	}

	if len(resp.Data) != len(texts) {
		return fmt.Errorf("create embeddings: got %d vectors for %d texts", len(resp.Data), len(texts))
	}

	for _, e := range resp.Data {
		if e.Index < 0 || e.Index >= len(texts) {
			return fmt.Errorf("create embeddings: index %d out of range", e.Index)
		}
		out[idx[e.Index]] = e.Embedding
		c.cache.SetDefault(c.cacheKey(texts[e.Index]), e.Embedding)
	}

	return nil
}

func (c *Connector) cacheKey(text string) string {
	return c.config.Model + "\x00" + text
}

func cleanupInterval(ttl time.Duration) time.Duration {
	if ttl == cache.NoExpiration {
		return 0
	}
	return 2 * ttl
}
