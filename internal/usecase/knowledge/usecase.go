package knowledge

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/pkg/logger"
	"github.com/futig/fxchat-backend/internal/pkg/textsplit"
	"github.com/futig/fxchat-backend/internal/pkg/validator"
	"github.com/futig/fxchat-backend/internal/vectorstore"
	"github.com/google/uuid"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const rewritePrompt = `以下のユーザーの質問を、参考資料を検索するための簡潔な検索クエリに書き換えてください。
検索クエリのみを出力し、説明は不要です。

ユーザーの質問: %s`

// KnowledgeUsecase owns the document index. Searches take the read lock,
// swaps and clears the write lock; indexes are built outside the lock.
type KnowledgeUsecase struct {
	cfg      config.RAGConfig
	loader   DocumentLoader
	embedder Embedder
	rewriter QueryRewriter
	splitter *textsplit.Splitter
	logger   *zap.Logger

	mu          sync.RWMutex
	index       *vectorstore.MemoryIndex
	urls        []string
	buildFailed bool
}

// NewUsecase creates the use case. embedder and rewriter may be nil:
// without an embedder ingestion fails, without a rewriter queries are used as typed.
func NewUsecase(
	cfg config.RAGConfig,
	loader DocumentLoader,
	embedder Embedder,
	rewriter QueryRewriter,
	logger *zap.Logger,
) *KnowledgeUsecase {
	return &KnowledgeUsecase{
		cfg:      cfg,
		loader:   loader,
		embedder: embedder,
		rewriter: rewriter,
		splitter: textsplit.New(cfg.ChunkSize, cfg.ChunkOverlap, textsplit.DefaultSeparators...),
		logger:   logger,
	}
}

// Ingest loads urls and replaces the index with their chunks.
// Any malformed URL rejects the whole batch before network I/O.
// When nothing could be indexed the previous index is kept.
func (uc *KnowledgeUsecase) Ingest(ctx context.Context, urls []string) (entity.IngestResult, error) {
	ctx = logger.WithAction(ctx, "ingest_documents")

	if len(urls) == 0 {
		return entity.IngestResult{Succeeded: []string{}, Failed: []string{}}, entity.ErrEmptyURLList
	}

	urls = trimURLs(urls)

	if invalid := validator.InvalidURLs(urls); len(invalid) > 0 {
		ctxzap.Warn(ctx, "rejecting url batch", zap.Strings("invalid_urls", invalid))
		return entity.IngestResult{Succeeded: []string{}, Failed: invalid},
			fmt.Errorf("%w: %s", entity.ErrInvalidURL, strings.Join(invalid, ", "))
	}

	allFailed := entity.IngestResult{Succeeded: []string{}, Failed: append([]string(nil), urls...)}

	if uc.embedder == nil {
		return allFailed, entity.ErrEmbedderUnavailable
	}

	ctxzap.Info(ctx, "loading documents", zap.Int("url_count", len(urls)))

	result := entity.IngestResult{Succeeded: []string{}, Failed: []string{}}
	var entries []vectorstore.Entry
	for _, u := range urls {
		doc, err := uc.loader.Load(ctx, u)
		if err != nil {
			ctxzap.Warn(ctx, "document load failed", zap.String("url", u), zap.Error(err))
			result.Failed = append(result.Failed, u)
			continue
		}

		chunks, err := uc.splitter.Split(doc.Content)
		if err != nil {
			ctxzap.Warn(ctx, "document split failed", zap.String("url", u), zap.Error(err))
			result.Failed = append(result.Failed, u)
			continue
		}
		if len(chunks) == 0 {
			ctxzap.Warn(ctx, "document has no content", zap.String("url", u))
			result.Failed = append(result.Failed, u)
			continue
		}

		for _, c := range chunks {
			entries = append(entries, vectorstore.Entry{
				ID:      uuid.New().String(),
				Passage: entity.Passage{Content: c, Source: u},
			})
		}
		result.Succeeded = append(result.Succeeded, u)

		ctxzap.Debug(ctx, "document split", zap.String("url", u), zap.Int("chunk_count", len(chunks)))
	}

	if len(entries) == 0 {
		uc.markBuildFailed()
		return allFailed, entity.ErrNoDocuments
	}

	index, err := uc.buildIndex(ctx, entries)
	if err != nil {
		ctxzap.Error(ctx, "index build failed, keeping previous index", zap.Error(err))
		uc.markBuildFailed()
		return allFailed, fmt.Errorf("%w: %w", entity.ErrIndexBuild, err)
	}

	uc.mu.Lock()
	uc.index = index
	uc.urls = append([]string(nil), result.Succeeded...)
	uc.buildFailed = false
	uc.mu.Unlock()

	ctxzap.Info(ctx, "document index replaced",
		zap.Strings("urls", result.Succeeded),
		zap.Strings("failed_urls", result.Failed),
		zap.Int("chunk_count", index.Size()),
	)

	return result, nil
}

func (uc *KnowledgeUsecase) buildIndex(ctx context.Context, entries []vectorstore.Entry) (*vectorstore.MemoryIndex, error) {
	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Passage.Content
	}

	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(entries) {
		return nil, fmt.Errorf("embed chunks: got %d vectors for %d chunks", len(vectors), len(entries))
	}

	for i := range entries {
		entries[i].Vector = vectors[i]
	}

	return vectorstore.NewMemoryIndex(ctx, entries)
}

// trimURLs drops surrounding whitespace so pasted URLs validate and load
func trimURLs(urls []string) []string {
	out := make([]string, len(urls))
	for i, u := range urls {
		out[i] = strings.TrimSpace(u)
	}
	return out
}

func (uc *KnowledgeUsecase) markBuildFailed() {
	uc.mu.Lock()
	uc.buildFailed = true
	uc.mu.Unlock()
}

// Retrieve returns up to TopK passages related to message. It never fails:
// no index, embedding errors and search errors all yield an empty result.
func (uc *KnowledgeUsecase) Retrieve(ctx context.Context, message string) []entity.Passage {
	uc.mu.RLock()
	index := uc.index
	uc.mu.RUnlock()

	if index == nil {
		return []entity.Passage{}
	}

	query := uc.searchQuery(ctx, message)

	vectors, err := uc.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) != 1 {
		ctxzap.Error(ctx, "query embedding failed", zap.Error(err))
		return []entity.Passage{}
	}

	hits, err := index.Search(ctx, vectors[0], uc.cfg.TopK)
	if err != nil {
		ctxzap.Error(ctx, "document search failed", zap.Error(err))
		return []entity.Passage{}
	}

	passages := make([]entity.Passage, 0, len(hits))
	ids := make([]string, 0, len(hits))
	scores := make([]float32, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, h.Passage)
		ids = append(ids, h.ID)
		scores = append(scores, h.Score)
	}

	ctxzap.Debug(ctx, "passages retrieved",
		zap.String("query", query),
		zap.Int("count", len(passages)),
		zap.Strings("chunk_ids", ids),
		zap.Float32s("scores", scores),
	)

	return passages
}

func (uc *KnowledgeUsecase) searchQuery(ctx context.Context, message string) string {
	if !uc.cfg.QueryRewrite || uc.rewriter == nil {
		return message
	}

	query, err := uc.rewriter.Complete(ctx, fmt.Sprintf(rewritePrompt, message))
	if err != nil || strings.TrimSpace(query) == "" {
		if err != nil && !errors.Is(err, entity.ErrEmptyReply) {
			ctxzap.Warn(ctx, "query rewrite failed, using message as query", zap.Error(err))
		}
		return message
	}

	return strings.TrimSpace(query)
}

// Clear drops the index and its URL list
func (uc *KnowledgeUsecase) Clear(ctx context.Context) bool {
	uc.mu.Lock()
	uc.index = nil
	uc.urls = nil
	uc.buildFailed = false
	uc.mu.Unlock()

	ctxzap.Info(ctx, "document index cleared")

	return true
}

// State reports the current index
func (uc *KnowledgeUsecase) State() entity.KnowledgeState {
	uc.mu.RLock()
	defer uc.mu.RUnlock()

	state := entity.KnowledgeState{
		Initialized: uc.index != nil,
		URLs:        append([]string{}, uc.urls...),
		Status:      entity.IndexStatusNotInitialized,
	}

	switch {
	case uc.index != nil:
		state.Chunks = uc.index.Size()
		state.Status = entity.IndexStatusReady
	case uc.buildFailed:
		state.Status = entity.IndexStatusError
	}

	return state
}
