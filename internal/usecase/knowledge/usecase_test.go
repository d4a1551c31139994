package knowledge

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/futig/fxchat-backend/internal/config"
	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/integration/embedding"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fakeLoader struct {
	mu    sync.Mutex
	pages map[string]string
	calls []string
}

func (f *fakeLoader) Load(_ context.Context, url string) (*entity.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, url)

	content, ok := f.pages[url]
	if !ok {
		return nil, errors.New("connection refused")
	}
	return &entity.Document{URL: url, Content: content}, nil
}

type failingEmbedder struct{}

func (failingEmbedder) Embed(context.Context, []string) ([][]float32, error) {
	return nil, errors.New("quota exceeded")
}

type fakeRewriter struct {
	out    string
	err    error
	prompt string
}

func (f *fakeRewriter) Complete(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	return f.out, f.err
}

var testCfg = config.RAGConfig{ChunkSize: 1000, ChunkOverlap: 100, TopK: 3, QueryRewrite: true}

const (
	fxPage     = "https://example.com/fx"
	cookPage   = "https://example.com/cooking"
	emptyPage  = "https://example.com/empty"
	brokenPage = "https://example.com/broken"
)

func newLoader() *fakeLoader {
	return &fakeLoader{pages: map[string]string{
		fxPage:    "USD JPY exchange rate spread bid ask",
		cookPage:  "boil pasta with salt and olive oil",
		emptyPage: "   \n\n  ",
	}}
}

func newUsecase(loader DocumentLoader, embedder Embedder, rewriter QueryRewriter) *KnowledgeUsecase {
	return NewUsecase(testCfg, loader, embedder, rewriter, zap.NewNop())
}

func TestIngest_InvalidURLSkipsNetwork(t *testing.T) {
	loader := newLoader()
	uc := newUsecase(loader, embedding.NewMockConnector(zap.NewNop()), nil)

	res, err := uc.Ingest(context.Background(), []string{"not-a-url"})
	require.ErrorIs(t, err, entity.ErrInvalidURL)
	require.Empty(t, res.Succeeded)
	require.Equal(t, []string{"not-a-url"}, res.Failed)

	res, err = uc.Ingest(context.Background(), []string{fxPage, "ftp://example.com"})
	require.ErrorIs(t, err, entity.ErrInvalidURL)
	require.Equal(t, []string{"ftp://example.com"}, res.Failed)

	require.Empty(t, loader.calls)
	require.False(t, uc.State().Initialized)
}

func TestIngest_EmptyList(t *testing.T) {
	uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), nil)
	_, err := uc.Ingest(context.Background(), nil)
	require.ErrorIs(t, err, entity.ErrEmptyURLList)
}

func TestIngest_TrimsURLs(t *testing.T) {
	loader := newLoader()
	uc := newUsecase(loader, embedding.NewMockConnector(zap.NewNop()), nil)

	res, err := uc.Ingest(context.Background(), []string{"  " + fxPage + "\n"})
	require.NoError(t, err)
	require.Equal(t, []string{fxPage}, res.Succeeded)
	require.Empty(t, res.Failed)
	require.Equal(t, []string{fxPage}, loader.calls)
	require.Equal(t, []string{fxPage}, uc.State().URLs)
}

func TestIngest_PartialSuccess(t *testing.T) {
	uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), nil)

	res, err := uc.Ingest(context.Background(), []string{fxPage, brokenPage, emptyPage, cookPage})
	require.NoError(t, err)
	require.Equal(t, []string{fxPage, cookPage}, res.Succeeded)
	require.Equal(t, []string{brokenPage, emptyPage}, res.Failed)

	state := uc.State()
	require.True(t, state.Initialized)
	require.Equal(t, entity.IndexStatusReady, state.Status)
	require.Equal(t, []string{fxPage, cookPage}, state.URLs)
	require.Equal(t, 2, state.Chunks)
}

func TestIngest_EmptyPageKeepsPreviousIndex(t *testing.T) {
	uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), nil)

	_, err := uc.Ingest(context.Background(), []string{fxPage})
	require.NoError(t, err)

	res, err := uc.Ingest(context.Background(), []string{emptyPage})
	require.ErrorIs(t, err, entity.ErrNoDocuments)
	require.Empty(t, res.Succeeded)
	require.Equal(t, []string{emptyPage}, res.Failed)

	state := uc.State()
	require.True(t, state.Initialized)
	require.Equal(t, []string{fxPage}, state.URLs)
	require.Equal(t, entity.IndexStatusReady, state.Status)
}

func TestIngest_BuildFailureKeepsPreviousIndex(t *testing.T) {
	loader := newLoader()
	uc := newUsecase(loader, embedding.NewMockConnector(zap.NewNop()), nil)

	_, err := uc.Ingest(context.Background(), []string{fxPage})
	require.NoError(t, err)

	uc.embedder = failingEmbedder{}
	res, err := uc.Ingest(context.Background(), []string{cookPage, brokenPage})
	require.ErrorIs(t, err, entity.ErrIndexBuild)
	require.Empty(t, res.Succeeded)
	require.Equal(t, []string{cookPage, brokenPage}, res.Failed)

	state := uc.State()
	require.True(t, state.Initialized)
	require.Equal(t, []string{fxPage}, state.URLs)
}

func TestIngest_FailureWithoutIndexReportsError(t *testing.T) {
	uc := newUsecase(newLoader(), failingEmbedder{}, nil)

	_, err := uc.Ingest(context.Background(), []string{fxPage})
	require.ErrorIs(t, err, entity.ErrIndexBuild)

	state := uc.State()
	require.False(t, state.Initialized)
	require.Equal(t, entity.IndexStatusError, state.Status)
}

func TestIngest_NoEmbedder(t *testing.T) {
	loader := newLoader()
	uc := newUsecase(loader, nil, nil)

	res, err := uc.Ingest(context.Background(), []string{fxPage})
	require.ErrorIs(t, err, entity.ErrEmbedderUnavailable)
	require.Equal(t, []string{fxPage}, res.Failed)
	require.Empty(t, loader.calls)
}

func TestClear(t *testing.T) {
	uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), nil)

	_, err := uc.Ingest(context.Background(), []string{fxPage})
	require.NoError(t, err)

	require.True(t, uc.Clear(context.Background()))

	state := uc.State()
	require.False(t, state.Initialized)
	require.Empty(t, state.URLs)
	require.Equal(t, entity.IndexStatusNotInitialized, state.Status)
	require.Empty(t, uc.Retrieve(context.Background(), "USD"))
}

func TestRetrieve(t *testing.T) {
	t.Run("no index skips rewrite", func(t *testing.T) {
		rw := &fakeRewriter{out: "query"}
		uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), rw)

		require.Empty(t, uc.Retrieve(context.Background(), "USD"))
		require.Empty(t, rw.prompt)
	})

	t.Run("ranks by similarity", func(t *testing.T) {
		rw := &fakeRewriter{out: "  USD JPY exchange rate  "}
		uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), rw)

		_, err := uc.Ingest(context.Background(), []string{cookPage, fxPage})
		require.NoError(t, err)

		passages := uc.Retrieve(context.Background(), "ドル円のレートは？")
		require.Len(t, passages, 2)
		require.Equal(t, fxPage, passages[0].Source)
		require.Contains(t, rw.prompt, "ドル円のレートは？")
	})

	t.Run("rewrite failure falls back to message", func(t *testing.T) {
		rw := &fakeRewriter{err: errors.New("timeout")}
		uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), rw)

		_, err := uc.Ingest(context.Background(), []string{cookPage, fxPage})
		require.NoError(t, err)

		passages := uc.Retrieve(context.Background(), "USD JPY exchange rate")
		require.NotEmpty(t, passages)
		require.Equal(t, fxPage, passages[0].Source)
	})
}

func TestRetrieve_LogsChunkIDs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := ctxzap.ToContext(context.Background(), zap.New(core))
	uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), nil)

	_, err := uc.Ingest(ctx, []string{cookPage, fxPage})
	require.NoError(t, err)

	passages := uc.Retrieve(ctx, "USD JPY exchange rate")
	require.Len(t, passages, 2)

	entries := logs.FilterMessage("passages retrieved").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	ids, ok := fields["chunk_ids"].([]interface{})
	require.True(t, ok)
	require.Len(t, ids, 2)
	for _, id := range ids {
		require.NotEmpty(t, id)
	}
	scores, ok := fields["scores"].([]interface{})
	require.True(t, ok)
	require.Len(t, scores, 2)
}

func TestConcurrentIngestAndRetrieve(t *testing.T) {
	uc := newUsecase(newLoader(), embedding.NewMockConnector(zap.NewNop()), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = uc.Ingest(context.Background(), []string{fxPage, cookPage})
		}()
		go func() {
			defer wg.Done()
			_ = uc.Retrieve(context.Background(), "pasta")
			_ = uc.State()
		}()
	}
	wg.Wait()

	require.True(t, uc.State().Initialized)
}
