package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Songmu/flextime"
	chatapi "github.com/futig/fxchat-backend/internal/api/chat"
	knowledgeapi "github.com/futig/fxchat-backend/internal/api/knowledge"
	ratesapi "github.com/futig/fxchat-backend/internal/api/rates"
	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/pkg/formatter"
	"github.com/futig/fxchat-backend/internal/pkg/validator"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeChat struct {
	reply string
	err   error
	got   []string
}

func (f *fakeChat) ProcessMessage(_ context.Context, message string) (string, error) {
	f.got = append(f.got, message)
	return f.reply, f.err
}

type fakeKnowledge struct {
	state   entity.KnowledgeState
	ingests int
}

func (f *fakeKnowledge) Ingest(_ context.Context, urls []string) (entity.IngestResult, error) {
	if len(urls) == 0 {
		return entity.IngestResult{}, entity.ErrEmptyURLList
	}
	if invalid := validator.InvalidURLs(urls); len(invalid) > 0 {
		return entity.IngestResult{Succeeded: []string{}, Failed: invalid}, entity.ErrInvalidURL
	}
	f.ingests++
	f.state = entity.KnowledgeState{Initialized: true, URLs: urls, Status: entity.IndexStatusReady}
	return entity.IngestResult{Succeeded: urls, Failed: []string{}}, nil
}

func (f *fakeKnowledge) Clear(context.Context) bool {
	f.state = entity.KnowledgeState{Status: entity.IndexStatusNotInitialized}
	return true
}

func (f *fakeKnowledge) State() entity.KnowledgeState {
	return f.state
}

type fakeRates struct {
	report *entity.RateReport
	err    error
}

func (f *fakeRates) Report(context.Context) (*entity.RateReport, error) {
	return f.report, f.err
}

type fixture struct {
	chat      *fakeChat
	knowledge *fakeKnowledge
	rates     *fakeRates
	handler   http.Handler
}

func newFixture(t *testing.T, corsEnabled bool) *fixture {
	t.Helper()

	spread := 0.05
	f := &fixture{
		chat:      &fakeChat{reply: "こんにちは"},
		knowledge: &fakeKnowledge{state: entity.KnowledgeState{Status: entity.IndexStatusNotInitialized}},
		rates: &fakeRates{report: &entity.RateReport{
			Quotes:    []entity.RateQuote{{Symbol: "USD_JPY", Label: "ドル/円", Bid: "150.10", Ask: "150.15", Spread: &spread}},
			FetchedAt: time.Date(2024, 3, 15, 9, 30, 5, 0, time.UTC),
		}},
	}
	f.handler = SetupRouter(Handlers{
		Chat:      chatapi.NewHandler(f.chat),
		Knowledge: knowledgeapi.NewHandler(f.knowledge),
		Rates:     ratesapi.NewHandler(f.rates, formatter.NewFactory("")),
	}, corsEnabled, zap.NewNop())

	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestRoot(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[entity.HealthResponse](t, rec)
	require.Equal(t, chatapi.RootMessage, resp.Message)
	require.Equal(t, "ok", resp.Status)

	require.Equal(t, http.StatusOK, f.do(http.MethodGet, "/health", "").Code)
}

func TestChat(t *testing.T) {
	restore := flextime.Fix(time.Date(2024, 3, 15, 9, 30, 5, 0, time.FixedZone("JST", 9*60*60)))
	defer restore()

	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/chat", `{"message":"こんにちは"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[entity.ChatResponse](t, rec)
	require.Equal(t, "こんにちは", resp.Response)
	require.Equal(t, "2024-03-15T09:30:05+09:00", resp.Timestamp)

	_, err := time.Parse(time.RFC3339, resp.Timestamp)
	require.NoError(t, err)
	require.Equal(t, []string{"こんにちは"}, f.chat.got)
}

func TestChat_Validation(t *testing.T) {
	f := newFixture(t, true)

	for _, body := range []string{`{}`, `{"message": 42}`, `not json`, `{"msg":"hi"}`} {
		rec := f.do(http.MethodPost, "/api/chat", body)
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, body)
		require.NotEmpty(t, decode[entity.ErrorResponse](t, rec).Detail)
	}
	require.Empty(t, f.chat.got)

	rec := f.do(http.MethodPost, "/api/chat", `{"message":""}`)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestChat_InternalError(t *testing.T) {
	f := newFixture(t, true)
	f.chat.err = errors.New("panic in dispatcher")

	rec := f.do(http.MethodPost, "/api/chat", `{"message":"hi"}`)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "Internal server error", decode[entity.ErrorResponse](t, rec).Detail)
}

func TestTools(t *testing.T) {
	rec := newFixture(t, true).do(http.MethodGet, "/api/tools", "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[entity.ToolsResponse](t, rec)
	require.Len(t, resp.Tools, 3)
	require.Equal(t, "get_exchange_rates", resp.Tools[0].Name)
}

func TestSetURL(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodPost, "/api/set-url", `{"urls":["not-a-url"]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decode[entity.SetURLResponse](t, rec)
	require.False(t, resp.Success)
	require.Equal(t, []string{"not-a-url"}, resp.FailedURLs)
	require.Zero(t, f.knowledge.ingests)

	rec = f.do(http.MethodPost, "/api/set-url", `{"urls":[]}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.False(t, decode[entity.SetURLResponse](t, rec).Success)

	rec = f.do(http.MethodPost, "/api/set-url", `{"urls":"https://example.com"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodPost, "/api/set-url", `{"urls":["https://example.com/fx"]}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp = decode[entity.SetURLResponse](t, rec)
	require.True(t, resp.Success)
	require.Equal(t, []string{"https://example.com/fx"}, resp.URLs)
	require.Empty(t, resp.FailedURLs)
}

func TestVectorStoreStatusAndClear(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/vectorstore-status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"initialized":false,"current_url":null,"urls":[],"status":"not_initialized"}`, rec.Body.String())

	f.do(http.MethodPost, "/api/set-url", `{"urls":["https://a.example","https://b.example"]}`)

	rec = f.do(http.MethodGet, "/api/vectorstore-status", "")
	require.JSONEq(t, `{"initialized":true,"current_url":"https://a.example","urls":["https://a.example","https://b.example"],"status":"ready"}`, rec.Body.String())

	rec = f.do(http.MethodPost, "/api/clear-vectorstore", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, decode[entity.ClearResponse](t, rec).Success)

	rec = f.do(http.MethodGet, "/api/vectorstore-status", "")
	require.False(t, decode[entity.IndexStatusResponse](t, rec).Initialized)
}

func TestExport(t *testing.T) {
	f := newFixture(t, true)

	rec := f.do(http.MethodGet, "/api/rates/export", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/markdown; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, `attachment; filename="rates_20240315_093005.md"`, rec.Header().Get("Content-Disposition"))
	require.Contains(t, rec.Body.String(), "| ドル/円 | USD_JPY | 150.10 | 150.15 | 0.0500 |")

	rec = f.do(http.MethodGet, "/api/rates/export?format=pdf", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, strings.HasPrefix(rec.Body.String(), "%PDF-"))

	rec = f.do(http.MethodGet, "/api/rates/export?format=xlsx", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	f.rates.err = entity.ErrUpstreamStatus
	rec = f.do(http.MethodGet, "/api/rates/export", "")
	require.Equal(t, http.StatusBadGateway, rec.Code)
	require.Equal(t, "為替データの取得に失敗しました。", decode[entity.ErrorResponse](t, rec).Detail)
}

func TestCORS(t *testing.T) {
	preflight := func(h http.Handler) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
		req.Header.Set("Origin", "https://app.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := preflight(newFixture(t, true).handler)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	require.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), "POST")

	rec = preflight(newFixture(t, false).handler)
	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSwaggerYAML(t *testing.T) {
	rec := newFixture(t, true).do(http.MethodGet, "/docs/swagger.yaml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "/api/chat:")
}
