package rates

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Songmu/flextime"
	"github.com/futig/fxchat-backend/internal/entity"
	pkghttp "github.com/futig/fxchat-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// User-facing failure messages
const (
	MsgFetchFailed  = "為替データの取得に失敗しました。"
	MsgNoData       = "為替データが見つかりませんでした。"
	MsgNetworkError = "為替データの取得中にネットワークエラーが発生しました。しばらく時間をおいてから再度お試しください。"
	MsgProcessError = "為替データの処理中にエラーが発生しました。"
)

const timeLayout = "2006-01-02 15:04:05"

const notAvailable = "N/A"

// MajorPair is a pair shown in the all-pairs report
type MajorPair struct {
	Symbol string
	Label  string
}

// MajorPairs is the report allow-list
var MajorPairs = []MajorPair{
	{Symbol: "USD_JPY", Label: "ドル/円"},
	{Symbol: "EUR_JPY", Label: "ユーロ/円"},
	{Symbol: "GBP_JPY", Label: "ポンド/円"},
	{Symbol: "AUD_JPY", Label: "豪ドル/円"},
	{Symbol: "EUR_USD", Label: "ユーロ/ドル"},
}

// RatesUsecase turns ticker snapshots into reports. Every call hits the upstream once.
type RatesUsecase struct {
	ticker TickerConnector
	logger *zap.Logger
}

func NewUsecase(ticker TickerConnector, logger *zap.Logger) *RatesUsecase {
	return &RatesUsecase{
		ticker: ticker,
		logger: logger,
	}
}

// Report fetches the ticker and keeps the allow-listed pairs in upstream order
func (uc *RatesUsecase) Report(ctx context.Context) (*entity.RateReport, error) {
	resp, err := uc.ticker.GetTicker(ctx)
	if err != nil {
		return nil, fmt.Errorf("get ticker: %w", err)
	}

	if resp.Status != 0 {
		return nil, fmt.Errorf("%w: status %d", entity.ErrUpstreamStatus, resp.Status)
	}

	report := &entity.RateReport{FetchedAt: flextime.Now()}
	for _, q := range resp.Data {
		label, ok := majorLabel(q.Symbol)
		if !ok {
			continue
		}
		report.Quotes = append(report.Quotes, toRateQuote(q, label))
	}

	return report, nil
}

// AllMajorPairs renders the all-pairs report. Failures come back as messages, never as errors.
func (uc *RatesUsecase) AllMajorPairs(ctx context.Context) string {
	report, err := uc.Report(ctx)
	if err != nil {
		return uc.failureMessage(ctx, err)
	}

	if len(report.Quotes) == 0 {
		return MsgNoData
	}

	return RenderReport(report)
}

func (uc *RatesUsecase) failureMessage(ctx context.Context, err error) string {
	var netErr *pkghttp.NetworkError
	var httpErr *pkghttp.HTTPError

	switch {
	case errors.Is(err, entity.ErrUpstreamStatus):
		ctxzap.Warn(ctx, "forex api returned failure status", zap.Error(err))
		return MsgFetchFailed
	case errors.As(err, &netErr), errors.As(err, &httpErr):
		ctxzap.Error(ctx, "forex api call failed", zap.Error(err))
		return MsgNetworkError
	default:
		ctxzap.Error(ctx, "forex data processing failed", zap.Error(err))
		return MsgProcessError
	}
}

// Pair renders a single quote. The symbol is trimmed and upper-cased before matching.
func (uc *RatesUsecase) Pair(ctx context.Context, symbol string) string {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))

	resp, err := uc.ticker.GetTicker(ctx)
	if err != nil {
		ctxzap.Error(ctx, "forex api call failed",
			zap.String("symbol", normalized),
			zap.Error(err),
		)
		return fmt.Sprintf("%sのレート取得中にエラーが発生しました。", symbol)
	}

	if resp.Status != 0 {
		ctxzap.Warn(ctx, "forex api returned failure status",
			zap.String("symbol", normalized),
			zap.Int("status", resp.Status),
		)
		return fmt.Sprintf("%sのデータ取得に失敗しました。", symbol)
	}

	for _, q := range resp.Data {
		if q.Symbol == normalized {
			return renderPair(toRateQuote(q, normalized))
		}
	}

	return fmt.Sprintf("通貨ペア '%s' が見つかりませんでした。", symbol)
}

func majorLabel(symbol string) (string, bool) {
	for _, p := range MajorPairs {
		if p.Symbol == symbol {
			return p.Label, true
		}
	}
	return "", false
}

func toRateQuote(q entity.TickerQuote, label string) entity.RateQuote {
	rq := entity.RateQuote{
		Symbol: q.Symbol,
		Label:  label,
		Bid:    orNotAvailable(q.Bid),
		Ask:    orNotAvailable(q.Ask),
	}

	bid, bidErr := strconv.ParseFloat(rq.Bid, 64)
	ask, askErr := strconv.ParseFloat(rq.Ask, 64)
	if bidErr == nil && askErr == nil {
		spread := ask - bid
		rq.Spread = &spread
	}

	return rq
}

func orNotAvailable(s string) string {
	if strings.TrimSpace(s) == "" {
		return notAvailable
	}
	return s
}
