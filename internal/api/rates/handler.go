package rates

import (
	"errors"
	"net/http"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/pkg/formatter"
	"github.com/futig/fxchat-backend/internal/pkg/logger"
	"github.com/futig/fxchat-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

type Handler struct {
	usecase    RatesUsecase
	formatters *formatter.Factory
}

func NewHandler(usecase RatesUsecase, formatters *formatter.Factory) *Handler {
	return &Handler{
		usecase:    usecase,
		formatters: formatters,
	}
}

// Export handles GET /api/rates/export?format=markdown|pdf|docx
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ExportRates")

	format := entity.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = entity.FormatMarkdown
	}

	f, err := h.formatters.Create(format)
	if err != nil {
		ctxzap.Warn(ctx, "unsupported export format", zap.String("format", string(format)))
		response.Error(w, http.StatusBadRequest, "format must be one of markdown, pdf, docx")
		return
	}

	report, err := h.usecase.Report(ctx)
	if err != nil {
		ctxzap.Error(ctx, "failed to fetch rates for export", zap.Error(err))
		detail := "為替データの取得中にネットワークエラーが発生しました。しばらく時間をおいてから再度お試しください。"
		if errors.Is(err, entity.ErrUpstreamStatus) {
			detail = "為替データの取得に失敗しました。"
		}
		response.Error(w, http.StatusBadGateway, detail)
		return
	}

	if len(report.Quotes) == 0 {
		response.Error(w, http.StatusNotFound, "為替データが見つかりませんでした。")
		return
	}

	body, err := f.Format(report)
	if err != nil {
		ctxzap.Error(ctx, "failed to render rate report", zap.String("format", string(format)), zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctxzap.Info(ctx, "rate report exported",
		zap.String("format", string(format)),
		zap.Int("quote_count", len(report.Quotes)),
		zap.Int("bytes", len(body)),
	)

	response.Attachment(w, f.ContentType(), formatter.FileName(f, report), body)
}
