package knowledge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/pkg/logger"
	"github.com/futig/fxchat-backend/internal/pkg/response"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	usecase KnowledgeUsecase
}

func NewHandler(usecase KnowledgeUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// SetURL handles POST /api/set-url
func (h *Handler) SetURL(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "SetURL")

	var req entity.SetURLRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode set-url request", zap.Error(err))
		response.Error(w, http.StatusUnprocessableEntity, "request body must be a JSON object with a string array field 'urls'")
		return
	}

	result, err := h.usecase.Ingest(ctx, req.URLs)
	if err != nil {
		h.handleIngestError(ctx, w, result, err)
		return
	}

	msg := fmt.Sprintf("%d件のURLからドキュメントを読み込みました。", len(result.Succeeded))
	if len(result.Failed) > 0 {
		msg += fmt.Sprintf("（%d件は読み込みに失敗しました）", len(result.Failed))
	}

	response.Success(w, entity.SetURLResponse{
		Success:    true,
		Message:    msg,
		URLs:       result.Succeeded,
		FailedURLs: result.Failed,
	})
}

func (h *Handler) handleIngestError(ctx context.Context, w http.ResponseWriter, result entity.IngestResult, err error) {
	status := http.StatusInternalServerError
	var msg string

	switch {
	case errors.Is(err, entity.ErrEmptyURLList):
		status = http.StatusBadRequest
		msg = "URLが指定されていません。"
	case errors.Is(err, entity.ErrInvalidURL):
		status = http.StatusBadRequest
		msg = "無効なURLが含まれています（http:// または https:// で始まるURLを指定してください）: " + strings.Join(result.Failed, ", ")
	case errors.Is(err, entity.ErrNoDocuments):
		status = http.StatusUnprocessableEntity
		msg = "指定されたURLからドキュメントを読み込めませんでした。"
	case errors.Is(err, entity.ErrEmbedderUnavailable):
		status = http.StatusServiceUnavailable
		msg = "ベクトルストアを利用できません。GEMINI_API_KEYが正しく設定されているか確認してください。"
	default:
		msg = "ベクトルストアの構築に失敗しました。"
	}

	ctxzap.Warn(ctx, "document ingestion failed", zap.Int("status", status), zap.Error(err))

	response.JSON(w, status, entity.SetURLResponse{
		Success:    false,
		Message:    msg,
		FailedURLs: result.Failed,
	})
}

// Clear handles POST /api/clear-vectorstore
func (h *Handler) Clear(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "ClearVectorStore")

	if !h.usecase.Clear(ctx) {
		response.JSON(w, http.StatusInternalServerError, entity.ClearResponse{
			Success: false,
			Message: "ベクトルストアのクリアに失敗しました。",
		})
		return
	}

	response.Success(w, entity.ClearResponse{
		Success: true,
		Message: "ベクトルストアをクリアしました。",
	})
}

// Status handles GET /api/vectorstore-status
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	state := h.usecase.State()

	resp := entity.IndexStatusResponse{
		Initialized: state.Initialized,
		URLs:        state.URLs,
		Status:      state.Status,
	}
	if resp.URLs == nil {
		resp.URLs = []string{}
	}
	if len(state.URLs) > 0 {
		current := state.URLs[0]
		resp.CurrentURL = &current
	}

	response.Success(w, resp)
}
