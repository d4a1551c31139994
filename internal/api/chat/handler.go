package chat

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/Songmu/flextime"
	"github.com/futig/fxchat-backend/internal/entity"
	"github.com/futig/fxchat-backend/internal/pkg/logger"
	"github.com/futig/fxchat-backend/internal/pkg/response"
	"github.com/futig/fxchat-backend/internal/pkg/validator"
	chatuc "github.com/futig/fxchat-backend/internal/usecase/chat"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// RootMessage is reported by the root health endpoint
const RootMessage = "ChatBot API is running with Function Calling"

const maxBodyBytes = 1 << 20

type Handler struct {
	usecase ChatUsecase
}

func NewHandler(usecase ChatUsecase) *Handler {
	return &Handler{
		usecase: usecase,
	}
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	response.Success(w, entity.HealthResponse{Message: RootMessage, Status: "ok"})
}

// Chat handles POST /api/chat
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	ctx := logger.WithAction(r.Context(), "Chat")

	var req entity.ChatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		ctxzap.Warn(ctx, "failed to decode chat request", zap.Error(err))
		response.Error(w, http.StatusUnprocessableEntity, "request body must be a JSON object with a string field 'message'")
		return
	}

	if err := validator.ValidateChatRequest(&req); err != nil {
		ctxzap.Warn(ctx, "invalid chat request", zap.Error(err))
		detail := "message: field required"
		if !errors.Is(err, entity.ErrMissingField) {
			detail = err.Error()
		}
		response.Error(w, http.StatusUnprocessableEntity, detail)
		return
	}

	ctxzap.Info(ctx, "received message", zap.Int("length", len(*req.Message)))

	reply, err := h.usecase.ProcessMessage(ctx, *req.Message)
	if err != nil {
		ctxzap.Error(ctx, "chat processing failed", zap.Error(err))
		response.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	ctxzap.Info(ctx, "sending reply", zap.Int("length", len(reply)))

	response.Success(w, entity.ChatResponse{
		Response:  reply,
		Timestamp: flextime.Now().Format(time.RFC3339),
	})
}

// Tools handles GET /api/tools
func (h *Handler) Tools(w http.ResponseWriter, r *http.Request) {
	response.Success(w, entity.ToolsResponse{Tools: chatuc.Catalog()})
}
