package api

import (
	"net/http"
	"time"

	chatapi "github.com/futig/fxchat-backend/internal/api/chat"
	"github.com/futig/fxchat-backend/internal/api/docs"
	knowledgeapi "github.com/futig/fxchat-backend/internal/api/knowledge"
	"github.com/futig/fxchat-backend/internal/api/middleware"
	ratesapi "github.com/futig/fxchat-backend/internal/api/rates"
	"github.com/futig/fxchat-backend/internal/pkg/response"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Handlers groups the HTTP handlers served by the router
type Handlers struct {
	Chat      *chatapi.Handler
	Knowledge *knowledgeapi.Handler
	Rates     *ratesapi.Handler
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(h Handlers, corsEnabled bool, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer)
	if corsEnabled {
		r.Use(middleware.CORS)
	}
	r.Use(chimiddleware.Timeout(120 * time.Second))

	// Health check endpoints
	r.Get("/", h.Chat.Root)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		response.Success(w, map[string]string{"status": "healthy"})
	})

	// Swagger documentation endpoints
	docs.RegisterRoutes(r)

	r.Route("/api", func(r chi.Router) {
		chatapi.RegisterRoutes(r, h.Chat)
		knowledgeapi.RegisterRoutes(r, h.Knowledge)
		ratesapi.RegisterRoutes(r, h.Rates)
	})

	return r
}
