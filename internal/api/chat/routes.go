package chat

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers chat routes on the /api router
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/chat", h.Chat)
	r.Get("/tools", h.Tools)
}
