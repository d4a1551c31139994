package knowledge

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers document index routes on the /api router
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Post("/set-url", h.SetURL)
	r.Post("/clear-vectorstore", h.Clear)
	r.Get("/vectorstore-status", h.Status)
}
