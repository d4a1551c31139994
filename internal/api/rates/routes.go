package rates

import (
	"github.com/go-chi/chi/v5"
)

// RegisterRoutes registers rate report routes on the /api router
func RegisterRoutes(r chi.Router, h *Handler) {
	r.Get("/rates/export", h.Export)
}
