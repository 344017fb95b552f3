// AngelaMos | 2026
// handler.go

package statistics

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, kitchenOnly func(http.Handler) http.Handler,
) {
	r.Route("/statistics", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(kitchenOnly)
		r.Get("/summary", h.Summary)
	})
}

func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, summary)
}
