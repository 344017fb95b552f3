// AngelaMos | 2026
// handler.go

package assistant

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
)

type ChatRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

type ChatResponse struct {
	Reply string `json:"reply"`
}

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, limit func(http.Handler) http.Handler,
) {
	r.Route("/ai", func(r chi.Router) {
		r.Use(authenticator)
		r.With(limit).Post("/chat", h.Chat)
	})
}

func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "message is required")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "message is required")
		return
	}

	reply, err := h.service.Chat(r.Context(), req.Message)
	if err != nil {
		if errors.Is(err, core.ErrInvalidInput) {
			core.BadRequest(w, "message is required")
			return
		}
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ChatResponse{Reply: reply})
}
