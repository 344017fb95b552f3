// AngelaMos | 2026
// handler.go

package order

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/authz"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/middleware"
)

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

// RegisterRoutes mounts the order lifecycle. submitLimit guards only order
// submission.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, submitLimit func(http.Handler) http.Handler,
) {
	customers := middleware.RequireRole(authz.Customers...)
	kitchen := middleware.RequireRole(authz.Kitchen...)

	r.Route("/orders", func(r chi.Router) {
		r.Use(authenticator)

		r.With(customers, submitLimit).Post("/", h.Submit)
		r.With(kitchen).Get("/", h.List)
		r.With(customers).Get("/mine", h.ListMine)
		r.Get("/{orderID}", h.Get)
		r.With(kitchen).Put("/{orderID}/complete", h.Complete)
	})
}

func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "items required")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, "items required")
		return
	}

	o, err := h.service.Submit(r.Context(), middleware.GetPrincipal(r.Context()), req.Items)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToOrderResponse(o))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.List(r.Context(), Status(r.URL.Query().Get("status")))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.ListMine(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOrderResponseList(orders))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "orderID")
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	o, err := h.service.Get(r.Context(), middleware.GetPrincipal(r.Context()), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToOrderResponse(o))
}

func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "orderID")
	if err != nil {
		core.BadRequest(w, "invalid order id")
		return
	}

	update, err := h.service.Complete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, update)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "order")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "forbidden")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "authentication required")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "items required")
	default:
		core.InternalServerError(w, err)
	}
}
