// AngelaMos | 2026
// handler.go

package menu

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/core"
	"github.com/huanhuanli370-gif/smart-cafeteria-system/internal/middleware"
)

const defaultMaxUploadBytes = 5 << 20

type Handler struct {
	service        *Service
	validator      *validator.Validate
	maxUploadBytes int64
}

func NewHandler(service *Service, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	return &Handler{
		service:        service,
		validator:      validator.New(validator.WithRequiredStructEnabled()),
		maxUploadBytes: maxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, kitchenOnly func(http.Handler) http.Handler,
) {
	r.Route("/menus", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/trending", h.Trending)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Get("/recommendations", h.Recommendations)
			r.Get("/reorder", h.Reorder)
		})

		r.Group(func(r chi.Router) {
			r.Use(authenticator)
			r.Use(kitchenOnly)
			r.Post("/", h.Create)
			r.Put("/{menuID}", h.Update)
			r.Delete("/{menuID}", h.Delete)
			if h.service.ImagesEnabled() {
				r.Post("/{menuID}/image", h.UploadImage)
			}
		})
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToMenuResponseList(items))
}

func (h *Handler) Trending(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Trending(r.Context())
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, toRankedResponseList(items))
}

func (h *Handler) Recommendations(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Recommendations(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToMenuResponseList(items))
}

func (h *Handler) Reorder(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Reorderable(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, ToMenuResponseList(items))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.Created(w, ToMenuResponse(item))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "menuID")
	if err != nil {
		core.BadRequest(w, "invalid menu id")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	item, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToMenuResponse(item))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "menuID")
	if err != nil {
		core.BadRequest(w, "invalid menu id")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, map[string]int64{"id": id})
}

func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "menuID")
	if err != nil {
		core.BadRequest(w, "invalid menu id")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		core.BadRequest(w, "image too large or malformed upload")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		core.BadRequest(w, "image file is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	item, err := h.service.UploadImage(
		r.Context(), id, header.Filename, contentType, file, header.Size,
	)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, ToMenuResponse(item))
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (MenuRequest, bool) {
	var req MenuRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "name and a valid price are required")
		return req, false
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return req, false
	}

	return req, true
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "menu item")
	case errors.Is(err, core.ErrInvalidInput):
		core.BadRequest(w, "name and a valid non-negative price are required")
	case errors.Is(err, core.ErrUnavailable):
		core.JSONError(w, core.UnavailableError("image storage is not configured"))
	default:
		core.InternalServerError(w, err)
	}
}
