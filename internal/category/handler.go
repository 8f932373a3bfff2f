// AngelaMos | 2026
// handler.go

package category

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/neighborly/internal/core"
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

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/{categoryID}", h.Get)
	})
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/categories", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Post("/", h.Create)
		r.Put("/{categoryID}", h.Update)
		r.Delete("/{categoryID}", h.Delete)
	})
}

// List returns root categories unless a parent is given or all=true.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	params := ListParams{
		ParentID:   r.URL.Query().Get("parent"),
		ActiveOnly: true,
	}
	if all := core.QueryBool(r, "all"); params.ParentID == "" && (all == nil || !*all) {
		params.RootOnly = true
	}
	if inactive := core.QueryBool(r, "include_inactive"); inactive != nil && *inactive {
		params.ActiveOnly = false
	}

	categories, err := h.service.List(r.Context(), params)
	if err != nil {
		core.WriteError(w, err, "category")
		return
	}

	core.OK(w, ToResponseList(categories))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(r.Context(), chi.URLParam(r, "categoryID"))
	if err != nil {
		core.WriteError(w, err, "category")
		return
	}

	core.OK(w, ToResponse(c))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.Create(r.Context(), req)
	if err != nil {
		core.WriteError(w, err, "category")
		return
	}

	core.Created(w, ToResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	c, err := h.service.Update(r.Context(), chi.URLParam(r, "categoryID"), req)
	if err != nil {
		core.WriteError(w, err, "category")
		return
	}

	core.OK(w, ToResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "categoryID")); err != nil {
		core.WriteError(w, err, "category")
		return
	}

	core.NoContent(w)
}
