// AngelaMos | 2026
// handler.go

package listing

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/neighborly/internal/core"
	"github.com/carterperez-dev/neighborly/internal/middleware"
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

// RegisterRoutes mounts /listings. nested routes are attached under
// /listings/{listingID}.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
	nested ...func(r chi.Router),
) {
	r.Route("/listings", func(r chi.Router) {
		r.Get("/", h.Search)
		r.With(authenticator, middleware.RequireRole(core.RoleProvider)).
			Post("/", h.Create)

		r.Route("/{listingID}", func(r chi.Router) {
			r.Get("/", h.Get)
			r.With(authenticator).Put("/", h.Update)
			r.With(authenticator).Delete("/", h.Delete)

			for _, mount := range nested {
				mount(r)
			}
		})
	})
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	params := SearchParams{
		PageParams:    core.PageFromRequest(r),
		CommunityID:   q.Get("community"),
		CategoryID:    q.Get("category"),
		SubCategoryID: q.Get("sub_category"),
		ProviderID:    q.Get("provider"),
		Active:        core.QueryBool(r, "active"),
		MinRating:     core.QueryFloat(r, "min_rating"),
		MaxRating:     core.QueryFloat(r, "max_rating"),
		Query:         strings.TrimSpace(q.Get("q")),
		Sort:          q.Get("sort"),
	}
	if params.Active == nil {
		active := true
		params.Active = &active
	}
	if tags := q.Get("tags"); tags != "" {
		for _, tag := range strings.Split(tags, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				params.Tags = append(params.Tags, tag)
			}
		}
	}

	listings, total, err := h.service.Search(r.Context(), params)
	if err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.Paginated(w, ToResponseList(listings), params.Page, params.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "listingID"))
	if err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.OK(w, ToDetailResponse(detail))
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

	l, err := h.service.Create(r.Context(), middleware.GetCaller(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.Created(w, ToResponse(l))
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

	l, err := h.service.Update(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "listingID"),
		req,
	)
	if err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.OK(w, ToResponse(l))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "listingID"),
	)
	if err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.NoContent(w)
}
