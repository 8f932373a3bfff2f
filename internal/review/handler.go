// AngelaMos | 2026
// handler.go

package review

import (
	"encoding/json"
	"net/http"

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

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/reviews/{reviewID}", func(r chi.Router) {
		r.Get("/", h.Get)

		r.Group(func(r chi.Router) {
			r.Use(authenticator)

			r.Put("/", h.Update)
			r.Delete("/", h.Delete)
			r.With(middleware.RequireRole(core.RoleProvider)).
				Put("/response", h.Respond)
			r.Put("/report", h.Report)
		})
	})
}

// ListingRoutes returns the routes mounted under /listings/{listingID}.
// Role checks for creation happen in the service so a missing listing is
// reported before the caller's role.
func (h *Handler) ListingRoutes(
	authenticator func(http.Handler) http.Handler,
) func(r chi.Router) {
	return func(r chi.Router) {
		r.Get("/reviews", h.ListForListing)
		r.With(authenticator).Post("/reviews", h.Create)
	}
}

func (h *Handler) RegisterAdminRoutes(
	r chi.Router,
	authenticator, adminOnly func(http.Handler) http.Handler,
) {
	r.Route("/admin/reviews", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(adminOnly)

		r.Get("/reported", h.ListReported)
		r.Put("/{reviewID}/dismiss", h.Dismiss)
	})
}

func (h *Handler) ListForListing(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	reviews, total, err := h.service.ListForListing(
		r.Context(),
		chi.URLParam(r, "listingID"),
		page,
	)
	if err != nil {
		core.WriteError(w, err, "listing")
		return
	}

	core.Paginated(w, ToResponseList(reviews), page.Page, page.PageSize, total)
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

	rev, err := h.service.Create(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "listingID"),
		req,
	)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.Created(w, ToResponse(rev))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	rev, err := h.service.Get(r.Context(), chi.URLParam(r, "reviewID"))
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.OK(w, ToResponse(rev))
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

	rev, err := h.service.Update(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "reviewID"),
		req,
	)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.OK(w, ToResponse(rev))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "reviewID"),
	)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	rev, err := h.service.Respond(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "reviewID"),
		req,
	)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.OK(w, ToResponse(rev))
}

func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	var req ReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	rev, err := h.service.Report(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "reviewID"),
		req,
	)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.OK(w, ToResponse(rev))
}

func (h *Handler) ListReported(w http.ResponseWriter, r *http.Request) {
	page := core.PageFromRequest(r)

	reviews, total, err := h.service.ListReported(r.Context(), page)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.Paginated(w, ToResponseList(reviews), page.Page, page.PageSize, total)
}

func (h *Handler) Dismiss(w http.ResponseWriter, r *http.Request) {
	rev, err := h.service.Dismiss(
		r.Context(),
		middleware.GetCaller(r.Context()),
		chi.URLParam(r, "reviewID"),
	)
	if err != nil {
		core.WriteError(w, err, "review")
		return
	}

	core.OK(w, ToResponse(rev))
}
