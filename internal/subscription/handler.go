// AngelaMos | 2026
// handler.go

package subscription

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
	r.Route("/subscriptions", func(r chi.Router) {
		r.Use(authenticator)
		r.Use(middleware.RequireRole(core.RoleProvider))

		r.Post("/", h.Create)
		r.Get("/current", h.GetCurrent)
		r.Post("/verify", h.Verify)
		r.Put("/cancel", h.Cancel)
	})
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

	result, err := h.service.Create(r.Context(), middleware.GetCaller(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "subscription")
		return
	}

	core.Created(w, CreateResponse{
		Subscription: h.render(result.Subscription),
		Order:        result.Order,
	})
}

func (h *Handler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	sub, err := h.service.GetCurrent(r.Context(), middleware.GetCaller(r.Context()))
	if err != nil {
		core.WriteError(w, err, "subscription")
		return
	}

	core.OK(w, h.render(sub))
}

func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.VerifyPayment(
		r.Context(),
		middleware.GetCaller(r.Context()),
		req,
	)
	if err != nil {
		core.WriteError(w, err, "subscription")
		return
	}

	core.OK(w, h.render(sub))
}

func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req CancelRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			core.BadRequest(w, "invalid request body")
			return
		}
	}

	if err := h.validator.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	sub, err := h.service.Cancel(r.Context(), middleware.GetCaller(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "subscription")
		return
	}

	core.OK(w, h.render(sub))
}

func (h *Handler) render(s *Subscription) SubscriptionResponse {
	return ToResponse(s, h.service.Now(), h.service.ExpiryWarning())
}
