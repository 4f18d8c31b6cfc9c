package leave

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/frahmantamala/hr-portal/internal"
	"github.com/frahmantamala/hr-portal/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		BaseHandler: transport.NewBaseHandler(nil),
		Service:     service,
	}
}

// Apply godoc
// @Summary Apply for leave
// @Tags leaves
// @Accept json
// @Produce json
// @Param request body ApplyDTO true "leave application"
// @Success 201 {object} Leave
// @Router /leaves [post]
func (h *Handler) Apply(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var dto ApplyDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	l, err := h.Service.Apply(r.Context(), principal, dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, l)
}

// List godoc
// @Summary List leave requests visible to the caller
// @Tags leaves
// @Produce json
// @Success 200 {array} View
// @Router /leaves [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	views, err := h.Service.List(r.Context(), principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, views)
}

func (h *Handler) ManagerApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.ManagerApprove)
}

func (h *Handler) ManagerReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.ManagerReject)
}

func (h *Handler) HRApprove(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.HRApprove)
}

func (h *Handler) HRReject(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, h.Service.HRReject)
}

type transitionFunc func(ctx context.Context, principal *internal.Principal, id string) (*Leave, error)

func (h *Handler) review(w http.ResponseWriter, r *http.Request, transition transitionFunc) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	l, err := transition(r.Context(), principal, chi.URLParam(r, "id"))
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, l)
}
