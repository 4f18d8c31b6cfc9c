package attendance

import (
	"net/http"

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

func (h *Handler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p *internal.Principal) (interface{}, error) {
		return h.Service.CheckIn(r.Context(), p)
	})
}

func (h *Handler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p *internal.Principal) (interface{}, error) {
		return h.Service.CheckOut(r.Context(), p)
	})
}

func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p *internal.Principal) (interface{}, error) {
		return h.Service.History(r.Context(), p)
	})
}

func (h *Handler) Today(w http.ResponseWriter, r *http.Request) {
	h.withPrincipal(w, r, func(p *internal.Principal) (interface{}, error) {
		return h.Service.Today(r.Context(), p)
	})
}

func (h *Handler) withPrincipal(w http.ResponseWriter, r *http.Request, fn func(p *internal.Principal) (interface{}, error)) {
	principal, ok := internal.PrincipalFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	out, err := fn(principal)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, out)
}
