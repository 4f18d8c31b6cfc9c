package auth

import (
	"encoding/json"
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

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var dto LoginDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.Service.Login(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, resp)
}

// AuthMiddleware verifies the bearer token and injects the resulting principal
// into the request context. Handlers downstream never see the token itself.
func (h *Handler) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := h.ExtractTokenFromHeader(r)
		if token == "" {
			h.WriteError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := h.Service.ValidateAccessToken(token)
		if err != nil {
			h.HandleServiceError(w, err)
			return
		}

		ctx := internal.ContextWithPrincipal(r.Context(), claims.Principal())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// PrincipalFromRequest authenticates a realtime connect. The token is taken
// from the Authorization header or, for browser websocket clients that cannot
// set headers, the `token` query parameter.
func (h *Handler) PrincipalFromRequest(r *http.Request) (*internal.Principal, error) {
	token := h.ExtractTokenFromHeader(r)
	if token == "" {
		token = r.URL.Query().Get("token")
	}
	if token == "" {
		return nil, internal.ErrUnauthenticated
	}

	claims, err := h.Service.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	return claims.Principal(), nil
}
