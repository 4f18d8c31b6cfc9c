package realtime

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/frahmantamala/hr-portal/internal"
)

// Authenticator resolves the connecting principal from the upgrade request;
// websocket clients pass the bearer token as a query parameter.
type Authenticator interface {
	PrincipalFromRequest(r *http.Request) (*internal.Principal, error)
}

type Handler struct {
	hub      *Hub
	auth     Authenticator
	messages MessageGateway
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewHandler(hub *Hub, auth Authenticator, messages MessageGateway, allowedOrigins []string, logger *slog.Logger) *Handler {
	return &Handler{
		hub:      hub,
		auth:     auth,
		messages: messages,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if a == "*" || a == origin {
				return true
			}
		}
		return false
	}
}

// Serve authenticates and upgrades the connection, announces presence, and
// runs the session pumps until the peer goes away.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	principal, err := h.auth.PrincipalFromRequest(r)
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err, "user_id", principal.ID)
		return
	}

	c := newClient(h.hub, conn, principal.ID, h.messages, h.logger)
	first := h.hub.register(c)

	h.logger.Info("realtime session connected", "user_id", principal.ID, "first_session", first)

	// New sessions get the current presence snapshot right away.
	c.trySend(mustEncode(EventOnlineUsers, h.hub.OnlineUserIDs()))
	if first {
		h.hub.Broadcast(EventUserOnline, presencePayload{UserID: principal.ID})
	}

	// The request context dies once this handler returns; session work uses
	// its own lifetime.
	go c.writePump()
	go c.readPump(context.Background())
}

func mustEncode(event string, data interface{}) []byte {
	frame, err := encode(event, data)
	if err != nil {
		return nil
	}
	return frame
}
