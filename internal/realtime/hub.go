package realtime

import (
	"log/slog"
	"sync"
)

// Hub tracks live sessions grouped by principal. A principal may hold
// several concurrent sessions (multiple tabs); presence counts sessions, and
// the online event fires only when the count goes from zero to one. The
// offline event fires on every disconnect, so observers treat it as a hint
// and reconcile against the online list.
type Hub struct {
	mu       sync.RWMutex
	sessions map[string]map[*Client]struct{}
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		sessions: make(map[string]map[*Client]struct{}),
		logger:   logger,
	}
}

// register adds the session and reports whether it is the principal's first.
func (h *Hub) register(c *Client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[c.userID]
	if !ok {
		set = make(map[*Client]struct{})
		h.sessions[c.userID] = set
	}
	set[c] = struct{}{}
	return len(set) == 1
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.sessions[c.userID]
	if !ok {
		return
	}
	if _, ok := set[c]; !ok {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.sessions, c.userID)
	}
}

// EmitToUser delivers an event to every live session of one principal.
// Offline principals and slow sessions are dropped silently.
func (h *Hub) EmitToUser(userID, event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		h.logger.Error("failed to encode realtime event", "error", err, "event", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.sessions[userID] {
		c.trySend(frame)
	}
}

// Broadcast delivers an event to every live session.
func (h *Hub) Broadcast(event string, data interface{}) {
	frame, err := encode(event, data)
	if err != nil {
		h.logger.Error("failed to encode realtime event", "error", err, "event", event)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, set := range h.sessions {
		for c := range set {
			c.trySend(frame)
		}
	}
}

// OnlineUserIDs snapshots the principals with at least one live session.
func (h *Hub) OnlineUserIDs() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()

	ids := make([]string, 0, len(h.sessions))
	for id := range h.sessions {
		ids = append(ids, id)
	}
	return ids
}

// IsOnline reports whether the principal has any live session.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions[userID]) > 0
}
