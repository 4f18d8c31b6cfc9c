package realtime

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal/core/events"
)

// EventHandler bridges workflow events onto live sessions. Registration is
// one way: services publish durable facts, the bridge pushes them out, and a
// push that finds no session is simply dropped.
type EventHandler struct {
	hub    *Hub
	logger *slog.Logger
}

func NewEventHandler(hub *Hub, logger *slog.Logger) *EventHandler {
	return &EventHandler{hub: hub, logger: logger}
}

func (h *EventHandler) RegisterHandlers(bus *events.EventBus) {
	bus.Subscribe(events.TypeNotificationCreated, h.handleNotificationCreated)
	bus.Subscribe(events.TypeAttendanceUpdated, h.handleAttendanceUpdated)
}

func (h *EventHandler) handleNotificationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(events.NotificationPayload)
	if !ok {
		h.logger.Error("unexpected payload for notification event", "event_id", event.EventID())
		return nil
	}
	h.hub.EmitToUser(payload.UserID, EventNotification, payload)
	return nil
}

func (h *EventHandler) handleAttendanceUpdated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload().(events.AttendancePayload)
	if !ok {
		h.logger.Error("unexpected payload for attendance event", "event_id", event.EventID())
		return nil
	}
	h.hub.Broadcast(EventAttendanceUpdate, payload)
	return nil
}
