package events

import (
	"time"

	"github.com/google/uuid"
)

// Event types published by the workflow layer and consumed by the realtime
// pusher. Payloads mirror the wire events delivered to connected sessions.
const (
	TypeNotificationCreated = "notification.created"
	TypeAttendanceUpdated   = "attendance.updated"
)

// NotificationPayload is pushed to the target principal's room as the
// `notification` wire event.
type NotificationPayload struct {
	UserID  string `json:"userId"`
	Title   string `json:"title"`
	Message string `json:"message"`
	Type    string `json:"type"`
	Link    string `json:"link,omitempty"`
}

// AttendancePayload is pushed to the acting principal's room and broadcast to
// every session as the `attendance_update` wire event.
type AttendancePayload struct {
	UserID     string     `json:"userId"`
	EmployeeID string     `json:"employeeId"`
	Date       string     `json:"date"`
	CheckIn    *time.Time `json:"checkIn,omitempty"`
	CheckOut   *time.Time `json:"checkOut,omitempty"`
	Status     string     `json:"status"`
}

func NewNotificationCreated(p NotificationPayload) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TypeNotificationCreated,
		Timestamp: time.Now(),
		Data:      p,
	}
}

func NewAttendanceUpdated(p AttendancePayload) BaseEvent {
	return BaseEvent{
		ID:        uuid.NewString(),
		Type:      TypeAttendanceUpdated,
		Timestamp: time.Now(),
		Data:      p,
	}
}
