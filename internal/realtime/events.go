package realtime

import "encoding/json"

// Envelope is the wire frame for both directions: a named event plus an
// event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Outbound event names owned by this package. Message and workflow events
// reuse the names of the services that raise them.
const (
	EventNotification     = "notification"
	EventUserOnline       = "user_online"
	EventUserOffline      = "user_offline"
	EventOnlineUsers      = "online_users"
	EventAttendanceUpdate = "attendance_update"
)

// Inbound event names a connected session may raise.
const (
	ActionSendMessage = "send_message"
	ActionTyping      = "typing"
	ActionMarkRead    = "mark_read"
)

type sendMessagePayload struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

type typingPayload struct {
	ReceiverID string `json:"receiverId"`
	IsTyping   bool   `json:"isTyping"`
}

type markReadPayload struct {
	SenderID string `json:"senderId"`
}

type presencePayload struct {
	UserID string `json:"userId"`
}

func encode(event string, data interface{}) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: raw})
}
