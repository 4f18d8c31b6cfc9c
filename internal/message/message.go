package message

import (
	"strings"
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

// Message is a durable direct message between two principals. Persistence
// always precedes the realtime push; a missed push only delays delivery
// until the receiver refetches the conversation.
type Message struct {
	ID         string    `json:"id" db:"id"`
	SenderID   string    `json:"senderId" db:"sender_id"`
	ReceiverID string    `json:"receiverId" db:"receiver_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"isRead" db:"is_read"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// View carries the sender's display name and avatar for wire delivery and
// listings.
type View struct {
	Message
	SenderName   string  `json:"senderName" db:"sender_name"`
	SenderAvatar *string `json:"senderAvatar,omitempty" db:"sender_avatar"`
}

// Contact is one row of the conversation sidebar: every other active
// principal, with the latest exchanged message and the caller's unread count.
type Contact struct {
	UserID      string     `json:"userId" db:"user_id"`
	Name        string     `json:"name" db:"name"`
	Role        string     `json:"role" db:"role"`
	Avatar      *string    `json:"avatar,omitempty" db:"avatar"`
	LastMessage *string    `json:"lastMessage,omitempty" db:"last_message"`
	LastAt      *time.Time `json:"lastMessageAt,omitempty" db:"last_at"`
	UnreadCount int        `json:"unreadCount" db:"unread_count"`
}

type SendDTO struct {
	ReceiverID string `json:"receiverId"`
	Content    string `json:"content"`
}

func (d SendDTO) Validate() error {
	if d.ReceiverID == "" {
		return internal.NewValidationError("receiverId is required", internal.ErrCodeValidationFailed)
	}
	if strings.TrimSpace(d.Content) == "" {
		return internal.NewValidationError("message content cannot be empty", internal.ErrCodeValidationFailed)
	}
	return nil
}
