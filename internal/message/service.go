package message

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal/user"
)

// Wire events delivered to connected sessions. The sender echo lets the
// sending client reconcile its optimistic append with the stored row.
const (
	EventNewMessage   = "new_message"
	EventMessageSent  = "message_sent"
	EventUserTyping   = "user_typing"
	EventMessagesRead = "messages_read"
)

type Repository interface {
	Create(ctx context.Context, m *Message) error
	GetView(ctx context.Context, id string) (*View, error)
	Conversation(ctx context.Context, userID, otherID string) ([]*View, error)
	Contacts(ctx context.Context, userID string) ([]*Contact, error)
	MarkConversationRead(ctx context.Context, userID, otherID string) error
	UnreadTotal(ctx context.Context, userID string) (int64, error)
}

type UserDirectory interface {
	GetByID(ctx context.Context, id string) (*user.User, error)
}

// Pusher delivers a wire event to every live session of one principal.
// Delivery to an offline principal is silently dropped.
type Pusher interface {
	EmitToUser(userID, event string, data interface{})
}

type Service struct {
	repo   Repository
	users  UserDirectory
	pusher Pusher
	logger *slog.Logger
}

func NewService(repo Repository, users UserDirectory, pusher Pusher, logger *slog.Logger) *Service {
	return &Service{repo: repo, users: users, pusher: pusher, logger: logger}
}

// Send persists the message, then pushes it to the receiver and echoes the
// stored row back to the sender. The push happens only after the row is
// durable; an offline receiver sees the message on their next fetch.
func (s *Service) Send(ctx context.Context, senderID string, dto SendDTO) (*View, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.users.GetByID(ctx, dto.ReceiverID); err != nil {
		return nil, err
	}

	m := &Message{
		SenderID:   senderID,
		ReceiverID: dto.ReceiverID,
		Content:    dto.Content,
	}
	if err := s.repo.Create(ctx, m); err != nil {
		s.logger.Error("failed to store message", "error", err, "sender_id", senderID)
		return nil, err
	}

	v, err := s.repo.GetView(ctx, m.ID)
	if err != nil {
		// Row is stored; fall back to the bare message for delivery.
		s.logger.Error("failed to load message view", "error", err, "message_id", m.ID)
		v = &View{Message: *m}
	}

	s.pusher.EmitToUser(dto.ReceiverID, EventNewMessage, v)
	s.pusher.EmitToUser(senderID, EventMessageSent, v)
	return v, nil
}

// Conversation returns the history with the other party and marks their
// messages read as a side effect, notifying them their messages were seen.
func (s *Service) Conversation(ctx context.Context, userID, otherID string) ([]*View, error) {
	rows, err := s.repo.Conversation(ctx, userID, otherID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkConversationRead(ctx, userID, otherID); err != nil {
		s.logger.Error("failed to mark conversation read", "error", err, "user_id", userID)
	} else {
		s.pusher.EmitToUser(otherID, EventMessagesRead, map[string]string{"readBy": userID})
	}
	return rows, nil
}

func (s *Service) Contacts(ctx context.Context, userID string) ([]*Contact, error) {
	return s.repo.Contacts(ctx, userID)
}

func (s *Service) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadTotal(ctx, userID)
}

// MarkConversationRead is the explicit read receipt used by the realtime
// channel; the other party learns their messages were seen.
func (s *Service) MarkConversationRead(ctx context.Context, userID, otherID string) error {
	if err := s.repo.MarkConversationRead(ctx, userID, otherID); err != nil {
		return err
	}
	s.pusher.EmitToUser(otherID, EventMessagesRead, map[string]string{"readBy": userID})
	return nil
}

// Typing relays a typing indicator to the receiver. Nothing is persisted.
func (s *Service) Typing(senderID, receiverID string, isTyping bool) {
	s.pusher.EmitToUser(receiverID, EventUserTyping, map[string]interface{}{
		"userId":   senderID,
		"isTyping": isTyping,
	})
}
