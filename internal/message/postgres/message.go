package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/frahmantamala/hr-portal/internal/message"
)

type MessageRepository struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(ctx context.Context, m *message.Message) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		INSERT INTO messages (id, sender_id, receiver_id, content, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`),
		m.ID, m.SenderID, m.ReceiverID, m.Content, m.IsRead, m.CreatedAt)
	return err
}

func (r *MessageRepository) GetView(ctx context.Context, id string) (*message.View, error) {
	var v message.View
	err := r.db.GetContext(ctx, &v, r.db.Rebind(`
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at,
		       u.first_name || ' ' || u.last_name AS sender_name, u.avatar AS sender_avatar
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.id = ?`), id)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Conversation returns the full two-party history in chronological order.
func (r *MessageRepository) Conversation(ctx context.Context, userID, otherID string) ([]*message.View, error) {
	rows := []*message.View{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT m.id, m.sender_id, m.receiver_id, m.content, m.is_read, m.created_at,
		       u.first_name || ' ' || u.last_name AS sender_name, u.avatar AS sender_avatar
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE (m.sender_id = ? AND m.receiver_id = ?)
		   OR (m.sender_id = ? AND m.receiver_id = ?)
		ORDER BY m.created_at ASC`),
		userID, otherID, otherID, userID)
	return rows, err
}

// Contacts lists every other active principal with the most recent message
// exchanged with the caller and how many of their messages are still unread.
func (r *MessageRepository) Contacts(ctx context.Context, userID string) ([]*message.Contact, error) {
	rows := []*message.Contact{}
	err := r.db.SelectContext(ctx, &rows, r.db.Rebind(`
		SELECT u.id AS user_id,
		       u.first_name || ' ' || u.last_name AS name,
		       u.role,
		       u.avatar,
		       (SELECT m.content FROM messages m
		        WHERE (m.sender_id = u.id AND m.receiver_id = ?)
		           OR (m.sender_id = ? AND m.receiver_id = u.id)
		        ORDER BY m.created_at DESC LIMIT 1) AS last_message,
		       (SELECT m.created_at FROM messages m
		        WHERE (m.sender_id = u.id AND m.receiver_id = ?)
		           OR (m.sender_id = ? AND m.receiver_id = u.id)
		        ORDER BY m.created_at DESC LIMIT 1) AS last_at,
		       (SELECT COUNT(*) FROM messages m
		        WHERE m.sender_id = u.id AND m.receiver_id = ? AND m.is_read = FALSE) AS unread_count
		FROM users u
		WHERE u.id <> ? AND u.is_active = TRUE
		ORDER BY last_at DESC NULLS LAST, name ASC`),
		userID, userID, userID, userID, userID, userID)
	return rows, err
}

// MarkConversationRead flips every unread message sent by otherID to userID.
// It is scoped to the receiving side so a sender cannot mark their own
// outgoing messages read on the other end.
func (r *MessageRepository) MarkConversationRead(ctx context.Context, userID, otherID string) error {
	_, err := r.db.ExecContext(ctx, r.db.Rebind(`
		UPDATE messages SET is_read = TRUE
		WHERE sender_id = ? AND receiver_id = ? AND is_read = FALSE`),
		otherID, userID)
	return err
}

func (r *MessageRepository) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, r.db.Rebind(`
		SELECT COUNT(*) FROM messages WHERE receiver_id = ? AND is_read = FALSE`),
		userID)
	return count, err
}
