package notification

import (
	"context"
	"log/slog"

	"github.com/frahmantamala/hr-portal/internal/core/events"
)

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	ListForUser(ctx context.Context, userID string) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event)
}

type Service struct {
	repo   Repository
	bus    EventPublisher
	logger *slog.Logger
}

func NewService(repo Repository, bus EventPublisher, logger *slog.Logger) *Service {
	return &Service{repo: repo, bus: bus, logger: logger}
}

// Notify writes the outbox row and then hands the payload to the event bus
// for realtime delivery. A failed write is logged and swallowed: workflow
// transitions must never fail because a notification could not be stored.
func (s *Service) Notify(ctx context.Context, userID, title, message, category, link string) {
	n := &Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    category,
		Link:    link,
	}
	if err := s.repo.Create(ctx, n); err != nil {
		s.logger.Error("failed to store notification",
			"error", err,
			"user_id", userID,
			"title", title)
		return
	}

	s.bus.Publish(ctx, events.NewNotificationCreated(events.NotificationPayload{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    category,
		Link:    link,
	}))
}

func (s *Service) List(ctx context.Context, userID string) ([]*Notification, error) {
	return s.repo.ListForUser(ctx, userID)
}

func (s *Service) UnreadCount(ctx context.Context, userID string) (int64, error) {
	return s.repo.UnreadCount(ctx, userID)
}

func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
