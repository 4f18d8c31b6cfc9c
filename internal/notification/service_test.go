package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal/core/events"
	"github.com/frahmantamala/hr-portal/internal/notification"
)

func TestNotification(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Notification Suite")
}

type mockNotificationRepository struct {
	rows        []*notification.Notification
	createError error
	nextID      int
}

func newMockNotificationRepository() *mockNotificationRepository {
	return &mockNotificationRepository{nextID: 1}
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	if m.createError != nil {
		return m.createError
	}
	n.ID = string(rune('0' + m.nextID))
	m.nextID++
	n.CreatedAt = time.Now()
	m.rows = append(m.rows, n)
	return nil
}

func (m *mockNotificationRepository) ListForUser(ctx context.Context, userID string) ([]*notification.Notification, error) {
	out := []*notification.Notification{}
	for i := len(m.rows) - 1; i >= 0; i-- {
		if m.rows[i].UserID == userID {
			out = append(out, m.rows[i])
		}
		if len(out) == notification.ListLimit {
			break
		}
	}
	return out, nil
}

func (m *mockNotificationRepository) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, row := range m.rows {
		if row.UserID == userID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	for _, row := range m.rows {
		if row.ID == id && row.UserID == userID {
			row.IsRead = true
		}
	}
	return nil
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	for _, row := range m.rows {
		if row.UserID == userID {
			row.IsRead = true
		}
	}
	return nil
}

type mockPublisher struct {
	published []events.Event
}

func (m *mockPublisher) Publish(ctx context.Context, event events.Event) {
	m.published = append(m.published, event)
}

var _ = Describe("NotificationService", func() {
	var (
		svc  *notification.Service
		repo *mockNotificationRepository
		bus  *mockPublisher
		ctx  context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockNotificationRepository()
		bus = &mockPublisher{}
		svc = notification.NewService(repo, bus, logger)
	})

	Describe("Notify", func() {
		It("stores the row and publishes the realtime event", func() {
			svc.Notify(ctx, "user-dewi", "Leave Fully Approved", "Enjoy your time off!", "leave", "/leaves")

			Expect(repo.rows).To(HaveLen(1))
			Expect(repo.rows[0].IsRead).To(BeFalse())
			Expect(bus.published).To(HaveLen(1))
			Expect(bus.published[0].EventType()).To(Equal(events.TypeNotificationCreated))

			payload := bus.published[0].Payload().(events.NotificationPayload)
			Expect(payload.UserID).To(Equal("user-dewi"))
			Expect(payload.Title).To(Equal("Leave Fully Approved"))
			Expect(payload.Link).To(Equal("/leaves"))
		})

		It("swallows store failures without publishing", func() {
			repo.createError = errors.New("db down")

			svc.Notify(ctx, "user-dewi", "Title", "Message", "leave", "")

			Expect(repo.rows).To(BeEmpty())
			Expect(bus.published).To(BeEmpty())
		})
	})

	Describe("MarkRead", func() {
		BeforeEach(func() {
			svc.Notify(ctx, "user-dewi", "A", "a", "leave", "")
			svc.Notify(ctx, "user-budi", "B", "b", "leave", "")
		})

		It("is scoped to the owner", func() {
			other := repo.rows[1]
			Expect(svc.MarkRead(ctx, other.ID, "user-dewi")).To(Succeed())
			Expect(other.IsRead).To(BeFalse())
		})

		It("is idempotent", func() {
			own := repo.rows[0]
			Expect(svc.MarkRead(ctx, own.ID, "user-dewi")).To(Succeed())
			Expect(svc.MarkRead(ctx, own.ID, "user-dewi")).To(Succeed())
			Expect(own.IsRead).To(BeTrue())
		})
	})

	Describe("MarkAllRead", func() {
		It("clears the unread count for one user only", func() {
			svc.Notify(ctx, "user-dewi", "A", "a", "leave", "")
			svc.Notify(ctx, "user-dewi", "B", "b", "leave", "")
			svc.Notify(ctx, "user-budi", "C", "c", "leave", "")

			Expect(svc.MarkAllRead(ctx, "user-dewi")).To(Succeed())

			count, _ := svc.UnreadCount(ctx, "user-dewi")
			Expect(count).To(BeZero())
			count, _ = svc.UnreadCount(ctx, "user-budi")
			Expect(count).To(Equal(int64(1)))
		})
	})
})
