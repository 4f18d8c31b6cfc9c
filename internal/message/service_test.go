package message_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/hr-portal/internal/message"
	"github.com/frahmantamala/hr-portal/internal/user"
)

func TestMessage(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Message Suite")
}

type mockMessageRepository struct {
	messages    []*message.Message
	senderNames map[string]string
	createError error
	nextID      int
}

func newMockMessageRepository() *mockMessageRepository {
	return &mockMessageRepository{senderNames: make(map[string]string), nextID: 1}
}

func (m *mockMessageRepository) Create(ctx context.Context, msg *message.Message) error {
	if m.createError != nil {
		return m.createError
	}
	msg.ID = string(rune('0' + m.nextID))
	m.nextID++
	msg.CreatedAt = time.Now()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockMessageRepository) GetView(ctx context.Context, id string) (*message.View, error) {
	for _, msg := range m.messages {
		if msg.ID == id {
			return &message.View{Message: *msg, SenderName: m.senderNames[msg.SenderID]}, nil
		}
	}
	return nil, errors.New("not found")
}

func (m *mockMessageRepository) Conversation(ctx context.Context, userID, otherID string) ([]*message.View, error) {
	out := []*message.View{}
	for _, msg := range m.messages {
		if (msg.SenderID == userID && msg.ReceiverID == otherID) ||
			(msg.SenderID == otherID && msg.ReceiverID == userID) {
			out = append(out, &message.View{Message: *msg, SenderName: m.senderNames[msg.SenderID]})
		}
	}
	return out, nil
}

func (m *mockMessageRepository) Contacts(ctx context.Context, userID string) ([]*message.Contact, error) {
	return []*message.Contact{}, nil
}

func (m *mockMessageRepository) MarkConversationRead(ctx context.Context, userID, otherID string) error {
	for _, msg := range m.messages {
		if msg.SenderID == otherID && msg.ReceiverID == userID {
			msg.IsRead = true
		}
	}
	return nil
}

func (m *mockMessageRepository) UnreadTotal(ctx context.Context, userID string) (int64, error) {
	var n int64
	for _, msg := range m.messages {
		if msg.ReceiverID == userID && !msg.IsRead {
			n++
		}
	}
	return n, nil
}

type mockUserDirectory struct {
	users map[string]*user.User
}

func (m *mockUserDirectory) GetByID(ctx context.Context, id string) (*user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	return u, nil
}

type pushedEvent struct {
	UserID string
	Event  string
	Data   interface{}
}

type mockPusher struct {
	pushed []pushedEvent
}

func (m *mockPusher) EmitToUser(userID, event string, data interface{}) {
	m.pushed = append(m.pushed, pushedEvent{UserID: userID, Event: event, Data: data})
}

func (m *mockPusher) eventsFor(userID string) []string {
	out := []string{}
	for _, p := range m.pushed {
		if p.UserID == userID {
			out = append(out, p.Event)
		}
	}
	return out
}

var _ = Describe("MessageService", func() {
	var (
		svc    *message.Service
		repo   *mockMessageRepository
		users  *mockUserDirectory
		pusher *mockPusher
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = newMockMessageRepository()
		repo.senderNames["user-dewi"] = "Dewi Lestari"
		users = &mockUserDirectory{users: map[string]*user.User{
			"user-dewi": {ID: "user-dewi", FirstName: "Dewi", LastName: "Lestari"},
			"user-budi": {ID: "user-budi", FirstName: "Budi", LastName: "Santoso"},
		}}
		pusher = &mockPusher{}
		svc = message.NewService(repo, users, pusher, logger)
	})

	Describe("Send", func() {
		It("stores the message before pushing to either party", func() {
			v, err := svc.Send(ctx, "user-dewi", message.SendDTO{ReceiverID: "user-budi", Content: "lunch?"})
			Expect(err).ToNot(HaveOccurred())
			Expect(v.SenderName).To(Equal("Dewi Lestari"))
			Expect(repo.messages).To(HaveLen(1))
			Expect(repo.messages[0].IsRead).To(BeFalse())

			Expect(pusher.eventsFor("user-budi")).To(Equal([]string{message.EventNewMessage}))
			Expect(pusher.eventsFor("user-dewi")).To(Equal([]string{message.EventMessageSent}))
		})

		It("rejects blank content", func() {
			_, err := svc.Send(ctx, "user-dewi", message.SendDTO{ReceiverID: "user-budi", Content: "   "})
			Expect(err).To(HaveOccurred())
			Expect(repo.messages).To(BeEmpty())
			Expect(pusher.pushed).To(BeEmpty())
		})

		It("rejects an unknown receiver", func() {
			_, err := svc.Send(ctx, "user-dewi", message.SendDTO{ReceiverID: "user-ghost", Content: "hi"})
			Expect(err).To(HaveOccurred())
			Expect(repo.messages).To(BeEmpty())
		})

		It("does not push when the store fails", func() {
			repo.createError = errors.New("db down")
			_, err := svc.Send(ctx, "user-dewi", message.SendDTO{ReceiverID: "user-budi", Content: "hi"})
			Expect(err).To(HaveOccurred())
			Expect(pusher.pushed).To(BeEmpty())
		})
	})

	Describe("Conversation", func() {
		BeforeEach(func() {
			svc.Send(ctx, "user-dewi", message.SendDTO{ReceiverID: "user-budi", Content: "one"})
			svc.Send(ctx, "user-dewi", message.SendDTO{ReceiverID: "user-budi", Content: "two"})
			pusher.pushed = nil
		})

		It("marks the other party's messages read and tells them", func() {
			count, _ := repo.UnreadTotal(ctx, "user-budi")
			Expect(count).To(Equal(int64(2)))

			rows, err := svc.Conversation(ctx, "user-budi", "user-dewi")
			Expect(err).ToNot(HaveOccurred())
			Expect(rows).To(HaveLen(2))

			count, _ = repo.UnreadTotal(ctx, "user-budi")
			Expect(count).To(BeZero())
			Expect(pusher.eventsFor("user-dewi")).To(Equal([]string{message.EventMessagesRead}))
		})
	})

	Describe("Typing", func() {
		It("relays the indicator without persisting anything", func() {
			svc.Typing("user-dewi", "user-budi", true)

			Expect(repo.messages).To(BeEmpty())
			Expect(pusher.pushed).To(HaveLen(1))
			Expect(pusher.pushed[0].UserID).To(Equal("user-budi"))
			Expect(pusher.pushed[0].Event).To(Equal(message.EventUserTyping))
			Expect(pusher.pushed[0].Data).To(HaveKeyWithValue("isTyping", true))
		})
	})
})
