package notification

import (
	"time"

	"github.com/frahmantamala/hr-portal/internal"
)

// Notification is a durable outbox row. Rows are written first; the realtime
// push that follows is best effort and never observed by the caller.
type Notification struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	UserID    string    `json:"userId" gorm:"column:user_id;index"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Link      string    `json:"link,omitempty"`
	IsRead    bool      `json:"isRead" gorm:"column:is_read"`
	CreatedAt time.Time `json:"createdAt" gorm:"column:created_at"`
}

func (Notification) TableName() string { return "notifications" }

// ListLimit caps a listing to the most recent rows; older entries are only
// reachable once newer ones are read away, matching the inbox UI contract.
const ListLimit = 50

var ErrNotificationNotFound = internal.NewNotFoundError("notification not found", internal.ErrCodeNotificationNotFound)
