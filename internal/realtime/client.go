package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"github.com/frahmantamala/hr-portal/internal/message"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// MessageGateway is the messaging service surface a session may invoke.
type MessageGateway interface {
	Send(ctx context.Context, senderID string, dto message.SendDTO) (*message.View, error)
	Typing(senderID, receiverID string, isTyping bool)
	MarkConversationRead(ctx context.Context, userID, otherID string) error
}

// Client is one live websocket session. Inbound events are dispatched
// sequentially from the read pump, so per-session ordering is preserved.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	userID   string
	send     chan []byte
	messages MessageGateway
	logger   *slog.Logger
}

func newClient(hub *Hub, conn *websocket.Conn, userID string, messages MessageGateway, logger *slog.Logger) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		userID:   userID,
		send:     make(chan []byte, sendBuffer),
		messages: messages,
		logger:   logger,
	}
}

// trySend queues a frame without blocking; a session that cannot keep up
// loses the frame rather than stalling the hub.
func (c *Client) trySend(frame []byte) {
	select {
	case c.send <- frame:
	default:
		c.logger.Warn("dropping realtime frame, session buffer full", "user_id", c.userID)
	}
}

// disconnect removes the session and announces the departure. The broadcast
// fires on every disconnect, even while another session of the same principal
// remains live; clients reconcile against the online_users snapshot.
func (c *Client) disconnect() {
	c.hub.unregister(c)
	c.hub.Broadcast(EventUserOffline, presencePayload{UserID: c.userID})
	if c.conn != nil {
		c.conn.Close()
	}
}

func (c *Client) readPump(ctx context.Context) {
	defer c.disconnect()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("realtime session closed unexpectedly", "error", err, "user_id", c.userID)
			}
			return
		}
		c.dispatch(ctx, raw)
	}
}

func (c *Client) dispatch(ctx context.Context, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("malformed realtime frame", "error", err, "user_id", c.userID)
		return
	}

	switch env.Event {
	case ActionSendMessage:
		var p sendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.logger.Warn("malformed send_message payload", "error", err, "user_id", c.userID)
			return
		}
		if _, err := c.messages.Send(ctx, c.userID, message.SendDTO(p)); err != nil {
			c.logger.Error("failed to send message over realtime channel",
				"error", err, "user_id", c.userID)
		}
	case ActionTyping:
		var p typingPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.logger.Warn("malformed typing payload", "error", err, "user_id", c.userID)
			return
		}
		c.messages.Typing(c.userID, p.ReceiverID, p.IsTyping)
	case ActionMarkRead:
		var p markReadPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			c.logger.Warn("malformed mark_read payload", "error", err, "user_id", c.userID)
			return
		}
		if err := c.messages.MarkConversationRead(ctx, c.userID, p.SenderID); err != nil {
			c.logger.Error("failed to mark conversation read",
				"error", err, "user_id", c.userID)
		}
	default:
		c.logger.Debug("unknown realtime action", "event", env.Event, "user_id", c.userID)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
