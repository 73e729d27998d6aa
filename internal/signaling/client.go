package signaling

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"
)

// Limits bound a single peer connection.
type Limits struct {
	// WriteWait is the time allowed to write a message to the peer.
	WriteWait time.Duration

	// PongWait is the time allowed to read the next pong from the peer.
	// Pings are sent every 9/10 of it.
	PongWait time.Duration

	// MaxMessageSize is the largest inbound message accepted.
	MaxMessageSize int64

	// SendQueue is the capacity of the per-peer outbound queue. A peer whose
	// queue is full gets evicted instead of stalling the hub.
	SendQueue int
}

// DefaultLimits are sized for SDP offers with a full candidate list.
var DefaultLimits = Limits{
	WriteWait:      10 * time.Second,
	PongWait:       60 * time.Second,
	MaxMessageSize: 64 * 1024,
	SendQueue:      256,
}

func (l Limits) pingPeriod() time.Duration {
	return (l.PongWait * 9) / 10
}

// Client is a single websocket connection (a peer).
type Client struct {
	Hub *Hub

	// Conn is nil for in-memory clients used in tests.
	Conn *websocket.Conn

	// ID is assigned by the hub on registration and never changes.
	ID string

	// Send is the outbound queue drained by WritePump. Only the hub writes
	// to or closes it.
	Send chan *Message
}

// NewClient wraps conn in a client bound to h, sized by h's limits.
func (h *Hub) NewClient(conn *websocket.Conn) *Client {
	return &Client{
		Hub:  h,
		Conn: conn,
		Send: make(chan *Message, h.limits.SendQueue),
	}
}

// ReadPump pumps messages from the websocket connection to the hub.
//
// It runs in a per-connection goroutine, which makes it the only reader of
// the connection. When the connection fails the peer is unregistered.
func (c *Client) ReadPump() {
	limits := c.Hub.limits

	defer func() {
		c.Hub.Unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(limits.MaxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(limits.PongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(limits.PongWait))
		return nil
	})

	for {
		kind, data, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.Debug("read failed", "peer", c.ID, "err", err)
			}
			return
		}

		in := inbound{client: c}
		if kind != websocket.TextMessage {
			in.err = wrapError("read", ErrMalformedMessage, "expected a text message")
		} else {
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				in.err = wrapError("read", ErrMalformedMessage, "invalid JSON")
			} else {
				in.msg = &msg
			}
		}

		if !c.Hub.dispatch(in) {
			return
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection and keeps
// it alive with pings.
//
// It runs in a per-connection goroutine, which makes it the only writer of
// the connection. A slow peer only ever blocks its own WritePump.
func (c *Client) WritePump() {
	limits := c.Hub.limits
	ticker := time.NewTicker(limits.pingPeriod())

	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(limits.WriteWait))
			if !ok {
				// The hub closed the queue.
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteJSON(message); err != nil {
				slog.Debug("write failed", "peer", c.ID, "type", message.Type, "err", err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(limits.WriteWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
