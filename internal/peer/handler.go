package peer

import (
	"log/slog"

	"github.com/BioHazard786/roomlink/internal/signaling"
)

// Handler routes incoming signaling messages to typed channels.
type Handler struct {
	client *Client

	Assigned     chan string
	RoomExists   chan bool
	RoomCreated  chan string
	RoomJoined   chan *signaling.Message
	MemberJoined chan *signaling.Message
	MemberLeft   chan *signaling.Message
	Relay        chan *signaling.Message
	Error        chan string

	// Done is closed when the server connection ends.
	Done chan struct{}
}

// NewHandler creates a handler reading from client.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:       client,
		Assigned:     make(chan string, 1),
		RoomExists:   make(chan bool, 1),
		RoomCreated:  make(chan string, 1),
		RoomJoined:   make(chan *signaling.Message, 1),
		MemberJoined: make(chan *signaling.Message, 16),
		MemberLeft:   make(chan *signaling.Message, 16),
		Relay:        make(chan *signaling.Message, 64),
		Error:        make(chan string, 4),
		Done:         make(chan struct{}),
	}
}

// Start routes messages until the connection ends.
func (h *Handler) Start() {
	defer close(h.Done)

	for msg := range h.client.Incoming() {
		switch msg.Type {
		case signaling.TypeUserIDAssigned:
			deliver(h, h.Assigned, msg.UserID)

		case signaling.TypeRoomExists:
			deliver(h, h.RoomExists, msg.Exists != nil && *msg.Exists)

		case signaling.TypeRoomCreated:
			deliver(h, h.RoomCreated, msg.RoomID)

		case signaling.TypeRoomJoined:
			deliver(h, h.RoomJoined, msg)

		case signaling.TypeMemberJoined:
			deliver(h, h.MemberJoined, msg)

		case signaling.TypeMemberLeft:
			deliver(h, h.MemberLeft, msg)

		case signaling.TypeError:
			deliver(h, h.Error, msg.Message)

		default:
			if signaling.IsRelay(msg.Type) {
				deliver(h, h.Relay, msg)
				continue
			}
			slog.Debug("ignoring message", "type", msg.Type)
		}
	}
}

// deliver blocks until the value is taken or the client is closed.
func deliver[T any](h *Handler, ch chan T, v T) {
	select {
	case ch <- v:
	case <-h.client.done:
	}
}
