package signaling

import (
	"context"
	"fmt"
	"log/slog"
)

// Hub is the central brain of the signaling server.
//
// Run is the single goroutine that mutates rooms and registrations, so every
// change to a room is totally ordered and every membership broadcast carries a
// member list that was current at that point. Pushes to peers never block the
// loop: a peer whose send queue is full is evicted.
type Hub struct {
	registry *Registry
	rooms    *Directory
	newID    IDGenerator
	limits   Limits

	register   chan registration
	unregister chan *Client
	inbound    chan inbound
	done       chan struct{}

	// evicted collects peers whose queue overflowed during the current
	// event. They are disconnected once the event is handled.
	evicted []*Client
}

type registration struct {
	client *Client
	result chan error
}

// Option configures a Hub.
type Option func(*Hub)

func WithIDGenerator(g IDGenerator) Option {
	return func(h *Hub) { h.newID = g }
}

func WithLimits(l Limits) Option {
	return func(h *Hub) { h.limits = l }
}

// NewHub creates a hub with an empty registry and room directory.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		registry:   NewRegistry(),
		rooms:      NewDirectory(),
		newID:      UUIDGenerator,
		limits:     DefaultLimits,
		register:   make(chan registration),
		unregister: make(chan *Client),
		inbound:    make(chan inbound),
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Stats is a point-in-time count of live peers and rooms.
type Stats struct {
	Peers int `json:"peers"`
	Rooms int `json:"rooms"`
}

func (h *Hub) Stats() Stats {
	return Stats{Peers: h.registry.Len(), Rooms: h.rooms.Len()}
}

func (h *Hub) Registry() *Registry { return h.registry }

func (h *Hub) Rooms() *Directory { return h.rooms }

// Run processes registrations, requests and disconnects until ctx is done.
// On exit every remaining peer's queue is closed, which closes its socket.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		for _, id := range h.registry.IDs() {
			if c, ok := h.registry.Lookup(id); ok {
				h.registry.Unregister(id)
				close(c.Send)
			}
		}
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case reg := <-h.register:
			reg.result <- h.connect(reg.client)

		case client := <-h.unregister:
			h.disconnect(client, "connection closed")

		case in := <-h.inbound:
			h.route(in)
		}

		h.flushEvicted()
	}
}

// Register assigns c a fresh peer id, binds it in the registry and queues the
// userIdAssigned event. It must be called before c's pumps start. On failure
// c.Send has been closed with an error queued on it.
func (h *Hub) Register(c *Client) error {
	reg := registration{client: c, result: make(chan error, 1)}
	select {
	case h.register <- reg:
	case <-h.done:
		return ErrHubStopped
	}
	return <-reg.result
}

// Unregister tears down c's membership. Calling it more than once, or for a
// peer the hub already evicted, is harmless.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// dispatch hands a request to the hub. It reports false once the hub stopped.
func (h *Hub) dispatch(in inbound) bool {
	select {
	case h.inbound <- in:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) connect(c *Client) error {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id, err := h.newID()
		if err != nil {
			slog.Warn("peer id generation failed", "attempt", attempt, "err", err)
			continue
		}
		if err := h.registry.Register(id, c); err != nil {
			slog.Warn("peer id collision", "peer", id, "attempt", attempt)
			continue
		}

		c.ID = id
		slog.Info("peer connected", "peer", id)
		h.send(c, &Message{Type: TypeUserIDAssigned, UserID: id})
		return nil
	}

	err := newError("connect", ErrIdentityExhausted)
	slog.Error("refusing connection", "err", err)
	c.Send <- errorMessage(err)
	close(c.Send)
	return err
}

// disconnect removes c from every room it is in, tells the remaining members,
// and finally drops its registry entry. It runs at most once per peer.
func (h *Hub) disconnect(c *Client, reason string) {
	if !h.registered(c) {
		return
	}

	for _, roomID := range h.rooms.RoomsOf(c.ID) {
		h.leave(roomID, c.ID)
	}

	h.registry.Unregister(c.ID)
	close(c.Send)
	slog.Info("peer disconnected", "peer", c.ID, "reason", reason)
}

func (h *Hub) registered(c *Client) bool {
	bound, ok := h.registry.Lookup(c.ID)
	return ok && bound == c
}

func (h *Hub) flushEvicted() {
	for len(h.evicted) > 0 {
		c := h.evicted[0]
		h.evicted = h.evicted[1:]
		h.disconnect(c, "send queue full")
	}
}

// route validates a request and hands it to exactly one handler. Any failure
// becomes an error reply to the sender alone.
func (h *Hub) route(in inbound) {
	c := in.client
	if !h.registered(c) {
		return
	}

	err := in.err
	if err == nil {
		err = h.handle(c, in.msg)
	}
	if err != nil {
		slog.Info("request failed", "peer", c.ID, "err", err)
		h.send(c, errorMessage(err))
	}
}

func (h *Hub) handle(c *Client, msg *Message) error {
	slog.Debug("request", "peer", c.ID, "type", msg.Type)

	switch msg.Type {
	case TypeCheckRoom:
		return h.handleCheckRoom(c, msg)
	case TypeCreateRoom:
		return h.handleCreateRoom(c)
	case TypeJoinRoom:
		return h.handleJoinRoom(c, msg)
	case TypeLeaveRoom:
		return h.handleLeaveRoom(c, msg)
	case TypeRelayOffer, TypeRelayAnswer, TypeRelayCandidate:
		return h.handleRelay(c, msg)
	case "":
		return wrapError("route", ErrMalformedMessage, "missing type")
	default:
		return wrapError("route", ErrMalformedMessage, fmt.Sprintf("unknown type %q", msg.Type))
	}
}

func (h *Hub) handleCheckRoom(c *Client, msg *Message) error {
	if msg.RoomID == "" {
		return wrapError(msg.Type, ErrMalformedMessage, "missing roomId")
	}

	exists := h.rooms.Exists(msg.RoomID)
	h.send(c, &Message{Type: TypeRoomExists, RoomID: msg.RoomID, Exists: &exists})
	return nil
}

func (h *Hub) handleCreateRoom(c *Client) error {
	room, err := h.rooms.Create(c.ID)
	if err != nil {
		return err
	}

	slog.Info("room created", "room", room.ID)
	h.send(c, &Message{Type: TypeRoomCreated, RoomID: room.ID})
	return nil
}

func (h *Hub) handleJoinRoom(c *Client, msg *Message) error {
	if msg.RoomID == "" {
		return wrapError(msg.Type, ErrMalformedMessage, "missing roomId")
	}

	users, err := h.rooms.Join(msg.RoomID, c.ID)
	if err != nil {
		return err
	}

	slog.Info("member joined", "room", msg.RoomID, "peer", c.ID, "members", len(users))
	h.send(c, &Message{Type: TypeRoomJoined, RoomID: msg.RoomID, Users: users})
	h.broadcast(users, c.ID, &Message{
		Type:   TypeMemberJoined,
		RoomID: msg.RoomID,
		UserID: c.ID,
		Users:  users,
	})
	return nil
}

func (h *Hub) handleLeaveRoom(c *Client, msg *Message) error {
	if msg.RoomID == "" {
		return wrapError(msg.Type, ErrMalformedMessage, "missing roomId")
	}

	h.leave(msg.RoomID, c.ID)
	return nil
}

// leave removes peerID from a room and notifies whoever is left.
func (h *Hub) leave(roomID, peerID string) {
	remaining, removed := h.rooms.Leave(roomID, peerID)
	if !removed {
		return
	}

	if len(remaining) == 0 {
		slog.Info("room deleted", "room", roomID)
		return
	}

	slog.Info("member left", "room", roomID, "peer", peerID, "members", len(remaining))
	h.broadcast(remaining, peerID, &Message{Type: TypeMemberLeft, RoomID: roomID, UserID: peerID})
}

func (h *Hub) handleRelay(c *Client, msg *Message) error {
	if msg.To == "" {
		return wrapError(msg.Type, ErrMalformedMessage, "missing to")
	}
	if len(msg.Payload) == 0 || string(msg.Payload) == "null" {
		return wrapError(msg.Type, ErrMalformedMessage, "missing payload")
	}

	target, ok := h.registry.Lookup(msg.To)
	if !ok {
		return wrapError(msg.Type, ErrPeerUnreachable, msg.To)
	}

	slog.Debug("relaying", "type", msg.Type, "from", c.ID, "to", msg.To)
	h.send(target, &Message{
		Type:    msg.Type,
		To:      msg.To,
		From:    c.ID,
		Payload: msg.Payload,
	})
	return nil
}

// broadcast pushes msg to every listed peer except skip. Peers that are no
// longer reachable are skipped.
func (h *Hub) broadcast(peerIDs []string, skip string, msg *Message) {
	for _, id := range peerIDs {
		if id == skip {
			continue
		}
		target, ok := h.registry.Lookup(id)
		if !ok {
			slog.Warn("broadcast target not registered", "peer", id, "type", msg.Type)
			continue
		}
		h.send(target, msg)
	}
}

// send queues msg for c without blocking. A full queue marks c for eviction.
func (h *Hub) send(c *Client, msg *Message) {
	select {
	case c.Send <- msg:
	default:
		slog.Warn("send queue full, evicting peer", "peer", c.ID, "type", msg.Type)
		h.evicted = append(h.evicted, c)
	}
}

