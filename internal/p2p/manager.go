package p2p

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sort"
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/BioHazard786/roomlink/internal/config"
	"github.com/BioHazard786/roomlink/internal/signaling"
)

// Manager keeps one peer connection per remote member and turns relayed
// signaling messages into WebRTC state.
type Manager struct {
	api       *pion.API
	iceConfig pion.Configuration
	sig       Signaler
	self      string

	mu       sync.Mutex
	sessions map[string]*session

	events chan Event
}

// NewManager creates a manager for the local peer self.
func NewManager(cfg *config.Client, sig Signaler, self string) *Manager {
	return &Manager{
		api:       NewAPI(),
		iceConfig: ICEConfiguration(cfg),
		sig:       sig,
		self:      self,
		sessions:  make(map[string]*session),
		events:    make(chan Event, 64),
	}
}

// Events returns channel state changes and received frames.
func (m *Manager) Events() <-chan Event {
	return m.events
}

func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	default:
		slog.Warn("event queue full, dropping event", "peer", ev.Peer, "kind", ev.Kind)
	}
}

// Offer opens a session with remote as the offering side.
func (m *Manager) Offer(remote string) error {
	m.mu.Lock()
	if _, ok := m.sessions[remote]; ok {
		m.mu.Unlock()
		return nil
	}
	s, err := newSession(m, remote)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.sessions[remote] = s
	m.mu.Unlock()

	ordered := true
	dc, err := s.pc.CreateDataChannel(channelLabel, &pion.DataChannelInit{Ordered: &ordered})
	if err != nil {
		m.Close(remote)
		return NewPeerError("create data channel", remote, err)
	}
	s.attach(m, dc)

	offer, err := s.pc.CreateOffer(nil)
	if err != nil {
		m.Close(remote)
		return NewPeerError("create offer", remote, err)
	}
	if err := s.pc.SetLocalDescription(offer); err != nil {
		m.Close(remote)
		return NewPeerError("set local description", remote, err)
	}

	return m.relay(signaling.TypeRelayOffer, remote, s.pc.LocalDescription())
}

// HandleRelay applies a relayed offer, answer or candidate.
func (m *Manager) HandleRelay(msg *signaling.Message) error {
	switch msg.Type {
	case signaling.TypeRelayOffer:
		return m.handleOffer(msg.From, msg.Payload)
	case signaling.TypeRelayAnswer:
		return m.handleAnswer(msg.From, msg.Payload)
	case signaling.TypeRelayCandidate:
		return m.handleCandidate(msg.From, msg.Payload)
	default:
		return NewPeerError("handle signal", msg.From, ErrUnexpectedSignal)
	}
}

func (m *Manager) handleOffer(remote string, payload json.RawMessage) error {
	var offer pion.SessionDescription
	if err := json.Unmarshal(payload, &offer); err != nil || offer.Type != pion.SDPTypeOffer {
		return NewPeerError("parse offer", remote, ErrInvalidPayload)
	}

	s, err := m.ensureSession(remote)
	if err != nil {
		return err
	}
	if err := s.setRemote(offer); err != nil {
		return NewPeerError("set remote description", remote, err)
	}

	answer, err := s.pc.CreateAnswer(nil)
	if err != nil {
		return NewPeerError("create answer", remote, err)
	}
	if err := s.pc.SetLocalDescription(answer); err != nil {
		return NewPeerError("set local description", remote, err)
	}

	return m.relay(signaling.TypeRelayAnswer, remote, s.pc.LocalDescription())
}

func (m *Manager) handleAnswer(remote string, payload json.RawMessage) error {
	var answer pion.SessionDescription
	if err := json.Unmarshal(payload, &answer); err != nil || answer.Type != pion.SDPTypeAnswer {
		return NewPeerError("parse answer", remote, ErrInvalidPayload)
	}

	s, err := m.session(remote)
	if err != nil {
		return err
	}
	if err := s.setRemote(answer); err != nil {
		return NewPeerError("set remote description", remote, err)
	}
	return nil
}

func (m *Manager) handleCandidate(remote string, payload json.RawMessage) error {
	var candidate pion.ICECandidateInit
	if err := json.Unmarshal(payload, &candidate); err != nil {
		return NewPeerError("parse candidate", remote, ErrInvalidPayload)
	}

	// The offerer may trickle candidates before its offer gets here.
	s, err := m.ensureSession(remote)
	if err != nil {
		return err
	}
	if err := s.addCandidate(candidate); err != nil {
		return NewPeerError("add candidate", remote, err)
	}
	return nil
}

func (m *Manager) session(remote string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[remote]
	if !ok {
		return nil, NewPeerError("lookup session", remote, ErrUnknownPeer)
	}
	return s, nil
}

// ensureSession returns the session with remote, creating an answering one
// if there is none yet.
func (m *Manager) ensureSession(remote string) (*session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[remote]; ok {
		return s, nil
	}
	s, err := newSession(m, remote)
	if err != nil {
		return nil, err
	}
	m.sessions[remote] = s
	return s, nil
}

func (m *Manager) relay(typ, remote string, desc *pion.SessionDescription) error {
	payload, err := json.Marshal(desc)
	if err != nil {
		return NewPeerError("encode description", remote, err)
	}
	m.sig.SendMessage(&signaling.Message{Type: typ, To: remote, Payload: payload})
	return nil
}

// Broadcast sends a chat line to every open channel and returns how many
// peers it reached.
func (m *Manager) Broadcast(text string) (int, error) {
	frame := NewFrame(FrameChat, m.self, text)

	m.mu.Lock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.Unlock()

	sent := 0
	var errs []error
	for _, s := range sessions {
		err := s.send(frame)
		switch {
		case err == nil:
			sent++
		case errors.Is(err, ErrChannelNotOpen):
		default:
			errs = append(errs, NewPeerError("send", s.remote, err))
		}
	}
	return sent, errors.Join(errs...)
}

// Peers returns the remote ids with a session, sorted.
func (m *Manager) Peers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Close tears down the session with remote, if any.
func (m *Manager) Close(remote string) {
	if s := m.drop(remote); s != nil {
		if err := s.close(); err != nil {
			slog.Debug("closing peer connection", "peer", remote, "err", err)
		}
	}
}

// CloseAll tears down every session.
func (m *Manager) CloseAll() {
	for _, id := range m.Peers() {
		m.Close(id)
	}
}

// drop forgets the session without closing it.
func (m *Manager) drop(remote string) *session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[remote]
	if !ok {
		return nil
	}
	delete(m.sessions, remote)
	return s
}

// closeSession closes s and forgets it unless it was already replaced.
func (m *Manager) closeSession(s *session) {
	m.mu.Lock()
	if m.sessions[s.remote] == s {
		delete(m.sessions, s.remote)
	}
	m.mu.Unlock()

	if err := s.close(); err != nil {
		slog.Debug("closing peer connection", "peer", s.remote, "err", err)
	}
}
