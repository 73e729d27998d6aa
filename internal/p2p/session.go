package p2p

import (
	"encoding/json"
	"log/slog"
	"sync"

	pion "github.com/pion/webrtc/v4"

	"github.com/BioHazard786/roomlink/internal/config"
	"github.com/BioHazard786/roomlink/internal/logging"
	"github.com/BioHazard786/roomlink/internal/signaling"
)

const channelLabel = "roomlink"

// Signaler sends messages to the signaling server.
type Signaler interface {
	SendMessage(msg *signaling.Message)
}

// EventKind describes what happened on a session.
type EventKind int

const (
	EventOpen EventKind = iota
	EventClosed
	EventFrame
)

// Event is reported for channel state changes and received frames.
type Event struct {
	Kind  EventKind
	Peer  string
	Frame Frame
}

// NewAPI builds a pion API whose logs go through slog.
func NewAPI() *pion.API {
	se := pion.SettingEngine{}
	se.LoggerFactory = logging.PionFactory{}
	return pion.NewAPI(pion.WithSettingEngine(se))
}

// ICEConfiguration builds the peer connection configuration from the client
// config.
func ICEConfiguration(cfg *config.Client) pion.Configuration {
	var servers []pion.ICEServer
	if stun := cfg.GetSTUNServers(); stun != nil {
		servers = append(servers, pion.ICEServer{URLs: stun})
	}
	if turn := cfg.GetTURNServers(); turn != nil {
		username, password := cfg.GetTURNCredentials()
		servers = append(servers, pion.ICEServer{
			URLs:       turn,
			Username:   username,
			Credential: password,
		})
	}

	// Relay-only needs a TURN server to relay through.
	policy := pion.ICETransportPolicyAll
	if cfg.TURNServer != "" && (cfg.ForceRelay || behindTunnel()) {
		policy = pion.ICETransportPolicyRelay
	}

	return pion.Configuration{ICEServers: servers, ICETransportPolicy: policy}
}

// session is one peer connection with one remote member.
type session struct {
	remote string
	pc     *pion.PeerConnection

	mu      sync.Mutex
	dc      *pion.DataChannel
	pending []pion.ICECandidateInit
	haveSDP bool
}

func newSession(m *Manager, remote string) (*session, error) {
	pc, err := m.api.NewPeerConnection(m.iceConfig)
	if err != nil {
		return nil, NewPeerError("create peer connection", remote, err)
	}

	s := &session{remote: remote, pc: pc}

	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		payload, err := json.Marshal(c.ToJSON())
		if err != nil {
			slog.Warn("encoding candidate", "peer", remote, "err", err)
			return
		}
		m.sig.SendMessage(&signaling.Message{
			Type:    signaling.TypeRelayCandidate,
			To:      remote,
			Payload: payload,
		})
	})

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		slog.Debug("peer connection state", "peer", remote, "state", state.String())
		if state == pion.PeerConnectionStateFailed || state == pion.PeerConnectionStateClosed {
			go m.closeSession(s)
		}
	})

	pc.OnDataChannel(func(dc *pion.DataChannel) {
		s.attach(m, dc)
	})

	return s, nil
}

// attach wires a data channel's callbacks into the manager's events.
func (s *session) attach(m *Manager, dc *pion.DataChannel) {
	s.mu.Lock()
	s.dc = dc
	s.mu.Unlock()

	dc.OnOpen(func() {
		m.emit(Event{Kind: EventOpen, Peer: s.remote})
		if err := s.send(NewFrame(FrameHello, m.self, "")); err != nil {
			slog.Debug("sending hello", "peer", s.remote, "err", err)
		}
	})

	dc.OnMessage(func(msg pion.DataChannelMessage) {
		f, err := DecodeFrame(msg.Data)
		if err != nil {
			slog.Warn("dropping undecodable frame", "peer", s.remote, "err", err)
			return
		}
		m.emit(Event{Kind: EventFrame, Peer: s.remote, Frame: f})
	})

	dc.OnClose(func() {
		m.emit(Event{Kind: EventClosed, Peer: s.remote})
	})
}

func (s *session) send(f Frame) error {
	s.mu.Lock()
	dc := s.dc
	s.mu.Unlock()

	if dc == nil || dc.ReadyState() != pion.DataChannelStateOpen {
		return ErrChannelNotOpen
	}

	b, err := EncodeFrame(f)
	if err != nil {
		return err
	}
	return dc.Send(b)
}

// setRemote applies a remote description and flushes candidates that arrived
// before it.
func (s *session) setRemote(desc pion.SessionDescription) error {
	if err := s.pc.SetRemoteDescription(desc); err != nil {
		return err
	}

	s.mu.Lock()
	s.haveSDP = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	for _, c := range pending {
		if err := s.pc.AddICECandidate(c); err != nil {
			slog.Warn("adding buffered candidate", "peer", s.remote, "err", err)
		}
	}
	return nil
}

func (s *session) addCandidate(c pion.ICECandidateInit) error {
	s.mu.Lock()
	if !s.haveSDP {
		s.pending = append(s.pending, c)
		s.mu.Unlock()
		return nil
	}
	s.mu.Unlock()

	return s.pc.AddICECandidate(c)
}

func (s *session) close() error {
	return s.pc.Close()
}
