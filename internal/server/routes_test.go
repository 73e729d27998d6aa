package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/BioHazard786/roomlink/internal/signaling"
)

func newTestServer(t *testing.T) (*httptest.Server, *signaling.Hub) {
	t.Helper()

	hub := signaling.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(hub))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return srv, hub
}

type wsPeer struct {
	t    *testing.T
	conn *websocket.Conn
	id   string
}

func dial(t *testing.T, srv *httptest.Server) *wsPeer {
	t.Helper()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	p := &wsPeer{t: t, conn: conn}
	msg := p.expect(signaling.TypeUserIDAssigned)
	if msg.UserID == "" {
		t.Fatalf("empty peer id")
	}
	p.id = msg.UserID
	return p
}

func (p *wsPeer) send(msg *signaling.Message) {
	p.t.Helper()
	if err := p.conn.WriteJSON(msg); err != nil {
		p.t.Fatalf("write: %v", err)
	}
}

func (p *wsPeer) expect(typ string) *signaling.Message {
	p.t.Helper()

	p.conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg signaling.Message
	if err := p.conn.ReadJSON(&msg); err != nil {
		p.t.Fatalf("read: %v", err)
	}
	if msg.Type != typ {
		p.t.Fatalf("got %+v, want type %q", msg, typ)
	}
	return &msg
}

func TestRoomOverWebsocket(t *testing.T) {
	srv, hub := newTestServer(t)

	a := dial(t, srv)
	a.send(&signaling.Message{Type: signaling.TypeCreateRoom})
	if got := a.expect(signaling.TypeRoomCreated); got.RoomID != a.id {
		t.Fatalf("room id = %q, want creator id %q", got.RoomID, a.id)
	}

	b := dial(t, srv)
	b.send(&signaling.Message{Type: signaling.TypeCheckRoom, RoomID: a.id})
	if got := b.expect(signaling.TypeRoomExists); got.Exists == nil || !*got.Exists {
		t.Fatalf("roomExists = %+v", got)
	}

	b.send(&signaling.Message{Type: signaling.TypeJoinRoom, RoomID: a.id})
	want := []string{a.id, b.id}
	if got := b.expect(signaling.TypeRoomJoined); !slices.Equal(got.Users, want) {
		t.Fatalf("roomJoined users = %v, want %v", got.Users, want)
	}
	if got := a.expect(signaling.TypeMemberJoined); got.UserID != b.id || !slices.Equal(got.Users, want) {
		t.Fatalf("memberJoined = %+v", got)
	}

	offer := json.RawMessage(`{"type":"offer","sdp":"v=0\r\n"}`)
	b.send(&signaling.Message{Type: signaling.TypeRelayOffer, To: a.id, Payload: offer})
	relayed := a.expect(signaling.TypeRelayOffer)
	if relayed.From != b.id {
		t.Fatalf("from = %q, want %q", relayed.From, b.id)
	}
	var sdp map[string]string
	if err := json.Unmarshal(relayed.Payload, &sdp); err != nil || sdp["type"] != "offer" {
		t.Fatalf("payload = %s (%v)", relayed.Payload, err)
	}

	b.conn.Close()
	if got := a.expect(signaling.TypeMemberLeft); got.UserID != b.id || got.RoomID != a.id {
		t.Fatalf("memberLeft = %+v", got)
	}
	// The registry entry goes after the broadcast, so poll briefly.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Stats() != (signaling.Stats{Peers: 1, Rooms: 1}) {
		if time.Now().After(deadline) {
			t.Fatalf("stats = %+v", hub.Stats())
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestMalformedFrames(t *testing.T) {
	srv, _ := newTestServer(t)
	p := dial(t, srv)

	p.conn.WriteMessage(websocket.TextMessage, []byte("{not json"))
	if got := p.expect(signaling.TypeError); !strings.Contains(got.Message, "malformed") {
		t.Fatalf("error = %q", got.Message)
	}

	p.conn.WriteMessage(websocket.BinaryMessage, []byte{0x01})
	p.expect(signaling.TypeError)

	p.send(&signaling.Message{Type: "teleport"})
	p.expect(signaling.TypeError)

	// The connection survives bad input.
	p.send(&signaling.Message{Type: signaling.TypeCheckRoom, RoomID: "x"})
	p.expect(signaling.TypeRoomExists)
}

func TestHealthAndStats(t *testing.T) {
	srv, _ := newTestServer(t)
	dial(t, srv)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "healthy") {
		t.Fatalf("/health = %d %q", resp.StatusCode, body)
	}

	resp, err = http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("GET /stats: %v", err)
	}
	defer resp.Body.Close()

	var stats signaling.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if stats.Peers != 1 || stats.Rooms != 0 {
		t.Fatalf("stats = %+v", stats)
	}

	resp, err = http.Post(srv.URL+"/health", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("POST /health = %d", resp.StatusCode)
	}
}
