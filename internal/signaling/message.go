package signaling

import "encoding/json"

// Message is the envelope for every client-to-server request and every
// server-to-client reply or push. Only the fields relevant to Type are set.
type Message struct {
	Type string `json:"type"`

	RoomID string   `json:"roomId,omitempty"`
	UserID string   `json:"userId,omitempty"`
	Users  []string `json:"users,omitempty"`
	Exists *bool    `json:"exists,omitempty"`

	// Relay addressing. Payload is forwarded without being interpreted.
	To      string          `json:"to,omitempty"`
	From    string          `json:"from,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`

	Message string `json:"message,omitempty"`
}

// Client to server.
const (
	TypeCheckRoom      = "checkRoom"
	TypeCreateRoom     = "createRoom"
	TypeJoinRoom       = "joinRoom"
	TypeLeaveRoom      = "leaveRoom"
	TypeRelayOffer     = "relayOffer"
	TypeRelayAnswer    = "relayAnswer"
	TypeRelayCandidate = "relayCandidate"
)

// Server to client.
const (
	TypeUserIDAssigned = "userIdAssigned"
	TypeRoomExists     = "roomExists"
	TypeRoomCreated    = "roomCreated"
	TypeRoomJoined     = "roomJoined"
	TypeMemberJoined   = "memberJoined"
	TypeMemberLeft     = "memberLeft"
	TypeError          = "error"
)

// IsRelay reports whether t is one of the peer-addressed relay types.
func IsRelay(t string) bool {
	switch t {
	case TypeRelayOffer, TypeRelayAnswer, TypeRelayCandidate:
		return true
	}
	return false
}

// inbound is a decoded request (or a decode failure) tagged with its sender.
type inbound struct {
	client *Client
	msg    *Message
	err    error
}

func errorMessage(err error) *Message {
	return &Message{Type: TypeError, Message: err.Error()}
}
