package p2p

import (
	"errors"
	"fmt"
)

var (
	ErrUnexpectedSignal = errors.New("unexpected signal type")
	ErrUnknownPeer      = errors.New("no session with peer")
	ErrChannelNotOpen   = errors.New("channel not open")
	ErrInvalidPayload   = errors.New("invalid signal payload")
)

// Error records which step of a session failed and for which remote peer.
type Error struct {
	Op   string
	Peer string
	Err  error
}

func (e *Error) Error() string {
	if e.Peer != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Peer, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func NewPeerError(op, peer string, err error) *Error {
	return &Error{Op: op, Peer: peer, Err: err}
}
