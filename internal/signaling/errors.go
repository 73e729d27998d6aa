package signaling

import (
	"errors"
	"fmt"
)

var (
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrPeerUnreachable   = errors.New("peer unreachable")
	ErrMalformedMessage  = errors.New("malformed message")
	ErrDuplicateIdentity = errors.New("duplicate peer identity")
	ErrIdentityExhausted = errors.New("could not allocate a peer identity")
	ErrHubStopped        = errors.New("hub stopped")
)

// Error records the request that failed and the cause reported to the peer.
type Error struct {
	Op      string
	Err     error
	Details string
}

func (e *Error) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %v (%s)", e.Op, e.Err, e.Details)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}

func wrapError(op string, err error, details string) *Error {
	return &Error{Op: op, Err: err, Details: details}
}
