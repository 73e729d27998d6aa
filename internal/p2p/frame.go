package p2p

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// Frame types carried on the data channel.
const (
	FrameHello = "hello"
	FrameChat  = "chat"
)

// Frame is a single data channel message.
type Frame struct {
	Type   string `msgpack:"type"`
	From   string `msgpack:"from"`
	Text   string `msgpack:"text,omitempty"`
	SentAt int64  `msgpack:"sentAt"`
}

// NewFrame stamps a frame with the current time.
func NewFrame(typ, from, text string) Frame {
	return Frame{Type: typ, From: from, Text: text, SentAt: time.Now().UnixMilli()}
}

func EncodeFrame(f Frame) ([]byte, error) {
	return msgpack.Marshal(f)
}

func DecodeFrame(b []byte) (Frame, error) {
	var f Frame
	err := msgpack.Unmarshal(b, &f)
	return f, err
}

// Time returns when the frame was sent.
func (f Frame) Time() time.Time {
	return time.UnixMilli(f.SentAt)
}
