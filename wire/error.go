package wire

import (
	"errors"
	"fmt"
)

// ErrTruncated is returned when decoding a field would read past the end
// of a message. The stream cannot be resynchronized after this.
var ErrTruncated = errors.New("message truncated")

// ErrTooLarge is returned when a message would not fit in the header's
// size field.
var ErrTooLarge = errors.New("message too large")

var (
	ErrNoRuntimeDir = errors.New("XDG_RUNTIME_DIR is not set")
	ErrNoDisplay    = errors.New("WAYLAND_DISPLAY is not set")
)

// MalformedError indicates a message that violates the wire format.
type MalformedError struct {
	Reason string
}

func (err MalformedError) Error() string {
	return fmt.Sprintf("malformed message: %v", err.Reason)
}

// UnknownOpError is returned when dispatching a message with an opcode
// that the receiving interface does not handle.
type UnknownOpError struct {
	Interface string
	Type      string
	Op        uint16
}

func (err UnknownOpError) Error() string {
	return fmt.Sprintf("unknown %v opcode for %v: %v", err.Type, err.Interface, err.Op)
}

// UnknownSenderIDError is returned by an attempt to dispatch an
// incoming message from an object that the client doesn't know about.
type UnknownSenderIDError struct {
	Msg *MessageBuffer
}

func (err UnknownSenderIDError) Error() string {
	return fmt.Sprintf("unknown sender object ID: %v", err.Msg.Sender())
}
