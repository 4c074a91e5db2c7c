package client

import (
	"fmt"

	"deedles.dev/chlorostart/internal/objstore"
)

// UnsetError is returned by a request that depends on an object that
// has not been created or bound yet.
type UnsetError struct {
	Role objstore.Role
}

func (err UnsetError) Error() string {
	return fmt.Sprintf("%v is not set", err.Role)
}

// ProtocolError is an error reported by the compositor about one of
// the client's objects. The client logs it and marks the object as
// invalid but keeps running.
type ProtocolError struct {
	Object  uint32
	Code    uint32
	Message string
}

func (err ProtocolError) Error() string {
	return fmt.Sprintf("protocol error on object %v: code %v: %v", err.Object, err.Code, err.Message)
}
