package client

import (
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func destroyBuffer(buffer uint32) *wire.MessageBuilder {
	return request(protocol.Buffer, buffer, protocol.BufferDestroy)
}

// bufferRelease marks a buffer as safe to draw into again.
func (c *Client) bufferRelease(msg *wire.MessageBuffer) error {
	c.frames.release(msg.Sender())
	return nil
}
