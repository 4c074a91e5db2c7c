package client

import (
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/wire"
)

// callbackDone draws the next frame.
func (c *Client) callbackDone(msg *wire.MessageBuffer) error {
	msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	if c.ids.Lookup(objstore.FrameCallback) == msg.Sender() {
		c.ids.Unbind(objstore.FrameCallback)
	}
	if !c.running.Load() {
		return nil
	}
	return c.present()
}
