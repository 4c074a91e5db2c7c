package client

import (
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func createSurface(compositor, id uint32) *wire.MessageBuilder {
	msg := request(protocol.Compositor, compositor, protocol.CompositorCreateSurface)
	msg.WriteUint(id)
	return msg
}

func (c *Client) createSurface() error {
	compositor, err := c.need(objstore.Compositor)
	if err != nil {
		return err
	}

	id := c.ids.Alloc()
	err = c.send(createSurface(compositor, id))
	if err != nil {
		return err
	}
	c.ids.Bind(objstore.Surface, id)
	return nil
}
