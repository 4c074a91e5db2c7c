package client

import (
	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func attach(surface, buffer uint32, x, y int32) *wire.MessageBuilder {
	msg := request(protocol.Surface, surface, protocol.SurfaceAttach)
	msg.WriteObject(buffer)
	msg.WriteInt(x)
	msg.WriteInt(y)
	return msg
}

func damageBuffer(surface uint32, x, y, width, height int32) *wire.MessageBuilder {
	msg := request(protocol.Surface, surface, protocol.SurfaceDamageBuffer)
	msg.WriteInt(x)
	msg.WriteInt(y)
	msg.WriteInt(width)
	msg.WriteInt(height)
	return msg
}

func frame(surface, callback uint32) *wire.MessageBuilder {
	msg := request(protocol.Surface, surface, protocol.SurfaceFrame)
	msg.WriteUint(callback)
	return msg
}

func commit(surface uint32) *wire.MessageBuilder {
	return request(protocol.Surface, surface, protocol.SurfaceCommit)
}

func (c *Client) commit() error {
	surface, err := c.need(objstore.Surface)
	if err != nil {
		return err
	}
	return c.send(commit(surface))
}

// requestFrame asks for a frame callback on the next commit.
func (c *Client) requestFrame() error {
	surface, err := c.need(objstore.Surface)
	if err != nil {
		return err
	}

	id := c.ids.Alloc()
	err = c.send(frame(surface, id))
	if err != nil {
		return err
	}
	c.ids.Bind(objstore.FrameCallback, id)
	return nil
}

func (c *Client) surfaceEnter(msg *wire.MessageBuffer) error {
	output := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	debug.Printf("surface entered output %v", output)
	return nil
}

func (c *Client) surfaceLeave(msg *wire.MessageBuffer) error {
	output := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	debug.Printf("surface left output %v", output)
	return nil
}

func (c *Client) surfacePreferredBufferScale(msg *wire.MessageBuffer) error {
	msg.ReadInt()
	return msg.Err()
}

func (c *Client) surfacePreferredBufferTransform(msg *wire.MessageBuffer) error {
	msg.ReadUint()
	return msg.Err()
}
