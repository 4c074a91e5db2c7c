package client

import (
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func createPool(shm, id uint32, fd int, size int32) *wire.MessageBuilder {
	msg := request(protocol.Shm, shm, protocol.ShmCreatePool)
	msg.WriteUint(id)
	msg.WriteFD(fd)
	msg.WriteInt(size)
	return msg
}

// createPool shares the whole region with the compositor.
func (c *Client) createPool() error {
	shm, err := c.need(objstore.Shm)
	if err != nil {
		return err
	}

	id := c.ids.Alloc()
	err = c.send(createPool(shm, id, c.region.FD(), int32(c.region.Cap())))
	if err != nil {
		return err
	}
	c.ids.Bind(objstore.ShmPool, id)
	return nil
}

func (c *Client) shmFormat(msg *wire.MessageBuffer) error {
	format := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	c.gm.Lock()
	defer c.gm.Unlock()

	c.formats.Add(format)
	return nil
}
