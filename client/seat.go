package client

import (
	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func getKeyboard(seat, id uint32) *wire.MessageBuilder {
	msg := request(protocol.Seat, seat, protocol.SeatGetKeyboard)
	msg.WriteUint(id)
	return msg
}

func (c *Client) getKeyboard() error {
	seat, err := c.need(objstore.Seat)
	if err != nil {
		return err
	}

	id := c.ids.Alloc()
	err = c.send(getKeyboard(seat, id))
	if err != nil {
		return err
	}
	c.ids.Bind(objstore.Keyboard, id)
	return nil
}

// seatCapabilities requests a keyboard the first time the seat
// reports having one.
func (c *Client) seatCapabilities(msg *wire.MessageBuffer) error {
	caps := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	if caps&protocol.SeatCapabilityKeyboard == 0 {
		if id := c.ids.Unbind(objstore.Keyboard); id != 0 {
			debug.Printf("seat lost its keyboard %v", id)
		}
		return nil
	}
	if c.ids.Lookup(objstore.Keyboard) != 0 {
		return nil
	}
	return c.getKeyboard()
}

func (c *Client) seatName(msg *wire.MessageBuffer) error {
	name := msg.ReadString()
	if err := msg.Err(); err != nil {
		return err
	}

	debug.Printf("seat name: %q", name)
	return nil
}
