package client

import (
	"log"

	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func getRegistry(display, id uint32) *wire.MessageBuilder {
	msg := request(protocol.Display, display, protocol.DisplayGetRegistry)
	msg.WriteUint(id)
	return msg
}

// displayError records an error reported by the compositor. The
// offending object is flagged as invalid but the client keeps
// running.
func (c *Client) displayError(msg *wire.MessageBuffer) error {
	perr := ProtocolError{
		Object:  msg.ReadUint(),
		Code:    msg.ReadUint(),
		Message: msg.ReadString(),
	}
	if err := msg.Err(); err != nil {
		return err
	}

	iface := "unknown"
	if role, ok := c.ids.Owner(perr.Object); ok {
		iface = roleInterfaces[role]
	} else if c.frames.owns(perr.Object) {
		iface = protocol.Buffer
	}

	c.gm.Lock()
	c.invalid.Add(perr.Object)
	c.gm.Unlock()

	c.metrics.protocolErrors.WithLabelValues(iface).Inc()
	log.Printf("%v (%v)", perr, iface)
	return nil
}

func (c *Client) displayDeleteID(msg *wire.MessageBuffer) error {
	id := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	c.gm.Lock()
	c.invalid.Delete(id)
	c.gm.Unlock()

	debug.Printf("object %v deleted", id)
	return nil
}
