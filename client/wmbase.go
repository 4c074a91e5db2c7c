package client

import (
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func pong(wmBase, serial uint32) *wire.MessageBuilder {
	msg := request(protocol.WmBase, wmBase, protocol.WmBasePong)
	msg.WriteUint(serial)
	return msg
}

func (c *Client) wmBasePing(msg *wire.MessageBuffer) error {
	serial := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}
	return c.send(pong(msg.Sender(), serial))
}
