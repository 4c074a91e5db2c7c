package client

import (
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func createBuffer(pool, id uint32, offset, width, height, stride int32, format uint32) *wire.MessageBuilder {
	msg := request(protocol.ShmPool, pool, protocol.ShmPoolCreateBuffer)
	msg.WriteUint(id)
	msg.WriteInt(offset)
	msg.WriteInt(width)
	msg.WriteInt(height)
	msg.WriteInt(stride)
	msg.WriteUint(format)
	return msg
}
