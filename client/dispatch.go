package client

import (
	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

type handler func(*Client, *wire.MessageBuffer) error

type handlerKey struct {
	role objstore.Role
	op   uint16
}

// roleInterfaces maps each role to the interface of the object that
// plays it.
var roleInterfaces = map[objstore.Role]string{
	objstore.Display:       protocol.Display,
	objstore.Registry:      protocol.Registry,
	objstore.Shm:           protocol.Shm,
	objstore.Compositor:    protocol.Compositor,
	objstore.WmBase:        protocol.WmBase,
	objstore.LayerShell:    protocol.LayerShell,
	objstore.Seat:          protocol.Seat,
	objstore.Surface:       protocol.Surface,
	objstore.LayerSurface:  protocol.LayerSurface,
	objstore.ShmPool:       protocol.ShmPool,
	objstore.Keyboard:      protocol.Keyboard,
	objstore.FrameCallback: protocol.Callback,
}

// globalRoles maps the interfaces that the client binds to the roles
// that they fill.
var globalRoles = map[string]objstore.Role{
	protocol.Shm:        objstore.Shm,
	protocol.Compositor: objstore.Compositor,
	protocol.WmBase:     objstore.WmBase,
	protocol.LayerShell: objstore.LayerShell,
	protocol.Seat:       objstore.Seat,
}

var handlers map[handlerKey]handler

func init() {
	handlers = map[handlerKey]handler{
		{objstore.Display, protocol.DisplayError}:    (*Client).displayError,
		{objstore.Display, protocol.DisplayDeleteID}: (*Client).displayDeleteID,

		{objstore.Registry, protocol.RegistryGlobal}:       (*Client).registryGlobal,
		{objstore.Registry, protocol.RegistryGlobalRemove}: (*Client).registryGlobalRemove,

		{objstore.Shm, protocol.ShmFormat}: (*Client).shmFormat,

		{objstore.WmBase, protocol.WmBasePing}: (*Client).wmBasePing,

		{objstore.Seat, protocol.SeatCapabilities}: (*Client).seatCapabilities,
		{objstore.Seat, protocol.SeatName}:         (*Client).seatName,

		{objstore.Surface, protocol.SurfaceEnter}:                    (*Client).surfaceEnter,
		{objstore.Surface, protocol.SurfaceLeave}:                    (*Client).surfaceLeave,
		{objstore.Surface, protocol.SurfacePreferredBufferScale}:     (*Client).surfacePreferredBufferScale,
		{objstore.Surface, protocol.SurfacePreferredBufferTransform}: (*Client).surfacePreferredBufferTransform,

		{objstore.LayerSurface, protocol.LayerSurfaceConfigure}: (*Client).layerSurfaceConfigure,
		{objstore.LayerSurface, protocol.LayerSurfaceClosed}:    (*Client).layerSurfaceClosed,

		{objstore.Keyboard, protocol.KeyboardKeymap}:     (*Client).keyboardKeymap,
		{objstore.Keyboard, protocol.KeyboardEnter}:      (*Client).keyboardEnter,
		{objstore.Keyboard, protocol.KeyboardLeave}:      (*Client).keyboardLeave,
		{objstore.Keyboard, protocol.KeyboardKey}:        (*Client).keyboardKey,
		{objstore.Keyboard, protocol.KeyboardModifiers}:  (*Client).keyboardModifiers,
		{objstore.Keyboard, protocol.KeyboardRepeatInfo}: (*Client).keyboardRepeatInfo,

		{objstore.FrameCallback, protocol.CallbackDone}: (*Client).callbackDone,
	}
}

var bufferHandlers = map[uint16]handler{
	protocol.BufferRelease: (*Client).bufferRelease,
}

// lookup finds the handler for msg along with the interface of its
// sender. Buffers are not roles, so their IDs are resolved through the
// presenter.
func (c *Client) lookup(msg *wire.MessageBuffer) (string, handler, bool) {
	if role, ok := c.ids.Owner(msg.Sender()); ok {
		iface := roleInterfaces[role]
		h, ok := handlers[handlerKey{role: role, op: msg.Op()}]
		return iface, h, ok
	}

	if c.frames.owns(msg.Sender()) {
		h, ok := bufferHandlers[msg.Op()]
		return protocol.Buffer, h, ok
	}

	return "", nil, false
}

// dispatch routes msg to its handler. Messages from unknown objects or
// with unknown opcodes are logged and dropped. Errors returned are
// fatal to the connection.
func (c *Client) dispatch(msg *wire.MessageBuffer) error {
	iface, h, ok := c.lookup(msg)
	if !ok {
		if iface == "" {
			debug.Printf("%v", wire.UnknownSenderIDError{Msg: msg})
			c.metrics.unknownEvents.WithLabelValues("unknown").Inc()
			return nil
		}

		debug.Printf("%v", wire.UnknownOpError{Interface: iface, Type: "event", Op: msg.Op()})
		c.metrics.unknownEvents.WithLabelValues(iface).Inc()
		return nil
	}

	name := protocol.EventName(iface, msg.Op())
	c.metrics.events.WithLabelValues(iface, name).Inc()

	err := h(c, msg)
	if debug.Enabled() {
		debug.Printf("%v", msg.Debug(iface, name))
	}
	return err
}
