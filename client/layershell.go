package client

import (
	"log"

	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func getLayerSurface(shell, id, surface, output, layer uint32, namespace string) *wire.MessageBuilder {
	msg := request(protocol.LayerShell, shell, protocol.LayerShellGetLayerSurface)
	msg.WriteUint(id)
	msg.WriteObject(surface)
	msg.WriteObject(output)
	msg.WriteUint(layer)
	msg.WriteString(namespace)
	return msg
}

func setSize(layerSurface, width, height uint32) *wire.MessageBuilder {
	msg := request(protocol.LayerSurface, layerSurface, protocol.LayerSurfaceSetSize)
	msg.WriteUint(width)
	msg.WriteUint(height)
	return msg
}

func setKeyboardInteractivity(layerSurface, mode uint32) *wire.MessageBuilder {
	msg := request(protocol.LayerSurface, layerSurface, protocol.LayerSurfaceSetKeyboardInteractivity)
	msg.WriteUint(mode)
	return msg
}

func ackConfigure(layerSurface, serial uint32) *wire.MessageBuilder {
	msg := request(protocol.LayerSurface, layerSurface, protocol.LayerSurfaceAckConfigure)
	msg.WriteUint(serial)
	return msg
}

func destroyLayerSurface(layerSurface uint32) *wire.MessageBuilder {
	return request(protocol.LayerSurface, layerSurface, protocol.LayerSurfaceDestroy)
}

// getLayerSurface gives the surface the layer surface role on the
// overlay layer of the compositor's choice of output.
func (c *Client) getLayerSurface() error {
	shell, err := c.need(objstore.LayerShell)
	if err != nil {
		return err
	}
	surface, err := c.need(objstore.Surface)
	if err != nil {
		return err
	}

	id := c.ids.Alloc()
	err = c.send(getLayerSurface(shell, id, surface, 0, protocol.LayerShellLayerOverlay, c.cfg.Namespace))
	if err != nil {
		return err
	}
	c.ids.Bind(objstore.LayerSurface, id)
	return nil
}

func (c *Client) setSize(width, height int) error {
	ls, err := c.need(objstore.LayerSurface)
	if err != nil {
		return err
	}
	return c.send(setSize(ls, uint32(width), uint32(height)))
}

func (c *Client) setKeyboardInteractivity(mode uint32) error {
	ls, err := c.need(objstore.LayerSurface)
	if err != nil {
		return err
	}
	return c.send(setKeyboardInteractivity(ls, mode))
}

// layerSurfaceConfigure acknowledges a configure. A new non-zero size
// replaces the buffers and the first configure starts the frame loop.
func (c *Client) layerSurfaceConfigure(msg *wire.MessageBuffer) error {
	serial := msg.ReadUint()
	width := msg.ReadUint()
	height := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	err := c.send(ackConfigure(msg.Sender(), serial))
	if err != nil {
		return err
	}

	if (width != 0) && (height != 0) {
		err = c.resizeFrames(int(width), int(height))
		if err != nil {
			log.Printf("configure %vx%v: %v", width, height, err)
		}
	}

	if !c.configure.CompareAndSwap(false, true) {
		return nil
	}

	c.gm.Lock()
	argb := c.formats.Has(protocol.ShmFormatARGB8888)
	c.gm.Unlock()
	if !argb {
		log.Printf("compositor did not advertise shm format argb8888")
	}

	return c.present()
}

func (c *Client) layerSurfaceClosed(msg *wire.MessageBuffer) error {
	log.Printf("layer surface closed by compositor")
	c.Exit()
	return nil
}
