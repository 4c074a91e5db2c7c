package client

import (
	"log"

	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

func bind(registry, name uint32, iface string, version, id uint32) *wire.MessageBuilder {
	msg := request(protocol.Registry, registry, protocol.RegistryBind)
	msg.WriteUint(name)
	msg.WriteString(iface)
	msg.WriteUint(version)
	msg.WriteUint(id)
	return msg
}

// registryGlobal records an advertised global and binds it if it is
// one of the interfaces that the client needs and hasn't bound yet.
// Every successful bind is followed by an attempt to initialize the
// toplevel.
func (c *Client) registryGlobal(msg *wire.MessageBuffer) error {
	name := msg.ReadUint()
	iface := msg.ReadString()
	version := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	c.gm.Lock()
	c.globals[name] = Global{Interface: iface, Version: version}
	c.gm.Unlock()

	role, ok := globalRoles[iface]
	if !ok || (c.ids.Lookup(role) != 0) {
		return nil
	}

	registry, err := c.need(objstore.Registry)
	if err != nil {
		return err
	}

	id := c.ids.Alloc()
	err = c.send(bind(registry, name, iface, min(version, protocol.Version(iface)), id))
	if err != nil {
		return err
	}
	c.ids.Bind(role, id)

	c.gm.Lock()
	c.bound[name] = role
	c.gm.Unlock()

	err = c.initToplevel()
	if err != nil {
		if _, ok := err.(UnsetError); ok {
			debug.Printf("toplevel not ready: %v", err)
			return nil
		}
		log.Printf("initialize toplevel: %v", err)
	}
	return nil
}

func (c *Client) registryGlobalRemove(msg *wire.MessageBuffer) error {
	name := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	c.gm.Lock()
	defer c.gm.Unlock()

	delete(c.globals, name)
	if role, ok := c.bound[name]; ok {
		delete(c.bound, name)
		log.Printf("bound global %v (%v) was removed", name, role)
	}
	return nil
}
