package client

import (
	"fmt"
	"log"

	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/keymap"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/shm"
	"deedles.dev/chlorostart/wire"
	"golang.org/x/sys/unix"
)

// evdevOffset is the difference between the evdev keycodes sent in key
// events and XKB keycodes.
const evdevOffset = 8

// keyboardKeymap maps and parses a new keymap. A keymap that can't be
// used is logged and ignored.
func (c *Client) keyboardKeymap(msg *wire.MessageBuffer) error {
	format := msg.ReadUint()
	fd := msg.ReadFD()
	size := msg.ReadUint()
	if err := msg.Err(); err != nil {
		if fd >= 0 {
			unix.Close(fd)
		}
		return err
	}

	if format != protocol.KeyboardKeymapFormatXKBV1 {
		unix.Close(fd)
		log.Printf("unsupported keymap format %v", format)
		return nil
	}

	err := c.loadKeymap(fd, int(size))
	if err != nil {
		log.Printf("keymap: %v", err)
	}
	return nil
}

func (c *Client) loadKeymap(fd int, size int) error {
	region, err := shm.RegionFromFD(fd, size)
	if err != nil {
		return err
	}

	km, err := keymap.Parse(region.Bytes())
	if err != nil {
		region.Close()
		return fmt.Errorf("parse: %w", err)
	}

	c.km.Lock()
	defer c.km.Unlock()

	if c.kmap != nil {
		c.kmap.Close()
	}
	c.kmap = region
	c.keymap = km
	return nil
}

func (c *Client) keyboardEnter(msg *wire.MessageBuffer) error {
	msg.ReadUint()
	surface := msg.ReadUint()
	keys := msg.ReadArray()
	if err := msg.Err(); err != nil {
		return err
	}

	debug.Printf("keyboard entered surface %v with %v keys held", surface, len(keys)/4)
	return nil
}

func (c *Client) keyboardLeave(msg *wire.MessageBuffer) error {
	msg.ReadUint()
	surface := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	debug.Printf("keyboard left surface %v", surface)
	return nil
}

// keyboardKey hands key releases to the key worker so that looking
// them up never holds up dispatch.
func (c *Client) keyboardKey(msg *wire.MessageBuffer) error {
	msg.ReadUint()
	msg.ReadUint()
	key := msg.ReadUint()
	state := msg.ReadUint()
	if err := msg.Err(); err != nil {
		return err
	}

	if state != protocol.KeyboardKeyStateReleased {
		return nil
	}
	c.keys.Add(func() error {
		c.keyReleased(key)
		return nil
	})
	return nil
}

func (c *Client) keyReleased(key uint32) {
	c.km.Lock()
	exit := c.keymap.HasAny(key+evdevOffset, c.cfg.ExitKeys)
	c.km.Unlock()

	if exit {
		debug.Printf("exit key %v released", key)
		c.Exit()
	}
}

func (c *Client) keyboardModifiers(msg *wire.MessageBuffer) error {
	for range 5 {
		msg.ReadUint()
	}
	return msg.Err()
}

func (c *Client) keyboardRepeatInfo(msg *wire.MessageBuffer) error {
	rate := msg.ReadInt()
	delay := msg.ReadInt()
	if err := msg.Err(); err != nil {
		return err
	}

	debug.Printf("key repeat: %v/s after %vms", rate, delay)
	return nil
}
