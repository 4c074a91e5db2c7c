package client

import (
	"fmt"
	"image"
	"os"

	"deedles.dev/chlorostart/wire"
)

const (
	DefaultWidth     = 800
	DefaultHeight    = 800
	DefaultNamespace = "chlorostart"
)

// Config configures a Client.
type Config struct {
	// RuntimeDir and Display locate the compositor's socket. See
	// wire.SocketPath.
	RuntimeDir string
	Display    string

	// Width and Height are the size of the surface requested from the
	// compositor. The shared memory region is sized for two frames of
	// this size and never grows.
	Width  int
	Height int

	// Namespace is the layer surface namespace.
	Namespace string

	// ExitKeys are the keysym names that cause the client to exit when
	// released.
	ExitKeys []string

	// Background is drawn under the shapes every frame. If it is nil,
	// frames are cleared to transparent.
	Background image.Image
}

// DefaultConfig returns a Config with all fields except for the
// socket location filled in.
func DefaultConfig() Config {
	return Config{
		Width:     DefaultWidth,
		Height:    DefaultHeight,
		Namespace: DefaultNamespace,
		ExitKeys:  []string{"Escape"},
	}
}

// ConfigFromEnv returns the default config with the socket location
// read from $XDG_RUNTIME_DIR and $WAYLAND_DISPLAY. Both must be set.
func ConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	dir, ok := os.LookupEnv("XDG_RUNTIME_DIR")
	if !ok {
		return cfg, wire.ErrNoRuntimeDir
	}
	display, ok := os.LookupEnv("WAYLAND_DISPLAY")
	if !ok {
		return cfg, wire.ErrNoDisplay
	}

	cfg.RuntimeDir = dir
	cfg.Display = display
	return cfg, nil
}

// SocketPath returns the path of the compositor's socket.
func (cfg Config) SocketPath() string {
	return wire.SocketPath(cfg.RuntimeDir, cfg.Display)
}

// Dial connects to the compositor's socket.
func (cfg Config) Dial() (*wire.Conn, error) {
	conn, err := wire.Dial(cfg.SocketPath())
	if err != nil {
		return nil, fmt.Errorf("dial %v: %w", cfg.SocketPath(), err)
	}
	return conn, nil
}

func (cfg Config) withDefaults() Config {
	def := DefaultConfig()
	if cfg.Width == 0 {
		cfg.Width = def.Width
	}
	if cfg.Height == 0 {
		cfg.Height = def.Height
	}
	if cfg.Namespace == "" {
		cfg.Namespace = def.Namespace
	}
	if cfg.ExitKeys == nil {
		cfg.ExitKeys = def.ExitKeys
	}
	return cfg
}

func (cfg Config) validate() error {
	if (cfg.Width < 0) || (cfg.Height < 0) {
		return fmt.Errorf("invalid surface size %vx%v", cfg.Width, cfg.Height)
	}
	if cfg.Width*cfg.Height*4*2 > int(^uint32(0)>>1) {
		return fmt.Errorf("surface size %vx%v is too large", cfg.Width, cfg.Height)
	}
	return nil
}
