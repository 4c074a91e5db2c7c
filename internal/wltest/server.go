// Package wltest provides a scripted fake compositor for testing
// clients. The test drives it directly: it receives every request the
// client sends, in order, and sends whatever events the test asks it
// to.
package wltest

import (
	"errors"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"deedles.dev/chlorostart/wire"
)

// Timeout bounds every wait performed by the package.
var Timeout = 5 * time.Second

type Server struct {
	// Dir and Display locate the listening socket in the same way as
	// XDG_RUNTIME_DIR and WAYLAND_DISPLAY.
	Dir     string
	Display string

	done    chan struct{}
	close   sync.Once
	lis     *net.UnixListener
	clients chan *Client
}

// NewServer starts listening on a socket in a temporary directory. The
// server is closed when the test finishes.
func NewServer(t testing.TB) *Server {
	t.Helper()

	dir := t.TempDir()
	display := "wayland-test"
	lis, err := net.ListenUnix("unix", &net.UnixAddr{Name: filepath.Join(dir, display), Net: "unix"})
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := Server{
		Dir:     dir,
		Display: display,
		done:    make(chan struct{}),
		lis:     lis,
		clients: make(chan *Client),
	}
	go server.listen()
	t.Cleanup(func() { server.Close() })

	return &server
}

func (server *Server) listen() {
	for {
		c, err := server.lis.AcceptUnix()
		if err != nil {
			return
		}

		client := newClient(wire.NewConn(c))
		select {
		case <-server.done:
			client.Close()
			return
		case server.clients <- client:
		}
	}
}

// Path is the path of the listening socket.
func (server *Server) Path() string {
	return wire.SocketPath(server.Dir, server.Display)
}

// Accept waits for the next client to connect.
func (server *Server) Accept(t testing.TB) *Client {
	t.Helper()

	select {
	case client := <-server.clients:
		t.Cleanup(func() { client.Close() })
		return client
	case <-time.After(Timeout):
		t.Fatal("timed out waiting for a client")
		return nil
	}
}

func (server *Server) Close() error {
	server.close.Do(func() { close(server.done) })
	err := server.lis.Close()
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}
