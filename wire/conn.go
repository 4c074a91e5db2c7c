package wire

import (
	"errors"
	"fmt"
	"io"
	"net"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"
)

// maxFDs is the most file descriptors accepted alongside a single read.
const maxFDs = 28

func pop[T any, S ~[]T](s *S) (v T, ok bool) {
	if len(*s) == 0 {
		return v, false
	}

	v = (*s)[0]
	*s = (*s)[1:]
	return v, true
}

// SocketPath joins the runtime directory and display name into the
// path of the compositor's socket. An absolute display name is returned
// as is.
func SocketPath(runtimeDir, display string) string {
	if filepath.IsAbs(display) {
		return display
	}
	return filepath.Join(runtimeDir, display)
}

// Conn represents a low-level Wayland connection. Reads collect any
// file descriptors passed alongside the data into a queue from which
// messages that carry descriptors take them in arrival order. Writes
// are serialized so that concurrent requests never interleave.
type Conn struct {
	conn *net.UnixConn

	wmu sync.Mutex

	fmu sync.Mutex
	fds []int
}

// NewConn creates a new Conn that wraps c. After this is called, use
// the provided Close method to close c instead of calling its own
// Close method.
func NewConn(c *net.UnixConn) *Conn {
	return &Conn{
		conn: c,
	}
}

// Dial opens a connection to the socket at path.
func Dial(path string) (*Conn, error) {
	s, err := net.Dial("unix", path)
	if err != nil {
		return nil, err
	}
	return NewConn(s.(*net.UnixConn)), nil
}

// Close closes the underlying connection and any received file
// descriptors that were never claimed.
func (c *Conn) Close() error {
	c.fmu.Lock()
	fds := c.fds
	c.fds = nil
	c.fmu.Unlock()

	errs := []error{c.conn.Close()}
	for _, fd := range fds {
		errs = append(errs, unix.Close(fd))
	}
	return errors.Join(errs...)
}

// Read reads data from the socket, queueing any file descriptors that
// arrive with it.
func (c *Conn) Read(buf []byte) (int, error) {
	oob := make([]byte, unix.CmsgSpace(maxFDs*4))
	n, oobn, _, _, err := c.conn.ReadMsgUnix(buf, oob)
	if oobn > 0 {
		err = errors.Join(err, c.readFDs(oob[:oobn]))
	}
	if (n == 0) && (err == nil) {
		return 0, io.EOF
	}
	// io.ReadFull only recognizes a bare io.EOF.
	if errors.Is(err, io.EOF) {
		err = io.EOF
	}
	return n, err
}

func (c *Conn) readFDs(data []byte) error {
	cmsgs, err := unix.ParseSocketControlMessage(data)
	if err != nil {
		return fmt.Errorf("parse socket control messages: %w", err)
	}

	c.fmu.Lock()
	defer c.fmu.Unlock()

	for _, cmsg := range cmsgs {
		fds, err := unix.ParseUnixRights(&cmsg)
		if err != nil {
			if errors.Is(err, unix.EINVAL) {
				continue
			}
			return fmt.Errorf("parse unix control message: %w", err)
		}
		c.fds = append(c.fds, fds...)
	}
	return nil
}

// PopFD removes and returns the oldest received file descriptor. The
// caller becomes responsible for closing it.
func (c *Conn) PopFD() (int, bool) {
	c.fmu.Lock()
	defer c.fmu.Unlock()

	return pop(&c.fds)
}

// WriteMsg writes a complete message, passing fds as ancillary data
// with its first byte.
func (c *Conn) WriteMsg(data []byte, fds []int) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()

	var oob []byte
	if len(fds) > 0 {
		oob = unix.UnixRights(fds...)
	}

	n, _, err := c.conn.WriteMsgUnix(data, oob, nil)
	if err != nil {
		return err
	}
	if n < len(data) {
		_, err = c.conn.Write(data[n:])
	}
	return err
}
