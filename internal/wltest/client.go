package wltest

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/wire"
)

// FD marks an event argument as a file descriptor to pass alongside
// the message.
type FD int

// Client is the server's end of a single connection.
type Client struct {
	conn  *wire.Conn
	close sync.Once
	reqs  chan *wire.MessageBuffer
	err   error
}

func newClient(conn *wire.Conn) *Client {
	client := Client{
		conn: conn,
		reqs: make(chan *wire.MessageBuffer, 1024),
	}
	go client.listen()

	return &client
}

func (client *Client) listen() {
	defer close(client.reqs)

	for {
		msg, err := wire.ReadMessage(client.conn)
		if err != nil {
			client.err = err
			return
		}
		client.reqs <- msg
	}
}

// Next waits for the next request from the client.
func (client *Client) Next(t testing.TB) *wire.MessageBuffer {
	t.Helper()

	select {
	case msg, ok := <-client.reqs:
		if !ok {
			t.Fatalf("connection closed: %v", client.err)
		}
		return msg
	case <-time.After(Timeout):
		t.Fatal("timed out waiting for a request")
		return nil
	}
}

// Expect waits for the next request and fails the test unless it is
// request op of iface sent by sender.
func (client *Client) Expect(t testing.TB, iface string, sender uint32, op uint16) *wire.MessageBuffer {
	t.Helper()

	msg := client.Next(t)
	if (msg.Sender() != sender) || (msg.Op() != op) {
		t.Fatalf("expected %v@%v.%v, got request %v from %v",
			iface, sender, protocol.RequestName(iface, op), msg.Op(), msg.Sender())
	}
	return msg
}

// Until reads requests until one matching sender and op arrives,
// returning it along with everything read before it.
func (client *Client) Until(t testing.TB, sender uint32, op uint16) (*wire.MessageBuffer, []*wire.MessageBuffer) {
	t.Helper()

	var skipped []*wire.MessageBuffer
	for {
		msg := client.Next(t)
		if (msg.Sender() == sender) && (msg.Op() == op) {
			return msg, skipped
		}
		skipped = append(skipped, msg)
	}
}

// Quiet fails the test if the client sends a request within d.
func (client *Client) Quiet(t testing.TB, d time.Duration) {
	t.Helper()

	select {
	case msg, ok := <-client.reqs:
		if ok {
			t.Fatalf("unexpected request %v from %v", msg.Op(), msg.Sender())
		}
	case <-time.After(d):
	}
}

// Disconnected waits for the client to close its end of the
// connection.
func (client *Client) Disconnected(t testing.TB) {
	t.Helper()

	timeout := time.After(Timeout)
	for {
		select {
		case _, ok := <-client.reqs:
			if !ok {
				if (client.err != nil) && !errors.Is(client.err, io.EOF) && !errors.Is(client.err, net.ErrClosed) {
					t.Fatalf("connection failed: %v", client.err)
				}
				return
			}
		case <-timeout:
			t.Fatal("timed out waiting for the client to disconnect")
		}
	}
}

// Send sends event op from sender. Arguments may be uint32, int32,
// string, []byte or FD.
func (client *Client) Send(t testing.TB, sender uint32, op uint16, args ...any) {
	t.Helper()

	err := client.send(sender, op, args...)
	if err != nil {
		t.Fatalf("send event %v from %v: %v", op, sender, err)
	}
}

func (client *Client) send(sender uint32, op uint16, args ...any) error {
	msg := wire.NewMessage(sender, op)
	for _, arg := range args {
		switch arg := arg.(type) {
		case uint32:
			msg.WriteUint(arg)
		case int32:
			msg.WriteInt(arg)
		case string:
			msg.WriteString(arg)
		case []byte:
			msg.WriteArray(arg)
		case FD:
			msg.WriteFD(int(arg))
		default:
			return fmt.Errorf("unsupported argument type %T", arg)
		}
	}
	return msg.Build(client.conn)
}

// SendRaw writes data to the connection as is.
func (client *Client) SendRaw(t testing.TB, data []byte) {
	t.Helper()

	err := client.conn.WriteMsg(data, nil)
	if err != nil {
		t.Fatalf("send raw: %v", err)
	}
}

func (client *Client) Close() error {
	var err error
	client.close.Do(func() { err = client.conn.Close() })
	return err
}
