package wire

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// MessageBuffer holds a complete message that has been read from the
// socket but not yet decoded. Decoding errors are sticky: after the
// first failure every further read returns a zero value and Err
// reports the failure.
type MessageBuffer struct {
	sender uint32
	op     uint16
	size   uint16
	data   []byte
	off    int
	conn   *Conn
	err    error
	args   []string
}

// ReadMessage reads the 8-byte header and then the rest of the message
// from c. The full body is buffered before it is returned.
func ReadMessage(c *Conn) (*MessageBuffer, error) {
	var hdr [HeaderSize]byte
	_, err := io.ReadFull(c, hdr[:])
	if err != nil {
		return nil, fmt.Errorf("read message header: %w", err)
	}

	var off int
	h, err := ReadHeader(hdr[:], &off)
	if err != nil {
		return nil, fmt.Errorf("decode message header: %w", err)
	}
	if h.Size < HeaderSize {
		return nil, MalformedError{Reason: fmt.Sprintf("size %v is smaller than the header", h.Size)}
	}

	data := make([]byte, h.Size-HeaderSize)
	_, err = io.ReadFull(c, data)
	if err != nil {
		return nil, fmt.Errorf("read message body: %w", err)
	}

	return &MessageBuffer{
		sender: h.Sender,
		op:     h.Op,
		size:   h.Size,
		data:   data,
		conn:   c,
	}, nil
}

// Sender is the object ID of the sender of the message.
func (r *MessageBuffer) Sender() uint32 {
	return r.sender
}

// Op is the opcode of the message.
func (r *MessageBuffer) Op() uint16 {
	return r.op
}

// Size is the total size of the message, including the 8 byte header.
func (r *MessageBuffer) Size() uint16 {
	return r.size
}

// Body returns the undecoded message body.
func (r *MessageBuffer) Body() []byte {
	return r.data
}

func (r *MessageBuffer) Err() error {
	return r.err
}

func (r *MessageBuffer) ReadUint() (v uint32) {
	if r.err != nil {
		return
	}

	v, r.err = Uint32(r.data, &r.off)
	r.args = append(r.args, strconv.FormatUint(uint64(v), 10))
	return v
}

func (r *MessageBuffer) ReadInt() (v int32) {
	if r.err != nil {
		return
	}

	v, r.err = Int32(r.data, &r.off)
	r.args = append(r.args, strconv.FormatInt(int64(v), 10))
	return v
}

func (r *MessageBuffer) ReadString() (v string) {
	if r.err != nil {
		return
	}

	v, r.err = String(r.data, &r.off)
	r.args = append(r.args, strconv.Quote(v))
	return v
}

func (r *MessageBuffer) ReadArray() (v []byte) {
	if r.err != nil {
		return
	}

	v, r.err = Array(r.data, &r.off)
	r.args = append(r.args, "array["+strconv.Itoa(len(v))+"]")
	return v
}

// ReadFD claims the oldest file descriptor received on the connection
// that the message was read from. The caller owns the returned
// descriptor.
func (r *MessageBuffer) ReadFD() int {
	if r.err != nil {
		return -1
	}

	if r.conn == nil {
		r.err = MalformedError{Reason: "no file descriptor received"}
		return -1
	}
	fd, ok := r.conn.PopFD()
	if !ok {
		r.err = MalformedError{Reason: "no file descriptor received"}
		return -1
	}
	r.args = append(r.args, "fd "+strconv.FormatInt(int64(fd), 10))
	return fd
}

// Debug formats the decoded arguments as a call on sender, for
// example "wl_registry@2.global(1, "wl_shm", 1)".
func (r *MessageBuffer) Debug(sender, method string) string {
	return fmt.Sprintf("%v@%v.%v(%v)", sender, r.sender, method, strings.Join(r.args, ", "))
}
