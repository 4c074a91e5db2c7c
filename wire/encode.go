package wire

import (
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// MessageBuilder is a message that is under construction. Arguments
// are collected first so that the exact size of the message is known
// before its buffer is allocated.
type MessageBuilder struct {
	// Interface and Method name the request being built. They are
	// included purely for debugging purposes.
	Interface string
	Method    string

	sender uint32
	op     uint16
	args   []any
	fds    []int
	err    error
}

func NewMessage(sender uint32, op uint16) *MessageBuilder {
	return &MessageBuilder{
		sender: sender,
		op:     op,
	}
}

func (mb *MessageBuilder) Sender() uint32 {
	return mb.sender
}

func (mb *MessageBuilder) Op() uint16 {
	return mb.op
}

func (mb *MessageBuilder) WriteUint(v uint32) {
	mb.args = append(mb.args, v)
}

func (mb *MessageBuilder) WriteInt(v int32) {
	mb.args = append(mb.args, v)
}

// WriteObject writes a reference to an object ID. Zero is the null
// object.
func (mb *MessageBuilder) WriteObject(id uint32) {
	mb.WriteUint(id)
}

func (mb *MessageBuilder) WriteString(v string) {
	mb.args = append(mb.args, v)
}

func (mb *MessageBuilder) WriteArray(v []byte) {
	mb.args = append(mb.args, v)
}

// WriteFD attaches a duplicate of fd to the message. The duplicate is
// closed once the message is sent, so the caller keeps ownership of
// fd.
func (mb *MessageBuilder) WriteFD(fd int) {
	if mb.err != nil {
		return
	}

	dup, err := unix.Dup(fd)
	if err != nil {
		mb.err = fmt.Errorf("dup fd %v: %w", fd, err)
		return
	}

	if len(mb.fds) == 0 {
		runtime.SetFinalizer(mb, (*MessageBuilder).close)
	}
	mb.fds = append(mb.fds, dup)
}

// Size returns the total size of the message, including the header.
func (mb *MessageBuilder) Size() int {
	size := HeaderSize
	for _, arg := range mb.args {
		switch arg := arg.(type) {
		case string:
			size += StringSize(arg)
		case []byte:
			size += ArraySize(arg)
		default:
			size += 4
		}
	}
	return size
}

// Bytes encodes the message into a buffer of exactly Size bytes.
func (mb *MessageBuilder) Bytes() ([]byte, error) {
	if mb.err != nil {
		return nil, mb.err
	}

	size := mb.Size()
	if size > MaxMessageSize {
		return nil, ErrTooLarge
	}

	buf := make([]byte, size)
	var off int
	PutHeader(buf, Header{Sender: mb.sender, Op: mb.op, Size: uint16(size)}, &off)
	for _, arg := range mb.args {
		switch arg := arg.(type) {
		case uint32:
			PutUint32(buf, arg, &off)
		case int32:
			PutInt32(buf, arg, &off)
		case string:
			PutString(buf, arg, &off)
		case []byte:
			PutArray(buf, arg, &off)
		}
	}
	if off != size {
		panic(fmt.Errorf("encoded %v bytes of a %v byte message", off, size))
	}

	return buf, nil
}

// Build builds the message and sends it to c along with any attached
// file descriptors. The MessageBuilder should not be used again after
// this method is called.
func (mb *MessageBuilder) Build(c *Conn) error {
	defer mb.close()

	data, err := mb.Bytes()
	if err != nil {
		return err
	}
	return c.WriteMsg(data, mb.fds)
}

func (mb *MessageBuilder) close() {
	errs := make([]error, 0, len(mb.fds))
	for _, fd := range mb.fds {
		errs = append(errs, unix.Close(fd))
	}
	if mb.err == nil {
		mb.err = errors.Join(errs...)
	}
	mb.fds = nil
	runtime.SetFinalizer(mb, nil)
}

func (mb *MessageBuilder) String() string {
	args := make([]string, 0, len(mb.args)+len(mb.fds))
	for _, arg := range mb.args {
		switch arg := arg.(type) {
		case string:
			args = append(args, strconv.Quote(arg))
		case []byte:
			args = append(args, "array["+strconv.Itoa(len(arg))+"]")
		default:
			args = append(args, fmt.Sprint(arg))
		}
	}
	for _, fd := range mb.fds {
		args = append(args, "fd "+strconv.Itoa(fd))
	}

	return fmt.Sprintf("%v@%v.%v(%v)", mb.Interface, mb.sender, mb.Method, strings.Join(args, ", "))
}
