// Package wire implements the Wayland wire format: fixed-width scalar
// and string codecs, message framing, and the Unix socket transport
// that carries file descriptors alongside message data.
package wire

import (
	"deedles.dev/chlorostart/internal/bin"
)

// HeaderSize is the size of every message header in bytes.
const HeaderSize = 8

// MaxMessageSize is the largest message that fits in the header's
// 16-bit size field.
const MaxMessageSize = 0xFFFF

// Header is the fixed-size prefix of every message.
type Header struct {
	Sender uint32
	Op     uint16
	Size   uint16
}

// padding returns the number of zero bytes needed to bring n up to a
// 4-byte boundary.
func padding(n uint32) uint32 {
	return (4 - n%4) % 4
}

// StringSize returns the number of bytes that PutString writes for s.
func StringSize(s string) int {
	length := uint32(len(s) + 1)
	return 4 + int(length+padding(length))
}

// PutUint32 writes v at *off and advances *off by 4.
func PutUint32(buf []byte, v uint32, off *int) {
	bin.Put(buf[*off:], v)
	*off += 4
}

// PutInt32 writes v at *off and advances *off by 4.
func PutInt32(buf []byte, v int32, off *int) {
	bin.Put(buf[*off:], v)
	*off += 4
}

// PutUint16 writes v at *off and advances *off by 2.
func PutUint16(buf []byte, v uint16, off *int) {
	data := bin.Bytes16(v)
	copy(buf[*off:*off+2], data[:])
	*off += 2
}

// PutString writes s as a length-prefixed, NUL-terminated string padded
// to a 4-byte boundary. The length field counts the NUL but not the
// padding.
func PutString(buf []byte, s string, off *int) {
	length := uint32(len(s) + 1)
	PutUint32(buf, length, off)

	end := *off + int(length+padding(length))
	n := copy(buf[*off:end], s)
	clear(buf[*off+n : end])
	*off = end
}

// ArraySize returns the number of bytes that PutArray writes for data.
func ArraySize(data []byte) int {
	length := uint32(len(data))
	return 4 + int(length+padding(length))
}

// PutArray writes data as a length-prefixed, zero-padded array.
func PutArray(buf []byte, data []byte, off *int) {
	length := uint32(len(data))
	PutUint32(buf, length, off)

	end := *off + int(length+padding(length))
	n := copy(buf[*off:end], data)
	clear(buf[*off+n : end])
	*off = end
}

// PutHeader writes h. The opcode and size share a single 32-bit word
// with the size in the upper half.
func PutHeader(buf []byte, h Header, off *int) {
	PutUint32(buf, h.Sender, off)
	PutUint32(buf, (uint32(h.Size)<<16)|uint32(h.Op), off)
}

func check(buf []byte, off *int, n int) error {
	if (*off < 0) || (len(buf)-*off < n) {
		return ErrTruncated
	}
	return nil
}

// Uint32 reads a value written by PutUint32.
func Uint32(buf []byte, off *int) (uint32, error) {
	if err := check(buf, off, 4); err != nil {
		return 0, err
	}
	v := bin.Get[uint32](buf[*off:])
	*off += 4
	return v, nil
}

// Int32 reads a value written by PutInt32.
func Int32(buf []byte, off *int) (int32, error) {
	if err := check(buf, off, 4); err != nil {
		return 0, err
	}
	v := bin.Get[int32](buf[*off:])
	*off += 4
	return v, nil
}

// Uint16 reads a value written by PutUint16.
func Uint16(buf []byte, off *int) (uint16, error) {
	if err := check(buf, off, 2); err != nil {
		return 0, err
	}
	v := bin.Value16[uint16]([2]byte(buf[*off : *off+2]))
	*off += 2
	return v, nil
}

// String reads a value written by PutString. A zero length field
// denotes a null string and decodes as "".
func String(buf []byte, off *int) (string, error) {
	start := *off
	length, err := Uint32(buf, off)
	if err != nil {
		return "", err
	}
	if length == 0 {
		return "", nil
	}

	size := uint64(length) + uint64(padding(length))
	if uint64(len(buf)-*off) < size {
		*off = start
		return "", ErrTruncated
	}

	data := buf[*off : *off+int(length)]
	if data[length-1] != 0 {
		*off = start
		return "", MalformedError{Reason: "string is not null-terminated"}
	}

	*off += int(size)
	return string(data[:length-1]), nil
}

// Array decodes a length-prefixed array of bytes at *off. The returned
// slice aliases buf.
func Array(buf []byte, off *int) ([]byte, error) {
	start := *off
	length, err := Uint32(buf, off)
	if err != nil {
		return nil, err
	}

	size := uint64(length) + uint64(padding(length))
	if uint64(len(buf)-*off) < size {
		*off = start
		return nil, ErrTruncated
	}

	data := buf[*off : *off+int(length)]
	*off += int(size)
	return data, nil
}

// ReadHeader reads a value written by PutHeader.
func ReadHeader(buf []byte, off *int) (h Header, err error) {
	h.Sender, err = Uint32(buf, off)
	if err != nil {
		return h, err
	}
	so, err := Uint32(buf, off)
	if err != nil {
		return h, err
	}
	h.Size = uint16(so >> 16)
	h.Op = uint16(so & 0xFFFF)
	return h, nil
}
