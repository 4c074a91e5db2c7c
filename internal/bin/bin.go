// Package bin contains utilities for dealing with binary representations
// in the host's byte order.
package bin

import "unsafe"

func Bytes[T ~int32 | ~uint32](v T) [4]byte {
	return *(*[4]byte)(unsafe.Pointer(&v))
}

func Value[T ~int32 | ~uint32](data [4]byte) T {
	return *(*T)(unsafe.Pointer(&data))
}

func Bytes16[T ~int16 | ~uint16](v T) [2]byte {
	return *(*[2]byte)(unsafe.Pointer(&v))
}

func Value16[T ~int16 | ~uint16](data [2]byte) T {
	return *(*T)(unsafe.Pointer(&data))
}

// Put stores v at the start of buf, which must be at least 4 bytes
// long.
func Put[T ~int32 | ~uint32](buf []byte, v T) {
	data := Bytes(v)
	copy(buf[:4], data[:])
}

// Get loads a value from the first 4 bytes of buf.
func Get[T ~int32 | ~uint32](buf []byte) T {
	return Value[T]([4]byte(buf[:4]))
}
