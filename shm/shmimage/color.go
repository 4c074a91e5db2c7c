// Package shmimage defines the pixel format used in shared memory
// buffers.
package shmimage

import "image/color"

// Color is a premultiplied 32-bit pixel laid out as 0xAARRGGBB in a
// native-endian word, matching the ARGB8888 shm format.
type Color uint32

const (
	Transparent Color = 0x00000000
	Black       Color = 0xFF000000
	White       Color = 0xFFFFFFFF
)

// NewColor returns a Color from premultiplied channel values.
func NewColor(r, g, b, a uint8) Color {
	return Color((uint32(a) << 24) | (uint32(r) << 16) | (uint32(g) << 8) | uint32(b))
}

func (c Color) RGBA() (r, g, b, a uint32) {
	a = uint32(c.A()) * 0x101
	r = uint32(c.R()) * 0x101
	g = uint32(c.G()) * 0x101
	b = uint32(c.B()) * 0x101
	return
}

func (c Color) R() uint8 {
	return uint8((c & 0x00FF0000) >> 16)
}

func (c Color) G() uint8 {
	return uint8((c & 0x0000FF00) >> 8)
}

func (c Color) B() uint8 {
	return uint8(c & 0x000000FF)
}

func (c Color) A() uint8 {
	return uint8((c & 0xFF000000) >> 24)
}

// Over composites src over dst. A fully opaque source or a fully
// transparent destination yields src and a fully transparent source
// yields dst. Otherwise each channel is src + dst*(255-srcAlpha)/255,
// clamped to 255.
func Over(src, dst Color) Color {
	sa := uint32(src.A())
	switch {
	case (sa == 0xFF) || (dst.A() == 0):
		return src
	case sa == 0:
		return dst
	}

	ch := func(s, d uint8) uint8 {
		v := uint32(s) + uint32(d)*(0xFF-sa)/0xFF
		return uint8(min(v, 0xFF))
	}
	return NewColor(
		ch(src.R(), dst.R()),
		ch(src.G(), dst.G()),
		ch(src.B(), dst.B()),
		ch(src.A(), dst.A()),
	)
}

// Scale multiplies every channel of c by f, which is clamped to [0, 1].
// Because c is premultiplied this is the color of a pixel that c covers
// by the fraction f.
func Scale(c Color, f float64) Color {
	f = max(0, min(f, 1))
	ch := func(v uint8) uint8 {
		return uint8(float64(v)*f + 0.5)
	}
	return NewColor(ch(c.R()), ch(c.G()), ch(c.B()), ch(c.A()))
}

// Model converts arbitrary colors to Color.
var Model color.Model = color.ModelFunc(model)

func model(c color.Color) color.Color {
	if c, ok := c.(Color); ok {
		return c
	}

	r, g, b, a := c.RGBA()
	return NewColor(uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8))
}

// Convert is shorthand for Model.Convert(c).(Color).
func Convert(c color.Color) Color {
	return Model.Convert(c).(Color)
}
