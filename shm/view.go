package shm

import (
	"fmt"
	"image"
	"image/draw"

	"deedles.dev/chlorostart/shm/shmimage"
	"deedles.dev/ximage/format"
)

// View is a rectangular window onto a Region. Offset is measured in
// pixels from the start of the region and rows are packed, so the
// stride is Width pixels.
type View struct {
	Offset int
	Width  int
	Height int

	region *Region
}

// View returns a view of the region starting at the pixel offset off.
// The view is not checked against the region's size; out of range
// pixels are simply never touched.
func (r *Region) View(off, width, height int) *View {
	return &View{
		Offset: off,
		Width:  width,
		Height: height,
		region: r,
	}
}

// Frames splits the start of the region into n consecutive views of
// width by height pixels each.
func (r *Region) Frames(width, height, n int) ([]*View, error) {
	if (width <= 0) || (height <= 0) || (n <= 0) {
		return nil, fmt.Errorf("invalid frame layout %vx%v*%v", width, height, n)
	}
	if need := width * height * 4 * n; need > r.Size() {
		return nil, fmt.Errorf("%v frames of %vx%v need %v bytes: %w", n, width, height, need, ErrCapacity)
	}

	views := make([]*View, 0, n)
	for i := range n {
		views = append(views, r.View(i*width*height, width, height))
	}
	return views, nil
}

// Len is the number of pixels covered by the view.
func (v *View) Len() int {
	return v.Width * v.Height
}

// ByteOffset is the offset of the view's first pixel in bytes.
func (v *View) ByteOffset() int {
	return v.Offset * 4
}

// Stride is the length of a row in bytes.
func (v *View) Stride() int {
	return v.Width * 4
}

// Overlaps reports whether the pixel ranges of v and o intersect.
func (v *View) Overlaps(o *View) bool {
	return (v.Offset < o.Offset+o.Len()) && (o.Offset < v.Offset+v.Len())
}

func (v *View) Bounds() image.Rectangle {
	return image.Rect(0, 0, v.Width, v.Height)
}

func (v *View) index(x, y int) (int, bool) {
	if (x < 0) || (y < 0) || (x >= v.Width) || (y >= v.Height) {
		return 0, false
	}
	return v.Offset + y*v.Width + x, true
}

// Pixel returns the pixel at (x, y).
func (v *View) Pixel(x, y int) (shmimage.Color, bool) {
	i, ok := v.index(x, y)
	if !ok {
		return 0, false
	}
	return v.region.ReadPixel(i)
}

// Set stores c at (x, y).
func (v *View) Set(x, y int, c shmimage.Color) bool {
	i, ok := v.index(x, y)
	if !ok {
		return false
	}
	return v.region.WritePixel(i, c)
}

// Blend composites c over the pixel at (x, y).
func (v *View) Blend(x, y int, c shmimage.Color) bool {
	i, ok := v.index(x, y)
	if !ok {
		return false
	}
	return v.region.BlendPixel(i, c)
}

// BlendSpan composites c over n pixels of row y starting at x. The
// span is clipped to the view.
func (v *View) BlendSpan(x, y, n int, c shmimage.Color) bool {
	if x < 0 {
		n += x
		x = 0
	}
	n = min(n, v.Width-x)
	if n <= 0 {
		return false
	}

	i, ok := v.index(x, y)
	if !ok {
		return false
	}
	return v.region.BlendSpan(i, n, c)
}

// Fill stores c into every pixel of the view.
func (v *View) Fill(c shmimage.Color) bool {
	return v.region.WriteSpan(v.Offset, v.Len(), c)
}

// Paint calls f with an image backed directly by the view's pixels.
// The region is locked for the duration of the call.
func (v *View) Paint(f func(draw.Image)) bool {
	r := v.region
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.writable || !r.inBounds(v.Offset, v.Len()) {
		return false
	}

	start := v.ByteOffset()
	f(&format.Image{
		Format: format.ARGB8888,
		Rect:   v.Bounds(),
		Pix:    r.mmap[start : start+v.Len()*4],
	})
	return true
}
