// Package shape provides the animated shapes that the client draws.
package shape

import (
	"fmt"
	"image"
	"math"

	"deedles.dev/chlorostart/shm/shmimage"
)

// Kind identifies the geometry of a Shape.
type Kind int

const (
	Rectangle Kind = iota
	Circle
)

func (k Kind) String() string {
	switch k {
	case Rectangle:
		return "rectangle"
	case Circle:
		return "circle"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Canvas is a surface that shapes are composited onto. Pixels outside
// of Bounds are ignored.
type Canvas interface {
	Bounds() image.Rectangle
	Blend(x, y int, c shmimage.Color) bool
	BlendSpan(x, y, n int, c shmimage.Color) bool
}

// Shape is a rectangle or a circle that moves by Vel every update.
//
// For a Rectangle, Pos is the top-left corner, Size is its dimensions
// and Radius is the radius of its corners. For a Circle, Pos is the
// center and Radius is the radius. Size is unused.
type Shape struct {
	Kind   Kind
	Pos    image.Point
	Size   image.Point
	Radius int
	Color  shmimage.Color
	Vel    image.Point
}

// NewRectangle returns a rectangle covering r with corners rounded to
// radius.
func NewRectangle(r image.Rectangle, radius int, c shmimage.Color) Shape {
	r = r.Canon()
	return Shape{
		Kind:   Rectangle,
		Pos:    r.Min,
		Size:   r.Size(),
		Radius: radius,
		Color:  c,
	}
}

// NewCircle returns a circle centered at center.
func NewCircle(center image.Point, radius int, c shmimage.Color) Shape {
	return Shape{
		Kind:   Circle,
		Pos:    center,
		Radius: radius,
		Color:  c,
	}
}

// Moving returns a copy of s with its velocity set to vel.
func (s Shape) Moving(vel image.Point) Shape {
	s.Vel = vel
	return s
}

// Bounds returns the smallest rectangle containing s.
func (s Shape) Bounds() image.Rectangle {
	switch s.Kind {
	case Circle:
		r := image.Pt(s.Radius, s.Radius)
		return image.Rectangle{Min: s.Pos.Sub(r), Max: s.Pos.Add(r)}
	default:
		return image.Rectangle{Min: s.Pos, Max: s.Pos.Add(s.Size)}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

// Update moves s by its velocity. If that takes it outside of bounds
// it is moved back inside and its velocity along that axis is
// reversed.
func (s *Shape) Update(bounds image.Rectangle) {
	s.Pos = s.Pos.Add(s.Vel)

	b := s.Bounds()
	switch {
	case b.Min.X < bounds.Min.X:
		s.Pos.X += bounds.Min.X - b.Min.X
		s.Vel.X = abs(s.Vel.X)
	case b.Max.X > bounds.Max.X:
		s.Pos.X -= b.Max.X - bounds.Max.X
		s.Vel.X = -abs(s.Vel.X)
	}
	switch {
	case b.Min.Y < bounds.Min.Y:
		s.Pos.Y += bounds.Min.Y - b.Min.Y
		s.Vel.Y = abs(s.Vel.Y)
	case b.Max.Y > bounds.Max.Y:
		s.Pos.Y -= b.Max.Y - bounds.Max.Y
		s.Vel.Y = -abs(s.Vel.Y)
	}
}

// Draw composites s onto c.
func (s Shape) Draw(c Canvas) {
	if !s.Bounds().Overlaps(c.Bounds()) {
		return
	}

	switch s.Kind {
	case Rectangle:
		s.drawRectangle(c)
	case Circle:
		s.drawCircle(c)
	}
}

func (s Shape) drawRectangle(c Canvas) {
	b := s.Bounds()
	w, h := b.Dx(), b.Dy()
	rad := max(0, min(s.Radius, w/2, h/2))

	for row := range h {
		var inset int
		if edge := min(row, h-1-row); edge < rad {
			dy := float64(rad-edge) - 0.5
			inset = rad - int(math.Sqrt(float64(rad*rad)-dy*dy))
		}
		c.BlendSpan(b.Min.X+inset, b.Min.Y+row, w-2*inset, s.Color)
	}
}

// drawCircle fills the interior of the circle with spans and blends
// each edge pixel with the color scaled by how much of the pixel the
// circle covers.
func (s Shape) drawCircle(c Canvas) {
	if s.Radius <= 0 {
		return
	}

	r := float64(s.Radius)
	cx, cy := float64(s.Pos.X), float64(s.Pos.Y)
	x0 := int(math.Floor(cx - r - 0.5))
	x1 := int(math.Ceil(cx + r + 0.5))

	for y := s.Pos.Y - s.Radius - 1; y <= s.Pos.Y+s.Radius; y++ {
		dy := float64(y) + 0.5 - cy
		if math.Abs(dy) > r+0.5 {
			continue
		}

		span := -1
		for x := x0; x < x1; x++ {
			cov := r + 0.5 - math.Hypot(float64(x)+0.5-cx, dy)
			if cov >= 1 {
				if span < 0 {
					span = x
				}
				continue
			}

			if span >= 0 {
				c.BlendSpan(span, y, x-span, s.Color)
				span = -1
			}
			if cov > 0 {
				c.Blend(x, y, shmimage.Scale(s.Color, cov))
			}
		}
		if span >= 0 {
			c.BlendSpan(span, y, x1-span, s.Color)
		}
	}
}
