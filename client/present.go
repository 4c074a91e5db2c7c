package client

import (
	"errors"
	"fmt"
	"image/draw"
	"sync"
	"time"

	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/shm"
	"deedles.dev/chlorostart/shm/shmimage"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var errNoBuffers = errors.New("no buffers to draw into")

// frameBuffer is a wl_buffer over one frame of the region. Released is
// true while the compositor isn't reading from it.
type frameBuffer struct {
	id       uint32
	view     *shm.View
	released bool
}

// presenter tracks the pair of buffers that frames alternate between.
// Next is the buffer that the next frame is drawn into and is never the
// buffer that was last attached. Once closed, no more frames are drawn.
type presenter struct {
	m        sync.Mutex
	width    int
	height   int
	buffers  [2]frameBuffer
	next     int
	attached int
	closed   bool
}

func (p *presenter) init(width, height int) {
	p.width = width
	p.height = height
	p.attached = -1
}

func (p *presenter) owns(id uint32) bool {
	if id == 0 {
		return false
	}

	p.m.Lock()
	defer p.m.Unlock()

	for _, b := range p.buffers {
		if b.id == id {
			return true
		}
	}
	return false
}

func (p *presenter) release(id uint32) {
	p.m.Lock()
	defer p.m.Unlock()

	for i := range p.buffers {
		if p.buffers[i].id == id {
			p.buffers[i].released = true
		}
	}
}

// detach closes the presenter, forgets every buffer that isn't
// attached and returns their IDs.
func (p *presenter) detach() (ids []uint32) {
	p.m.Lock()
	defer p.m.Unlock()

	p.closed = true
	for i := range p.buffers {
		if (i == p.attached) || (p.buffers[i].id == 0) {
			continue
		}
		ids = append(ids, p.buffers[i].id)
		p.buffers[i] = frameBuffer{}
	}
	return ids
}

// reset forgets every buffer and returns their IDs.
func (p *presenter) reset() (ids []uint32) {
	p.m.Lock()
	defer p.m.Unlock()

	for i := range p.buffers {
		if p.buffers[i].id != 0 {
			ids = append(ids, p.buffers[i].id)
		}
		p.buffers[i] = frameBuffer{}
	}
	p.next = 0
	p.attached = -1
	return ids
}

func (p *presenter) isClosed() bool {
	p.m.Lock()
	defer p.m.Unlock()

	return p.closed
}

func (p *presenter) size() (int, int) {
	p.m.Lock()
	defer p.m.Unlock()

	return p.width, p.height
}

// createBuffers splits the start of the region into two frames of
// width by height pixels and creates a buffer for each.
func (c *Client) createBuffers(width, height int) error {
	pool, err := c.need(objstore.ShmPool)
	if err != nil {
		return err
	}
	views, err := c.region.Frames(width, height, 2)
	if err != nil {
		return err
	}

	p := &c.frames
	p.m.Lock()
	defer p.m.Unlock()

	for i, view := range views {
		id := c.ids.Alloc()
		err := c.send(createBuffer(
			pool,
			id,
			int32(view.ByteOffset()),
			int32(width),
			int32(height),
			int32(view.Stride()),
			protocol.ShmFormatARGB8888,
		))
		if err != nil {
			return err
		}
		p.buffers[i] = frameBuffer{id: id, view: view, released: true}
	}
	p.width = width
	p.height = height
	return nil
}

// resizeFrames replaces both buffers with ones of a new size. The
// region is never grown past the capacity it was created with, so
// sizes that don't fit are refused.
func (c *Client) resizeFrames(width, height int) error {
	if c.frames.isClosed() {
		return nil
	}
	if w, h := c.frames.size(); (w == width) && (h == height) {
		return nil
	}

	need := width * height * 4 * 2
	if need > c.region.Cap() {
		return fmt.Errorf("%vx%v frames need %v bytes of %v: %w", width, height, need, c.region.Cap(), shm.ErrCapacity)
	}
	if _, err := c.need(objstore.ShmPool); err != nil {
		return err
	}

	for _, id := range c.frames.reset() {
		err := c.send(destroyBuffer(id))
		if err != nil {
			return err
		}
	}

	err := c.region.Resize(need)
	if err != nil {
		return err
	}
	return c.createBuffers(width, height)
}

// present draws the next frame and commits it.
func (c *Client) present() error {
	start := time.Now()
	_, span := c.tracer.Start(c.ctx, "present")
	defer span.End()

	buffer, err := c.presentFrame()
	span.SetAttributes(attribute.Int("buffer", buffer))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("present: %w", err)
	}

	c.metrics.frameDuration.Observe(time.Since(start).Seconds())
	return nil
}

// presentFrame draws into the buffer that isn't attached, then
// attaches it, damages all of it, requests the next frame callback and
// commits. If the compositor hasn't released that buffer yet the
// frame is skipped and only a new callback is requested. Nothing is
// done after the presenter is closed.
func (c *Client) presentFrame() (int, error) {
	p := &c.frames
	p.m.Lock()
	defer p.m.Unlock()

	i := p.next
	if p.closed {
		return i, nil
	}

	surface, err := c.need(objstore.Surface)
	if err != nil {
		return -1, err
	}

	buf := &p.buffers[i]
	if buf.id == 0 {
		return i, errNoBuffers
	}

	if !buf.released {
		debug.Printf("buffer %v is still held by the compositor", buf.id)
		c.metrics.framesSkipped.Inc()
		err := c.requestFrame()
		if err != nil {
			return i, err
		}
		return i, c.send(commit(surface))
	}

	c.draw(buf.view)

	err = c.send(attach(surface, buf.id, 0, 0))
	if err != nil {
		return i, err
	}
	err = c.send(damageBuffer(surface, 0, 0, int32(p.width), int32(p.height)))
	if err != nil {
		return i, err
	}
	err = c.requestFrame()
	if err != nil {
		return i, err
	}
	err = c.send(commit(surface))
	if err != nil {
		return i, err
	}

	buf.released = false
	p.attached = i
	p.next = 1 - i
	c.metrics.framesPresent.Inc()
	return i, nil
}

// draw clears view to the background and then updates and draws every
// shape in order.
func (c *Client) draw(view *shm.View) {
	if bg := c.cfg.Background; bg != nil {
		view.Paint(func(img draw.Image) {
			draw.Draw(img, img.Bounds(), bg, bg.Bounds().Min, draw.Src)
		})
	} else {
		view.Fill(shmimage.Transparent)
	}

	c.sm.Lock()
	defer c.sm.Unlock()

	bounds := view.Bounds()
	for i := range c.shapes {
		c.shapes[i].Update(bounds)
		c.shapes[i].Draw(view)
	}
}
