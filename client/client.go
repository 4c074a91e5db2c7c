// Package client implements a minimal Wayland client that shows an
// overlay layer surface and animates a set of shapes in it.
//
// A Client discovers the globals it needs through the registry, binds
// them, and then creates its surface, layer surface, shared memory
// pool and a pair of buffers. Events are read and dispatched on a
// single goroutine. Frames are drawn from that goroutine in response
// to frame callbacks and key releases are handed off to a separate
// worker.
package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"sync/atomic"

	"deedles.dev/chlorostart/internal/debug"
	"deedles.dev/chlorostart/internal/ev"
	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/internal/set"
	"deedles.dev/chlorostart/keymap"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/shape"
	"deedles.dev/chlorostart/shm"
	"deedles.dev/chlorostart/wire"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/exp/maps"
)

const tracerName = "deedles.dev/chlorostart/client"

// Global is an interface advertised by the compositor.
type Global struct {
	Interface string
	Version   uint32
}

// Client is a connection to a compositor along with all of the state
// needed to present frames on it.
type Client struct {
	cfg     Config
	conn    *wire.Conn
	ids     *objstore.Store
	region  *shm.Region
	metrics *metrics
	tracer  trace.Tracer
	ctx     context.Context

	started   atomic.Bool
	running   atomic.Bool
	toplevel  atomic.Bool
	configure atomic.Bool

	done      chan struct{}
	exit      sync.Once
	listening chan struct{}

	errm sync.Mutex
	err  error

	gm      sync.Mutex
	globals map[uint32]Global
	bound   map[uint32]objstore.Role
	formats set.Set[uint32]
	invalid set.Set[uint32]

	keys   *ev.Queue
	km     sync.Mutex
	keymap keymap.Map
	kmap   *shm.Region

	frames presenter

	sm     sync.Mutex
	shapes []shape.Shape
}

// Option configures optional parts of a Client.
type Option func(*Client)

// WithRegisterer registers the client's metrics with reg. Without it
// the metrics are kept but not registered anywhere.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.metrics = newMetrics(reg)
	}
}

// WithTracerProvider creates the client's tracer from tp instead of
// the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Client) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// New returns a client that communicates over conn. The client takes
// ownership of conn. No requests are sent until Start is called.
func New(conn *wire.Conn, cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	err := cfg.validate()
	if err != nil {
		return nil, err
	}

	region, err := shm.NewRegion(cfg.Width * cfg.Height * 4 * 2)
	if err != nil {
		return nil, fmt.Errorf("create shared memory region: %w", err)
	}

	c := Client{
		cfg:       cfg,
		conn:      conn,
		ids:       objstore.New(),
		region:    region,
		ctx:       context.Background(),
		done:      make(chan struct{}),
		listening: make(chan struct{}),
		globals:   make(map[uint32]Global),
		bound:     make(map[uint32]objstore.Role),
		formats:   make(set.Set[uint32]),
		invalid:   make(set.Set[uint32]),
	}
	c.frames.init(cfg.Width, cfg.Height)
	for _, opt := range opts {
		opt(&c)
	}
	if c.metrics == nil {
		c.metrics = newMetrics(nil)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	c.keys = ev.NewQueue(func(err error) { log.Printf("key event: %v", err) })

	return &c, nil
}

// Start requests the registry and starts the dispatch goroutine. When
// ctx is canceled the client exits.
func (c *Client) Start(ctx context.Context) error {
	if !c.started.CompareAndSwap(false, true) {
		return errors.New("client already started")
	}
	c.ctx = ctx

	id := c.ids.Alloc()
	err := c.send(getRegistry(objstore.DisplayID, id))
	if err != nil {
		close(c.listening)
		return fmt.Errorf("get registry: %w", err)
	}
	c.ids.Bind(objstore.Registry, id)

	c.running.Store(true)
	go c.listen()
	go func() {
		select {
		case <-ctx.Done():
			c.Exit()
		case <-c.done:
		}
	}()

	return nil
}

func (c *Client) listen() {
	defer close(c.listening)

	for c.running.Load() {
		msg, err := wire.ReadMessage(c.conn)
		if err != nil {
			if !c.running.Load() || errors.Is(err, net.ErrClosed) {
				return
			}
			c.fail(fmt.Errorf("read message: %w", err))
			return
		}

		err = c.dispatch(msg)
		if err != nil {
			c.fail(err)
			return
		}
	}
}

// Done returns a channel that is closed when the client exits.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that caused the dispatch loop to stop, if any.
func (c *Client) Err() error {
	c.errm.Lock()
	defer c.errm.Unlock()

	return c.err
}

// Running reports whether the dispatch loop is active.
func (c *Client) Running() bool {
	return c.running.Load()
}

func (c *Client) fail(err error) {
	c.errm.Lock()
	if c.err == nil {
		c.err = err
	}
	c.errm.Unlock()

	log.Printf("dispatch: %v", err)
	c.shutdown(false)
}

// Exit destroys the layer surface and the buffer that is not attached,
// releases the keymap and stops the client. It is safe to call more
// than once and from any goroutine.
func (c *Client) Exit() {
	c.shutdown(true)
}

func (c *Client) shutdown(destroy bool) {
	c.exit.Do(func() {
		c.running.Store(false)
		c.keys.Stop()

		if destroy {
			if id := c.ids.Unbind(objstore.LayerSurface); id != 0 {
				err := c.send(destroyLayerSurface(id))
				if err != nil {
					log.Printf("destroy layer surface: %v", err)
				}
			}
			for _, id := range c.frames.detach() {
				err := c.send(destroyBuffer(id))
				if err != nil {
					log.Printf("destroy buffer %v: %v", id, err)
				}
			}
		}

		c.km.Lock()
		if c.kmap != nil {
			c.kmap.Close()
			c.kmap = nil
		}
		c.km.Unlock()

		close(c.done)
	})
}

// Close exits the client, closes the connection and releases the
// shared memory region.
func (c *Client) Close() error {
	c.Exit()

	err := c.conn.Close()
	if c.started.Load() {
		<-c.listening
	}
	return errors.Join(err, c.region.Close())
}

// Globals returns a snapshot of the globals advertised by the
// compositor, keyed by name.
func (c *Client) Globals() map[uint32]Global {
	c.gm.Lock()
	defer c.gm.Unlock()

	return maps.Clone(c.globals)
}

// Formats returns the shm formats advertised by the compositor in
// ascending order.
func (c *Client) Formats() []uint32 {
	c.gm.Lock()
	defer c.gm.Unlock()

	return set.Sorted(c.formats)
}

// Invalid reports whether the compositor has reported an error for
// the object id.
func (c *Client) Invalid(id uint32) bool {
	c.gm.Lock()
	defer c.gm.Unlock()

	return c.invalid.Has(id)
}

// Add appends s to the shapes drawn every frame. Shapes are drawn in
// the order that they were added.
func (c *Client) Add(s ...shape.Shape) {
	c.sm.Lock()
	defer c.sm.Unlock()

	c.shapes = append(c.shapes, s...)
}

// Shapes returns a copy of the shapes in their current state.
func (c *Client) Shapes() []shape.Shape {
	c.sm.Lock()
	defer c.sm.Unlock()

	return append([]shape.Shape(nil), c.shapes...)
}

// need returns the ID bound to role or an UnsetError.
func (c *Client) need(role objstore.Role) (uint32, error) {
	id := c.ids.Lookup(role)
	if id == 0 {
		return 0, UnsetError{Role: role}
	}
	return id, nil
}

func (c *Client) send(msg *wire.MessageBuilder) error {
	debug.Printf(" -> %v", msg)
	err := msg.Build(c.conn)
	if err != nil {
		return fmt.Errorf("%v.%v: %w", msg.Interface, msg.Method, err)
	}
	c.metrics.requests.WithLabelValues(msg.Interface, msg.Method).Inc()
	return nil
}

// request starts a message for request op of iface.
func request(iface string, sender uint32, op uint16) *wire.MessageBuilder {
	msg := wire.NewMessage(sender, op)
	msg.Interface = iface
	msg.Method = protocol.RequestName(iface, op)
	return msg
}
