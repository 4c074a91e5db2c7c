package client_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"deedles.dev/chlorostart/client"
	"deedles.dev/chlorostart/internal/wltest"
	"deedles.dev/chlorostart/protocol"
	"deedles.dev/chlorostart/shape"
	"deedles.dev/chlorostart/shm"
	"deedles.dev/chlorostart/shm/shmimage"
	"deedles.dev/chlorostart/wire"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sys/unix"
)

const (
	testWidth  = 16
	testHeight = 8
)

type global struct {
	name    uint32
	iface   string
	version uint32
}

var globals = []global{
	{1, protocol.Shm, 1},
	{2, protocol.Compositor, 6},
	{3, protocol.WmBase, 5},
	{4, protocol.LayerShell, 4},
	{5, protocol.Seat, 8},
}

// objects holds the IDs that the client assigned during the
// handshake.
type objects struct {
	registry uint32
	bound    map[string]uint32

	surface      uint32
	layerSurface uint32
	pool         uint32
	poolFD       int
	poolSize     int32
	buffers      [2]uint32
}

type fixture struct {
	peer   *wltest.Client
	client *client.Client
	reg    *prometheus.Registry
	ids    objects
}

func start(t *testing.T, cfg client.Config) *fixture {
	t.Helper()

	server := wltest.NewServer(t)
	cfg.RuntimeDir = server.Dir
	cfg.Display = server.Display
	if cfg.Width == 0 {
		cfg.Width, cfg.Height = testWidth, testHeight
	}

	conn, err := cfg.Dial()
	if err != nil {
		t.Fatal(err)
	}
	reg := prometheus.NewRegistry()
	c, err := client.New(conn, cfg,
		client.WithRegisterer(reg),
		client.WithTracerProvider(noop.NewTracerProvider()),
	)
	if err != nil {
		conn.Close()
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	err = c.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}

	f := fixture{
		peer:   server.Accept(t),
		client: c,
		reg:    reg,
	}
	msg := f.peer.Expect(t, protocol.Display, 1, protocol.DisplayGetRegistry)
	f.ids.registry = msg.ReadUint()
	f.ids.bound = make(map[string]uint32)
	return &f
}

// advertise sends a global and waits for the client to bind it.
func (f *fixture) advertise(t *testing.T, g global) {
	t.Helper()

	f.peer.Send(t, f.ids.registry, protocol.RegistryGlobal, g.name, g.iface, g.version)
	msg := f.peer.Expect(t, protocol.Registry, f.ids.registry, protocol.RegistryBind)
	name := msg.ReadUint()
	iface := msg.ReadString()
	version := msg.ReadUint()
	id := msg.ReadUint()
	if err := msg.Err(); err != nil {
		t.Fatal(err)
	}

	if (name != g.name) || (iface != g.iface) {
		t.Fatalf("bound %v %q, want %v %q", name, iface, g.name, g.iface)
	}
	if want := min(g.version, protocol.Version(g.iface)); version != want {
		t.Fatalf("bound %v at version %v, want %v", iface, version, want)
	}
	f.ids.bound[iface] = id
}

// expectToplevel reads the requests that set up the surface, the
// layer surface, the pool and the buffers.
func (f *fixture) expectToplevel(t *testing.T) {
	t.Helper()

	msg := f.peer.Expect(t, protocol.Compositor, f.ids.bound[protocol.Compositor], protocol.CompositorCreateSurface)
	f.ids.surface = msg.ReadUint()

	msg = f.peer.Expect(t, protocol.LayerShell, f.ids.bound[protocol.LayerShell], protocol.LayerShellGetLayerSurface)
	f.ids.layerSurface = msg.ReadUint()
	if surface := msg.ReadUint(); surface != f.ids.surface {
		t.Fatalf("layer surface created for %v, want %v", surface, f.ids.surface)
	}
	if output := msg.ReadUint(); output != 0 {
		t.Fatalf("layer surface output is %v", output)
	}
	if layer := msg.ReadUint(); layer != protocol.LayerShellLayerOverlay {
		t.Fatalf("layer surface layer is %v", layer)
	}
	if ns := msg.ReadString(); ns != client.DefaultNamespace {
		t.Fatalf("layer surface namespace is %q", ns)
	}

	msg = f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceSetSize)
	if w, h := msg.ReadUint(), msg.ReadUint(); (w != testWidth) || (h != testHeight) {
		t.Fatalf("requested size %vx%v", w, h)
	}
	msg = f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceSetKeyboardInteractivity)
	if mode := msg.ReadUint(); mode != protocol.LayerSurfaceKeyboardInteractivityExclusive {
		t.Fatalf("keyboard interactivity %v", mode)
	}
	f.peer.Expect(t, protocol.Surface, f.ids.surface, protocol.SurfaceCommit)

	msg = f.peer.Expect(t, protocol.Shm, f.ids.bound[protocol.Shm], protocol.ShmCreatePool)
	f.ids.pool = msg.ReadUint()
	f.ids.poolFD = msg.ReadFD()
	f.ids.poolSize = msg.ReadInt()
	if err := msg.Err(); err != nil {
		t.Fatal(err)
	}
	if want := int32(testWidth * testHeight * 4 * 2); f.ids.poolSize != want {
		t.Fatalf("pool size %v, want %v", f.ids.poolSize, want)
	}

	for i := range f.ids.buffers {
		msg = f.peer.Expect(t, protocol.ShmPool, f.ids.pool, protocol.ShmPoolCreateBuffer)
		f.ids.buffers[i] = msg.ReadUint()
		offset := msg.ReadInt()
		w, h := msg.ReadInt(), msg.ReadInt()
		stride := msg.ReadInt()
		format := msg.ReadUint()
		if err := msg.Err(); err != nil {
			t.Fatal(err)
		}

		if want := int32(i * testWidth * testHeight * 4); offset != want {
			t.Errorf("buffer %v at offset %v, want %v", i, offset, want)
		}
		if (w != testWidth) || (h != testHeight) || (stride != testWidth*4) {
			t.Errorf("buffer %v is %vx%v with stride %v", i, w, h, stride)
		}
		if format != protocol.ShmFormatARGB8888 {
			t.Errorf("buffer %v format %v", i, format)
		}
	}
}

func (f *fixture) handshake(t *testing.T) {
	t.Helper()

	for _, g := range globals {
		f.advertise(t, g)
	}
	f.expectToplevel(t)
	t.Cleanup(func() { unix.Close(f.ids.poolFD) })
}

// expectFrame reads the requests for a presented frame and returns
// the new frame callback.
func (f *fixture) expectFrame(t *testing.T, buffer uint32) uint32 {
	t.Helper()

	msg := f.peer.Expect(t, protocol.Surface, f.ids.surface, protocol.SurfaceAttach)
	if id := msg.ReadUint(); id != buffer {
		t.Fatalf("attached buffer %v, want %v", id, buffer)
	}
	if x, y := msg.ReadInt(), msg.ReadInt(); (x != 0) || (y != 0) {
		t.Fatalf("attached at %v,%v", x, y)
	}

	msg = f.peer.Expect(t, protocol.Surface, f.ids.surface, protocol.SurfaceDamageBuffer)
	x, y, w, h := msg.ReadInt(), msg.ReadInt(), msg.ReadInt(), msg.ReadInt()
	if (x != 0) || (y != 0) || (w != testWidth) || (h != testHeight) {
		t.Fatalf("damaged %v,%v %vx%v", x, y, w, h)
	}

	return f.expectCommit(t)
}

// expectCommit reads a frame request followed by a commit and returns
// the frame callback.
func (f *fixture) expectCommit(t *testing.T) uint32 {
	t.Helper()

	msg := f.peer.Expect(t, protocol.Surface, f.ids.surface, protocol.SurfaceFrame)
	callback := msg.ReadUint()
	f.peer.Expect(t, protocol.Surface, f.ids.surface, protocol.SurfaceCommit)
	return callback
}

// configure sends the first configure and returns the callback of the
// first frame.
func (f *fixture) configure(t *testing.T) uint32 {
	t.Helper()

	f.peer.Send(t, f.ids.bound[protocol.Shm], protocol.ShmFormat, protocol.ShmFormatARGB8888)
	f.peer.Send(t, f.ids.layerSurface, protocol.LayerSurfaceConfigure, uint32(42), uint32(testWidth), uint32(testHeight))
	msg := f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceAckConfigure)
	if serial := msg.ReadUint(); serial != 42 {
		t.Fatalf("acked serial %v", serial)
	}
	return f.expectFrame(t, f.ids.buffers[0])
}

// sync round trips a ping so that every event sent before it is known
// to have been dispatched.
func (f *fixture) sync(t *testing.T) {
	t.Helper()

	f.peer.Send(t, f.ids.bound[protocol.WmBase], protocol.WmBasePing, uint32(1234))
	msg := f.peer.Expect(t, protocol.WmBase, f.ids.bound[protocol.WmBase], protocol.WmBasePong)
	if serial := msg.ReadUint(); serial != 1234 {
		t.Fatalf("pong serial %v", serial)
	}
}

func (f *fixture) waitDone(t *testing.T) {
	t.Helper()

	select {
	case <-f.client.Done():
	case <-time.After(wltest.Timeout):
		t.Fatal("timed out waiting for the client to exit")
	}
}

func labelsMatch(pairs []*dto.LabelPair, labels map[string]string) bool {
	if len(pairs) != len(labels) {
		return false
	}
	for _, pair := range pairs {
		if labels[pair.GetName()] != pair.GetValue() {
			return false
		}
	}
	return true
}

func metricValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatal(err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, m := range family.GetMetric() {
			if labelsMatch(m.GetLabel(), labels) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return 0
}

func TestHandshake(t *testing.T) {
	f := start(t, client.Config{})
	f.advertise(t, globals[0])

	f.peer.Send(t, f.ids.registry, protocol.RegistryGlobal, uint32(100), "wl_output", uint32(4))
	f.peer.Quiet(t, 50*time.Millisecond)

	for _, g := range globals[1:] {
		f.advertise(t, g)
	}
	f.expectToplevel(t)
	defer unix.Close(f.ids.poolFD)

	f.peer.Send(t, f.ids.registry, protocol.RegistryGlobal, uint32(101), protocol.Shm, uint32(1))
	f.peer.Quiet(t, 50*time.Millisecond)

	gs := f.client.Globals()
	if len(gs) != len(globals)+2 {
		t.Errorf("recorded %v globals: %v", len(gs), gs)
	}
	if g := gs[100]; g.Interface != "wl_output" || g.Version != 4 {
		t.Errorf("global 100 is %+v", g)
	}
}

func TestHandshakeOrder(t *testing.T) {
	for i := range 5 {
		f := start(t, client.Config{})
		for _, j := range rand.Perm(len(globals)) {
			f.advertise(t, globals[j])
		}
		f.expectToplevel(t)
		unix.Close(f.ids.poolFD)

		if !f.client.Running() {
			t.Fatalf("run %v: client stopped", i)
		}
	}
}

func TestPing(t *testing.T) {
	f := start(t, client.Config{})
	f.handshake(t)
	f.sync(t)
}

func TestFrameLoop(t *testing.T) {
	f := start(t, client.Config{})
	f.client.Add(shape.NewRectangle(image.Rect(0, 0, 2, 2), 0, shmimage.White).Moving(image.Pt(1, 0)))
	f.handshake(t)

	cb := f.configure(t)
	if formats := f.client.Formats(); !slices.Equal(formats, []uint32{protocol.ShmFormatARGB8888}) {
		t.Errorf("formats %v", formats)
	}

	f.peer.Send(t, cb, protocol.CallbackDone, uint32(1))
	cb = f.expectFrame(t, f.ids.buffers[1])

	// The first buffer has not been released yet.
	f.peer.Send(t, cb, protocol.CallbackDone, uint32(2))
	cb = f.expectCommit(t)

	f.peer.Send(t, f.ids.buffers[0], protocol.BufferRelease)
	f.peer.Send(t, cb, protocol.CallbackDone, uint32(3))
	f.expectFrame(t, f.ids.buffers[0])

	// Skipped frames don't move shapes.
	shapes := f.client.Shapes()
	if (len(shapes) != 1) || (shapes[0].Pos != image.Pt(3, 0)) {
		t.Errorf("shapes %+v", shapes)
	}

	if v := metricValue(t, f.reg, "chlorostart_frames_presented_total", nil); v != 3 {
		t.Errorf("presented %v frames", v)
	}
	if v := metricValue(t, f.reg, "chlorostart_frames_skipped_total", nil); v != 1 {
		t.Errorf("skipped %v frames", v)
	}
}

func TestFrameContents(t *testing.T) {
	f := start(t, client.Config{
		Background: image.NewUniform(color.RGBA{0, 0, 255, 255}),
	})
	f.client.Add(shape.NewRectangle(image.Rect(0, 0, 4, 4), 0, shmimage.White))
	f.handshake(t)

	pool, err := shm.RegionFromFD(f.ids.poolFD, int(f.ids.poolSize))
	if err != nil {
		t.Fatal(err)
	}
	f.ids.poolFD = -1
	defer pool.Close()

	f.configure(t)

	tests := []struct {
		x, y int
		want shmimage.Color
	}{
		{0, 0, shmimage.White},
		{3, 3, shmimage.White},
		{4, 4, 0xFF0000FF},
		{testWidth - 1, testHeight - 1, 0xFF0000FF},
	}
	for _, test := range tests {
		got, ok := pool.ReadPixel(test.y*testWidth + test.x)
		if !ok {
			t.Fatalf("pixel %v,%v out of range", test.x, test.y)
		}
		if got != test.want {
			t.Errorf("pixel %v,%v = %#08x, want %#08x", test.x, test.y, uint32(got), uint32(test.want))
		}
	}
}

func TestConfigureResize(t *testing.T) {
	f := start(t, client.Config{})
	f.handshake(t)
	f.configure(t)

	f.peer.Send(t, f.ids.layerSurface, protocol.LayerSurfaceConfigure, uint32(43), uint32(8), uint32(8))
	f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceAckConfigure)
	for _, id := range f.ids.buffers {
		f.peer.Expect(t, protocol.Buffer, id, protocol.BufferDestroy)
	}
	for i := range 2 {
		msg := f.peer.Expect(t, protocol.ShmPool, f.ids.pool, protocol.ShmPoolCreateBuffer)
		msg.ReadUint()
		offset := msg.ReadInt()
		w, h := msg.ReadInt(), msg.ReadInt()
		if (w != 8) || (h != 8) || (offset != int32(i*8*8*4)) {
			t.Errorf("buffer %v is %vx%v at %v", i, w, h, offset)
		}
	}

	// Too big for the region, so the buffers are kept.
	f.peer.Send(t, f.ids.layerSurface, protocol.LayerSurfaceConfigure, uint32(44), uint32(1000), uint32(1000))
	f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceAckConfigure)
	f.sync(t)
	if !f.client.Running() {
		t.Fatal("client stopped")
	}
}

const testKeymap = `xkb_keymap {
xkb_keycodes "evdev" {
	<ESC> = 9;
	<AD01> = 24;
};
xkb_symbols "us" {
	key <ESC> { [ Escape ] };
	key <AD01> { [ q, Q ] };
};
};
` + "\x00"

func keymapFD(t *testing.T) int {
	t.Helper()

	fd, err := unix.MemfdCreate("keymap", 0)
	if err != nil {
		t.Fatal(err)
	}
	_, err = unix.Write(fd, []byte(testKeymap))
	if err != nil {
		unix.Close(fd)
		t.Fatal(err)
	}
	return fd
}

func TestExitKey(t *testing.T) {
	f := start(t, client.Config{})
	f.handshake(t)
	f.configure(t)

	seat := f.ids.bound[protocol.Seat]
	f.peer.Send(t, seat, protocol.SeatCapabilities, protocol.SeatCapabilityKeyboard)
	msg := f.peer.Expect(t, protocol.Seat, seat, protocol.SeatGetKeyboard)
	keyboard := msg.ReadUint()

	fd := keymapFD(t)
	defer unix.Close(fd)
	f.peer.Send(t, keyboard, protocol.KeyboardKeymap, protocol.KeyboardKeymapFormatXKBV1, wltest.FD(fd), uint32(len(testKeymap)))

	// Pressing exit keys and releasing other keys does nothing.
	f.peer.Send(t, keyboard, protocol.KeyboardKey, uint32(1), uint32(0), uint32(9-8), protocol.KeyboardKeyStatePressed)
	f.peer.Send(t, keyboard, protocol.KeyboardKey, uint32(2), uint32(0), uint32(24-8), protocol.KeyboardKeyStateReleased)
	f.sync(t)
	f.peer.Quiet(t, 50*time.Millisecond)

	f.peer.Send(t, keyboard, protocol.KeyboardKey, uint32(3), uint32(0), uint32(9-8), protocol.KeyboardKeyStateReleased)
	f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceDestroy)
	f.peer.Expect(t, protocol.Buffer, f.ids.buffers[1], protocol.BufferDestroy)
	f.waitDone(t)

	if err := f.client.Err(); err != nil {
		t.Fatal(err)
	}
}

func TestContextCancel(t *testing.T) {
	server := wltest.NewServer(t)
	cfg := client.Config{RuntimeDir: server.Dir, Display: server.Display, Width: testWidth, Height: testHeight}
	conn, err := cfg.Dial()
	if err != nil {
		t.Fatal(err)
	}
	c, err := client.New(conn, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer c.Close()

	ctx, cancel := context.WithCancel(context.Background())
	err = c.Start(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Start(ctx); err == nil {
		t.Fatal("second start succeeded")
	}

	server.Accept(t)
	cancel()
	select {
	case <-c.Done():
	case <-time.After(wltest.Timeout):
		t.Fatal("client did not exit")
	}
	if c.Running() {
		t.Fatal("client still running")
	}
}

func TestUnknownEvents(t *testing.T) {
	f := start(t, client.Config{})
	f.handshake(t)

	f.peer.Send(t, 999, 0, uint32(1))
	f.peer.Send(t, f.ids.bound[protocol.Shm], 57)
	f.sync(t)

	if v := metricValue(t, f.reg, "chlorostart_unknown_events_total", map[string]string{"interface": "unknown"}); v != 1 {
		t.Errorf("unknown sender count %v", v)
	}
	if v := metricValue(t, f.reg, "chlorostart_unknown_events_total", map[string]string{"interface": protocol.Shm}); v != 1 {
		t.Errorf("unknown op count %v", v)
	}
	if v := metricValue(t, f.reg, "chlorostart_events_total", map[string]string{"interface": protocol.WmBase, "event": "ping"}); v != 1 {
		t.Errorf("ping count %v", v)
	}
}

func TestDisplayError(t *testing.T) {
	f := start(t, client.Config{})
	f.handshake(t)

	f.peer.Send(t, 1, protocol.DisplayError, f.ids.surface, uint32(2), "invalid surface state")
	f.sync(t)

	if !f.client.Invalid(f.ids.surface) {
		t.Error("surface not flagged as invalid")
	}
	if f.client.Invalid(f.ids.layerSurface) {
		t.Error("layer surface flagged as invalid")
	}
	if v := metricValue(t, f.reg, "chlorostart_protocol_errors_total", map[string]string{"interface": protocol.Surface}); v != 1 {
		t.Errorf("protocol error count %v", v)
	}
}

func TestMalformedMessage(t *testing.T) {
	f := start(t, client.Config{})

	var hdr [wire.HeaderSize]byte
	var off int
	wire.PutHeader(hdr[:], wire.Header{Sender: 1, Op: 0, Size: 4}, &off)
	f.peer.SendRaw(t, hdr[:])

	f.waitDone(t)
	var malformed wire.MalformedError
	if err := f.client.Err(); !errors.As(err, &malformed) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestLayerSurfaceClosed(t *testing.T) {
	f := start(t, client.Config{})
	f.handshake(t)

	f.peer.Send(t, f.ids.layerSurface, protocol.LayerSurfaceClosed)
	f.peer.Expect(t, protocol.LayerSurface, f.ids.layerSurface, protocol.LayerSurfaceDestroy)
	f.waitDone(t)
}
