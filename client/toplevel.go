package client

import (
	"errors"
	"fmt"

	"deedles.dev/chlorostart/internal/objstore"
	"deedles.dev/chlorostart/protocol"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// requiredRoles are the globals that must all be bound before the
// toplevel can be initialized.
var requiredRoles = []objstore.Role{
	objstore.Shm,
	objstore.Compositor,
	objstore.WmBase,
	objstore.LayerShell,
	objstore.Seat,
}

// initToplevel creates the surface, its layer surface role, the shared
// memory pool and the two buffers. Until every required global is
// bound it returns an UnsetError naming the first missing one and
// does nothing else. Once they are, it runs exactly once. A failed
// step doesn't prevent the following steps from being attempted.
func (c *Client) initToplevel() error {
	if role, ok := c.ids.Missing(requiredRoles...); ok {
		return UnsetError{Role: role}
	}
	if !c.toplevel.CompareAndSwap(false, true) {
		return nil
	}

	_, span := c.tracer.Start(c.ctx, "initToplevel", trace.WithAttributes(
		attribute.Int("width", c.cfg.Width),
		attribute.Int("height", c.cfg.Height),
		attribute.String("namespace", c.cfg.Namespace),
	))
	defer span.End()

	steps := []struct {
		name string
		do   func() error
	}{
		{"create surface", c.createSurface},
		{"get layer surface", c.getLayerSurface},
		{"set size", func() error { return c.setSize(c.cfg.Width, c.cfg.Height) }},
		{"set keyboard interactivity", func() error {
			return c.setKeyboardInteractivity(protocol.LayerSurfaceKeyboardInteractivityExclusive)
		}},
		{"commit", c.commit},
		{"create pool", c.createPool},
		{"create buffers", func() error { return c.createBuffers(c.cfg.Width, c.cfg.Height) }},
	}

	var errs []error
	for _, step := range steps {
		err := step.do()
		if err != nil {
			err = fmt.Errorf("%v: %w", step.name, err)
			span.RecordError(err)
			errs = append(errs, err)
		}
	}
	if len(errs) != 0 {
		span.SetStatus(codes.Error, "toplevel initialization incomplete")
	}
	return errors.Join(errs...)
}
