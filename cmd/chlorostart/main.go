// Command chlorostart shows a transparent overlay on the current
// Wayland output and animates a few shapes in it until Escape is
// released.
package main

import (
	"context"
	"fmt"
	"image"
	"os"
	"os/signal"
	"syscall"

	"deedles.dev/chlorostart/client"
	"deedles.dev/chlorostart/shape"
	"deedles.dev/chlorostart/shm/shmimage"
	"github.com/spf13/cobra"
	"golang.org/x/image/colornames"
)

// shapes returns the shapes drawn by default on a surface of the given
// size.
func shapes(width, height int) []shape.Shape {
	center := image.Pt(width/2, height/2)
	return []shape.Shape{
		shape.NewRectangle(
			image.Rect(width/8, height/8, width/2, height/3),
			24,
			shmimage.Scale(shmimage.Convert(colornames.Teal), 0.8),
		).Moving(image.Pt(3, 2)),
		shape.NewCircle(
			center,
			min(width, height)/6,
			shmimage.Scale(shmimage.Convert(colornames.Orange), 0.9),
		).Moving(image.Pt(-4, 3)),
		shape.NewCircle(
			image.Pt(width/4, height*3/4),
			min(width, height)/10,
			shmimage.Convert(colornames.Mediumvioletred),
		).Moving(image.Pt(5, -2)),
		shape.NewRectangle(
			image.Rect(width*5/8, height*5/8, width*7/8, height*7/8),
			0,
			shmimage.Scale(shmimage.Convert(colornames.Lightskyblue), 0.5),
		).Moving(image.Pt(-2, -5)),
	}
}

func run(ctx context.Context) error {
	cfg, err := client.ConfigFromEnv()
	if err != nil {
		return err
	}

	conn, err := cfg.Dial()
	if err != nil {
		return err
	}

	c, err := client.New(conn, cfg)
	if err != nil {
		conn.Close()
		return err
	}
	defer c.Close()

	c.Add(shapes(cfg.Width, cfg.Height)...)

	err = c.Start(ctx)
	if err != nil {
		return err
	}

	<-c.Done()
	return c.Err()
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "chlorostart",
		Short: "Animate shapes on a Wayland overlay",
		Long: `chlorostart connects to the Wayland compositor named by
$WAYLAND_DISPLAY in $XDG_RUNTIME_DIR, opens an overlay layer surface and
animates a few shapes in it. Release Escape to exit.

Set WAYLAND_DEBUG=1 to log protocol traffic.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context())
		},
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}
