package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/taigrr/prism/internal/demo"
	"github.com/taigrr/prism/pkg/bounce"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

type traceOptions struct {
	frames        int
	png           string
	width, height int
}

func newTraceCmd(opts *options) *cobra.Command {
	topts := &traceOptions{}

	cmd := &cobra.Command{
		Use:   "trace [model.glb]",
		Short: "Run the scene without a terminal and log every frame",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.newLogger(cmd.ErrOrStderr())
			return runTrace(cmd.Context(), cmd.OutOrStdout(), logger, opts, topts, modelArg(args))
		},
	}

	cmd.Flags().IntVarP(&topts.frames, "frames", "n", 60, "number of frames to trace")
	cmd.Flags().StringVar(&topts.png, "png", "", "save the last frame to this PNG file")
	cmd.Flags().IntVar(&topts.width, "width", 320, "PNG width in pixels")
	cmd.Flags().IntVar(&topts.height, "height", 180, "PNG height in pixels")
	return cmd
}

func runTrace(ctx context.Context, out io.Writer, logger *slog.Logger, opts *options, topts *traceOptions, modelPath string) error {
	if topts.frames < 1 {
		return fmt.Errorf("frames must be at least 1, got %d", topts.frames)
	}

	s, err := demo.New(opts.cfg, modelPath)
	if err != nil {
		return err
	}
	logger.Info("scene ready", "model", modelPath, "objects", len(s.Reflector.Objects()),
		"bounces", opts.cfg.Bounces, "far", opts.cfg.Far)

	dt := 1 / float64(opts.cfg.FPS)
	for frame := range topts.frames {
		if err := ctx.Err(); err != nil {
			return err
		}

		n, err := s.Step(dt)
		if err != nil {
			logHandlerErrors(logger, frame, err)
		}

		hits := s.Reflector.Intersections()
		logger.Debug("frame traced", "frame", frame, "points", n, "hits", len(hits))
		for i, hit := range hits {
			logger.Debug("hit", "frame", frame, "bounce", i, "object", hit.Object.Name,
				"point", fmtVec(hit.Point), "distance", hit.Distance)
		}
	}

	fmt.Fprintf(out, "frame %d: %d points\n", s.Frame(), len(s.Reflector.Points()))
	for i, p := range s.Reflector.Points() {
		fmt.Fprintf(out, "  %2d  %s\n", i, fmtVec(p))
	}

	if topts.png == "" {
		return nil
	}
	if err := savePNG(s, topts); err != nil {
		return err
	}
	logger.Info("saved frame", "path", topts.png)
	return nil
}

func savePNG(s *demo.Scene, topts *traceOptions) error {
	if topts.width < 1 || topts.height < 1 {
		return fmt.Errorf("invalid image size %dx%d", topts.width, topts.height)
	}

	fb := render.NewFramebuffer(topts.width, topts.height)
	fb.Clear(background)

	camera := newCamera(topts.width, topts.height)
	r := render.NewRasterizer(camera, fb)
	r.ClearDepth()
	s.Draw(r, false)

	return fb.SavePNG(topts.png)
}

// logHandlerErrors logs each handler failure of a frame separately.
func logHandlerErrors(logger *slog.Logger, frame int, err error) {
	var joined interface{ Unwrap() []error }
	errs := []error{err}
	if errors.As(err, &joined) {
		errs = joined.Unwrap()
	}

	for _, err := range errs {
		attrs := []any{"frame", frame, slog.Any("err", err)}
		var herr *bounce.HandlerError
		if errors.As(err, &herr) {
			attrs = append(attrs, "phase", herr.Phase.String(), "object", herr.Name)
		}
		logger.Warn("ray handler failed", attrs...)
	}
}

func fmtVec(v math3d.Vec3) string {
	return fmt.Sprintf("(%.3f, %.3f, %.3f)", v.X, v.Y, v.Z)
}
