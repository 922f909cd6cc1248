package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/taigrr/prism/internal/config"
)

// options are shared by every subcommand.
type options struct {
	cfg *config.Config

	bounces  int
	far      float64
	fps      int
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "prism",
		Short: "Trace a light ray bouncing through a 3D scene",
		Long: "prism casts a ray from an orbiting light towards the camera and follows\n" +
			"its reflections through a spinning torus or a glTF model of your choice.\n\n" +
			"Settings are read from PRISM_* environment variables; flags override them.",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.IntVar(&opts.bounces, "bounces", 8, "maximum number of reflections")
	flags.Float64Var(&opts.far, "far", 200, "length of the final segment when nothing is hit")
	flags.IntVar(&opts.fps, "fps", 60, "frames per second")
	flags.StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newViewCmd(opts), newTraceCmd(opts))
	return root
}

// load reads the environment and applies the flags that were set.
func (o *options) load(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("bounces") {
		cfg.Bounces = o.bounces
	}
	if flags.Changed("far") {
		cfg.Far = o.far
	}
	if flags.Changed("fps") {
		cfg.FPS = o.fps
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	o.cfg = cfg
	return nil
}

// newLogger returns a text logger writing to w at the configured level.
func (o *options) newLogger(w io.Writer) *slog.Logger {
	level, _ := o.cfg.Level() // validated in load
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func modelArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
