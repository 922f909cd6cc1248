package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	uv "github.com/charmbracelet/ultraviolet"
	"github.com/spf13/cobra"
	"github.com/taigrr/prism/internal/demo"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
)

var background = render.RGB(18, 18, 26)

func newViewCmd(opts *options) *cobra.Command {
	var logFile string

	cmd := &cobra.Command{
		Use:   "view [model.glb]",
		Short: "Watch the ray bounce in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// The terminal shows the scene, so logs go to a file or nowhere.
			var w io.Writer = io.Discard
			if logFile != "" {
				f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
				if err != nil {
					return fmt.Errorf("open log file: %w", err)
				}
				defer f.Close()
				w = f
			}
			return runView(cmd.Context(), opts.newLogger(w), opts, modelArg(args))
		},
	}

	cmd.Flags().StringVar(&logFile, "log-file", "", "write logs to this file")
	return cmd
}

// newCamera returns the camera both commands render with.
func newCamera(width, height int) *render.Camera {
	camera := render.NewCamera()
	camera.SetPosition(demo.Eye)
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	return camera
}

// viewer holds the terminal and what is drawn on it.
type viewer struct {
	term       *uv.Terminal
	out        *render.TerminalRenderer
	fb         *render.Framebuffer
	camera     *render.Camera
	rasterizer *render.Rasterizer

	scene  *demo.Scene
	hud    *HUD
	logger *slog.Logger

	paused    bool
	colliders bool
	showHUD   bool
}

func runView(ctx context.Context, logger *slog.Logger, opts *options, modelPath string) error {
	s, err := demo.New(opts.cfg, modelPath)
	if err != nil {
		return err
	}

	title := "torus"
	if modelPath != "" {
		title = strings.TrimSuffix(filepath.Base(modelPath), filepath.Ext(modelPath))
	}

	term := uv.DefaultTerminal()
	width, height, err := term.GetSize()
	if err != nil {
		return fmt.Errorf("get terminal size: %w", err)
	}
	if err := term.Start(); err != nil {
		return fmt.Errorf("start terminal: %w", err)
	}
	term.EnterAltScreen()
	term.HideCursor()

	v := &viewer{
		term:    term,
		scene:   s,
		hud:     NewHUD(title),
		logger:  logger,
		showHUD: true,
	}
	if err := v.resize(width, height); err != nil {
		v.close()
		return err
	}
	logger.Info("viewer started", "model", modelPath, "width", width, "height", height)

	err = v.loop(ctx, opts.cfg.FPS)
	v.close()
	logger.Info("viewer stopped", "frames", s.Frame())
	return err
}

func (v *viewer) close() {
	v.term.ExitAltScreen()
	v.term.ShowCursor()
	if err := v.term.Shutdown(context.Background()); err != nil {
		v.logger.Error("shutdown terminal", slog.Any("err", err))
	}
}

// resize rebuilds the framebuffer for a terminal of width x height cells.
func (v *viewer) resize(width, height int) error {
	if err := v.term.Resize(width, height); err != nil {
		return fmt.Errorf("resize terminal: %w", err)
	}
	v.out = render.NewTerminalRenderer(v.term, width, height)
	fbWidth, fbHeight := v.out.FramebufferSize()
	v.fb = render.NewFramebuffer(fbWidth, fbHeight)
	v.camera = newCamera(max(fbWidth, 1), max(fbHeight, 1))
	v.rasterizer = render.NewRasterizer(v.camera, v.fb)
	return nil
}

func (v *viewer) loop(ctx context.Context, fps int) error {
	targetDuration := time.Second / time.Duration(fps)
	lastFrame := time.Now()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		quit, err := v.drainEvents()
		if err != nil || quit {
			return err
		}

		now := time.Now()
		dt := now.Sub(lastFrame).Seconds()
		lastFrame = now
		if dt > 0.1 {
			dt = 0.1
		}

		if err := v.frame(dt); err != nil {
			return err
		}

		// Frame timing
		elapsed := time.Since(now)
		if elapsed < targetDuration {
			time.Sleep(targetDuration - elapsed)
		}
	}
}

// drainEvents handles every pending terminal event.
func (v *viewer) drainEvents() (quit bool, err error) {
	for {
		select {
		case ev, ok := <-v.term.Events():
			if !ok {
				return true, nil
			}
			if quit, err := v.handle(ev); quit || err != nil {
				return quit, err
			}
		default:
			return false, nil
		}
	}
}

func (v *viewer) handle(ev uv.Event) (quit bool, err error) {
	switch ev := ev.(type) {
	case uv.WindowSizeEvent:
		v.term.Erase()
		return false, v.resize(ev.Width, ev.Height)

	case uv.KeyPressEvent:
		switch {
		case ev.MatchString("escape", "q", "ctrl+c"):
			return true, nil
		case ev.MatchString("space"):
			v.paused = !v.paused
		case ev.MatchString("c"):
			v.colliders = !v.colliders
		case ev.MatchString("?", "shift+/"):
			v.showHUD = !v.showHUD
		}
	}
	return false, nil
}

func (v *viewer) frame(dt float64) error {
	s := v.scene
	if !v.paused {
		if _, err := s.Step(dt); err != nil {
			logHandlerErrors(v.logger, s.Frame(), err)
		}
	}

	v.fb.Clear(background)
	v.rasterizer.ClearDepth()
	s.Draw(v.rasterizer, v.colliders)

	v.hud.UpdateFPS()
	var lines []string
	if v.showHUD {
		engaged := 0
		for _, o := range s.Reflector.Objects() {
			if s.Reflector.Engaged(o) {
				engaged++
			}
		}
		top, bottom := v.hud.Lines(len(s.Reflector.Points()), engaged, v.paused, v.colliders)
		_, height := v.out.FramebufferSize()
		lines = make([]string, max(height/2, 1))
		lines[0] = top
		if len(lines) > 1 {
			lines[len(lines)-1] = bottom
		}
	}

	v.out.Render(v.fb, lines...)
	if err := v.out.Flush(); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
