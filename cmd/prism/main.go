// prism - a light ray bouncing through a 3D scene, in your terminal.
//
// Usage:
//
//	prism view [model.glb]             Interactive terminal viewer
//	prism trace [model.glb] --frames N Headless run, logs every frame
//
// Viewer controls:
//
//	Space - Pause/resume
//	C     - Toggle collider wireframes
//	?     - Toggle HUD overlay
//	Esc/Q - Quit
package main

import (
	"context"
	"os"
	"syscall"

	"github.com/charmbracelet/fang"
)

func main() {
	err := fang.Execute(
		context.Background(),
		newRootCmd(),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	)
	if err != nil {
		os.Exit(1)
	}
}
