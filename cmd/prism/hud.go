package main

import (
	"fmt"
	"time"

	"charm.land/lipgloss/v2"
)

var (
	hudBase  = lipgloss.NewStyle().Background(lipgloss.Color("#000000"))
	hudFPS   = hudBase.Foreground(lipgloss.Color("#5FFF87"))
	hudTitle = hudBase.Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	hudStat  = hudBase.Foreground(lipgloss.Color("#5FD7FF"))
	hudHint  = hudBase.Foreground(lipgloss.Color("#FFD75F")).Faint(true)
)

// HUD renders an overlay with scene info and controls.
type HUD struct {
	title     string
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

// NewHUD creates a new HUD
func NewHUD(title string) *HUD {
	return &HUD{
		title:   title,
		fpsTime: time.Now(),
	}
}

// UpdateFPS updates the FPS counter (call once per frame)
func (h *HUD) UpdateFPS() {
	h.fpsFrames++
	elapsed := time.Since(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = time.Now()
	}
}

// Lines returns the styled top and bottom rows of the overlay.
func (h *HUD) Lines(points, engaged int, paused, colliders bool) (top, bottom string) {
	top = hudFPS.Render(fmt.Sprintf(" %.0f FPS ", h.fps)) +
		hudTitle.Render(" "+h.title+" ") +
		hudStat.Render(fmt.Sprintf(" %d points · %d lit ", points, engaged))

	check := func(on bool) string {
		if on {
			return "[✓]"
		}
		return "[ ]"
	}
	bottom = hudBase.Render(fmt.Sprintf(" %s Paused  %s Colliders ", check(paused), check(colliders))) +
		hudHint.Render(" space: pause  c: colliders  ?: hud  esc: quit ")
	return top, bottom
}
