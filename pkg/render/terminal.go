package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Color is an alias for color.RGBA for convenience.
type Color = color.RGBA

// Colors for convenience
var (
	ColorBlack   = color.RGBA{0, 0, 0, 255}
	ColorWhite   = color.RGBA{255, 255, 255, 255}
	ColorRed     = color.RGBA{255, 0, 0, 255}
	ColorGreen   = color.RGBA{0, 255, 0, 255}
	ColorBlue    = color.RGBA{0, 0, 255, 255}
	ColorYellow  = color.RGBA{255, 255, 0, 255}
	ColorCyan    = color.RGBA{0, 255, 255, 255}
	ColorMagenta = color.RGBA{255, 0, 255, 255}
	ColorGray    = color.RGBA{128, 128, 128, 255}
)

// RGB creates a color from RGB values.
func RGB(r, g, b uint8) color.RGBA {
	return color.RGBA{r, g, b, 255}
}

// RGBA creates a color from RGBA values.
func RGBA(r, g, b, a uint8) color.RGBA {
	return color.RGBA{r, g, b, a}
}

// Draw converts the framebuffer to half-block terminal cells. Each terminal
// row shows two framebuffer rows: ▀ with fg=top color and bg=bottom color.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		topY := (row - area.Min.Y) * 2
		botY := topY + 1

		for col := area.Min.X; col < area.Max.X && col-area.Min.X < fb.Width; col++ {
			x := col - area.Min.X
			cell := &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: rgbaToColor(fb.GetPixel(x, topY)),
					Bg: rgbaToColor(fb.GetPixel(x, botY)),
				},
			}
			scr.SetCell(col, row, cell)
		}
	}
}

// rgbaToColor converts color.RGBA to Go's color.Color interface.
func rgbaToColor(c color.RGBA) color.Color {
	if c.A == 0 {
		return nil // Transparent = no color
	}
	return c
}

// Overlay draws a framebuffer with text lines on top, starting at the
// top-left corner. Lines may carry ANSI styling.
type Overlay struct {
	Frame *Framebuffer
	Lines []string
}

// Draw implements uv.Drawable.
func (o Overlay) Draw(scr uv.Screen, area uv.Rectangle) {
	if o.Frame != nil {
		o.Frame.Draw(scr, area)
	}
	for i, line := range o.Lines {
		y := area.Min.Y + i
		if y >= area.Max.Y {
			break
		}
		ss := uv.NewStyledString(line)
		ss.Draw(scr, uv.Rect(area.Min.X, y, min(ss.Bounds().Dx(), area.Dx()), 1))
	}
}

// TerminalRenderer presents framebuffers on a terminal.
type TerminalRenderer struct {
	term          *uv.Terminal
	width, height int // In cells
}

// NewTerminalRenderer creates a renderer for a terminal of width x height cells.
func NewTerminalRenderer(term *uv.Terminal, width, height int) *TerminalRenderer {
	return &TerminalRenderer{term: term, width: width, height: height}
}

// FramebufferSize returns the pixel size that fills the terminal.
func (t *TerminalRenderer) FramebufferSize() (width, height int) {
	return t.width, t.height * 2
}

// Render queues fb and the HUD lines for the next Flush.
func (t *TerminalRenderer) Render(fb *Framebuffer, hud ...string) {
	t.term.Draw(Overlay{Frame: fb, Lines: hud})
}

// Flush writes pending changes to the terminal.
func (t *TerminalRenderer) Flush() error {
	return t.term.Display()
}
