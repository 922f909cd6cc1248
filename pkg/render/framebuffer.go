// Package render draws prism scenes into a framebuffer that can be shown in
// a terminal or saved as a PNG.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
)

// Framebuffer is a 2D array of pixels that can be rendered to the terminal.
// We use double vertical resolution by using half-block characters (▀▄).
type Framebuffer struct {
	Width  int          // Width in "pixels" (same as terminal columns)
	Height int          // Height in "pixels" (2x terminal rows due to half-blocks)
	Pixels []color.RGBA // Row-major pixel data
}

// NewFramebuffer creates a new framebuffer with the given dimensions.
// Height should be 2x the desired terminal rows for half-block rendering.
func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Width:  width,
		Height: height,
		Pixels: make([]color.RGBA, width*height),
	}
}

// Clear fills the framebuffer with a solid color.
func (fb *Framebuffer) Clear(c color.RGBA) {
	for i := range fb.Pixels {
		fb.Pixels[i] = c
	}
}

func (fb *Framebuffer) inBounds(x, y int) bool {
	return x >= 0 && x < fb.Width && y >= 0 && y < fb.Height
}

// SetPixel sets a pixel at (x, y) to the given color.
// Bounds checking is performed.
func (fb *Framebuffer) SetPixel(x, y int, c color.RGBA) {
	if !fb.inBounds(x, y) {
		return
	}
	fb.Pixels[y*fb.Width+x] = c
}

// GetPixel returns the color at (x, y).
// Returns transparent black if out of bounds.
func (fb *Framebuffer) GetPixel(x, y int) color.RGBA {
	if !fb.inBounds(x, y) {
		return color.RGBA{}
	}
	return fb.Pixels[y*fb.Width+x]
}

// AddPixel blends c additively into (x, y), scaled by intensity, saturating
// each channel at 255.
func (fb *Framebuffer) AddPixel(x, y int, c color.RGBA, intensity float64) {
	if !fb.inBounds(x, y) || intensity <= 0 {
		return
	}
	p := &fb.Pixels[y*fb.Width+x]
	p.R = addChannel(p.R, c.R, intensity)
	p.G = addChannel(p.G, c.G, intensity)
	p.B = addChannel(p.B, c.B, intensity)
	p.A = 255
}

func addChannel(dst, src uint8, intensity float64) uint8 {
	return uint8(math.Min(255, float64(dst)+float64(src)*intensity))
}

// DrawLine draws a line from (x0, y0) to (x1, y1) using Bresenham's algorithm.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {
	bresenham(x0, y0, x1, y1, func(x, y int) { fb.SetPixel(x, y, c) })
}

// AddLine draws an additive line.
func (fb *Framebuffer) AddLine(x0, y0, x1, y1 int, c color.RGBA, intensity float64) {
	bresenham(x0, y0, x1, y1, func(x, y int) { fb.AddPixel(x, y, c, intensity) })
}

// DrawGlow adds a radial glow centered at (cx, cy) with quadratic falloff.
func (fb *Framebuffer) DrawGlow(cx, cy, radius float64, c color.RGBA, intensity float64) {
	if radius <= 0 {
		return
	}
	minX, maxX := int(math.Floor(cx-radius)), int(math.Ceil(cx+radius))
	minY, maxY := int(math.Floor(cy-radius)), int(math.Ceil(cy+radius))
	for y := max(minY, 0); y <= min(maxY, fb.Height-1); y++ {
		for x := max(minX, 0); x <= min(maxX, fb.Width-1); x++ {
			d := math.Hypot(float64(x)+0.5-cx, float64(y)+0.5-cy) / radius
			if d >= 1 {
				continue
			}
			f := 1 - d
			fb.AddPixel(x, y, c, intensity*f*f)
		}
	}
}

func bresenham(x0, y0, x1, y1 int, plot func(x, y int)) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx := 1
	if x0 > x1 {
		sx = -1
	}
	sy := 1
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy

	for {
		plot(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x0 += sx
		}
		if e2 <= dx {
			err += dx
			y0 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// ToImage converts the framebuffer to a standard Go image.RGBA.
func (fb *Framebuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	for y := range fb.Height {
		for x := range fb.Width {
			img.SetRGBA(x, y, fb.Pixels[y*fb.Width+x])
		}
	}
	return img
}

// SavePNG saves the framebuffer as a PNG file.
func (fb *Framebuffer) SavePNG(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := png.Encode(f, fb.ToImage()); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
