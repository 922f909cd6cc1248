package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// minClipW keeps clipped line endpoints strictly in front of the camera.
const minClipW = 1e-5

// BeamStyle controls how a bounce polyline is drawn.
type BeamStyle struct {
	Color Color

	// StreakWidth is the half-width in pixels of the first segment.
	StreakWidth int
	// GlowRadius is the radius in pixels of the glow at the first bounce.
	GlowRadius float64
	// SourceRadius is the radius in pixels of the flare at the ray origin.
	SourceRadius float64
	// Intensity scales every additive contribution.
	Intensity float64
}

// DefaultBeamStyle returns a warm white beam.
func DefaultBeamStyle() BeamStyle {
	return BeamStyle{
		Color:        RGB(255, 236, 200),
		StreakWidth:  2,
		GlowRadius:   6,
		SourceRadius: 4,
		Intensity:    1,
	}
}

// DrawBeam draws a bounce polyline additively on top of the frame: a flare
// at the origin, a wide streak for the first segment, a glow where it ends,
// and thin lines for the remaining segments.
func (r *Rasterizer) DrawBeam(points []math3d.Vec3, style BeamStyle) {
	if len(points) < 2 {
		return
	}

	if x, y, _, ok := r.camera.WorldToScreen(points[0], r.Width(), r.Height()); ok {
		r.fb.DrawGlow(x, y, style.SourceRadius, style.Color, style.Intensity)
	}

	if x0, y0, x1, y1, ok := r.screenSegment(points[0], points[1]); ok {
		r.drawStreak(x0, y0, x1, y1, style)
	}

	if x, y, _, ok := r.camera.WorldToScreen(points[1], r.Width(), r.Height()); ok {
		r.fb.DrawGlow(x, y, style.GlowRadius, style.Color, style.Intensity)
	}

	for i := 1; i+1 < len(points); i++ {
		if x0, y0, x1, y1, ok := r.screenSegment(points[i], points[i+1]); ok {
			r.fb.AddLine(round(x0), round(y0), round(x1), round(y1), style.Color, 0.6*style.Intensity)
		}
	}
}

// drawStreak draws parallel additive lines fading out from the center line.
func (r *Rasterizer) drawStreak(x0, y0, x1, y1 float64, style BeamStyle) {
	dx, dy := x1-x0, y1-y0
	l := math.Hypot(dx, dy)
	if l == 0 {
		r.fb.AddPixel(round(x0), round(y0), style.Color, style.Intensity)
		return
	}
	nx, ny := -dy/l, dx/l

	w := max(style.StreakWidth, 0)
	for k := -w; k <= w; k++ {
		falloff := 1 - math.Abs(float64(k))/float64(w+1)
		ox, oy := nx*float64(k), ny*float64(k)
		r.fb.AddLine(round(x0+ox), round(y0+oy), round(x1+ox), round(y1+oy), style.Color, style.Intensity*falloff)
	}
}

// DrawLine3D draws an opaque world-space line, clipped to the view.
func (r *Rasterizer) DrawLine3D(a, b math3d.Vec3, color Color) {
	if x0, y0, x1, y1, ok := r.screenSegment(a, b); ok {
		r.fb.DrawLine(round(x0), round(y0), round(x1), round(y1), color)
	}
}

// screenSegment clips a world-space segment to the view volume and returns
// its screen-space endpoints.
func (r *Rasterizer) screenSegment(a, b math3d.Vec3) (x0, y0, x1, y1 float64, ok bool) {
	ca, cb, ok := clipSegment(r.camera.Clip(a), r.camera.Clip(b))
	if !ok {
		return 0, 0, 0, 0, false
	}
	x0, y0 = ndcToScreen(ca.PerspectiveDivide(), r.Width(), r.Height())
	x1, y1 = ndcToScreen(cb.PerspectiveDivide(), r.Width(), r.Height())
	return x0, y0, x1, y1, true
}

// clipSegment clips a clip-space segment against w >= minClipW and the
// left, right, bottom and top planes (Liang-Barsky).
func clipSegment(a, b math3d.Vec4) (math3d.Vec4, math3d.Vec4, bool) {
	planes := [...]func(v math3d.Vec4) float64{
		func(v math3d.Vec4) float64 { return v.W - minClipW },
		func(v math3d.Vec4) float64 { return v.W + v.X },
		func(v math3d.Vec4) float64 { return v.W - v.X },
		func(v math3d.Vec4) float64 { return v.W + v.Y },
		func(v math3d.Vec4) float64 { return v.W - v.Y },
	}

	t0, t1 := 0.0, 1.0
	for _, dist := range planes {
		da, db := dist(a), dist(b)
		switch {
		case da < 0 && db < 0:
			return a, b, false
		case da < 0:
			t0 = math.Max(t0, da/(da-db))
		case db < 0:
			t1 = math.Min(t1, da/(da-db))
		}
	}
	if t0 > t1 {
		return a, b, false
	}
	return lerp4(a, b, t0), lerp4(a, b, t1), true
}

func lerp4(a, b math3d.Vec4, t float64) math3d.Vec4 {
	return math3d.Vec4{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
		W: a.W + (b.W-a.W)*t,
	}
}

func round(v float64) int {
	return int(math.Round(v))
}
