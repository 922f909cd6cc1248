package demo

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

const (
	minRoughness = 0.02
	maxRoughness = 0.1
	// Bounce count at which roughness stops growing.
	roughBounces = 10
)

// Highlight is the presentation state a ray changes on the objects it
// touches. Emphasis springs towards 1 while the ray touches the object and
// back to 0 after it leaves; Roughness follows the bounce count.
type Highlight struct {
	Base   render.Color
	Accent render.Color

	Emphasis  float64
	Roughness float64

	target   float64
	velocity float64 // spring velocity of Emphasis
	spring   harmonica.Spring
}

// NewHighlight creates a highlight animated at fps frames per second.
func NewHighlight(fps int, base, accent render.Color) *Highlight {
	return &Highlight{
		Base:      base,
		Accent:    accent,
		Roughness: maxRoughness,
		// Frequency 6.0 = quick response, damping 0.6 = slight overshoot
		spring: harmonica.NewSpring(harmonica.FPS(fps), 6.0, 0.6),
	}
}

// Target reports where Emphasis is heading.
func (h *Highlight) Target() float64 {
	return h.target
}

// Update advances the spring by one frame.
func (h *Highlight) Update() {
	h.Emphasis, h.velocity = h.spring.Update(h.Emphasis, h.velocity, h.target)
}

// Handlers returns ray handlers that drive h.
func (h *Highlight) Handlers() scene.RayHandlers {
	return scene.RayHandlers{
		Enter: func(*scene.RayEvent) error {
			h.target = 1
			return nil
		},
		Move: func(e *scene.RayEvent) error {
			bounces := len(e.Source.Points()) - 1
			h.Roughness = minRoughness + (maxRoughness-minRoughness)*math.Min(1, float64(bounces)/roughBounces)
			return nil
		},
		Exit: func(*scene.RayEvent) error {
			h.target = 0
			return nil
		},
	}
}

// Material returns the shading for the current frame.
func (h *Highlight) Material() render.Material {
	e := math.Max(0, math.Min(1, h.Emphasis))
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*e)
	}
	// Blinn-Phong exponent equivalent of the roughness.
	r := math.Max(h.Roughness, minRoughness)
	return render.Material{
		Color:     render.RGB(mix(h.Base.R, h.Accent.R), mix(h.Base.G, h.Accent.G), mix(h.Base.B, h.Accent.B)),
		Ambient:   0.25,
		Specular:  0.3 + 0.5*e,
		Shininess: math.Min(2/(r*r)-2, 512),
	}
}

// Orbit moves the light clockwise on an ellipse in the plane z = Depth.
type Orbit struct {
	RadiusX, RadiusY float64
	Depth            float64
	Speed            float64 // Radians per second
}

// At returns the light position t seconds in.
func (o Orbit) At(t float64) math3d.Vec3 {
	a := -t * o.Speed
	return math3d.V3(math.Cos(a)*o.RadiusX, math.Sin(a)*o.RadiusY, o.Depth)
}
