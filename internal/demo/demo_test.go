package demo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/bounce"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

func testConfig() *config.Config {
	return &config.Config{
		Bounces:      8,
		Far:          200,
		FPS:          60,
		LogLevel:     "info",
		OrbitRadiusX: 20,
		OrbitRadiusY: 10,
		OrbitDepth:   -100,
		OrbitSpeed:   0.6,
	}
}

func newScene(t *testing.T) *Scene {
	t.Helper()
	s, err := New(testConfig(), "")
	require.NoError(t, err)
	return s
}

func TestNewCollectsCollider(t *testing.T) {
	s := newScene(t)

	objects := s.Reflector.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, "collider", objects[0].Name)
	assert.False(t, objects[0].Visible)

	torus := s.Graph.Root().Find("torus")
	require.NotNil(t, torus)
	assert.True(t, torus.Visible)
	assert.IsType(t, &Highlight{}, torus.UserData)
}

func TestTorusOrientation(t *testing.T) {
	s := newScene(t)
	collider := s.Graph.Root().Find("collider")
	torus := s.Graph.Root().Find("torus")
	require.NotNil(t, collider)
	require.NotNil(t, torus)

	assert.Equal(t, math3d.QuatFromAxisAngle(math3d.V3(1, 0, 0), math.Pi/2), collider.Rotation)
	assert.Equal(t, math3d.IdentityQuat(), torus.Rotation)
	assert.Equal(t, collider.Scale, torus.Scale)
}

func TestNewInvalidTracerConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Bounces = -1

	_, err := New(cfg, "")
	assert.ErrorIs(t, err, bounce.ErrInvalidMaxBounces)
}

func TestNewMissingModel(t *testing.T) {
	_, err := New(testConfig(), "does-not-exist.glb")
	assert.Error(t, err)
}

func TestStep(t *testing.T) {
	s := newScene(t)
	before := s.Prism.Rotation

	n, err := s.Step(1.0 / 60)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, n, 2)
	assert.Equal(t, 1, s.Frame())
	assert.NotEqual(t, before, s.Prism.Rotation)

	points := s.Reflector.Points()
	require.Len(t, points, n)
	assert.Equal(t, s.Light(), points[0])
}

func TestRayThroughTorusHighlights(t *testing.T) {
	s := newScene(t)
	s.Graph.Root().UpdateWorldMatrix(false, true)

	collider := s.Reflector.Objects()[0]
	h := collider.Graph().Root().Find("torus").UserData.(*Highlight)

	// Straight down the -Z axis through the near side of the tube.
	s.Reflector.SetRay(math3d.V3(2.1, 0.1, 10), math3d.V3(2.1, 0.1, -10))
	n, err := s.Reflector.Update()
	require.NoError(t, err)

	require.GreaterOrEqual(t, n, 3)
	assert.True(t, s.Reflector.Engaged(collider))
	assert.Equal(t, 1.0, h.Target())
	assert.InDelta(t, minRoughness+(maxRoughness-minRoughness)*float64(n-1)/roughBounces, h.Roughness, 1e-12)

	// Moving the ray off the torus ends the contact.
	s.Reflector.SetRay(math3d.V3(10, 10, 10), math3d.V3(10, 10, -10))
	_, err = s.Reflector.Update()
	require.NoError(t, err)
	assert.False(t, s.Reflector.Engaged(collider))
	assert.Equal(t, 0.0, h.Target())
}

func TestHighlightSpring(t *testing.T) {
	h := NewHighlight(60, render.ColorBlack, render.ColorWhite)
	handlers := h.Handlers()
	e := &scene.RayEvent{}

	require.NoError(t, handlers.Enter(e))
	for range 120 {
		h.Update()
	}
	assert.InDelta(t, 1, h.Emphasis, 0.01)
	assert.Greater(t, h.Material().Color.R, uint8(240))

	require.NoError(t, handlers.Exit(e))
	for range 120 {
		h.Update()
	}
	assert.InDelta(t, 0, h.Emphasis, 0.01)
	assert.Less(t, h.Material().Color.R, uint8(15))
}

type points []math3d.Vec3

func (p points) Points() []math3d.Vec3 { return p }

func TestHighlightRoughness(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   float64
	}{
		{"single segment", 2, 0.028},
		{"five segments", 6, 0.06},
		{"saturates", 30, maxRoughness},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewHighlight(60, render.ColorBlack, render.ColorWhite)
			e := &scene.RayEvent{Source: make(points, tc.points)}

			require.NoError(t, h.Handlers().Move(e))
			assert.InDelta(t, tc.want, h.Roughness, 1e-12)
		})
	}
}

func TestOrbitClockwise(t *testing.T) {
	o := Orbit{RadiusX: 20, RadiusY: 10, Depth: -100, Speed: 1}

	start := o.At(0)
	assert.InDelta(t, 20, start.X, 1e-9)
	assert.InDelta(t, 0, start.Y, 1e-9)
	assert.InDelta(t, -100, start.Z, 1e-9)

	quarter := o.At(math.Pi / 2)
	assert.InDelta(t, 0, quarter.X, 1e-9)
	assert.InDelta(t, -10, quarter.Y, 1e-9)
}

func TestDraw(t *testing.T) {
	s := newScene(t)
	_, err := s.Step(1.0 / 60)
	require.NoError(t, err)

	fb := render.NewFramebuffer(80, 48)
	fb.Clear(render.ColorBlack)
	cam := render.NewCamera()
	cam.SetAspectRatio(80.0 / 48.0)
	r := render.NewRasterizer(cam, fb)
	r.ClearDepth()

	s.Draw(r, true)

	lit := 0
	for y := range fb.Height {
		for x := range fb.Width {
			if fb.GetPixel(x, y) != render.ColorBlack {
				lit++
			}
		}
	}
	assert.Positive(t, lit)
}
