// Package demo builds the scene driven by the prism command: a spinning
// torus, or a loaded glTF model, lit by a light that orbits behind it and
// reflects a ray towards the camera.
package demo

import (
	"fmt"
	"math"

	"github.com/taigrr/prism/internal/config"
	"github.com/taigrr/prism/pkg/bounce"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/render"
	"github.com/taigrr/prism/pkg/scene"
)

const (
	// spinPerFrame is how far the prism turns about Y each frame.
	spinPerFrame = 0.01
	// modelSize is the largest dimension a loaded model is scaled to.
	modelSize = 3.0
)

var (
	// Eye is where the ray is aimed and the camera sits.
	Eye = math3d.V3(0, 0, 3)

	baseColor   = render.RGB(70, 80, 110)
	accentColor = render.RGB(120, 220, 255)
)

// Scene is the demo world plus the reflector tracing it.
type Scene struct {
	Graph     *scene.Graph
	Prism     *scene.Node // Spinning group holding the reflective objects
	Reflector *bounce.Reflector
	Orbit     Orbit

	highlights []*Highlight
	light      math3d.Vec3
	elapsed    float64
	frame      int
}

// New builds the scene. With an empty modelPath the prism holds a torus:
// a hidden low-resolution collider that reflects the ray and a visible
// high-resolution copy that shows the highlight.
func New(cfg *config.Config, modelPath string) (*Scene, error) {
	r, err := bounce.NewReflector(cfg.Tracer())
	if err != nil {
		return nil, fmt.Errorf("create reflector: %w", err)
	}

	g := scene.NewGraph()
	s := &Scene{
		Graph:     g,
		Reflector: r,
		Orbit: Orbit{
			RadiusX: cfg.OrbitRadiusX,
			RadiusY: cfg.OrbitRadiusY,
			Depth:   cfg.OrbitDepth,
			Speed:   cfg.OrbitSpeed,
		},
	}

	s.Prism = g.NewNode("prism")
	s.Prism.Position = math3d.V3(0, 0, -1.5)
	if err := g.Root().Add(s.Prism); err != nil {
		return nil, err
	}

	if modelPath == "" {
		err = s.addTorus(cfg.FPS)
	} else {
		err = s.addModel(cfg.FPS, modelPath)
	}
	if err != nil {
		return nil, err
	}

	s.light = s.Orbit.At(0)
	r.Collect(g.Root())
	return s, nil
}

func (s *Scene) addTorus(fps int) error {
	h := NewHighlight(fps, baseColor, accentColor)
	s.highlights = append(s.highlights, h)

	collider := s.Graph.NewNode("collider")
	collider.Geometry = models.NewTorus(1, 0.35, 16, 32)
	collider.Scale = math3d.V3(2, 2, 2)
	collider.Rotation = math3d.QuatFromAxisAngle(math3d.V3(1, 0, 0), math.Pi/2)
	collider.Visible = false
	collider.Handlers = h.Handlers()

	torus := s.Graph.NewNode("torus")
	torus.Geometry = models.NewTorus(1, 0.35, 64, 128)
	torus.Scale = math3d.V3(2, 2, 2)
	torus.UserData = h

	for _, n := range []*scene.Node{collider, torus} {
		if err := s.Prism.Add(n); err != nil {
			return err
		}
	}
	return nil
}

// addModel loads a glTF file into the prism, scaled to modelSize and
// centered. Every mesh node reflects the ray and highlights itself.
func (s *Scene) addModel(fps int, path string) error {
	model, err := scene.LoadGLTF(s.Graph, path)
	if err != nil {
		return err
	}
	if err := s.Prism.Add(model); err != nil {
		return err
	}

	model.Traverse(func(n *scene.Node) {
		if n.Geometry == nil {
			return
		}
		h := NewHighlight(fps, baseColor, accentColor)
		s.highlights = append(s.highlights, h)
		n.Handlers = h.Handlers()
		n.UserData = h
	})

	model.UpdateWorldMatrix(false, true)
	bounds, ok := subtreeBounds(model, model.WorldMatrix().Inverse())
	if !ok {
		return fmt.Errorf("model %s has no meshes", path)
	}
	size := bounds.Size()
	if maxDim := math.Max(size.X, math.Max(size.Y, size.Z)); maxDim > 0 {
		scale := modelSize / maxDim
		model.Scale = math3d.V3(scale, scale, scale)
		model.Position = bounds.Center().Scale(-scale)
	}
	return nil
}

// subtreeBounds returns the box around every geometry under root, in the
// space toSpace maps world coordinates into.
func subtreeBounds(root *scene.Node, toSpace math3d.Mat4) (math3d.AABB, bool) {
	var box math3d.AABB
	found := false
	root.Traverse(func(n *scene.Node) {
		if n.Geometry == nil {
			return
		}
		b := n.Geometry.Bounds().Transform(toSpace.Mul(n.WorldMatrix()))
		if !found {
			box, found = b, true
			return
		}
		box = math3d.NewAABB(box.Min.Min(b.Min), box.Max.Max(b.Max))
	})
	return box, found
}

// Light returns the current light position, the ray's origin.
func (s *Scene) Light() math3d.Vec3 {
	return s.light
}

// Frame returns the number of completed steps.
func (s *Scene) Frame() int {
	return s.frame
}

// Step advances the scene by dt seconds: the prism spins, the light moves,
// the ray is traced towards Eye and the highlights animate. It returns the
// number of polyline points and any handler failures.
func (s *Scene) Step(dt float64) (int, error) {
	s.elapsed += dt
	s.frame++

	s.Prism.RotateOnAxis(math3d.V3(0, 1, 0), spinPerFrame)
	s.Graph.Root().UpdateWorldMatrix(false, true)

	s.light = s.Orbit.At(s.elapsed)
	s.Reflector.SetRay(s.light, Eye)
	n, err := s.Reflector.Update()

	for _, h := range s.highlights {
		h.Update()
	}
	return n, err
}

// Draw renders the visible meshes and the beam. With colliders set, hidden
// meshes are drawn as wireframes.
func (s *Scene) Draw(r *render.Rasterizer, colliders bool) {
	lightDir := s.light.Normalize()

	s.Graph.Root().Traverse(func(n *scene.Node) {
		mesh, ok := n.Geometry.(*models.Mesh)
		if !ok {
			return
		}
		if !n.Visible {
			if colliders {
				r.DrawMeshWireframe(mesh, n.WorldMatrix(), render.RGB(0, 255, 128))
			}
			return
		}

		mat := render.DefaultMaterial(baseColor)
		if h, ok := n.UserData.(*Highlight); ok {
			mat = h.Material()
		}
		r.DrawMesh(mesh, n.WorldMatrix(), mat, lightDir)
	})

	r.DrawBeam(s.Reflector.Points(), render.DefaultBeamStyle())
}
