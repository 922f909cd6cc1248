// Package bounce traces a single ray through a scene, reflecting it off the
// surfaces of ray-interactive nodes, and turns the per-frame hits into
// enter, move and exit events for those nodes.
package bounce

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

const (
	// pointMargin is spare capacity in the point buffer beyond the bound.
	pointMargin = 10

	// selfHitEpsilon is the minimum hit distance, so a reflected segment does
	// not hit the surface it starts on.
	selfHitEpsilon = 1e-6

	// tieEpsilon is the distance below which two hits count as equal. The
	// earlier node in collection order wins.
	tieEpsilon = 1e-9
)

// Tracer computes the bounce polyline for a ray. The point buffer is reused
// between traces. A Tracer is not safe for concurrent use.
type Tracer struct {
	cfg     Config
	objects []*scene.Node

	points []math3d.Vec3
	n      int
	hits   []*scene.Intersection
}

// NewTracer returns a tracer with no objects. It fails if cfg is invalid.
func NewTracer(cfg Config) (*Tracer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Tracer{
		cfg:    cfg,
		points: make([]math3d.Vec3, cfg.bound()+pointMargin),
	}, nil
}

// Config returns the tracer's configuration.
func (t *Tracer) Config() Config {
	return t.cfg
}

// SetObjects replaces the nodes rays are cast against, usually the result of
// Collect. Order decides ties.
func (t *Tracer) SetObjects(objects []*scene.Node) {
	t.objects = objects
}

// Objects returns the nodes rays are cast against.
func (t *Tracer) Objects() []*scene.Node {
	return t.objects
}

// Points returns the polyline of the last trace: the origin, every bounce
// point, and the terminus. It is valid until the next Trace.
func (t *Tracer) Points() []math3d.Vec3 {
	return t.points[:t.n]
}

// Intersections returns the records of the last trace in bounce order.
func (t *Tracer) Intersections() []*scene.Intersection {
	return t.hits
}

// Trace casts a ray from origin towards target and follows its reflections.
// The returned polyline always has at least two points. When origin equals
// target the ray has no direction and the polyline is [origin, origin].
//
// Node world matrices are read as they are; refresh them with
// Node.UpdateWorldMatrix or Collect after moving nodes.
func (t *Tracer) Trace(origin, target math3d.Vec3) ([]math3d.Vec3, []*scene.Intersection) {
	t.n = 0
	clear(t.hits)
	t.hits = t.hits[:0]

	pos := origin
	dir := target.Sub(origin).Normalize()
	t.push(pos)
	if dir.IsZero() {
		t.push(pos)
		return t.Points(), t.hits
	}

	for {
		var (
			c  candidate
			ok bool
		)
		if t.n < t.cfg.bound() {
			c, ok = t.nearest(math3d.Ray{Origin: pos, Direction: dir})
		}
		if !ok {
			t.push(pos.AddScaled(dir, t.cfg.FarDistance))
			break
		}

		in := &scene.Intersection{
			Object:    c.node,
			Point:     c.point,
			Distance:  c.dist,
			Face:      c.face,
			Direction: dir,
		}
		t.hits = append(t.hits, in)
		t.push(c.point)

		if !c.hasNormal {
			// Without a normal there is no reflection; the hit ends the path.
			break
		}
		in.Normal, in.HasNormal = c.normal, true
		dir = dir.Reflect(c.normal).Normalize()
		in.Reflected, in.Reflects = dir, true
		pos = c.point
	}

	return t.Points(), t.hits
}

func (t *Tracer) push(p math3d.Vec3) {
	if t.n == len(t.points) {
		t.points = append(t.points, p)
	} else {
		t.points[t.n] = p
	}
	t.n++
}

type candidate struct {
	node      *scene.Node
	point     math3d.Vec3
	dist      float64
	face      int
	normal    math3d.Vec3
	hasNormal bool
}

// nearest casts r against every live object and returns the closest hit.
func (t *Tracer) nearest(r math3d.Ray) (candidate, bool) {
	var (
		best  candidate
		found bool
	)
	for _, node := range t.objects {
		if node == nil || node.Geometry == nil || !node.Alive() {
			continue
		}
		world := node.WorldMatrix()

		// The local ray keeps the world parameterization, so Hit.T is the
		// world distance along the unit direction.
		hit, ok := node.Geometry.Raycast(r.Transform(world.Inverse()), selfHitEpsilon, math.Inf(1))
		if !ok {
			continue
		}
		if found && hit.T >= best.dist-tieEpsilon {
			continue
		}

		best = candidate{
			node:  node,
			point: r.At(hit.T),
			dist:  hit.T,
			face:  hit.Face,
		}
		if hit.HasNormal {
			n := world.NormalMatrix().MulVec3Dir(hit.Normal).Normalize()
			best.normal, best.hasNormal = n, !n.IsZero()
		}
		found = true
	}
	return best, found
}
