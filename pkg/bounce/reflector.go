package bounce

import (
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// Reflector is the per-frame entry point: it owns a Tracer and a Tracker and
// remembers the ray endpoints between frames.
//
//	r, _ := bounce.NewReflector(bounce.DefaultConfig())
//	r.Collect(root)
//	for each frame {
//		r.SetRay(light, camera)
//		n, err := r.Update()
//	}
//
// It is the Source of every event it dispatches.
type Reflector struct {
	tracer  *Tracer
	tracker *Tracker

	start, end math3d.Vec3
}

// NewReflector returns a reflector with no objects. It fails if cfg is invalid.
func NewReflector(cfg Config) (*Reflector, error) {
	t, err := NewTracer(cfg)
	if err != nil {
		return nil, err
	}
	return &Reflector{tracer: t, tracker: NewTracker()}, nil
}

// Config returns the reflector's configuration.
func (r *Reflector) Config() Config {
	return r.tracer.Config()
}

// Collect gathers the ray-interactive nodes below root. Engaged nodes that
// are no longer collected receive their exit on the next Update.
func (r *Reflector) Collect(root *scene.Node) {
	r.tracer.SetObjects(Collect(root))
}

// Objects returns the collected nodes.
func (r *Reflector) Objects() []*scene.Node {
	return r.tracer.Objects()
}

// SetRay sets the endpoints used by Update.
func (r *Reflector) SetRay(start, end math3d.Vec3) {
	r.start, r.end = start, end
}

// Ray returns the endpoints used by Update.
func (r *Reflector) Ray() (start, end math3d.Vec3) {
	return r.start, r.end
}

// Update traces from the stored endpoints and dispatches the frame's events.
// It returns the number of points in the polyline, at least two, and any
// handler failures.
func (r *Reflector) Update() (int, error) {
	points, hits := r.tracer.Trace(r.start, r.end)
	return len(points), r.tracker.Reconcile(r, hits)
}

// Points returns the polyline of the last Update.
func (r *Reflector) Points() []math3d.Vec3 {
	return r.tracer.Points()
}

// Intersections returns the last Update's records in bounce order.
func (r *Reflector) Intersections() []*scene.Intersection {
	return r.tracer.Intersections()
}

// Engaged reports whether the ray touched n in the last Update.
func (r *Reflector) Engaged(n *scene.Node) bool {
	return r.tracker.Engaged(n)
}
