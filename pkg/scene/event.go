package scene

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// RayHandler reacts to a ray event. A returned error is reported to the
// frame driver and does not stop other handlers.
type RayHandler func(*RayEvent) error

// RayHandlers are the optional callbacks that make a node ray-interactive.
// Handlers may change their own node's presentation state; the tracer never
// reads that state back within the same frame.
type RayHandlers struct {
	Enter RayHandler // The ray started touching the node.
	Move  RayHandler // The ray touches the node this frame.
	Exit  RayHandler // The ray stopped touching the node.
}

// Any reports whether at least one handler is set.
func (h RayHandlers) Any() bool {
	return h.Enter != nil || h.Move != nil || h.Exit != nil
}

// Intersection records one bounce: where the ray met a surface and how it
// left. It is rebuilt every frame.
type Intersection struct {
	Object   *Node
	Point    math3d.Vec3 // World-space hit point
	Distance float64     // Length of the segment that reached Point
	Face     int         // Triangle index, -1 for analytic shapes

	Direction math3d.Vec3 // Incoming unit direction

	// Reflected is the outgoing unit direction, set when Reflects is true.
	Reflected math3d.Vec3
	Reflects  bool

	// Normal is the world-space unit surface normal, set when HasNormal is true.
	Normal    math3d.Vec3
	HasNormal bool
}

// RaySource is the tracer that produced an event.
type RaySource interface {
	// Points returns the current frame's bounce polyline.
	Points() []math3d.Vec3
}

// RayEvent is passed to RayHandlers. It and the slices it references are only
// valid for the duration of the callback.
type RayEvent struct {
	Source    RaySource
	Object    *Node
	Position  math3d.Vec3
	Direction math3d.Vec3

	// Intersection is the record this event is about. For exit events it is
	// the last record seen before contact was lost.
	Intersection *Intersection
	// Intersections is the full list for the current frame in bounce order.
	Intersections []*Intersection

	stopped bool
	onStop  func()
}

// NewRayEvent builds the event for in. onStop, if non-nil, runs when a
// handler calls StopPropagation.
func NewRayEvent(src RaySource, in *Intersection, all []*Intersection, onStop func()) *RayEvent {
	return &RayEvent{
		Source:        src,
		Object:        in.Object,
		Position:      in.Point,
		Direction:     in.Direction,
		Intersection:  in,
		Intersections: all,
		onStop:        onStop,
	}
}

// Reflect returns the outgoing direction, if the ray was reflected here.
func (e *RayEvent) Reflect() (math3d.Vec3, bool) {
	return e.Intersection.Reflected, e.Intersection.Reflects
}

// Normal returns the surface normal, if the geometry provided one.
func (e *RayEvent) Normal() (math3d.Vec3, bool) {
	return e.Intersection.Normal, e.Intersection.HasNormal
}

// StopPropagation keeps objects later in bounce order from receiving enter
// and move events this frame. Exit events are unaffected.
func (e *RayEvent) StopPropagation() {
	e.stopped = true
	if e.onStop != nil {
		e.onStop()
	}
}

// Stopped reports whether StopPropagation was called on this event.
func (e *RayEvent) Stopped() bool {
	return e.stopped
}
