package bounce

import (
	"cmp"
	"errors"
	"slices"

	"github.com/taigrr/prism/pkg/scene"
)

// nodeKey identifies a node across graphs. Handles are only unique within
// the graph that issued them.
type nodeKey struct {
	graph  *scene.Graph
	handle scene.Handle
}

func keyOf(n *scene.Node) nodeKey {
	return nodeKey{graph: n.Graph(), handle: n.Handle()}
}

// hitRecord is the state of one node the ray is touching.
type hitRecord struct {
	key          nodeKey
	seq          uint64
	intersection *scene.Intersection
	stopped      bool
}

func (r *hitRecord) stop() {
	r.stopped = true
}

// Tracker turns consecutive intersection lists into enter, move and exit
// events. It holds the only state that survives between frames.
type Tracker struct {
	hits map[nodeKey]*hitRecord
	seq  uint64
}

// NewTracker returns a tracker with no engaged nodes.
func NewTracker() *Tracker {
	return &Tracker{hits: make(map[nodeKey]*hitRecord)}
}

// Len returns the number of engaged nodes.
func (tr *Tracker) Len() int {
	return len(tr.hits)
}

// Engaged reports whether n was hit in the last reconciled frame.
func (tr *Tracker) Engaged(n *scene.Node) bool {
	_, ok := tr.hits[keyOf(n)]
	return ok
}

// Reconcile diffs hits against the previous frame and dispatches events.
//
// Exit fires first, for every engaged node missing from hits, in the order
// the nodes were entered. Then, in bounce order, Enter fires for nodes not
// yet engaged and Move fires for every intersection. A handler that calls
// StopPropagation ends the enter and move dispatch for the rest of the frame;
// exits are not affected.
//
// Handler failures do not interrupt dispatch. They are returned joined, each
// as a *HandlerError.
func (tr *Tracker) Reconcile(src scene.RaySource, hits []*scene.Intersection) error {
	var errs []error

	var gone []*hitRecord
	for key, rec := range tr.hits {
		rec.stopped = false
		if !slices.ContainsFunc(hits, func(in *scene.Intersection) bool { return keyOf(in.Object) == key }) {
			gone = append(gone, rec)
		}
	}
	slices.SortFunc(gone, func(a, b *hitRecord) int { return cmp.Compare(a.seq, b.seq) })
	for _, rec := range gone {
		delete(tr.hits, rec.key)
		in := rec.intersection
		errs = append(errs, invoke(PhaseExit, in.Object.Handlers.Exit, scene.NewRayEvent(src, in, hits, nil)))
	}

	for _, in := range hits {
		key := keyOf(in.Object)
		rec, ok := tr.hits[key]
		if !ok {
			rec = &hitRecord{key: key, seq: tr.seq, intersection: in}
			tr.seq++
			tr.hits[key] = rec
			errs = append(errs, invoke(PhaseEnter, in.Object.Handlers.Enter, scene.NewRayEvent(src, in, hits, rec.stop)))
		}

		rec.intersection = in
		errs = append(errs, invoke(PhaseMove, in.Object.Handlers.Move, scene.NewRayEvent(src, in, hits, rec.stop)))
		if rec.stopped {
			break
		}
	}

	return errors.Join(errs...)
}

// Reset forgets every engaged node without firing exits.
func (tr *Tracker) Reset() {
	clear(tr.hits)
}
