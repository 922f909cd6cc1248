package bounce

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/scene"
)

// trackerScene holds detached nodes a, b and c, each logging to rec.
type trackerScene struct {
	g       *scene.Graph
	rec     *recorder
	a, b, c *scene.Node
}

func newTrackerScene(t *testing.T) *trackerScene {
	t.Helper()
	s := &trackerScene{g: scene.NewGraph(), rec: &recorder{}}
	s.a = addObject(t, s.g.Root(), "a", unitSphere())
	s.b = addObject(t, s.g.Root(), "b", unitSphere())
	s.c = addObject(t, s.g.Root(), "c", unitSphere())
	for _, n := range []*scene.Node{s.a, s.b, s.c} {
		n.Handlers = s.rec.handlers()
	}
	return s
}

func hitsOf(nodes ...*scene.Node) []*scene.Intersection {
	hits := make([]*scene.Intersection, len(nodes))
	for i, n := range nodes {
		hits[i] = &scene.Intersection{Object: n, Point: math3d.V3(float64(i), 0, 0), Face: -1}
	}
	return hits
}

func TestReconcileIdempotent(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()
	hits := hitsOf(s.a, s.b)

	require.NoError(t, tr.Reconcile(nil, hits))
	assert.Equal(t, []string{"enter:a", "move:a", "enter:b", "move:b"}, s.rec.take())

	require.NoError(t, tr.Reconcile(nil, hits))
	assert.Equal(t, []string{"move:a", "move:b"}, s.rec.take())
	assert.Equal(t, 2, tr.Len())
}

func TestReconcileEnterExitPairing(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()

	// a is hit in frames 1..3, b in frame 2 only.
	frames := [][]*scene.Node{
		{},
		{s.a},
		{s.a, s.b},
		{s.a},
		{},
		{},
	}
	want := [][]string{
		nil,
		{"enter:a", "move:a"},
		{"move:a", "enter:b", "move:b"},
		{"exit:b", "move:a"},
		{"exit:a"},
		nil,
	}

	for i, nodes := range frames {
		require.NoError(t, tr.Reconcile(nil, hitsOf(nodes...)))
		assert.Equal(t, want[i], s.rec.take(), "frame %d", i)
		for _, n := range nodes {
			assert.True(t, tr.Engaged(n), "frame %d: %s engaged", i, n.Name)
		}
		assert.Equal(t, len(nodes), tr.Len(), "frame %d", i)
	}
}

func TestReconcileRepeatedObject(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()
	hits := hitsOf(s.a, s.b, s.a)

	require.NoError(t, tr.Reconcile(nil, hits))
	assert.Equal(t, []string{"enter:a", "move:a", "enter:b", "move:b", "move:a"}, s.rec.take())
	assert.Equal(t, 2, tr.Len())

	// The last occurrence is what the exit event reports.
	var exitPos math3d.Vec3
	s.a.Handlers.Exit = func(e *scene.RayEvent) error {
		exitPos = e.Position
		return nil
	}
	require.NoError(t, tr.Reconcile(nil, hitsOf(s.b)))
	assert.Equal(t, math3d.V3(2, 0, 0), exitPos)
}

func TestReconcileExitOrder(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()

	require.NoError(t, tr.Reconcile(nil, hitsOf(s.c, s.a, s.b)))
	s.rec.take()

	for range 5 {
		require.NoError(t, tr.Reconcile(nil, hitsOf(s.c, s.a, s.b)))
		s.rec.take()
	}
	require.NoError(t, tr.Reconcile(nil, nil))
	assert.Equal(t, []string{"exit:c", "exit:a", "exit:b"}, s.rec.take())
	assert.Zero(t, tr.Len())
}

func TestReconcileStopPropagation(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()

	require.NoError(t, tr.Reconcile(nil, hitsOf(s.c)))
	s.rec.take()

	move := s.rec.handlers().Move
	s.a.Handlers.Move = func(e *scene.RayEvent) error {
		e.StopPropagation()
		assert.True(t, e.Stopped())
		return move(e)
	}

	// c vanished, a stops, b comes later in bounce order.
	require.NoError(t, tr.Reconcile(nil, hitsOf(s.a, s.b)))
	assert.Equal(t, []string{"exit:c", "enter:a", "move:a"}, s.rec.take())
	assert.True(t, tr.Engaged(s.a))
	assert.False(t, tr.Engaged(s.b))

	// The stop flag does not carry over: once a stops asking, b is reached.
	s.a.Handlers.Move = move
	require.NoError(t, tr.Reconcile(nil, hitsOf(s.a, s.b)))
	assert.Equal(t, []string{"move:a", "enter:b", "move:b"}, s.rec.take())
}

func TestReconcileStopFromEnter(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()

	enter := s.rec.handlers().Enter
	s.a.Handlers.Enter = func(e *scene.RayEvent) error {
		e.StopPropagation()
		return enter(e)
	}

	require.NoError(t, tr.Reconcile(nil, hitsOf(s.a, s.b)))
	assert.Equal(t, []string{"enter:a", "move:a"}, s.rec.take())
}

func TestReconcileHandlerFailures(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()
	errBoom := errors.New("boom")

	s.a.Handlers.Enter = func(*scene.RayEvent) error { return errBoom }
	s.b.Handlers.Move = func(*scene.RayEvent) error { panic("kaput") }

	err := tr.Reconcile(nil, hitsOf(s.a, s.b, s.c))
	require.Error(t, err)

	// Every other handler still ran.
	assert.Equal(t, []string{"move:a", "enter:b", "enter:c", "move:c"}, s.rec.take())
	assert.Equal(t, 3, tr.Len())

	assert.ErrorIs(t, err, errBoom)
	assert.ErrorIs(t, err, ErrHandlerPanic)

	var herr *HandlerError
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, PhaseEnter, herr.Phase)
	assert.Equal(t, s.a.Handle(), herr.Handle)
	assert.Equal(t, "a", herr.Name)
	assert.Contains(t, err.Error(), `move handler for "b"`)
	assert.Contains(t, err.Error(), "kaput")

	// Exit failures are isolated too.
	s.b.Handlers.Exit = func(*scene.RayEvent) error { return errBoom }
	err = tr.Reconcile(nil, hitsOf(s.c))
	require.ErrorAs(t, err, &herr)
	assert.Equal(t, PhaseExit, herr.Phase)
	assert.Equal(t, []string{"exit:a", "move:c"}, s.rec.take())
	assert.Equal(t, 1, tr.Len())
}

func TestReconcileEventPayload(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()
	src := fakeSource{points: []math3d.Vec3{math3d.Zero3(), math3d.V3(1, 0, 0)}}

	hits := hitsOf(s.a, s.b)
	hits[1].Direction = math3d.V3(0, 0, -1)
	hits[1].Reflected, hits[1].Reflects = math3d.V3(0, 0, 1), true
	hits[1].Normal, hits[1].HasNormal = math3d.V3(0, 0, 1), true

	var got *scene.RayEvent
	s.b.Handlers.Move = func(e *scene.RayEvent) error {
		got = e
		return nil
	}
	require.NoError(t, tr.Reconcile(src, hits))
	require.NotNil(t, got)

	assert.Equal(t, src, got.Source)
	assert.Same(t, s.b, got.Object)
	assert.Same(t, hits[1], got.Intersection)
	assert.Equal(t, hits, got.Intersections)
	assert.Equal(t, hits[1].Point, got.Position)
	assert.Equal(t, hits[1].Direction, got.Direction)

	r, ok := got.Reflect()
	assert.True(t, ok)
	assert.Equal(t, math3d.V3(0, 0, 1), r)
	n, ok := got.Normal()
	assert.True(t, ok)
	assert.Equal(t, math3d.V3(0, 0, 1), n)

	_, ok = scene.NewRayEvent(src, hits[0], hits, nil).Normal()
	assert.False(t, ok)
}

func TestTrackerReset(t *testing.T) {
	s := newTrackerScene(t)
	tr := NewTracker()
	require.NoError(t, tr.Reconcile(nil, hitsOf(s.a)))
	s.rec.take()

	tr.Reset()
	assert.Zero(t, tr.Len())
	require.NoError(t, tr.Reconcile(nil, nil))
	assert.Empty(t, s.rec.take())
}

func TestReconcileNodesFromDifferentGraphs(t *testing.T) {
	rec := &recorder{}
	g1, g2 := scene.NewGraph(), scene.NewGraph()
	a := addObject(t, g1.Root(), "a", unitSphere())
	b := addObject(t, g2.Root(), "b", unitSphere())
	a.Handlers, b.Handlers = rec.handlers(), rec.handlers()
	require.Equal(t, a.Handle(), b.Handle())

	tr := NewTracker()
	require.NoError(t, tr.Reconcile(nil, hitsOf(a)))
	assert.Equal(t, []string{"enter:a", "move:a"}, rec.take())

	require.NoError(t, tr.Reconcile(nil, hitsOf(b)))
	assert.Equal(t, []string{"exit:a", "enter:b", "move:b"}, rec.take())
	assert.True(t, tr.Engaged(b))
	assert.False(t, tr.Engaged(a))

	require.NoError(t, tr.Reconcile(nil, hitsOf(a, b)))
	assert.Equal(t, []string{"enter:a", "move:a", "move:b"}, rec.take())
	assert.Equal(t, 2, tr.Len())
}

func TestReflectorSwitchesGraphs(t *testing.T) {
	rec := &recorder{}
	g1, g2 := scene.NewGraph(), scene.NewGraph()
	a := addObject(t, g1.Root(), "a", unitSphere())
	b := addObject(t, g2.Root(), "b", unitSphere())
	a.Handlers, b.Handlers = rec.handlers(), rec.handlers()

	r, err := NewReflector(DefaultConfig())
	require.NoError(t, err)
	r.SetRay(math3d.V3(0, 0, 5), math3d.Zero3())

	r.Collect(g1.Root())
	_, err = r.Update()
	require.NoError(t, err)
	assert.Equal(t, []string{"enter:a", "move:a"}, rec.take())

	r.Collect(g2.Root())
	_, err = r.Update()
	require.NoError(t, err)
	assert.Equal(t, []string{"exit:a", "enter:b", "move:b"}, rec.take())
	assert.True(t, r.Engaged(b))
	assert.False(t, r.Engaged(a))
}
