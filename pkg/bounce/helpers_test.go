package bounce

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
	"github.com/taigrr/prism/pkg/scene"
)

const tol = 1e-9

func assertVec(t *testing.T, want, got math3d.Vec3, msgAndArgs ...any) {
	t.Helper()
	assert.InDelta(t, want.X, got.X, tol, msgAndArgs...)
	assert.InDelta(t, want.Y, got.Y, tol, msgAndArgs...)
	assert.InDelta(t, want.Z, got.Z, tol, msgAndArgs...)
}

func noop(*scene.RayEvent) error { return nil }

// addObject attaches a ray-interactive node under parent.
func addObject(t *testing.T, parent *scene.Node, name string, geom scene.Geometry) *scene.Node {
	t.Helper()
	n := parent.Graph().NewNode(name)
	n.Geometry = geom
	n.Handlers = scene.RayHandlers{Move: noop}
	require.NoError(t, parent.Add(n))
	return n
}

func newTracer(t *testing.T, maxBounces int, far float64) *Tracer {
	t.Helper()
	tr, err := NewTracer(Config{MaxBounces: maxBounces, FarDistance: far})
	require.NoError(t, err)
	return tr
}

// unitSphere returns a sphere of radius 1 at the local origin.
func unitSphere() *models.Sphere {
	return models.NewSphere(math3d.Zero3(), 1)
}

// unlitPlane is the plane z=0 with no normal information.
type unlitPlane struct{}

func (unlitPlane) Raycast(r math3d.Ray, tMin, tMax float64) (models.Hit, bool) {
	if r.Direction.Z == 0 {
		return models.Hit{}, false
	}
	t := -r.Origin.Z / r.Direction.Z
	if t <= tMin || t >= tMax {
		return models.Hit{}, false
	}
	return models.Hit{T: t, Point: r.At(t)}, true
}

func (unlitPlane) Bounds() math3d.AABB {
	return math3d.NewAABB(math3d.V3(-1, -1, 0), math3d.V3(1, 1, 0))
}

type fakeSource struct {
	points []math3d.Vec3
}

func (s fakeSource) Points() []math3d.Vec3 {
	return s.points
}

// recorder logs handler calls as "phase:name".
type recorder struct {
	calls []string
}

func (r *recorder) handlers() scene.RayHandlers {
	log := func(phase string) scene.RayHandler {
		return func(e *scene.RayEvent) error {
			r.calls = append(r.calls, phase+":"+e.Object.Name)
			return nil
		}
	}
	return scene.RayHandlers{Enter: log("enter"), Move: log("move"), Exit: log("exit")}
}

func (r *recorder) take() []string {
	calls := r.calls
	r.calls = nil
	return calls
}
