package render

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

func TestWorldToScreen(t *testing.T) {
	cam := NewCamera()
	cam.SetAspectRatio(1)

	tests := []struct {
		name    string
		p       math3d.Vec3
		x, y    float64
		visible bool
	}{
		{"target maps to center", math3d.Zero3(), 50, 50, true},
		{"behind camera", math3d.V3(0, 0, 5), 0, 0, false},
		{"outside view", math3d.V3(100, 0, 0), 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y, _, visible := cam.WorldToScreen(tc.p, 100, 100)
			if visible != tc.visible {
				t.Fatalf("visible = %v, want %v", visible, tc.visible)
			}
			if !visible {
				return
			}
			if math.Abs(x-tc.x) > 1e-9 || math.Abs(y-tc.y) > 1e-9 {
				t.Errorf("screen = (%v, %v), want (%v, %v)", x, y, tc.x, tc.y)
			}
		})
	}

	// Screen Y grows downwards.
	_, y, _, _ := cam.WorldToScreen(math3d.V3(0, 0.5, 0), 100, 100)
	if y >= 50 {
		t.Errorf("y = %v for a point above the target, want less than 50", y)
	}
}

func TestViewProjectionCache(t *testing.T) {
	cam := NewCamera()
	before := cam.ViewProjectionMatrix()

	cam.SetPosition(math3d.V3(0, 0, 6))

	if cam.ViewProjectionMatrix() == before {
		t.Error("moving the camera should invalidate the cached matrix")
	}
}
