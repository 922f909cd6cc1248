package render

import (
	"math"
	"testing"

	"github.com/taigrr/prism/pkg/math3d"
)

type mockVertex struct {
	pos    math3d.Vec3
	normal math3d.Vec3
}

// mockMesh implements MeshRenderer for testing.
type mockMesh struct {
	vertices []mockVertex
	faces    [][3]int
}

func (m *mockMesh) VertexCount() int     { return len(m.vertices) }
func (m *mockMesh) TriangleCount() int   { return len(m.faces) }
func (m *mockMesh) GetFace(i int) [3]int { return m.faces[i] }
func (m *mockMesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.vertices[i]
	return v.pos, v.normal
}

// createTestRasterizer creates a rasterizer looking at the origin from +Z.
func createTestRasterizer(width, height int) (*Rasterizer, *Framebuffer) {
	fb := NewFramebuffer(width, height)
	camera := NewCamera()
	camera.SetPosition(math3d.V3(0, 0, 10))
	camera.LookAt(math3d.Zero3())
	camera.SetAspectRatio(float64(width) / float64(height))
	camera.SetFOV(math.Pi / 3)
	rasterizer := NewRasterizer(camera, fb)
	rasterizer.ClearDepth()
	fb.Clear(ColorBlack)
	return rasterizer, fb
}

// litPixels counts pixels that are not black.
func litPixels(fb *Framebuffer) int {
	n := 0
	for y := range fb.Height {
		for x := range fb.Width {
			c := fb.GetPixel(x, y)
			if c.R > 0 || c.G > 0 || c.B > 0 {
				n++
			}
		}
	}
	return n
}

// flatTriangle returns a counter-clockwise triangle in the plane z, facing +Z.
func flatTriangle(z float64, c Color) Triangle {
	n := math3d.V3(0, 0, 1)
	return Triangle{V: [3]Vertex{
		{Position: math3d.V3(-5, -5, z), Normal: n, Color: c},
		{Position: math3d.V3(5, -5, z), Normal: n, Color: c},
		{Position: math3d.V3(0, 5, z), Normal: n, Color: c},
	}}
}

func TestBarycentric(t *testing.T) {
	// Test barycentric coordinates at triangle vertices
	tests := []struct {
		name     string
		px, py   float64
		expected math3d.Vec3
	}{
		{"vertex 0", 0, 0, math3d.V3(1, 0, 0)},
		{"vertex 1", 1, 0, math3d.V3(0, 1, 0)},
		{"vertex 2", 0, 1, math3d.V3(0, 0, 1)},
		{"centroid", 1.0 / 3, 1.0 / 3, math3d.V3(1.0/3, 1.0/3, 1.0/3)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Triangle: (0,0), (1,0), (0,1)
			bc := barycentric(0, 0, 1, 0, 0, 1, tc.px, tc.py)

			if math.Abs(bc.X-tc.expected.X) > 0.001 ||
				math.Abs(bc.Y-tc.expected.Y) > 0.001 ||
				math.Abs(bc.Z-tc.expected.Z) > 0.001 {
				t.Errorf("barycentric(%v, %v) = %v, want %v", tc.px, tc.py, bc, tc.expected)
			}
		})
	}

	// Test point outside triangle
	t.Run("outside triangle", func(t *testing.T) {
		bc := barycentric(0, 0, 1, 0, 0, 1, -1, -1)
		if bc.X >= 0 && bc.Y >= 0 && bc.Z >= 0 {
			t.Error("point outside triangle should have negative barycentric coordinate")
		}
	})
}

func TestInterpolateColor3(t *testing.T) {
	c0 := RGB(255, 0, 0) // Red
	c1 := RGB(0, 255, 0) // Green
	c2 := RGB(0, 0, 255) // Blue

	tests := []struct {
		name     string
		bc       math3d.Vec3
		expected Color
	}{
		{"full red", math3d.V3(1, 0, 0), RGB(255, 0, 0)},
		{"full green", math3d.V3(0, 1, 0), RGB(0, 255, 0)},
		{"full blue", math3d.V3(0, 0, 1), RGB(0, 0, 255)},
		{"equal mix", math3d.V3(1.0/3, 1.0/3, 1.0/3), RGB(85, 85, 85)},
		{"half red half green", math3d.V3(0.5, 0.5, 0), RGB(127, 127, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := interpolateColor3(c0, c1, c2, tc.bc)
			// Allow 1 unit tolerance due to rounding
			if absInt(int(result.R)-int(tc.expected.R)) > 1 ||
				absInt(int(result.G)-int(tc.expected.G)) > 1 ||
				absInt(int(result.B)-int(tc.expected.B)) > 1 {
				t.Errorf("interpolateColor3 with bc=%v = %v, want %v", tc.bc, result, tc.expected)
			}
		})
	}
}

// screenAt returns the pixel a world point projects to.
func screenAt(t *testing.T, r *Rasterizer, p math3d.Vec3) (int, int) {
	t.Helper()
	x, y, _, ok := r.Camera().WorldToScreen(p, r.Width(), r.Height())
	if !ok {
		t.Fatalf("%v is not on screen", p)
	}
	return int(x), int(y)
}

func TestDrawTriangle(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	r.DrawTriangle(flatTriangle(0, RGB(200, 200, 200)))

	if litPixels(fb) == 0 {
		t.Fatal("DrawTriangle should draw visible pixels")
	}
	if c := fb.GetPixel(50, 50); c != RGB(200, 200, 200) {
		t.Errorf("center pixel = %v, want %v", c, RGB(200, 200, 200))
	}
}

func TestDrawTriangleSmoothShading(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	tri := flatTriangle(0, ColorWhite)
	tri.V[0].Color = ColorRed
	tri.V[1].Color = ColorGreen
	tri.V[2].Color = ColorBlue
	r.DrawTriangle(tri)

	x, y := screenAt(t, r, math3d.V3(-4, -4.5, 0))
	if c := fb.GetPixel(x, y); c.R <= c.B || c.R <= c.G {
		t.Errorf("pixel near red corner = %v, want red to dominate", c)
	}
	x, y = screenAt(t, r, math3d.V3(0, 4, 0))
	if c := fb.GetPixel(x, y); c.B <= c.R || c.B <= c.G {
		t.Errorf("pixel near blue corner = %v, want blue to dominate", c)
	}
}

func TestDrawTriangleBackfaceCulling(t *testing.T) {
	back := flatTriangle(0, ColorWhite)
	back.V[1], back.V[2] = back.V[2], back.V[1]

	r, fb := createTestRasterizer(100, 100)
	r.DrawTriangle(back)
	if n := litPixels(fb); n != 0 {
		t.Errorf("back-facing triangle drew %d pixels, want 0", n)
	}

	r, fb = createTestRasterizer(100, 100)
	r.DisableBackfaceCulling = true
	r.DrawTriangle(back)
	if litPixels(fb) == 0 {
		t.Error("back-facing triangle should be drawn with culling disabled")
	}
}

func TestDrawTriangleBehindCamera(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	r.DrawTriangle(flatTriangle(20, ColorWhite))

	if n := litPixels(fb); n != 0 {
		t.Errorf("triangle behind the camera drew %d pixels, want 0", n)
	}
}

func TestDrawTriangleDepthTest(t *testing.T) {
	near := flatTriangle(1, ColorRed)
	far := flatTriangle(-1, ColorBlue)

	for _, order := range [][2]Triangle{{near, far}, {far, near}} {
		r, fb := createTestRasterizer(100, 100)
		r.DrawTriangle(order[0])
		r.DrawTriangle(order[1])

		if c := fb.GetPixel(50, 50); c != ColorRed {
			t.Errorf("center pixel = %v, want the nearer triangle's %v", c, ColorRed)
		}
	}
}

func TestDrawMesh(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	n := math3d.V3(0, 0, 1)
	mesh := &mockMesh{
		vertices: []mockVertex{
			{math3d.V3(-5, -5, 0), n},
			{math3d.V3(5, -5, 0), n},
			{math3d.V3(5, 5, 0), n},
			{math3d.V3(-5, 5, 0), n},
		},
		faces: [][3]int{{0, 1, 2}, {0, 2, 3}},
	}

	r.DrawMesh(mesh, math3d.Identity(), DefaultMaterial(RGB(200, 100, 50)), math3d.V3(0, 0, 1))

	c := fb.GetPixel(50, 50)
	if absInt(int(c.R)-200) > 1 || absInt(int(c.G)-100) > 1 || absInt(int(c.B)-50) > 1 {
		t.Errorf("fully lit center pixel = %v, want about (200, 100, 50)", c)
	}

	// Light from behind leaves only the ambient term.
	r, fb = createTestRasterizer(100, 100)
	r.DrawMesh(mesh, math3d.Identity(), DefaultMaterial(RGB(200, 100, 50)), math3d.V3(0, 0, -1))
	c = fb.GetPixel(50, 50)
	if absInt(int(c.R)-60) > 1 || absInt(int(c.G)-30) > 1 {
		t.Errorf("unlit center pixel = %v, want about (60, 30, 15)", c)
	}
}

func TestDrawMeshTransformed(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	n := math3d.V3(0, 0, 1)
	mesh := &mockMesh{
		vertices: []mockVertex{
			{math3d.V3(-1, -1, 0), n},
			{math3d.V3(1, -1, 0), n},
			{math3d.V3(0, 1, 0), n},
		},
		faces: [][3]int{{0, 1, 2}},
	}

	// Moved to the right, the center stays empty.
	transform := math3d.Translate(math3d.V3(3, 0, 0))
	r.DrawMesh(mesh, transform, DefaultMaterial(ColorWhite), math3d.V3(0, 0, 1))

	if c := fb.GetPixel(50, 50); c != ColorBlack {
		t.Errorf("center pixel = %v, want black", c)
	}
	x, y := screenAt(t, r, math3d.V3(3, 0, 0))
	if c := fb.GetPixel(x, y); c == ColorBlack {
		t.Error("translated mesh should cover its new center")
	}
}

func TestMaterialShade(t *testing.T) {
	front := math3d.V3(0, 0, 1)
	back := math3d.V3(0, 0, -1)
	m := DefaultMaterial(RGB(100, 100, 100))

	tests := []struct {
		name    string
		mat     Material
		n       math3d.Vec3
		toLight math3d.Vec3
		want    uint8
	}{
		{"lit", m, front, front, 100},
		{"ambient only", m, front, back, 30},
		{"back side is flipped", m, back, front, 100},
		{"specular", Material{Color: m.Color, Ambient: 0.3, Specular: 0.5, Shininess: 8}, front, front, 227},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := tc.mat.Shade(tc.n, tc.toLight, front)
			if absInt(int(c.R)-int(tc.want)) > 1 {
				t.Errorf("Shade() = %v, want red %d", c, tc.want)
			}
		})
	}
}

func TestDrawMeshWireframe(t *testing.T) {
	r, fb := createTestRasterizer(100, 100)

	n := math3d.V3(0, 0, 1)
	mesh := &mockMesh{
		vertices: []mockVertex{
			{math3d.V3(-3, -3, 0), n},
			{math3d.V3(3, -3, 0), n},
			{math3d.V3(0, 3, 0), n},
		},
		faces: [][3]int{{0, 1, 2}},
	}
	r.DrawMeshWireframe(mesh, math3d.Identity(), ColorGreen)

	if litPixels(fb) == 0 {
		t.Fatal("wireframe should draw edges")
	}
	if c := fb.GetPixel(50, 50); c != ColorBlack {
		t.Errorf("wireframe interior = %v, want black", c)
	}
}

func TestMin3Max3(t *testing.T) {
	if min3(1, 2, 3) != 1 || min3(3, 1, 2) != 1 || min3(2, 3, 1) != 1 {
		t.Error("min3 failed")
	}
	if max3(1, 2, 3) != 3 || max3(3, 1, 2) != 3 || max3(2, 3, 1) != 3 {
		t.Error("max3 failed")
	}
}

func TestRasterizerClearDepth(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	// Set some depth values
	r.setDepth(5, 5, 1.0)
	if r.getDepth(5, 5) != 1.0 {
		t.Error("setDepth/getDepth failed")
	}

	// Clear and verify
	r.ClearDepth()
	if r.getDepth(5, 5) != math.MaxFloat64 {
		t.Error("ClearDepth should reset to MaxFloat64")
	}
}

func TestRasterizerDepthBoundsCheck(t *testing.T) {
	r, _ := createTestRasterizer(10, 10)

	// Out of bounds should return MaxFloat64 and not panic
	if r.getDepth(-1, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}
	if r.getDepth(100, 0) != math.MaxFloat64 {
		t.Error("Out of bounds getDepth should return MaxFloat64")
	}

	// setDepth out of bounds should not panic
	r.setDepth(-1, 0, 1.0) // Should not panic
	r.setDepth(100, 0, 1.0)
}

// Helper function for color comparison tolerance
func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Benchmark tests
