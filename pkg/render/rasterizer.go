package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Vertex is a world-space vertex with its shaded color.
type Vertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
	Color    Color
}

// Triangle represents a triangle to be rasterized.
type Triangle struct {
	V [3]Vertex
}

// MeshRenderer is the part of a mesh the rasterizer needs. *models.Mesh
// implements it; faces are counter-clockwise when seen from the front.
type MeshRenderer interface {
	VertexCount() int
	TriangleCount() int
	GetVertex(i int) (pos, normal math3d.Vec3)
	GetFace(i int) [3]int
}

// Bounded is implemented by meshes that know their local bounds. The
// rasterizer skips those entirely outside the view.
type Bounded interface {
	Bounds() math3d.AABB
}

// culled reports whether mesh is known to be outside the view.
func (r *Rasterizer) culled(mesh MeshRenderer, transform math3d.Mat4) bool {
	b, ok := mesh.(Bounded)
	if !ok {
		return false
	}
	return !r.camera.Frustum().IntersectAABB(b.Bounds().Transform(transform))
}

// Material describes how a mesh responds to light.
type Material struct {
	Color     Color
	Ambient   float64 // Fraction of Color shown regardless of light
	Specular  float64 // Highlight strength, 0 disables highlights
	Shininess float64 // Highlight exponent, lower is rougher
}

// DefaultMaterial returns a matte material of color c.
func DefaultMaterial(c Color) Material {
	return Material{Color: c, Ambient: 0.3, Shininess: 32}
}

// Shade computes Blinn-Phong lighting at a surface point with unit normal n,
// unit direction to the light, and unit direction to the viewer. Normals
// facing away from the viewer are flipped so both sides are lit.
func (m Material) Shade(n, toLight, toViewer math3d.Vec3) Color {
	if n.Dot(toViewer) < 0 {
		n = n.Negate()
	}
	diffuse := math.Max(0, n.Dot(toLight))
	intensity := m.Ambient + (1-m.Ambient)*diffuse

	var spec float64
	if m.Specular > 0 && diffuse > 0 {
		h := toLight.Add(toViewer).Normalize()
		spec = m.Specular * math.Pow(math.Max(0, n.Dot(h)), m.Shininess)
	}

	channel := func(c uint8) uint8 {
		return uint8(math.Min(255, float64(c)*intensity+255*spec))
	}
	return RGB(channel(m.Color.R), channel(m.Color.G), channel(m.Color.B))
}

// Rasterizer handles software triangle rasterization.
type Rasterizer struct {
	camera  *Camera
	fb      *Framebuffer
	zbuffer []float64 // Depth buffer (1D array, row-major)

	DisableBackfaceCulling bool // If true, render both sides of triangles
}

// NewRasterizer creates a new rasterizer.
func NewRasterizer(camera *Camera, fb *Framebuffer) *Rasterizer {
	r := &Rasterizer{
		camera: camera,
		fb:     fb,
	}
	r.Resize()
	return r
}

// Camera returns the camera the rasterizer projects with.
func (r *Rasterizer) Camera() *Camera {
	return r.camera
}

// Framebuffer returns the target framebuffer.
func (r *Rasterizer) Framebuffer() *Framebuffer {
	return r.fb
}

// Resize resizes the rasterizer's buffer to match the framebuffer.
func (r *Rasterizer) Resize() {
	if r.fb == nil {
		r.zbuffer = nil
		return
	}
	r.zbuffer = make([]float64, r.fb.Width*r.fb.Height)
}

// Width returns the framebuffer width.
func (r *Rasterizer) Width() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Width
}

// Height returns the framebuffer height.
func (r *Rasterizer) Height() int {
	if r.fb == nil {
		return 0
	}
	return r.fb.Height
}

// ClearDepth clears the Z-buffer (call before each frame).
func (r *Rasterizer) ClearDepth() {
	// Use copy-doubling for faster clearing
	n := len(r.zbuffer)
	if n == 0 {
		return
	}
	r.zbuffer[0] = math.MaxFloat64
	for i := 1; i < n; i *= 2 {
		copy(r.zbuffer[i:], r.zbuffer[:i])
	}
}

// getDepth returns the depth at (x, y).
func (r *Rasterizer) getDepth(x, y int) float64 {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return math.MaxFloat64
	}
	return r.zbuffer[y*r.Width()+x]
}

// setDepth sets the depth at (x, y).
func (r *Rasterizer) setDepth(x, y int, z float64) {
	if x < 0 || x >= r.Width() || y < 0 || y >= r.Height() {
		return
	}
	r.zbuffer[y*r.Width()+x] = z
}

// screenVertex holds a vertex transformed to screen space.
type screenVertex struct {
	X, Y  float64 // Screen coordinates
	Z     float64 // Depth (for Z-buffer)
	Color Color
}

// project maps a world point to the screen. Points behind the camera fail.
func (r *Rasterizer) project(p math3d.Vec3) (screenVertex, bool) {
	clip := r.camera.Clip(p)
	if clip.W <= 0 {
		return screenVertex{}, false
	}
	ndc := clip.PerspectiveDivide()
	x, y := ndcToScreen(ndc, r.Width(), r.Height())
	return screenVertex{X: x, Y: y, Z: ndc.Z}, true
}

// DrawTriangle rasterizes a triangle, interpolating its vertex colors
// (Gouraud shading). Triangles reaching behind the camera are skipped.
func (r *Rasterizer) DrawTriangle(tri Triangle) {
	var sv [3]screenVertex
	for i := range 3 {
		v, ok := r.project(tri.V[i].Position)
		if !ok {
			return
		}
		v.Color = tri.V[i].Color
		sv[i] = v
	}

	// Counter-clockwise faces have negative area once Y points down.
	cross := (sv[1].X-sv[0].X)*(sv[2].Y-sv[0].Y) - (sv[1].Y-sv[0].Y)*(sv[2].X-sv[0].X)
	if cross == 0 || (cross > 0 && !r.DisableBackfaceCulling) {
		return
	}

	// Find bounding box
	minX := int(math.Max(0, math.Floor(min3(sv[0].X, sv[1].X, sv[2].X))))
	maxX := int(math.Min(float64(r.Width()-1), math.Ceil(max3(sv[0].X, sv[1].X, sv[2].X))))
	minY := int(math.Max(0, math.Floor(min3(sv[0].Y, sv[1].Y, sv[2].Y))))
	maxY := int(math.Min(float64(r.Height()-1), math.Ceil(max3(sv[0].Y, sv[1].Y, sv[2].Y))))

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5

			bc := barycentric(
				sv[0].X, sv[0].Y,
				sv[1].X, sv[1].Y,
				sv[2].X, sv[2].Y,
				px, py,
			)
			if bc.X < 0 || bc.Y < 0 || bc.Z < 0 {
				continue
			}

			z := bc.X*sv[0].Z + bc.Y*sv[1].Z + bc.Z*sv[2].Z
			if z >= r.getDepth(x, y) {
				continue
			}

			r.setDepth(x, y, z)
			r.fb.SetPixel(x, y, interpolateColor3(sv[0].Color, sv[1].Color, sv[2].Color, bc))
		}
	}
}

// DrawMesh renders a mesh with per-vertex lighting. lightDir points from
// the surface towards the light.
func (r *Rasterizer) DrawMesh(mesh MeshRenderer, transform math3d.Mat4, mat Material, lightDir math3d.Vec3) {
	if r.culled(mesh, transform) {
		return
	}

	normalMatrix := transform.NormalMatrix()
	toLight := lightDir.Normalize()
	eye := r.camera.Position

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)

		var tri Triangle
		for k, idx := range face {
			p, n := mesh.GetVertex(idx)
			wp := transform.MulVec3(p)
			wn := normalMatrix.MulVec3Dir(n).Normalize()
			tri.V[k] = Vertex{
				Position: wp,
				Normal:   wn,
				Color:    mat.Shade(wn, toLight, eye.Sub(wp).Normalize()),
			}
		}
		r.DrawTriangle(tri)
	}
}

// DrawMeshWireframe renders a mesh's edges without depth testing.
func (r *Rasterizer) DrawMeshWireframe(mesh MeshRenderer, transform math3d.Mat4, color Color) {
	if r.culled(mesh, transform) {
		return
	}

	for i := range mesh.TriangleCount() {
		face := mesh.GetFace(i)

		p0, _ := mesh.GetVertex(face[0])
		p1, _ := mesh.GetVertex(face[1])
		p2, _ := mesh.GetVertex(face[2])

		v0 := transform.MulVec3(p0)
		v1 := transform.MulVec3(p1)
		v2 := transform.MulVec3(p2)

		r.DrawLine3D(v0, v1, color)
		r.DrawLine3D(v1, v2, color)
		r.DrawLine3D(v2, v0, color)
	}
}

// barycentric calculates barycentric coordinates for point (px, py) in triangle.
func barycentric(x0, y0, x1, y1, x2, y2, px, py float64) math3d.Vec3 {
	v0x, v0y := x2-x0, y2-y0
	v1x, v1y := x1-x0, y1-y0
	v2x, v2y := px-x0, py-y0

	dot00 := v0x*v0x + v0y*v0y
	dot01 := v0x*v1x + v0y*v1y
	dot02 := v0x*v2x + v0y*v2y
	dot11 := v1x*v1x + v1y*v1y
	dot12 := v1x*v2x + v1y*v2y

	invDenom := 1.0 / (dot00*dot11 - dot01*dot01)
	u := (dot11*dot02 - dot01*dot12) * invDenom
	v := (dot00*dot12 - dot01*dot02) * invDenom

	return math3d.V3(1-u-v, v, u)
}

// interpolateColor3 interpolates between 3 colors using barycentric coords.
func interpolateColor3(c0, c1, c2 Color, bc math3d.Vec3) Color {
	mix := func(a, b, c uint8) uint8 {
		return uint8(math.Round(float64(a)*bc.X + float64(b)*bc.Y + float64(c)*bc.Z))
	}
	return RGB(mix(c0.R, c1.R, c2.R), mix(c0.G, c1.G, c2.G), mix(c0.B, c1.B, c2.B))
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
