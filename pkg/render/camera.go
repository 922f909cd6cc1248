package render

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// Camera is a perspective camera looking from Position at Target.
type Camera struct {
	Position math3d.Vec3
	Target   math3d.Vec3
	Up       math3d.Vec3

	// Projection parameters
	FOV         float64 // Vertical field of view in radians
	AspectRatio float64 // Width / Height
	Near        float64 // Near clipping plane
	Far         float64 // Far clipping plane

	viewProj math3d.Mat4
	dirty    bool
}

// NewCamera creates a camera three units back on +Z looking at the origin,
// with a 60 degree field of view.
func NewCamera() *Camera {
	return &Camera{
		Position:    math3d.V3(0, 0, 3),
		Target:      math3d.Zero3(),
		Up:          math3d.Up(),
		FOV:         math.Pi / 3,
		AspectRatio: 16.0 / 9.0,
		Near:        0.1,
		Far:         1000,
		dirty:       true,
	}
}

// SetPosition moves the camera, keeping its target.
func (c *Camera) SetPosition(pos math3d.Vec3) {
	c.Position = pos
	c.dirty = true
}

// LookAt aims the camera at target.
func (c *Camera) LookAt(target math3d.Vec3) {
	c.Target = target
	c.dirty = true
}

// SetFOV sets the vertical field of view (in radians).
func (c *Camera) SetFOV(fov float64) {
	c.FOV = fov
	c.dirty = true
}

// SetAspectRatio sets the aspect ratio.
func (c *Camera) SetAspectRatio(aspect float64) {
	c.AspectRatio = aspect
	c.dirty = true
}

// SetClipPlanes sets the near and far clipping planes.
func (c *Camera) SetClipPlanes(near, far float64) {
	c.Near = near
	c.Far = far
	c.dirty = true
}

// Forward returns the unit viewing direction.
func (c *Camera) Forward() math3d.Vec3 {
	return c.Target.Sub(c.Position).Normalize()
}

// ViewMatrix returns the world-to-camera matrix.
func (c *Camera) ViewMatrix() math3d.Mat4 {
	return math3d.LookAt(c.Position, c.Target, c.Up)
}

// ProjectionMatrix returns the perspective projection matrix.
func (c *Camera) ProjectionMatrix() math3d.Mat4 {
	return math3d.Perspective(c.FOV, c.AspectRatio, c.Near, c.Far)
}

// ViewProjectionMatrix returns projection * view, cached until a setter runs.
func (c *Camera) ViewProjectionMatrix() math3d.Mat4 {
	if c.dirty {
		c.viewProj = c.ProjectionMatrix().Mul(c.ViewMatrix())
		c.dirty = false
	}
	return c.viewProj
}

// Frustum returns the camera's view volume in world space.
func (c *Camera) Frustum() Frustum {
	return NewFrustum(c.ViewProjectionMatrix())
}

// Clip transforms a world point to clip space.
func (c *Camera) Clip(p math3d.Vec3) math3d.Vec4 {
	return c.ViewProjectionMatrix().MulVec4(math3d.V4FromV3(p, 1))
}

// WorldToScreen transforms a world point to screen coordinates.
// Returns (screenX, screenY, depth, visible); points outside the view
// frustum are not visible.
func (c *Camera) WorldToScreen(worldPos math3d.Vec3, screenWidth, screenHeight int) (x, y, depth float64, visible bool) {
	clipPos := c.Clip(worldPos)
	if clipPos.W <= 0 {
		return 0, 0, 0, false
	}

	ndc := clipPos.PerspectiveDivide()
	if ndc.X < -1 || ndc.X > 1 || ndc.Y < -1 || ndc.Y > 1 || ndc.Z < -1 || ndc.Z > 1 {
		return 0, 0, 0, false
	}

	x, y = ndcToScreen(ndc, screenWidth, screenHeight)
	return x, y, ndc.Z, true
}

// ndcToScreen maps normalized device coordinates to pixels, flipping Y.
func ndcToScreen(ndc math3d.Vec3, width, height int) (x, y float64) {
	return (ndc.X + 1) * 0.5 * float64(width), (1 - ndc.Y) * 0.5 * float64(height)
}
