package math3d

import "math"

// Ray is a half-line from Origin along Direction.
// Direction is unit length for world-space rays; rays moved into an object's
// local space keep the same parameterization and may not be.
type Ray struct {
	Origin    Vec3
	Direction Vec3
}

// NewRay returns the ray from origin towards target with a unit direction.
func NewRay(origin, target Vec3) Ray {
	return Ray{Origin: origin, Direction: target.Sub(origin).Normalize()}
}

// At returns the point at parameter t.
func (r Ray) At(t float64) Vec3 {
	return r.Origin.AddScaled(r.Direction, t)
}

// Transform maps the ray through m. The parameter t of a point is preserved.
func (r Ray) Transform(m Mat4) Ray {
	return Ray{Origin: m.MulVec3(r.Origin), Direction: m.MulVec3Dir(r.Direction)}
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max Vec3
}

// NewAABB creates a bounding box from min and max corners.
func NewAABB(min, max Vec3) AABB {
	return AABB{Min: min, Max: max}
}

// Center returns the center point of the box.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Size returns the dimensions of the box.
func (b AABB) Size() Vec3 {
	return b.Max.Sub(b.Min)
}

// ContainsPoint reports whether p lies inside or on the box.
func (b AABB) ContainsPoint(p Vec3) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X &&
		p.Y >= b.Min.Y && p.Y <= b.Max.Y &&
		p.Z >= b.Min.Z && p.Z <= b.Max.Z
}

// Transform returns the axis-aligned box enclosing b after transformation by m.
func (b AABB) Transform(m Mat4) AABB {
	first := true
	var out AABB
	for i := range 8 {
		corner := Vec3{b.Min.X, b.Min.Y, b.Min.Z}
		if i&1 != 0 {
			corner.X = b.Max.X
		}
		if i&2 != 0 {
			corner.Y = b.Max.Y
		}
		if i&4 != 0 {
			corner.Z = b.Max.Z
		}
		p := m.MulVec3(corner)
		if first {
			out = AABB{Min: p, Max: p}
			first = false
			continue
		}
		out.Min = out.Min.Min(p)
		out.Max = out.Max.Max(p)
	}
	return out
}

// IntersectRay runs the slab test and returns the parameter range [tNear, tFar]
// clipped to [tMin, tMax] where the ray is inside the box.
func (b AABB) IntersectRay(r Ray, tMin, tMax float64) (tNear, tFar float64, ok bool) {
	tNear, tFar = tMin, tMax
	for axis := range 3 {
		o := r.Origin.Component(axis)
		d := r.Direction.Component(axis)
		lo, hi := b.Min.Component(axis), b.Max.Component(axis)

		if math.Abs(d) < Epsilon {
			if o < lo || o > hi {
				return 0, 0, false
			}
			continue
		}

		inv := 1 / d
		t0 := (lo - o) * inv
		t1 := (hi - o) * inv
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		tNear = math.Max(tNear, t0)
		tFar = math.Min(tFar, t1)
		if tNear > tFar {
			return 0, 0, false
		}
	}
	return tNear, tFar, true
}
