package models

import (
	"math"

	"github.com/taigrr/prism/pkg/math3d"
)

// NewTorus builds a torus lying in the XY plane around the Z axis.
// radius is the distance from the center to the middle of the tube.
func NewTorus(radius, tube float64, radialSegments, tubularSegments int) *Mesh {
	radialSegments = max(radialSegments, 3)
	tubularSegments = max(tubularSegments, 3)

	m := NewMesh("torus")
	for j := 0; j <= radialSegments; j++ {
		v := float64(j) / float64(radialSegments) * 2 * math.Pi
		for i := 0; i <= tubularSegments; i++ {
			u := float64(i) / float64(tubularSegments) * 2 * math.Pi

			pos := math3d.V3(
				(radius+tube*math.Cos(v))*math.Cos(u),
				(radius+tube*math.Cos(v))*math.Sin(u),
				tube*math.Sin(v),
			)
			center := math3d.V3(radius*math.Cos(u), radius*math.Sin(u), 0)
			m.AddVertex(pos, pos.Sub(center).Normalize())
		}
	}

	stride := tubularSegments + 1
	for j := 1; j <= radialSegments; j++ {
		for i := 1; i <= tubularSegments; i++ {
			a := stride*j + i - 1
			b := stride*(j-1) + i - 1
			c := stride*(j-1) + i
			d := stride*j + i
			m.AddFace(a, b, d)
			m.AddFace(b, c, d)
		}
	}

	m.CalculateBounds()
	return m
}

// NewUVSphere builds a latitude/longitude sphere centered at the origin with
// its poles on the Y axis.
func NewUVSphere(radius float64, widthSegments, heightSegments int) *Mesh {
	widthSegments = max(widthSegments, 3)
	heightSegments = max(heightSegments, 2)

	m := NewMesh("sphere")
	for y := 0; y <= heightSegments; y++ {
		theta := float64(y) / float64(heightSegments) * math.Pi
		for x := 0; x <= widthSegments; x++ {
			phi := float64(x) / float64(widthSegments) * 2 * math.Pi
			n := math3d.V3(
				-math.Cos(phi)*math.Sin(theta),
				math.Cos(theta),
				math.Sin(phi)*math.Sin(theta),
			)
			m.AddVertex(n.Scale(radius), n)
		}
	}

	stride := widthSegments + 1
	for y := range heightSegments {
		for x := range widthSegments {
			a := y*stride + x + 1
			b := y*stride + x
			c := (y+1)*stride + x
			d := (y+1)*stride + x + 1
			if y != 0 {
				m.AddFace(a, b, d)
			}
			if y != heightSegments-1 {
				m.AddFace(b, c, d)
			}
		}
	}

	m.CalculateBounds()
	return m
}

// NewPlane builds a width x height rectangle in the XY plane facing +Z.
func NewPlane(width, height float64) *Mesh {
	m := NewMesh("plane")
	addQuad(m,
		math3d.V3(-width/2, -height/2, 0),
		math3d.V3(width, 0, 0),
		math3d.V3(0, height, 0),
	)
	m.CalculateBounds()
	return m
}

// NewBox builds an axis-aligned box centered at the origin with outward faces.
func NewBox(width, height, depth float64) *Mesh {
	m := NewMesh("box")
	hx, hy, hz := width/2, height/2, depth/2
	x := math3d.V3(width, 0, 0)
	y := math3d.V3(0, height, 0)
	z := math3d.V3(0, 0, depth)

	addQuad(m, math3d.V3(-hx, -hy, hz), x, y)          // +Z
	addQuad(m, math3d.V3(hx, -hy, -hz), x.Negate(), y) // -Z
	addQuad(m, math3d.V3(hx, -hy, hz), z.Negate(), y)  // +X
	addQuad(m, math3d.V3(-hx, -hy, -hz), z, y)         // -X
	addQuad(m, math3d.V3(-hx, hy, hz), x, z.Negate())  // +Y
	addQuad(m, math3d.V3(-hx, -hy, -hz), x, z)         // -Y

	m.CalculateBounds()
	return m
}

// addQuad appends the parallelogram corner, corner+u, corner+u+v, corner+v
// as two triangles whose normal is u × v.
func addQuad(m *Mesh, corner, u, v math3d.Vec3) {
	n := u.Cross(v).Normalize()
	i0 := m.AddVertex(corner, n)
	i1 := m.AddVertex(corner.Add(u), n)
	i2 := m.AddVertex(corner.Add(u).Add(v), n)
	i3 := m.AddVertex(corner.Add(v), n)
	m.AddFace(i0, i1, i2)
	m.AddFace(i0, i2, i3)
}
