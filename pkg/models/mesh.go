// Package models provides triangle meshes and analytic shapes that a ray can
// be cast against, plus the glTF and procedural sources that produce them.
package models

import (
	"github.com/taigrr/prism/pkg/math3d"
)

// Mesh represents a triangle mesh in its local coordinate space.
type Mesh struct {
	Name     string
	Vertices []MeshVertex
	Faces    []Face

	// Bounding box (calculated on load)
	BoundsMin math3d.Vec3
	BoundsMax math3d.Vec3
}

// MeshVertex holds all vertex attributes.
type MeshVertex struct {
	Position math3d.Vec3
	Normal   math3d.Vec3
}

// Face represents a triangle face with vertex indices.
type Face struct {
	V [3]int // Indices into Mesh.Vertices
}

// NewMesh creates an empty mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]MeshVertex, 0),
		Faces:    make([]Face, 0),
	}
}

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(pos, normal math3d.Vec3) int {
	m.Vertices = append(m.Vertices, MeshVertex{Position: pos, Normal: normal})
	return len(m.Vertices) - 1
}

// AddFace appends a triangle. Vertices wind counter-clockwise when viewed
// from the side the face normal points to.
func (m *Mesh) AddFace(a, b, c int) {
	m.Faces = append(m.Faces, Face{V: [3]int{a, b, c}})
}

// CalculateBounds computes the axis-aligned bounding box.
func (m *Mesh) CalculateBounds() {
	if len(m.Vertices) == 0 {
		return
	}

	m.BoundsMin = m.Vertices[0].Position
	m.BoundsMax = m.Vertices[0].Position

	for _, v := range m.Vertices[1:] {
		m.BoundsMin = m.BoundsMin.Min(v.Position)
		m.BoundsMax = m.BoundsMax.Max(v.Position)
	}
}

// Bounds returns the local-space bounding box.
func (m *Mesh) Bounds() math3d.AABB {
	return math3d.NewAABB(m.BoundsMin, m.BoundsMax)
}

// Center returns the center of the bounding box.
func (m *Mesh) Center() math3d.Vec3 {
	return m.Bounds().Center()
}

// Size returns the dimensions of the bounding box.
func (m *Mesh) Size() math3d.Vec3 {
	return m.Bounds().Size()
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Faces)
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices)
}

// FaceNormal returns the geometric unit normal of face i, following the
// counter-clockwise winding. ok is false for zero-area faces.
func (m *Mesh) FaceNormal(i int) (n math3d.Vec3, ok bool) {
	f := m.Faces[i]
	v0 := m.Vertices[f.V[0]].Position
	v1 := m.Vertices[f.V[1]].Position
	v2 := m.Vertices[f.V[2]].Position

	cross := v1.Sub(v0).Cross(v2.Sub(v0))
	if cross.LenSq() < degenerateAreaSq {
		return math3d.Vec3{}, false
	}
	return cross.Normalize(), true
}

// CalculateSmoothNormals computes averaged normals for smooth shading.
func (m *Mesh) CalculateSmoothNormals() {
	for i := range m.Vertices {
		m.Vertices[i].Normal = math3d.Zero3()
	}

	// Area-weighted: the unnormalized cross product scales with face size.
	for _, f := range m.Faces {
		v0 := m.Vertices[f.V[0]].Position
		v1 := m.Vertices[f.V[1]].Position
		v2 := m.Vertices[f.V[2]].Position
		normal := v1.Sub(v0).Cross(v2.Sub(v0))

		for _, idx := range f.V {
			m.Vertices[idx].Normal = m.Vertices[idx].Normal.Add(normal)
		}
	}

	for i := range m.Vertices {
		m.Vertices[i].Normal = m.Vertices[i].Normal.Normalize()
	}
}

// Transform applies a transformation matrix to all vertices.
func (m *Mesh) Transform(mat math3d.Mat4) {
	normalMat := mat.NormalMatrix()
	for i := range m.Vertices {
		m.Vertices[i].Position = mat.MulVec3(m.Vertices[i].Position)
		m.Vertices[i].Normal = normalMat.MulVec3Dir(m.Vertices[i].Normal).Normalize()
	}
	m.CalculateBounds()
}

// Clone creates a deep copy of the mesh.
func (m *Mesh) Clone() *Mesh {
	clone := &Mesh{
		Name:      m.Name,
		Vertices:  make([]MeshVertex, len(m.Vertices)),
		Faces:     make([]Face, len(m.Faces)),
		BoundsMin: m.BoundsMin,
		BoundsMax: m.BoundsMax,
	}
	copy(clone.Vertices, m.Vertices)
	copy(clone.Faces, m.Faces)
	return clone
}

// GetVertex returns the position and normal for vertex i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetVertex(i int) (pos, normal math3d.Vec3) {
	v := m.Vertices[i]
	return v.Position, v.Normal
}

// GetFace returns the vertex indices for face i.
// Implements render.MeshRenderer interface.
func (m *Mesh) GetFace(i int) [3]int {
	return m.Faces[i].V
}
