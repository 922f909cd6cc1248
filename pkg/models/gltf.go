package models

import (
	"fmt"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/taigrr/prism/pkg/math3d"
)

// GLTFLoader converts glTF meshes into Mesh format.
type GLTFLoader struct {
	// CalculateNormals fills vertex normals when the file has none.
	CalculateNormals bool
}

// NewGLTFLoader creates a new GLTF loader with default options.
func NewGLTFLoader() *GLTFLoader {
	return &GLTFLoader{CalculateNormals: true}
}

// Mesh converts doc.Meshes[index] into a single Mesh. All triangle primitives
// are merged; points and lines are skipped because a ray cannot reflect off
// them.
func (l *GLTFLoader) Mesh(doc *gltf.Document, index int) (*Mesh, error) {
	if index < 0 || index >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range (%d meshes)", index, len(doc.Meshes))
	}
	src := doc.Meshes[index]

	mesh := NewMesh(src.Name)
	hasNormals := true
	for i, prim := range src.Primitives {
		ok, err := l.addPrimitive(doc, prim, mesh)
		if err != nil {
			return nil, fmt.Errorf("mesh %q primitive %d: %w", src.Name, i, err)
		}
		hasNormals = hasNormals && ok
	}

	if l.CalculateNormals && !hasNormals {
		mesh.CalculateSmoothNormals()
	}
	mesh.CalculateBounds()
	return mesh, nil
}

// addPrimitive appends one primitive's triangles to mesh and reports whether
// it carried its own normals.
func (l *GLTFLoader) addPrimitive(doc *gltf.Document, prim *gltf.Primitive, mesh *Mesh) (bool, error) {
	if prim.Mode != gltf.PrimitiveTriangles && prim.Mode != 0 {
		return true, nil
	}

	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return true, nil
	}
	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return false, fmt.Errorf("read positions: %w", err)
	}

	var normals [][3]float32
	if normIdx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err = modeler.ReadNormal(doc, doc.Accessors[normIdx], nil)
		if err != nil {
			return false, fmt.Errorf("read normals: %w", err)
		}
	}

	base := len(mesh.Vertices)
	for i, p := range positions {
		var n math3d.Vec3
		if i < len(normals) {
			n = vec3f(normals[i])
		}
		mesh.AddVertex(vec3f(p), n)
	}

	if prim.Indices == nil {
		for i := 0; i+2 < len(positions); i += 3 {
			mesh.AddFace(base+i, base+i+1, base+i+2)
		}
		return len(normals) > 0, nil
	}

	indices, err := modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], nil)
	if err != nil {
		return false, fmt.Errorf("read indices: %w", err)
	}
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := int(indices[i]), int(indices[i+1]), int(indices[i+2])
		if max(a, b, c) >= len(positions) {
			return false, fmt.Errorf("index %d out of range (%d vertices)", max(a, b, c), len(positions))
		}
		mesh.AddFace(base+a, base+b, base+c)
	}
	return len(normals) > 0, nil
}

func vec3f(v [3]float32) math3d.Vec3 {
	return math3d.V3(float64(v[0]), float64(v[1]), float64(v[2]))
}
