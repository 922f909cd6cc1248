package scene

import (
	"fmt"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// LoadGLTF opens a .gltf or .glb file and imports its default scene beneath
// a new group node named after the file. The group is returned detached.
func LoadGLTF(g *Graph, path string) (*Node, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open gltf: %w", err)
	}
	group, err := ImportGLTF(g, doc)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	group.Name = filepath.Base(path)
	return group, nil
}

// ImportGLTF converts the document's default scene (or its first scene) into
// nodes. Node transforms are kept, each glTF mesh becomes a shared
// *models.Mesh Geometry. No handlers are attached.
func ImportGLTF(g *Graph, doc *gltf.Document) (group *Node, err error) {
	imp := &gltfImporter{
		graph:  g,
		doc:    doc,
		loader: models.NewGLTFLoader(),
		meshes: make(map[int]*models.Mesh),
		seen:   make(map[int]bool),
	}

	group = g.NewNode("gltf")
	imp.created = append(imp.created, group)
	defer func() {
		if err != nil {
			imp.discard()
		}
	}()

	if len(doc.Scenes) == 0 {
		return group, nil
	}
	sceneIdx := 0
	if doc.Scene != nil {
		sceneIdx = *doc.Scene
	}
	if sceneIdx < 0 || sceneIdx >= len(doc.Scenes) {
		return nil, fmt.Errorf("scene index %d out of range", sceneIdx)
	}

	for _, idx := range doc.Scenes[sceneIdx].Nodes {
		child, err := imp.node(idx)
		if err != nil {
			return nil, err
		}
		if err := group.Add(child); err != nil {
			return nil, err
		}
	}
	return group, nil
}

type gltfImporter struct {
	graph  *Graph
	doc    *gltf.Document
	loader *models.GLTFLoader
	meshes map[int]*models.Mesh
	seen   map[int]bool

	created []*Node
}

// discard frees every node created by a failed import.
func (imp *gltfImporter) discard() {
	for _, n := range imp.created {
		if n.Alive() {
			_ = imp.graph.Remove(n)
		}
	}
}

func (imp *gltfImporter) node(idx int) (*Node, error) {
	if idx < 0 || idx >= len(imp.doc.Nodes) {
		return nil, fmt.Errorf("node index %d out of range", idx)
	}
	if imp.seen[idx] {
		return nil, fmt.Errorf("node %d referenced twice", idx)
	}
	imp.seen[idx] = true

	src := imp.doc.Nodes[idx]
	n := imp.graph.NewNode(src.Name)
	imp.created = append(imp.created, n)

	if src.Matrix != [16]float64{} && src.Matrix != [16]float64(math3d.Identity()) {
		n.Position, n.Rotation, n.Scale = math3d.Mat4(src.Matrix).Decompose()
	} else {
		t := src.TranslationOrDefault()
		r := src.RotationOrDefault()
		s := src.ScaleOrDefault()
		n.Position = math3d.V3(t[0], t[1], t[2])
		n.Rotation = math3d.Quat{X: r[0], Y: r[1], Z: r[2], W: r[3]}
		n.Scale = math3d.V3(s[0], s[1], s[2])
	}

	if src.Mesh != nil {
		mesh, err := imp.mesh(*src.Mesh)
		if err != nil {
			return nil, fmt.Errorf("node %q: %w", src.Name, err)
		}
		n.Geometry = mesh
	}

	for _, c := range src.Children {
		child, err := imp.node(c)
		if err != nil {
			return nil, err
		}
		if err := n.Add(child); err != nil {
			return nil, err
		}
	}
	return n, nil
}

func (imp *gltfImporter) mesh(idx int) (*models.Mesh, error) {
	if m, ok := imp.meshes[idx]; ok {
		return m, nil
	}
	m, err := imp.loader.Mesh(imp.doc, idx)
	if err != nil {
		return nil, err
	}
	imp.meshes[idx] = m
	return m, nil
}
