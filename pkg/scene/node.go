package scene

import (
	"slices"

	"github.com/taigrr/prism/pkg/math3d"
	"github.com/taigrr/prism/pkg/models"
)

// Geometry is anything a ray can be cast against in its local space.
// *models.Mesh and *models.Sphere implement it.
type Geometry interface {
	Raycast(r math3d.Ray, tMin, tMax float64) (models.Hit, bool)
	Bounds() math3d.AABB
}

// Node is a positioned element of a Graph. Nodes with Geometry and at least
// one ray handler take part in ray tracing.
type Node struct {
	Name string

	// Local transform, relative to the parent.
	Position math3d.Vec3
	Rotation math3d.Quat
	Scale    math3d.Vec3

	// Visible only affects drawing; hidden nodes still reflect rays.
	Visible bool

	Geometry Geometry
	Handlers RayHandlers

	// UserData is free for the application, e.g. per-node presentation state.
	UserData any

	handle   Handle
	graph    *Graph
	parent   *Node
	children []*Node

	matrix      math3d.Mat4
	matrixWorld math3d.Mat4
}

func newNode(name string) *Node {
	return &Node{
		Name:        name,
		Rotation:    math3d.IdentityQuat(),
		Scale:       math3d.V3(1, 1, 1),
		Visible:     true,
		matrix:      math3d.Identity(),
		matrixWorld: math3d.Identity(),
	}
}

// Handle returns the node's stable identity.
func (n *Node) Handle() Handle {
	return n.handle
}

// Graph returns the graph that owns the node.
func (n *Node) Graph() *Graph {
	return n.graph
}

// Alive reports whether the node has not been removed from its graph.
func (n *Node) Alive() bool {
	return n.graph != nil && n.graph.Lookup(n.handle) == n
}

// Parent returns the parent node, or nil for detached nodes and the root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the direct children. The slice must not be modified.
func (n *Node) Children() []*Node {
	return n.children
}

// Add attaches child beneath n, detaching it from any previous parent.
func (n *Node) Add(child *Node) error {
	if child == nil || child.graph != n.graph || !child.Alive() || !n.Alive() {
		return ErrNotInGraph
	}
	for p := n; p != nil; p = p.parent {
		if p == child {
			return ErrCycle
		}
	}
	if child.parent != nil {
		child.parent.RemoveChild(child)
	}
	child.parent = n
	n.children = append(n.children, child)
	return nil
}

// RemoveChild detaches child from n. It reports whether child was a child of n.
// The detached node stays alive in the graph.
func (n *Node) RemoveChild(child *Node) bool {
	i := slices.Index(n.children, child)
	if i < 0 {
		return false
	}
	n.children = slices.Delete(n.children, i, i+1)
	child.parent = nil
	return true
}

// Traverse calls fn for n and each descendant, depth first, parents before
// children, children in insertion order.
func (n *Node) Traverse(fn func(*Node)) {
	fn(n)
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// SetRotationEuler sets the rotation from Euler angles applied in XYZ order.
func (n *Node) SetRotationEuler(x, y, z float64) {
	n.Rotation = math3d.QuatFromEuler(x, y, z)
}

// RotateOnAxis post-multiplies the rotation by angle radians about a
// local axis.
func (n *Node) RotateOnAxis(axis math3d.Vec3, angle float64) {
	n.Rotation = n.Rotation.Mul(math3d.QuatFromAxisAngle(axis, angle)).Normalize()
}

// UpdateMatrix recomputes the local matrix from Position, Rotation and Scale.
func (n *Node) UpdateMatrix() {
	n.matrix = math3d.Compose(n.Position, n.Rotation, n.Scale)
}

// Matrix returns the local matrix as of the last update.
func (n *Node) Matrix() math3d.Mat4 {
	return n.matrix
}

// WorldMatrix returns the local-to-world matrix as of the last
// UpdateWorldMatrix call.
func (n *Node) WorldMatrix() math3d.Mat4 {
	return n.matrixWorld
}

// UpdateWorldMatrix recomputes n's world matrix, first refreshing the
// ancestors when updateParents is set and afterwards the whole subtree when
// updateChildren is set.
func (n *Node) UpdateWorldMatrix(updateParents, updateChildren bool) {
	if updateParents && n.parent != nil {
		n.parent.UpdateWorldMatrix(true, false)
	}

	n.UpdateMatrix()
	if n.parent == nil {
		n.matrixWorld = n.matrix
	} else {
		n.matrixWorld = n.parent.matrixWorld.Mul(n.matrix)
	}

	if updateChildren {
		for _, c := range n.children {
			c.UpdateWorldMatrix(false, true)
		}
	}
}

// LocalToWorld maps a point from n's local space to world space.
func (n *Node) LocalToWorld(p math3d.Vec3) math3d.Vec3 {
	return n.matrixWorld.MulVec3(p)
}

// WorldToLocal maps a world point into n's local space.
func (n *Node) WorldToLocal(p math3d.Vec3) math3d.Vec3 {
	return n.matrixWorld.Inverse().MulVec3(p)
}

// WorldPosition returns the node's origin in world space.
func (n *Node) WorldPosition() math3d.Vec3 {
	return n.matrixWorld.Translation()
}

// Find returns the first node named name in n's subtree, in Traverse order.
func (n *Node) Find(name string) *Node {
	if n.Name == name {
		return n
	}
	for _, c := range n.children {
		if found := c.Find(name); found != nil {
			return found
		}
	}
	return nil
}
