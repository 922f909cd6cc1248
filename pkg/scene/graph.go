// Package scene holds the node graph the ray tracer walks: positioned nodes
// with optional geometry, the ray event types delivered to them, and a glTF
// importer.
package scene

import "fmt"

// Handle identifies a node within its Graph. A handle stays valid for the
// node's lifetime and is never reused after the node is removed, because the
// slot's generation advances on removal.
type Handle struct {
	index uint32
	gen   uint32
}

// IsZero reports whether h is the zero handle, which never names a node.
func (h Handle) IsZero() bool {
	return h.gen == 0
}

func (h Handle) String() string {
	return fmt.Sprintf("%d#%d", h.index, h.gen)
}

type slot struct {
	node *Node
	gen  uint32
}

// Graph owns every node of a scene in an arena of generation-checked slots.
// It is not safe for concurrent use.
type Graph struct {
	slots []slot
	free  []uint32
	root  *Node
}

// NewGraph creates a graph with an empty root group.
func NewGraph() *Graph {
	g := &Graph{}
	g.root = g.NewNode("root")
	return g
}

// Root returns the root node.
func (g *Graph) Root() *Node {
	return g.root
}

// NewNode allocates a detached node. Attach it with Node.Add.
func (g *Graph) NewNode(name string) *Node {
	n := newNode(name)
	n.graph = g

	var idx uint32
	if len(g.free) > 0 {
		idx = g.free[len(g.free)-1]
		g.free = g.free[:len(g.free)-1]
	} else {
		idx = uint32(len(g.slots))
		g.slots = append(g.slots, slot{})
	}
	s := &g.slots[idx]
	s.gen++
	s.node = n
	n.handle = Handle{index: idx, gen: s.gen}
	return n
}

// Lookup returns the live node for h, or nil if it was removed.
func (g *Graph) Lookup(h Handle) *Node {
	if h.IsZero() || int(h.index) >= len(g.slots) {
		return nil
	}
	s := g.slots[h.index]
	if s.gen != h.gen {
		return nil
	}
	return s.node
}

// Alive reports whether h still names a node of g.
func (g *Graph) Alive(h Handle) bool {
	return g.Lookup(h) != nil
}

// Len returns the number of live nodes, including the root.
func (g *Graph) Len() int {
	return len(g.slots) - len(g.free)
}

// Remove detaches n from its parent and frees n and its whole subtree.
// Handles to removed nodes stop resolving. The root cannot be removed.
func (g *Graph) Remove(n *Node) error {
	if n == nil || n.graph != g || !g.Alive(n.handle) {
		return ErrNotInGraph
	}
	if n == g.root {
		return ErrRemoveRoot
	}
	if n.parent != nil {
		n.parent.RemoveChild(n)
	}
	n.Traverse(func(c *Node) {
		s := &g.slots[c.handle.index]
		s.node = nil
		// Advance past the handle's generation so it never resolves again.
		s.gen++
		g.free = append(g.free, c.handle.index)
	})
	return nil
}
