package bounce

import "github.com/taigrr/prism/pkg/scene"

// Collect refreshes the world matrices below root and returns the nodes that
// take part in ray tracing, in depth-first pre-order. A node is eligible when
// it has Geometry and at least one ray handler.
//
// The result is a snapshot: call Collect again after changing the graph's
// structure or a node's handlers.
func Collect(root *scene.Node) []*scene.Node {
	if root == nil {
		return nil
	}
	root.UpdateWorldMatrix(true, true)

	var objects []*scene.Node
	root.Traverse(func(n *scene.Node) {
		if eligible(n) {
			objects = append(objects, n)
		}
	})
	return objects
}

func eligible(n *scene.Node) bool {
	return n.Geometry != nil && n.Handlers.Any()
}
