package scene

import "errors"

var (
	// ErrNotInGraph is returned for nodes that belong to another graph or were removed.
	ErrNotInGraph = errors.New("node is not part of this graph")
	// ErrRemoveRoot is returned when removing a graph's root node.
	ErrRemoveRoot = errors.New("cannot remove the root node")
	// ErrCycle is returned when attaching a node beneath itself.
	ErrCycle = errors.New("node cannot be its own ancestor")
)
