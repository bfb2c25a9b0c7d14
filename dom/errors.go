package dom

import (
	"errors"
	"fmt"

	"github.com/hupe1980/nodestore"
)

var (
	// ErrNodeNotFound is returned for stale or unknown handles.
	ErrNodeNotFound = errors.New("dom: node not found")

	// ErrInvalidParent is the reason when the parent cannot hold children
	// (text and comment nodes).
	ErrInvalidParent = errors.New("dom: node cannot have children")

	// ErrInvalidChild is the reason when the document node is appended.
	ErrInvalidChild = errors.New("dom: document cannot be a child")

	// ErrAlreadyAttached is the reason when the child already has a parent.
	ErrAlreadyAttached = errors.New("dom: node already has a parent")

	// ErrCycle is the reason when the child is the parent or one of its ancestors.
	ErrCycle = errors.New("dom: append would create a cycle")

	// ErrNotChild is the reason when RemoveChild is given a node that is not
	// a child of parent.
	ErrNotChild = errors.New("dom: node is not a child of parent")
)

// HierarchyError reports a tree-shape violation.
//
// The reason is one of the sentinel errors above and can be matched with errors.Is.
type HierarchyError struct {
	Parent nodestore.NodeID
	Child  nodestore.NodeID
	Reason error
}

func (e *HierarchyError) Error() string {
	return fmt.Sprintf("hierarchy error (parent %s, child %s): %v", e.Parent, e.Child, e.Reason)
}

func (e *HierarchyError) Unwrap() error { return e.Reason }

func notFound(id nodestore.NodeID) error {
	return fmt.Errorf("%w: %s", ErrNodeNotFound, id)
}
