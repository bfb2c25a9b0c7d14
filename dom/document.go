package dom

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/hupe1980/nodestore"
)

type links struct {
	parent   nodestore.NodeID
	children []nodestore.NodeID
}

// Document is a node tree stored in a nodestore.Store.
//
// Detaching a subtree does not free it; storage is reclaimed by Collect, which
// keeps everything reachable from the document root and any extra roots.
// All methods are safe for concurrent use.
type Document struct {
	store *nodestore.Store[Node]
	root  nodestore.NodeID

	mu    sync.RWMutex
	links map[nodestore.NodeID]*links
}

// NewDocument creates an empty document backed by a new Store.
func NewDocument(opts ...nodestore.Option) (*Document, error) {
	store := nodestore.New[Node](opts...)

	root, err := store.Allocate(&DocumentNode{})
	if err != nil {
		return nil, err
	}

	return &Document{
		store: store,
		root:  root,
		links: map[nodestore.NodeID]*links{root: {}},
	}, nil
}

// Root returns the handle of the document node.
func (d *Document) Root() nodestore.NodeID { return d.root }

// Store returns the backing store.
func (d *Document) Store() *nodestore.Store[Node] { return d.store }

// CreateElement allocates a detached element.
func (d *Document) CreateElement(tag string, attrs ...Attr) (nodestore.NodeID, error) {
	return d.create(&Element{Tag: tag, Attrs: attrs})
}

// CreateText allocates a detached text node.
func (d *Document) CreateText(data string) (nodestore.NodeID, error) {
	return d.create(&Text{Data: data})
}

// CreateComment allocates a detached comment node.
func (d *Document) CreateComment(data string) (nodestore.NodeID, error) {
	return d.create(&Comment{Data: data})
}

func (d *Document) create(n Node) (nodestore.NodeID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := d.store.Allocate(n)
	if err != nil {
		return nodestore.NodeID{}, err
	}
	d.links[id] = &links{}
	return id, nil
}

// Node returns the payload of id.
func (d *Document) Node(id nodestore.NodeID) (Node, error) {
	n, ok := d.store.Get(id)
	if !ok {
		return nil, notFound(id)
	}
	return n, nil
}

// AppendChild attaches child as the last child of parent.
// child must be detached; the result must stay a tree.
func (d *Document) AppendChild(parent, child nodestore.NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	pn, ok := d.store.Get(parent)
	if !ok {
		return notFound(parent)
	}
	cn, ok := d.store.Get(child)
	if !ok {
		return notFound(child)
	}

	hierarchyErr := func(reason error) error {
		return &HierarchyError{Parent: parent, Child: child, Reason: reason}
	}

	switch {
	case pn.Type() != TypeDocument && pn.Type() != TypeElement:
		return hierarchyErr(ErrInvalidParent)
	case cn.Type() == TypeDocument:
		return hierarchyErr(ErrInvalidChild)
	case d.hasParentLocked(child):
		return hierarchyErr(ErrAlreadyAttached)
	case d.isAncestorLocked(child, parent):
		return hierarchyErr(ErrCycle)
	}

	pl := d.linksLocked(parent)
	pl.children = append(pl.children, child)
	d.linksLocked(child).parent = parent
	return nil
}

// linksLocked returns the link entry of a live id, creating it for nodes
// allocated directly through the Store.
func (d *Document) linksLocked(id nodestore.NodeID) *links {
	l, ok := d.links[id]
	if !ok {
		l = &links{}
		d.links[id] = l
	}
	return l
}

func (d *Document) hasParentLocked(id nodestore.NodeID) bool {
	l, ok := d.links[id]
	return ok && !l.parent.IsZero()
}

// isAncestorLocked reports whether a is id or one of its ancestors.
func (d *Document) isAncestorLocked(a, id nodestore.NodeID) bool {
	for cur := id; !cur.IsZero(); {
		if cur == a {
			return true
		}
		l, ok := d.links[cur]
		if !ok {
			return false
		}
		cur = l.parent
	}
	return false
}

// RemoveChild detaches child from parent. The subtree stays allocated until
// the next Collect that does not reach it.
func (d *Document) RemoveChild(parent, child nodestore.NodeID) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.store.Contains(parent) {
		return notFound(parent)
	}
	if !d.store.Contains(child) {
		return notFound(child)
	}

	pl, ok := d.links[parent]
	i := -1
	if ok {
		i = slices.Index(pl.children, child)
	}
	if i < 0 {
		return &HierarchyError{Parent: parent, Child: child, Reason: ErrNotChild}
	}

	pl.children = slices.Delete(pl.children, i, i+1)
	d.linksLocked(child).parent = nodestore.NodeID{}
	return nil
}

// Children returns a copy of id's children. It has the shape of
// nodestore.EdgeFunc.
func (d *Document) Children(id nodestore.NodeID) []nodestore.NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.childrenLocked(id))
}

func (d *Document) childrenLocked(id nodestore.NodeID) []nodestore.NodeID {
	if l, ok := d.links[id]; ok {
		return l.children
	}
	return nil
}

// Parent returns id's parent, or false for the root, detached or stale nodes.
func (d *Document) Parent(id nodestore.NodeID) (nodestore.NodeID, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	l, ok := d.links[id]
	if !ok || l.parent.IsZero() {
		return nodestore.NodeID{}, false
	}
	return l.parent, true
}

// IsAttached reports whether id is the document root or one of its
// descendants.
func (d *Document) IsAttached(id nodestore.NodeID) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.isAncestorLocked(d.root, id)
}

// TextContent concatenates the text of id's descendants in document order.
func (d *Document) TextContent(id nodestore.NodeID) string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var sb strings.Builder
	d.walkLocked(id, func(n nodestore.NodeID) {
		if v, ok := d.store.Get(n); ok {
			if t, ok := v.(*Text); ok {
				sb.WriteString(t.Data)
			}
		}
	})
	return sb.String()
}

// ElementsByTag returns the elements below id with the given tag, in
// document order. Tag comparison is case-insensitive.
func (d *Document) ElementsByTag(id nodestore.NodeID, tag string) []nodestore.NodeID {
	d.mu.RLock()
	defer d.mu.RUnlock()

	var out []nodestore.NodeID
	d.walkLocked(id, func(n nodestore.NodeID) {
		if v, ok := d.store.Get(n); ok {
			if e, ok := v.(*Element); ok && strings.EqualFold(e.Tag, tag) {
				out = append(out, n)
			}
		}
	})
	return out
}

// walkLocked visits id and its descendants in pre-order.
func (d *Document) walkLocked(id nodestore.NodeID, fn func(nodestore.NodeID)) {
	stack := []nodestore.NodeID{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		fn(n)

		children := d.childrenLocked(n)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}
}

// Len returns the number of allocated nodes, attached or not.
func (d *Document) Len() int { return d.store.Len() }

// Collect frees every node not reachable from the document root or
// extraRoots. Structure is frozen for the duration of the cycle.
func (d *Document) Collect(ctx context.Context, extraRoots ...nodestore.NodeID) (nodestore.CollectionReport, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	roots := append([]nodestore.NodeID{d.root}, extraRoots...)
	report, err := d.store.Collect(ctx, roots, d.childrenLocked)
	if err != nil {
		return report, err
	}

	for id, l := range d.links {
		if !d.store.Contains(id) {
			delete(d.links, id)
			continue
		}
		if !l.parent.IsZero() && !d.store.Contains(l.parent) {
			l.parent = nodestore.NodeID{}
		}
	}
	return report, nil
}
