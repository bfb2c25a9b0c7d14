package dom

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/nodestore"
)

func newTestDocument(t *testing.T) *Document {
	t.Helper()

	doc, err := NewDocument()
	require.NoError(t, err)
	return doc
}

func mustCreate(t *testing.T) func(nodestore.NodeID, error) nodestore.NodeID {
	return func(id nodestore.NodeID, err error) nodestore.NodeID {
		t.Helper()
		require.NoError(t, err)
		return id
	}
}

func TestDocument_Build(t *testing.T) {
	doc := newTestDocument(t)

	div := mustCreate(t)(doc.CreateElement("div", Attr{Key: "id", Val: "main"}))
	hello := mustCreate(t)(doc.CreateText("hello "))
	b := mustCreate(t)(doc.CreateElement("b"))
	world := mustCreate(t)(doc.CreateText("world"))
	note := mustCreate(t)(doc.CreateComment("note"))

	require.NoError(t, doc.AppendChild(doc.Root(), div))
	require.NoError(t, doc.AppendChild(div, hello))
	require.NoError(t, doc.AppendChild(div, b))
	require.NoError(t, doc.AppendChild(b, world))
	require.NoError(t, doc.AppendChild(div, note))

	assert.Equal(t, 6, doc.Len())
	assert.Equal(t, []nodestore.NodeID{hello, b, note}, doc.Children(div))
	assert.Equal(t, "hello world", doc.TextContent(doc.Root()))

	parent, ok := doc.Parent(world)
	require.True(t, ok)
	assert.Equal(t, b, parent)

	_, ok = doc.Parent(doc.Root())
	assert.False(t, ok)

	n, err := doc.Node(div)
	require.NoError(t, err)
	assert.Equal(t, TypeElement, n.Type())
	assert.Equal(t, `<div id="main">`, n.String())

	val, ok := n.(*Element).Attr("id")
	assert.True(t, ok)
	assert.Equal(t, "main", val)
}

func TestDocument_HierarchyErrors(t *testing.T) {
	doc := newTestDocument(t)

	div := mustCreate(t)(doc.CreateElement("div"))
	span := mustCreate(t)(doc.CreateElement("span"))
	text := mustCreate(t)(doc.CreateText("x"))
	other := mustCreate(t)(doc.CreateText("y"))

	require.NoError(t, doc.AppendChild(doc.Root(), div))
	require.NoError(t, doc.AppendChild(div, span))
	require.NoError(t, doc.AppendChild(span, text))

	tests := []struct {
		name          string
		parent, child nodestore.NodeID
		reason        error
	}{
		{"TextParent", text, other, ErrInvalidParent},
		{"DocumentChild", div, doc.Root(), ErrInvalidChild},
		{"AlreadyAttached", doc.Root(), span, ErrAlreadyAttached},
		{"Self", other, other, ErrInvalidParent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := doc.AppendChild(tt.parent, tt.child)
			require.ErrorIs(t, err, tt.reason)

			var he *HierarchyError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.parent, he.Parent)
			assert.Equal(t, tt.child, he.Child)
		})
	}

	t.Run("Cycle", func(t *testing.T) {
		require.NoError(t, doc.RemoveChild(doc.Root(), div))
		err := doc.AppendChild(span, div)
		require.ErrorIs(t, err, ErrCycle)

		loose := mustCreate(t)(doc.CreateElement("p"))
		require.ErrorIs(t, doc.AppendChild(loose, loose), ErrCycle)
	})

	t.Run("NotChild", func(t *testing.T) {
		err := doc.RemoveChild(span, other)
		require.ErrorIs(t, err, ErrNotChild)
	})
}

func TestDocument_FailedMutationsLeaveNoLinks(t *testing.T) {
	doc := newTestDocument(t)

	// Nodes allocated straight through the store have no link entry yet.
	p, err := doc.Store().Allocate(&Element{Tag: "p"})
	require.NoError(t, err)
	q, err := doc.Store().Allocate(&Element{Tag: "q"})
	require.NoError(t, err)
	text, err := doc.Store().Allocate(&Text{Data: "x"})
	require.NoError(t, err)

	before := len(doc.links)

	require.ErrorIs(t, doc.AppendChild(text, p), ErrInvalidParent)
	require.ErrorIs(t, doc.AppendChild(p, p), ErrCycle)
	require.ErrorIs(t, doc.AppendChild(q, doc.Root()), ErrInvalidChild)
	require.ErrorIs(t, doc.RemoveChild(p, q), ErrNotChild)
	assert.Len(t, doc.links, before)

	require.NoError(t, doc.AppendChild(p, q))
	assert.Len(t, doc.links, before+2)
	assert.Equal(t, []nodestore.NodeID{q}, doc.Children(p))
}

func TestDocument_StaleHandles(t *testing.T) {
	doc := newTestDocument(t)

	div := mustCreate(t)(doc.CreateElement("div"))
	require.True(t, doc.Store().Deallocate(div))

	_, err := doc.Node(div)
	require.ErrorIs(t, err, ErrNodeNotFound)
	require.ErrorIs(t, doc.AppendChild(doc.Root(), div), ErrNodeNotFound)
	require.ErrorIs(t, doc.AppendChild(div, doc.Root()), ErrNodeNotFound)
	require.ErrorIs(t, doc.RemoveChild(doc.Root(), div), ErrNodeNotFound)
}

func TestDocument_Collect(t *testing.T) {
	ctx := context.Background()
	doc := newTestDocument(t)

	body := mustCreate(t)(doc.CreateElement("body"))
	require.NoError(t, doc.AppendChild(doc.Root(), body))

	var items []nodestore.NodeID
	for range 10 {
		li := mustCreate(t)(doc.CreateElement("li"))
		txt := mustCreate(t)(doc.CreateText("item"))
		require.NoError(t, doc.AppendChild(li, txt))
		require.NoError(t, doc.AppendChild(body, li))
		items = append(items, li)
	}
	require.Equal(t, 22, doc.Len())

	// Detach half; detached nodes survive until collected.
	for _, li := range items[:5] {
		require.NoError(t, doc.RemoveChild(body, li))
	}
	assert.Equal(t, 22, doc.Len())

	report, err := doc.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, report.NodesCollected)
	assert.Equal(t, 12, doc.Len())

	for _, li := range items[:5] {
		_, err := doc.Node(li)
		assert.ErrorIs(t, err, ErrNodeNotFound)
	}
	assert.Equal(t, items[5:], doc.Children(body))
	assert.Equal(t, "itemitemitemitemitem", doc.TextContent(body))
}

func TestDocument_CollectExtraRoots(t *testing.T) {
	doc := newTestDocument(t)

	kept := mustCreate(t)(doc.CreateElement("template"))
	child := mustCreate(t)(doc.CreateText("kept"))
	require.NoError(t, doc.AppendChild(kept, child))
	dropped := mustCreate(t)(doc.CreateElement("div"))

	_, err := doc.Collect(context.Background(), kept)
	require.NoError(t, err)

	assert.Equal(t, "kept", doc.TextContent(kept))
	_, err = doc.Node(dropped)
	require.ErrorIs(t, err, ErrNodeNotFound)
}

func TestDocument_CollectOrphansParentLink(t *testing.T) {
	doc := newTestDocument(t)

	outer := mustCreate(t)(doc.CreateElement("div"))
	inner := mustCreate(t)(doc.CreateElement("span"))
	require.NoError(t, doc.AppendChild(outer, inner))

	// inner is kept as an extra root while its detached parent is collected.
	_, err := doc.Collect(context.Background(), inner)
	require.NoError(t, err)

	_, ok := doc.Parent(inner)
	assert.False(t, ok)
	require.NoError(t, doc.AppendChild(doc.Root(), inner))
}

func TestDocument_CollectCancelled(t *testing.T) {
	doc := newTestDocument(t)
	_ = mustCreate(t)(doc.CreateElement("div"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := doc.Collect(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 2, doc.Len())
}

func TestDocument_BoundedStore(t *testing.T) {
	doc, err := NewDocument(nodestore.WithMaxSlots(2))
	require.NoError(t, err)

	_ = mustCreate(t)(doc.CreateElement("a"))
	_, err = doc.CreateElement("b")
	require.ErrorIs(t, err, nodestore.ErrResourceExhausted)
}

func TestNodeType_String(t *testing.T) {
	assert.Equal(t, "document", TypeDocument.String())
	assert.Equal(t, "element", TypeElement.String())
	assert.Equal(t, "text", TypeText.String())
	assert.Equal(t, "comment", TypeComment.String())
	assert.Equal(t, "NodeType(9)", NodeType(9).String())

	assert.Equal(t, "#document", (&DocumentNode{}).String())
	assert.Equal(t, `"a\n"`, (&Text{Data: "a\n"}).String())
	assert.Equal(t, "<!--x-->", (&Comment{Data: "x"}).String())
}

func TestDocument_IsAttached(t *testing.T) {
	doc := newTestDocument(t)

	outer := mustCreate(t)(doc.CreateElement("div"))
	inner := mustCreate(t)(doc.CreateElement("div"))
	require.NoError(t, doc.AppendChild(outer, inner))
	assert.False(t, doc.IsAttached(inner))

	require.NoError(t, doc.AppendChild(doc.Root(), outer))
	assert.True(t, doc.IsAttached(inner))
	assert.True(t, doc.IsAttached(doc.Root()))

	require.NoError(t, doc.RemoveChild(doc.Root(), outer))
	assert.False(t, doc.IsAttached(inner))
}
