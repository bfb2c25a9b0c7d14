package dom

import (
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/hupe1980/nodestore"
)

// ParseHTML parses r as an HTML5 document and allocates every element, text
// and comment node in a new Document. Doctype nodes are dropped.
func ParseHTML(r io.Reader, opts ...nodestore.Option) (*Document, error) {
	src, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	doc, err := NewDocument(opts...)
	if err != nil {
		return nil, err
	}

	type frame struct {
		n      *html.Node
		parent nodestore.NodeID
	}

	var stack []frame
	for c := src.LastChild; c != nil; c = c.PrevSibling {
		stack = append(stack, frame{n: c, parent: doc.root})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		var (
			id     nodestore.NodeID
			err    error
			expand bool
		)
		switch f.n.Type {
		case html.ElementNode:
			id, err = doc.CreateElement(f.n.Data, convertAttrs(f.n.Attr)...)
			expand = true
		case html.TextNode:
			id, err = doc.CreateText(f.n.Data)
		case html.CommentNode:
			id, err = doc.CreateComment(f.n.Data)
		default:
			continue
		}
		if err != nil {
			return nil, err
		}
		if err := doc.AppendChild(f.parent, id); err != nil {
			return nil, err
		}

		if expand {
			for c := f.n.LastChild; c != nil; c = c.PrevSibling {
				stack = append(stack, frame{n: c, parent: id})
			}
		}
	}

	return doc, nil
}

func convertAttrs(attrs []html.Attribute) []Attr {
	if len(attrs) == 0 {
		return nil
	}
	out := make([]Attr, len(attrs))
	for i, a := range attrs {
		key := a.Key
		if a.Namespace != "" {
			key = a.Namespace + ":" + a.Key
		}
		out[i] = Attr{Key: key, Val: a.Val}
	}
	return out
}

// RenderHTML writes the subtree rooted at id as HTML.
func (d *Document) RenderHTML(w io.Writer, id nodestore.NodeID) error {
	n, err := d.toHTML(id)
	if err != nil {
		return err
	}
	return html.Render(w, n)
}

func (d *Document) toHTML(id nodestore.NodeID) (*html.Node, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	type frame struct {
		id     nodestore.NodeID
		parent *html.Node
	}

	var top *html.Node
	stack := []frame{{id: id}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		v, ok := d.store.Get(f.id)
		if !ok {
			return nil, notFound(f.id)
		}

		n := &html.Node{}
		switch p := v.(type) {
		case *DocumentNode:
			n.Type = html.DocumentNode
		case *Element:
			n.Type = html.ElementNode
			n.Data = p.Tag
			for _, a := range p.Attrs {
				n.Attr = append(n.Attr, html.Attribute{Key: a.Key, Val: a.Val})
			}
		case *Text:
			n.Type = html.TextNode
			n.Data = p.Data
		case *Comment:
			n.Type = html.CommentNode
			n.Data = p.Data
		default:
			return nil, fmt.Errorf("dom: cannot render %T", v)
		}

		if f.parent == nil {
			top = n
		} else {
			f.parent.AppendChild(n)
		}

		children := d.childrenLocked(f.id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, frame{id: children[i], parent: n})
		}
	}
	return top, nil
}
