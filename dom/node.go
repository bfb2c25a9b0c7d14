package dom

import (
	"fmt"
	"strings"
)

// NodeType identifies the kind of a Node.
type NodeType uint8

const (
	TypeDocument NodeType = iota
	TypeElement
	TypeText
	TypeComment
)

func (t NodeType) String() string {
	switch t {
	case TypeDocument:
		return "document"
	case TypeElement:
		return "element"
	case TypeText:
		return "text"
	case TypeComment:
		return "comment"
	default:
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
}

// Node is the payload stored for every document node. Structure (parent and
// children) is kept by the Document, not by the payload.
type Node interface {
	Type() NodeType
	String() string
}

// Attr is an element attribute.
type Attr struct {
	Key string
	Val string
}

// DocumentNode is the payload of a document's root.
type DocumentNode struct{}

func (*DocumentNode) Type() NodeType { return TypeDocument }
func (*DocumentNode) String() string { return "#document" }

// Element is an element payload.
type Element struct {
	Tag   string
	Attrs []Attr
}

func (*Element) Type() NodeType { return TypeElement }

func (e *Element) String() string {
	var sb strings.Builder
	sb.WriteByte('<')
	sb.WriteString(e.Tag)
	for _, a := range e.Attrs {
		fmt.Fprintf(&sb, " %s=%q", a.Key, a.Val)
	}
	sb.WriteByte('>')
	return sb.String()
}

// Attr returns the value of the attribute key.
func (e *Element) Attr(key string) (string, bool) {
	for _, a := range e.Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// Text is a text payload.
type Text struct {
	Data string
}

func (*Text) Type() NodeType   { return TypeText }
func (t *Text) String() string { return fmt.Sprintf("%q", t.Data) }

// Comment is a comment payload.
type Comment struct {
	Data string
}

func (*Comment) Type() NodeType   { return TypeComment }
func (c *Comment) String() string { return "<!--" + c.Data + "-->" }

var (
	_ Node = (*DocumentNode)(nil)
	_ Node = (*Element)(nil)
	_ Node = (*Text)(nil)
	_ Node = (*Comment)(nil)
)
