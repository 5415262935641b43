package xmlevent

import (
	"encoding/xml"
	"strings"
)

// Element is an expanded node: either an element with attributes and
// children, or a text node when Name.Local is empty.
type Element struct {
	Name     xml.Name
	Attr     []xml.Attr
	Children []*Element
	Text     string
}

func (e *Element) IsText() bool { return e.Name.Local == "" }

// AttrValue returns the value of the first attribute with the given local
// name, in any namespace.
func (e *Element) AttrValue(local string) (string, bool) {
	return attrValue(e.Attr, "", local)
}

// AttrNS returns the value of an attribute in the given namespace.
func (e *Element) AttrNS(space, local string) (string, bool) {
	return attrValue(e.Attr, space, local)
}

func attrValue(attrs []xml.Attr, space, local string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == local && (space == "" || a.Name.Space == space) {
			return a.Value, true
		}
	}
	return "", false
}

// Child returns the first child element with the given local name.
func (e *Element) Child(local string) *Element {
	for _, c := range e.Children {
		if c.Name.Local == local {
			return c
		}
	}
	return nil
}

// Elements returns the child elements, skipping text nodes.
func (e *Element) Elements() []*Element {
	var out []*Element
	for _, c := range e.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// Walk calls fn for every descendant element in document order. When fn
// returns false the descendants of that element are skipped.
func (e *Element) Walk(fn func(*Element) bool) {
	for _, c := range e.Children {
		if c.IsText() {
			continue
		}
		if fn(c) {
			c.Walk(fn)
		}
	}
}

// TextContent concatenates every descendant text node.
func (e *Element) TextContent() string {
	if e.IsText() {
		return e.Text
	}
	var b strings.Builder
	e.writeText(&b)
	return b.String()
}

func (e *Element) writeText(b *strings.Builder) {
	for _, c := range e.Children {
		if c.IsText() {
			b.WriteString(c.Text)
		} else {
			c.writeText(b)
		}
	}
}
