package xmlevent

import (
	"encoding/xml"
	"io"
)

// Phase selects the element event a handler is called for.
type Phase int

const (
	Start Phase = iota
	End
)

// Result tells the dispatcher whether to keep reading.
type Result int

const (
	Continue Result = iota
	Stop
)

// Node is the element an event was raised for.
type Node struct {
	Name  xml.Name
	Phase Phase
	Attr  []xml.Attr

	r        *Reader
	start    xml.StartElement
	consumed bool
}

// AttrValue returns the value of the first attribute with the given local name.
func (n *Node) AttrValue(local string) (string, bool) {
	return attrValue(n.Attr, "", local)
}

// AttrNS returns the value of an attribute in the given namespace.
func (n *Node) AttrNS(space, local string) (string, bool) {
	return attrValue(n.Attr, space, local)
}

// Expand reads the whole element on a start event. The end event of the
// element is consumed and not dispatched.
func (n *Node) Expand() (*Element, error) {
	if n.Phase != Start || n.consumed {
		return &Element{Name: n.Name, Attr: n.Attr}, nil
	}
	n.consumed = true
	return n.r.Expand(n.start)
}

// Handler processes one event.
type Handler func(n *Node) (Result, error)

type handlerKey struct {
	local string
	phase Phase
}

type registration struct {
	space   string
	handler Handler
}

// Dispatcher maps (element name, phase) pairs to handlers.
type Dispatcher struct {
	r        *Reader
	handlers map[handlerKey][]registration
}

func NewDispatcher(r *Reader) *Dispatcher {
	return &Dispatcher{r: r, handlers: make(map[handlerKey][]registration)}
}

// Register adds a handler. A name with an empty Space matches the local name
// in any namespace.
func (d *Dispatcher) Register(name xml.Name, phase Phase, h Handler) {
	k := handlerKey{local: name.Local, phase: phase}
	d.handlers[k] = append(d.handlers[k], registration{space: name.Space, handler: h})
}

func (d *Dispatcher) lookup(name xml.Name, phase Phase) Handler {
	for _, reg := range d.handlers[handlerKey{local: name.Local, phase: phase}] {
		if reg.space == "" || reg.space == name.Space {
			return reg.handler
		}
	}
	return nil
}

// RunUntilStopped reads events until a handler returns Stop, in which case
// stopped is true and the reader is positioned right after that event, or
// until the document ends.
func (d *Dispatcher) RunUntilStopped() (stopped bool, err error) {
	for {
		tok, err := d.r.Token()
		if err == io.EOF {
			return false, nil
		}
		if err != nil {
			return false, err
		}

		var n *Node
		switch t := tok.(type) {
		case xml.StartElement:
			h := d.lookup(t.Name, Start)
			if h == nil {
				continue
			}
			n = &Node{Name: t.Name, Phase: Start, Attr: t.Attr, r: d.r, start: t}
			res, err := h(n)
			if err != nil {
				return false, err
			}
			if res == Stop {
				return true, nil
			}
		case xml.EndElement:
			h := d.lookup(t.Name, End)
			if h == nil {
				continue
			}
			n = &Node{Name: t.Name, Phase: End, r: d.r}
			res, err := h(n)
			if err != nil {
				return false, err
			}
			if res == Stop {
				return true, nil
			}
		}
	}
}
