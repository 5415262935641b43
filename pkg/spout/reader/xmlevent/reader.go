// Package xmlevent drives a hardened XML pull parser and dispatches
// start/end element events to registered handlers.
package xmlevent

import (
	"bytes"
	"encoding/xml"
	"errors"
	"io"

	"golang.org/x/net/html/charset"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// ErrDTD is returned for documents declaring a document type. Entity
// definitions are never expanded.
var ErrDTD = errors.New("document type declarations are not allowed")

// Reader pulls tokens from an XML stream. Several dispatchers may consume
// the same Reader one after the other.
type Reader struct {
	dec  *xml.Decoder
	name string
	err  error
}

// NewReader wraps r. name identifies the stream in errors.
func NewReader(r io.Reader, name string) *Reader {
	dec := xml.NewDecoder(r)
	dec.Strict = true
	dec.CharsetReader = charset.NewReaderLabel
	return &Reader{dec: dec, name: name}
}

// Token returns the next token. Character data is copied and can be kept.
// io.EOF is returned at the end of the document; every other failure is a
// format error and is sticky.
func (r *Reader) Token() (xml.Token, error) {
	if r.err != nil {
		return nil, r.err
	}
	tok, err := r.dec.Token()
	if err != nil {
		if err == io.EOF {
			r.err = io.EOF
		} else {
			r.err = spouterr.Format("parse xml", r.name, err)
		}
		return nil, r.err
	}
	if d, ok := tok.(xml.Directive); ok && isDoctype(d) {
		r.err = spouterr.Format("parse xml", r.name, ErrDTD)
		return nil, r.err
	}
	return xml.CopyToken(tok), nil
}

func isDoctype(d xml.Directive) bool {
	return bytes.HasPrefix(bytes.TrimSpace(bytes.ToUpper(d)), []byte("DOCTYPE"))
}

// Expand reads the subtree of start, up to and including its end element.
func (r *Reader) Expand(start xml.StartElement) (*Element, error) {
	root := &Element{Name: start.Name, Attr: start.Attr}
	stack := []*Element{root}
	for len(stack) > 0 {
		tok, err := r.Token()
		if err != nil {
			if err == io.EOF {
				return nil, spouterr.Format("parse xml", r.name, io.ErrUnexpectedEOF)
			}
			return nil, err
		}
		top := stack[len(stack)-1]
		switch t := tok.(type) {
		case xml.StartElement:
			el := &Element{Name: t.Name, Attr: t.Attr}
			top.Children = append(top.Children, el)
			stack = append(stack, el)
		case xml.EndElement:
			stack = stack[:len(stack)-1]
		case xml.CharData:
			top.Children = append(top.Children, &Element{Text: string(t)})
		}
	}
	return root, nil
}

// Skip consumes the rest of the element whose start was just read.
func (r *Reader) Skip() error {
	depth := 1
	for depth > 0 {
		tok, err := r.Token()
		if err != nil {
			if err == io.EOF {
				return spouterr.Format("parse xml", r.name, io.ErrUnexpectedEOF)
			}
			return err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			depth--
		}
	}
	return nil
}
