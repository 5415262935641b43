package models

import "github.com/openspout/openspout-sub000/pkg/spout/spouterr"

type BorderName string

const (
	BorderTop    BorderName = "top"
	BorderRight  BorderName = "right"
	BorderBottom BorderName = "bottom"
	BorderLeft   BorderName = "left"
)

type BorderWidth string

const (
	BorderWidthThin   BorderWidth = "thin"
	BorderWidthMedium BorderWidth = "medium"
	BorderWidthThick  BorderWidth = "thick"
)

type BorderStyle string

const (
	BorderStyleSolid  BorderStyle = "solid"
	BorderStyleDashed BorderStyle = "dashed"
	BorderStyleDotted BorderStyle = "dotted"
	BorderStyleDouble BorderStyle = "double"
	BorderStyleNone   BorderStyle = "none"
)

// BorderPart describes one side of a cell border.
type BorderPart struct {
	Name  BorderName  `json:"name"`
	Color string      `json:"color"`
	Width BorderWidth `json:"width"`
	Style BorderStyle `json:"style"`
}

// NewBorderPart validates and creates a border side.
func NewBorderPart(name BorderName, color string, width BorderWidth, style BorderStyle) (BorderPart, error) {
	p := BorderPart{Name: name, Color: color, Width: width, Style: style}
	return p, p.validate()
}

func (p BorderPart) validate() error {
	switch p.Name {
	case BorderTop, BorderRight, BorderBottom, BorderLeft:
	default:
		return spouterr.Valuef("invalid border name %q", p.Name)
	}
	switch p.Width {
	case BorderWidthThin, BorderWidthMedium, BorderWidthThick:
	default:
		return spouterr.Valuef("invalid border width %q", p.Width)
	}
	switch p.Style {
	case BorderStyleSolid, BorderStyleDashed, BorderStyleDotted, BorderStyleDouble, BorderStyleNone:
	default:
		return spouterr.Valuef("invalid border style %q", p.Style)
	}
	return validateColor(p.Color)
}

// Border holds up to one part per side. Later parts replace earlier ones
// with the same name.
type Border struct {
	Top    *BorderPart `json:"top,omitempty"`
	Right  *BorderPart `json:"right,omitempty"`
	Bottom *BorderPart `json:"bottom,omitempty"`
	Left   *BorderPart `json:"left,omitempty"`
}

func NewBorder(parts ...BorderPart) *Border {
	b := &Border{}
	for _, p := range parts {
		b.Set(p)
	}
	return b
}

func (b *Border) Set(p BorderPart) {
	switch p.Name {
	case BorderTop:
		b.Top = &p
	case BorderRight:
		b.Right = &p
	case BorderBottom:
		b.Bottom = &p
	case BorderLeft:
		b.Left = &p
	}
}

// Parts returns the set sides in top, right, bottom, left order.
func (b *Border) Parts() []BorderPart {
	var parts []BorderPart
	for _, p := range []*BorderPart{b.Top, b.Right, b.Bottom, b.Left} {
		if p != nil {
			parts = append(parts, *p)
		}
	}
	return parts
}

// Part returns the side with the given name, or nil.
func (b *Border) Part(name BorderName) *BorderPart {
	switch name {
	case BorderTop:
		return b.Top
	case BorderRight:
		return b.Right
	case BorderBottom:
		return b.Bottom
	case BorderLeft:
		return b.Left
	}
	return nil
}

func (b *Border) validate() error {
	for _, p := range b.Parts() {
		if err := p.validate(); err != nil {
			return err
		}
	}
	return nil
}
