package models

import (
	"github.com/goccy/go-json"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Font defaults applied when a style leaves a font property unset.
const (
	DefaultFontSize  = 11
	DefaultFontColor = ColorBlack
	DefaultFontName  = "Arial"
)

type HorizontalAlignment string

const (
	AlignLeft    HorizontalAlignment = "left"
	AlignRight   HorizontalAlignment = "right"
	AlignCenter  HorizontalAlignment = "center"
	AlignJustify HorizontalAlignment = "justify"
)

type VerticalAlignment string

const (
	AlignTop         VerticalAlignment = "top"
	AlignMiddle      VerticalAlignment = "center"
	AlignBottom      VerticalAlignment = "bottom"
	AlignDistributed VerticalAlignment = "distributed"
)

// styleProps holds the properties of a style. A nil field is unset.
// Field order fixes the serialized form used for deduplication.
type styleProps struct {
	Bold            *bool                `json:"bold,omitempty"`
	Italic          *bool                `json:"italic,omitempty"`
	Underline       *bool                `json:"underline,omitempty"`
	Strikethrough   *bool                `json:"strikethrough,omitempty"`
	FontSize        *float64             `json:"fontSize,omitempty"`
	FontColor       *string              `json:"fontColor,omitempty"`
	FontName        *string              `json:"fontName,omitempty"`
	BackgroundColor *string              `json:"backgroundColor,omitempty"`
	Border          *Border              `json:"border,omitempty"`
	Horizontal      *HorizontalAlignment `json:"horizontal,omitempty"`
	Vertical        *VerticalAlignment   `json:"vertical,omitempty"`
	Format          *string              `json:"format,omitempty"`
	WrapText        *bool                `json:"wrapText,omitempty"`
	ShrinkToFit     *bool                `json:"shrinkToFit,omitempty"`
}

// Style is a set of formatting properties. Setters return the style so calls
// can be chained. A style must not be modified once it was handed to a writer.
//
// A Style carries no identity; registering it with a writer's style registry
// yields a RegisteredStyle holding the id.
type Style struct {
	p styleProps
}

func NewStyle() *Style { return &Style{} }

func ptr[T any](v T) *T { return &v }

func (s *Style) SetFontBold() *Style {
	s.p.Bold = ptr(true)
	return s
}

func (s *Style) SetFontItalic() *Style {
	s.p.Italic = ptr(true)
	return s
}

func (s *Style) SetFontUnderline() *Style {
	s.p.Underline = ptr(true)
	return s
}

func (s *Style) SetFontStrikethrough() *Style {
	s.p.Strikethrough = ptr(true)
	return s
}

func (s *Style) SetFontSize(size float64) *Style {
	s.p.FontSize = ptr(size)
	return s
}

// SetFontColor sets the font color as RRGGBB.
func (s *Style) SetFontColor(rgb string) *Style {
	s.p.FontColor = ptr(rgb)
	return s
}

func (s *Style) SetFontName(name string) *Style {
	s.p.FontName = ptr(name)
	return s
}

// SetBackgroundColor sets a solid fill as RRGGBB.
func (s *Style) SetBackgroundColor(rgb string) *Style {
	s.p.BackgroundColor = ptr(rgb)
	return s
}

func (s *Style) SetBorder(b *Border) *Style {
	s.p.Border = b
	return s
}

func (s *Style) SetHorizontalAlignment(a HorizontalAlignment) *Style {
	s.p.Horizontal = ptr(a)
	return s
}

func (s *Style) SetVerticalAlignment(a VerticalAlignment) *Style {
	s.p.Vertical = ptr(a)
	return s
}

// SetFormat sets a number format code such as "0.00" or "yyyy-mm-dd".
func (s *Style) SetFormat(code string) *Style {
	s.p.Format = ptr(code)
	return s
}

func (s *Style) SetWrapText(wrap bool) *Style {
	s.p.WrapText = ptr(wrap)
	return s
}

func (s *Style) SetShrinkToFit(shrink bool) *Style {
	s.p.ShrinkToFit = ptr(shrink)
	return s
}

func deref[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}

func (s *Style) IsFontBold() bool { return deref(s.p.Bold, false) }
func (s *Style) IsFontItalic() bool { return deref(s.p.Italic, false) }
func (s *Style) IsFontUnderline() bool { return deref(s.p.Underline, false) }
func (s *Style) IsFontStrikethrough() bool { return deref(s.p.Strikethrough, false) }
func (s *Style) FontSize() float64 { return deref(s.p.FontSize, DefaultFontSize) }
func (s *Style) FontColor() string { return deref(s.p.FontColor, DefaultFontColor) }
func (s *Style) FontName() string { return deref(s.p.FontName, DefaultFontName) }
func (s *Style) BackgroundColor() string { return deref(s.p.BackgroundColor, "") }
func (s *Style) Border() *Border { return s.p.Border }
func (s *Style) Format() string { return deref(s.p.Format, "") }
func (s *Style) ShouldWrapText() bool { return deref(s.p.WrapText, false) }
func (s *Style) ShouldShrinkToFit() bool { return deref(s.p.ShrinkToFit, false) }

func (s *Style) HorizontalAlignment() HorizontalAlignment {
	return deref(s.p.Horizontal, "")
}

func (s *Style) VerticalAlignment() VerticalAlignment {
	return deref(s.p.Vertical, "")
}

// HasFont reports whether any font property was set.
func (s *Style) HasFont() bool {
	p := s.p
	return p.Bold != nil || p.Italic != nil || p.Underline != nil || p.Strikethrough != nil ||
		p.FontSize != nil || p.FontColor != nil || p.FontName != nil
}

func (s *Style) HasBackgroundColor() bool { return s.p.BackgroundColor != nil }
func (s *Style) HasBorder() bool { return s.p.Border != nil && len(s.p.Border.Parts()) > 0 }
func (s *Style) HasFormat() bool { return s.p.Format != nil }
func (s *Style) HasWrapText() bool { return s.p.WrapText != nil }

// HasAlignment reports whether alignment, wrapping or shrinking was set.
func (s *Style) HasAlignment() bool {
	return s.p.Horizontal != nil || s.p.Vertical != nil || s.p.WrapText != nil || s.p.ShrinkToFit != nil
}

// Key returns the canonical serialization of the set properties.
// Two styles with the same key are interchangeable.
func (s *Style) Key() string {
	b, err := json.Marshal(s.p)
	if err != nil {
		// styleProps holds only plain values
		panic(err)
	}
	return string(b)
}

// Equal reports whether both styles set the same properties to the same values.
func (s *Style) Equal(o *Style) bool {
	return s.Key() == o.Key()
}

// Clone returns an independent copy.
func (s *Style) Clone() *Style {
	cp := &Style{p: s.p}
	if s.p.Border != nil {
		b := *s.p.Border
		cp.p.Border = &b
	}
	return cp
}

// MergeWith returns a new style holding the properties of s, completed by
// the properties of base that s leaves unset.
func (s *Style) MergeWith(base *Style) *Style {
	if base == nil {
		return s.Clone()
	}
	m := s.Clone()
	b := base.p
	mp := &m.p
	if mp.Bold == nil {
		mp.Bold = b.Bold
	}
	if mp.Italic == nil {
		mp.Italic = b.Italic
	}
	if mp.Underline == nil {
		mp.Underline = b.Underline
	}
	if mp.Strikethrough == nil {
		mp.Strikethrough = b.Strikethrough
	}
	if mp.FontSize == nil {
		mp.FontSize = b.FontSize
	}
	if mp.FontColor == nil {
		mp.FontColor = b.FontColor
	}
	if mp.FontName == nil {
		mp.FontName = b.FontName
	}
	if mp.BackgroundColor == nil {
		mp.BackgroundColor = b.BackgroundColor
	}
	if mp.Border == nil {
		mp.Border = b.Border
	}
	if mp.Horizontal == nil {
		mp.Horizontal = b.Horizontal
	}
	if mp.Vertical == nil {
		mp.Vertical = b.Vertical
	}
	if mp.Format == nil {
		mp.Format = b.Format
	}
	if mp.WrapText == nil {
		mp.WrapText = b.WrapText
	}
	if mp.ShrinkToFit == nil {
		mp.ShrinkToFit = b.ShrinkToFit
	}
	return m
}

// Validate checks colors, alignments and borders.
func (s *Style) Validate() error {
	for _, c := range []*string{s.p.FontColor, s.p.BackgroundColor} {
		if c != nil {
			if err := validateColor(*c); err != nil {
				return err
			}
		}
	}
	if s.p.FontSize != nil && *s.p.FontSize <= 0 {
		return spouterr.Valuef("font size %v must be positive", *s.p.FontSize)
	}
	if h := s.p.Horizontal; h != nil {
		switch *h {
		case AlignLeft, AlignRight, AlignCenter, AlignJustify:
		default:
			return spouterr.Valuef("invalid horizontal alignment %q", *h)
		}
	}
	if v := s.p.Vertical; v != nil {
		switch *v {
		case AlignTop, AlignMiddle, AlignBottom, AlignDistributed, VerticalAlignment("justify"):
		default:
			return spouterr.Valuef("invalid vertical alignment %q", *v)
		}
	}
	if s.p.Border != nil {
		return s.p.Border.validate()
	}
	return nil
}

// RegisteredStyle is a style that received an id from a style registry.
type RegisteredStyle struct {
	style *Style
	id    int
}

// NewRegisteredStyle is used by style registries.
func NewRegisteredStyle(style *Style, id int) RegisteredStyle {
	return RegisteredStyle{style: style, id: id}
}

func (r RegisteredStyle) Style() *Style { return r.style }
func (r RegisteredStyle) ID() int { return r.id }
