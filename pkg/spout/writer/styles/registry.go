// Package styles deduplicates cell styles into stable numeric ids.
//
// The format writers build their own resource tables (fills, borders,
// number formats, fonts) on top of a Registry by reacting to each newly
// registered style.
package styles

import (
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
)

// Registry assigns one id per distinct style. The default style always has
// id 0. A registry belongs to a single workbook.
type Registry struct {
	ids    map[string]int
	styles []*models.Style
	onNew  func(models.RegisteredStyle)
}

// NewRegistry creates a registry whose style 0 is defaultStyle (an empty
// style when nil). onNew, when set, runs once for every style that gets a
// new id, the default included.
func NewRegistry(defaultStyle *models.Style, onNew func(models.RegisteredStyle)) (*Registry, error) {
	if defaultStyle == nil {
		defaultStyle = models.NewStyle()
	}
	r := &Registry{ids: make(map[string]int), onNew: onNew}
	if _, err := r.Register(defaultStyle); err != nil {
		return nil, err
	}
	return r, nil
}

// Register returns the registered form of s, assigning the next id when no
// structurally equal style was registered before.
func (r *Registry) Register(s *models.Style) (models.RegisteredStyle, error) {
	key := s.Key()
	if id, ok := r.ids[key]; ok {
		return models.NewRegisteredStyle(r.styles[id], id), nil
	}
	if err := s.Validate(); err != nil {
		return models.RegisteredStyle{}, err
	}
	id := len(r.styles)
	stored := s.Clone()
	r.ids[key] = id
	r.styles = append(r.styles, stored)
	reg := models.NewRegisteredStyle(stored, id)
	if r.onNew != nil {
		r.onNew(reg)
	}
	return reg, nil
}

// Default returns style 0.
func (r *Registry) Default() models.RegisteredStyle {
	return models.NewRegisteredStyle(r.styles[0], 0)
}

// Styles returns every registered style in id order.
func (r *Registry) Styles() []models.RegisteredStyle {
	out := make([]models.RegisteredStyle, len(r.styles))
	for id, s := range r.styles {
		out[id] = models.NewRegisteredStyle(s, id)
	}
	return out
}

func (r *Registry) Len() int { return len(r.styles) }

// RowStyle returns the style of a row completed by the default style.
func (r *Registry) RowStyle(row *models.Row) *models.Style {
	if row.Style() == nil {
		return r.styles[0]
	}
	return row.Style().MergeWith(r.styles[0])
}

// RegisterCell registers the style of c merged over rowStyle, as returned
// by RowStyle.
func (r *Registry) RegisterCell(rowStyle *models.Style, c *models.Cell) (models.RegisteredStyle, error) {
	return r.Register(Merge(rowStyle, c))
}

// Merge returns the effective style of c: its own properties override the
// row style. Multi-line strings wrap unless wrapping was set explicitly.
func Merge(rowStyle *models.Style, c *models.Cell) *models.Style {
	s := rowStyle
	if c != nil && c.Style() != nil {
		s = c.Style().MergeWith(rowStyle)
	}
	if c != nil && c.Kind() == models.KindString && !s.HasWrapText() {
		if v, _ := c.Value().(string); strings.Contains(v, "\n") {
			s = s.Clone().SetWrapText(true)
		}
	}
	return s
}
