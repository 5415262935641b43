package models

// Row is an ordered, 0-indexed and possibly sparse sequence of cells.
type Row struct {
	cells  []*Cell
	style  *Style
	height float64
}

// NewRow creates a row from a dense list of cells.
func NewRow(cells ...*Cell) *Row {
	return &Row{cells: cells}
}

// RowFromValues creates a row, deriving every cell with FromValue.
func RowFromValues(values ...any) (*Row, error) {
	cells := make([]*Cell, len(values))
	for i, v := range values {
		c, err := FromValue(v)
		if err != nil {
			return nil, err
		}
		cells[i] = c
	}
	return &Row{cells: cells}, nil
}

// MustRow is like RowFromValues but panics on an unsupported value type.
func MustRow(values ...any) *Row {
	r, err := RowFromValues(values...)
	if err != nil {
		panic(err)
	}
	return r
}

// WithStyle sets the row style, applied under every cell style.
func (r *Row) WithStyle(style *Style) *Row {
	r.style = style
	return r
}

// WithHeight sets a custom row height in points.
func (r *Row) WithHeight(height float64) *Row {
	r.height = height
	return r
}

func (r *Row) Style() *Style { return r.style }

func (r *Row) Height() float64 { return r.height }

// Cells returns the cells in index order; unset positions are nil.
func (r *Row) Cells() []*Cell { return r.cells }

func (r *Row) NumCells() int { return len(r.cells) }

// Cell returns the cell at index i, or nil when no cell was set there.
func (r *Row) Cell(i int) *Cell {
	if i < 0 || i >= len(r.cells) {
		return nil
	}
	return r.cells[i]
}

// SetCellAtIndex places c at index i, growing the row as needed.
func (r *Row) SetCellAtIndex(i int, c *Cell) {
	if i >= len(r.cells) {
		if i < cap(r.cells) {
			r.cells = r.cells[:i+1]
		} else {
			grown := make([]*Cell, i+1, 2*(i+1))
			copy(grown, r.cells)
			r.cells = grown
		}
	}
	r.cells[i] = c
}

// AddCell appends c after the last cell.
func (r *Row) AddCell(c *Cell) {
	r.cells = append(r.cells, c)
}

// IsEmpty reports whether the row holds no value at all.
func (r *Row) IsEmpty() bool {
	for _, c := range r.cells {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Values returns the cell values, with nil for unset and empty cells.
func (r *Row) Values() []any {
	values := make([]any, len(r.cells))
	for i, c := range r.cells {
		if c == nil {
			continue
		}
		switch c.kind {
		case KindError:
			values[i] = c.raw
		case KindFormula:
			if c.value == nil {
				values[i] = c.raw
			} else {
				values[i] = c.value
			}
		default:
			values[i] = c.value
		}
	}
	return values
}

// Strings returns the cell values rendered as text.
func (r *Row) Strings() []string {
	out := make([]string, len(r.cells))
	for i, c := range r.cells {
		out[i] = c.String()
	}
	return out
}
