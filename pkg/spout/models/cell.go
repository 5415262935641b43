// Package models defines the value objects carried through readers and writers.
package models

import (
	"math"
	"strings"
	"time"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Kind identifies the variant held by a Cell.
type Kind int

const (
	KindEmpty Kind = iota
	KindNumeric
	KindString
	KindBoolean
	KindDate
	KindDuration
	KindFormula
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	case KindBoolean:
		return "boolean"
	case KindDate:
		return "date"
	case KindDuration:
		return "duration"
	case KindFormula:
		return "formula"
	case KindError:
		return "error"
	}
	return "unknown"
}

// Cell is a single spreadsheet value with an optional style.
type Cell struct {
	kind  Kind
	value any
	// raw holds the unreadable text of an error cell or the formula text.
	raw   string
	style *Style
}

// FromValue creates a cell whose kind is derived from the Go type of v.
// Integers become int64 and floats become float64. A string starting with
// "=" is a formula.
func FromValue(v any) (*Cell, error) {
	switch x := v.(type) {
	case nil:
		return NewEmptyCell(), nil
	case *Cell:
		return x, nil
	case string:
		if x == "" {
			return NewEmptyCell(), nil
		}
		if strings.HasPrefix(x, "=") {
			return NewFormulaCell(x, nil), nil
		}
		return NewStringCell(x), nil
	case bool:
		return NewBooleanCell(x), nil
	case time.Time:
		return NewDateCell(x), nil
	case time.Duration:
		return NewDurationCell(x), nil
	case int:
		return NewIntCell(int64(x)), nil
	case int8:
		return NewIntCell(int64(x)), nil
	case int16:
		return NewIntCell(int64(x)), nil
	case int32:
		return NewIntCell(int64(x)), nil
	case int64:
		return NewIntCell(x), nil
	case uint:
		return NewIntCell(int64(x)), nil
	case uint8:
		return NewIntCell(int64(x)), nil
	case uint16:
		return NewIntCell(int64(x)), nil
	case uint32:
		return NewIntCell(int64(x)), nil
	case uint64:
		if x > math.MaxInt64 {
			return NewFloatCell(float64(x)), nil
		}
		return NewIntCell(int64(x)), nil
	case float32:
		return NewFloatCell(float64(x)), nil
	case float64:
		return NewFloatCell(x), nil
	}
	return nil, spouterr.New(spouterr.ErrUnsupportedType, "create cell", "", spouterr.Valuef("cell value of type %T", v))
}

func NewEmptyCell() *Cell { return &Cell{kind: KindEmpty} }

func NewStringCell(s string) *Cell { return &Cell{kind: KindString, value: s} }

func NewIntCell(n int64) *Cell { return &Cell{kind: KindNumeric, value: n} }

func NewFloatCell(f float64) *Cell { return &Cell{kind: KindNumeric, value: f} }

func NewBooleanCell(b bool) *Cell { return &Cell{kind: KindBoolean, value: b} }

func NewDateCell(t time.Time) *Cell { return &Cell{kind: KindDate, value: t} }

func NewDurationCell(d time.Duration) *Cell { return &Cell{kind: KindDuration, value: d} }

// NewFormulaCell creates a formula cell. computed is the cached result read
// from a file and may be nil.
func NewFormulaCell(formula string, computed any) *Cell {
	return &Cell{kind: KindFormula, raw: formula, value: computed}
}

// NewErrorCell creates a cell for a value that could not be decoded.
func NewErrorCell(raw string) *Cell { return &Cell{kind: KindError, raw: raw} }

// WithStyle returns a copy of the cell carrying style.
func (c *Cell) WithStyle(style *Style) *Cell {
	cp := *c
	cp.style = style
	return &cp
}

func (c *Cell) Kind() Kind { return c.kind }

// Value returns the cell value: int64 or float64 for numerics, string, bool,
// time.Time, time.Duration, the computed value of a formula, or nil for empty
// and error cells.
func (c *Cell) Value() any { return c.value }

// RawValue returns the undecodable text of an error cell.
func (c *Cell) RawValue() string {
	if c.kind == KindError {
		return c.raw
	}
	return ""
}

// Formula returns the formula text, including the leading "=".
func (c *Cell) Formula() string {
	if c.kind == KindFormula {
		return c.raw
	}
	return ""
}

func (c *Cell) Style() *Style { return c.style }

func (c *Cell) IsEmpty() bool { return c == nil || c.kind == KindEmpty }

// String returns the value as displayed in a text export.
func (c *Cell) String() string {
	if c == nil {
		return ""
	}
	switch c.kind {
	case KindError:
		return c.raw
	case KindFormula:
		if c.value == nil {
			return c.raw
		}
	}
	return FormatValue(c.value)
}
