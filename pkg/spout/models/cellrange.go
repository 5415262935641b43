package models

import (
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// CellRange represents the bounds of a rectangular block of cells.
type CellRange struct {
	// StartColumn is the first column (0-based).
	StartColumn int `json:"c1"`
	// StartRow is the first row (1-based).
	StartRow int `json:"r1"`
	// EndColumn is the last column (0-based, inclusive).
	EndColumn int `json:"c2"`
	// EndRow is the last row (1-based, inclusive).
	EndRow int `json:"r2"`
}

// NewCellRange creates a range. Bounds given in reverse order are swapped.
func NewCellRange(startColumn, startRow, endColumn, endRow int) (CellRange, error) {
	if startColumn > endColumn {
		startColumn, endColumn = endColumn, startColumn
	}
	if startRow > endRow {
		startRow, endRow = endRow, startRow
	}
	if startColumn < 0 || endColumn >= excelize.MaxColumns || startRow < 1 || endRow > excelize.TotalRows {
		return CellRange{}, spouterr.Valuef("cell range (%d,%d):(%d,%d) out of bounds", startColumn, startRow, endColumn, endRow)
	}
	return CellRange{StartColumn: startColumn, StartRow: startRow, EndColumn: endColumn, EndRow: endRow}, nil
}

// ParseCellRange parses a reference like $A$1:$D$10. A single cell
// reference yields a one-cell range.
func ParseCellRange(ref string) (CellRange, error) {
	ref = strings.ReplaceAll(ref, "$", "")
	if i := strings.LastIndex(ref, "!"); i >= 0 {
		ref = ref[i+1:]
	}
	parts := strings.Split(ref, ":")
	if len(parts) > 2 {
		return CellRange{}, spouterr.Valuef("invalid cell range %q", ref)
	}

	startCol, startRow, err := excelize.CellNameToCoordinates(parts[0])
	if err != nil {
		return CellRange{}, spouterr.New(spouterr.ErrValue, "parse cell range", ref, err)
	}
	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		endCol, endRow, err = excelize.CellNameToCoordinates(parts[1])
		if err != nil {
			return CellRange{}, spouterr.New(spouterr.ErrValue, "parse cell range", ref, err)
		}
	}
	return NewCellRange(startCol-1, startRow, endCol-1, endRow)
}

// StartCell returns the reference of the top-left cell, e.g. "A1".
func (r CellRange) StartCell() string {
	name, _ := excelize.CoordinatesToCellName(r.StartColumn+1, r.StartRow)
	return name
}

// EndCell returns the reference of the bottom-right cell.
func (r CellRange) EndCell() string {
	name, _ := excelize.CoordinatesToCellName(r.EndColumn+1, r.EndRow)
	return name
}

// String returns the A1:B2 form of the range.
func (r CellRange) String() string {
	return r.StartCell() + ":" + r.EndCell()
}

// Contains reports whether the cell at the given 0-based column and 1-based
// row lies in the range.
func (r CellRange) Contains(column, row int) bool {
	return column >= r.StartColumn && column <= r.EndColumn && row >= r.StartRow && row <= r.EndRow
}
