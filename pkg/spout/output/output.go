// Package output renders rows and sheet listings as JSON lines.
package output

import (
	"io"
	"time"

	"github.com/goccy/go-json"

	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
)

// RowRecord is the JSON form of a row.
type RowRecord struct {
	Sheet string `json:"sheet"`
	// Row is 1-based.
	Row   int   `json:"row"`
	Cells []any `json:"cells"`
}

// SheetRecord is the JSON form of a sheet listing entry.
type SheetRecord struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	Active  bool   `json:"active"`
	Visible bool   `json:"visible"`
}

// Encoder writes one JSON document per record.
type Encoder struct {
	enc *json.Encoder
}

// NewEncoder creates an encoder writing to w. pretty indents every document.
func NewEncoder(w io.Writer, pretty bool) *Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Encoder{enc: enc}
}

func (e *Encoder) Encode(v any) error {
	return e.enc.Encode(v)
}

// WriteRow encodes row as a RowRecord.
func (e *Encoder) WriteRow(sheet string, index int, row *models.Row) error {
	return e.Encode(NewRowRecord(sheet, index, row))
}

func NewRowRecord(sheet string, index int, row *models.Row) RowRecord {
	cells := make([]any, row.NumCells())
	for i, c := range row.Cells() {
		cells[i] = CellValue(c)
	}
	return RowRecord{Sheet: sheet, Row: index, Cells: cells}
}

// CellValue returns a JSON-friendly value: dates as RFC 3339, durations as
// ISO 8601, formulas as their text and error cells as their raw text.
func CellValue(c *models.Cell) any {
	if c == nil {
		return nil
	}
	switch c.Kind() {
	case models.KindEmpty:
		return nil
	case models.KindDate:
		return c.Value().(time.Time).Format(time.RFC3339Nano)
	case models.KindDuration:
		return exceldate.FormatISODuration(c.Value().(time.Duration))
	case models.KindFormula:
		return c.Formula()
	case models.KindError:
		return c.RawValue()
	}
	return c.Value()
}
