package xlsx

import (
	"math"
	"strconv"
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xlsx/sharedstrings"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
)

// cell types of the t attribute
const (
	cellTypeInlineString = "inlineStr"
	cellTypeString       = "str"
	cellTypeSharedString = "s"
	cellTypeBoolean      = "b"
	cellTypeNumeric      = "n"
	cellTypeDate         = "d"
	cellTypeError        = "e"
)

// cellDecoder turns c elements into cells.
type cellDecoder struct {
	strings     stringTable
	styles      *styleTable
	use1904     bool
	formatDates bool
}

type stringTable interface {
	StringAt(i int) (string, error)
}

// decode returns the cell of a c element. Values that cannot be decoded
// become error cells; only a failed shared string lookup is an error.
func (d *cellDecoder) decode(c *xmlevent.Element) (*models.Cell, error) {
	typ, _ := c.AttrValue("t")
	if typ == "" {
		typ = cellTypeNumeric
	}
	styleID := 0
	if s, ok := c.AttrValue("s"); ok {
		styleID, _ = strconv.Atoi(s)
	}

	var raw string
	if v := c.Child("v"); v != nil {
		raw = v.TextContent()
	}

	value, err := d.decodeValue(c, typ, raw, styleID)
	if err != nil {
		return nil, err
	}

	if f := c.Child("f"); f != nil {
		if formula := f.TextContent(); formula != "" {
			var computed any
			if !value.IsEmpty() {
				computed = value.Value()
				if value.Kind() == models.KindError {
					computed = value.RawValue()
				}
			}
			return models.NewFormulaCell("="+formula, computed), nil
		}
	}
	return value, nil
}

func (d *cellDecoder) decodeValue(c *xmlevent.Element, typ, raw string, styleID int) (*models.Cell, error) {
	switch typ {
	case cellTypeInlineString:
		is := c.Child("is")
		if is == nil {
			return models.NewEmptyCell(), nil
		}
		return stringCell(sharedstrings.Text(is)), nil
	case cellTypeSharedString:
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil {
			return models.NewErrorCell(raw), nil
		}
		s, err := d.strings.StringAt(idx)
		if err != nil {
			return nil, err
		}
		return stringCell(s), nil
	case cellTypeString:
		return stringCell(escape.XLSXUnescape(strings.TrimSpace(raw))), nil
	case cellTypeBoolean:
		return models.NewBooleanCell(raw != "" && raw != "0"), nil
	case cellTypeError:
		return models.NewErrorCell(raw), nil
	case cellTypeDate:
		return d.decodeISODate(raw), nil
	default:
		return d.decodeNumeric(raw, styleID), nil
	}
}

func stringCell(s string) *models.Cell {
	if s == "" {
		return models.NewEmptyCell()
	}
	return models.NewStringCell(s)
}

func (d *cellDecoder) decodeNumeric(raw string, styleID int) *models.Cell {
	if raw == "" {
		return models.NewEmptyCell()
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return models.NewErrorCell(raw)
	}
	if code, ok := d.styles.dateFormat(styleID); ok {
		t, ok := exceldate.ToTime(f, d.use1904)
		if !ok {
			return models.NewErrorCell(raw)
		}
		if d.formatDates {
			return models.NewStringCell(exceldate.Format(t, code))
		}
		return models.NewDateCell(t)
	}
	return numericCell(f)
}

// numericCell returns an int64 cell for integral values.
func numericCell(f float64) *models.Cell {
	if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return models.NewIntCell(int64(f))
	}
	return models.NewFloatCell(f)
}

func (d *cellDecoder) decodeISODate(raw string) *models.Cell {
	t, ok := exceldate.ParseISO(raw)
	if !ok {
		return models.NewErrorCell(raw)
	}
	if d.formatDates {
		return models.NewStringCell(t.Format("2006-01-02 15:04:05"))
	}
	return models.NewDateCell(t)
}
