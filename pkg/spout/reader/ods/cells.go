package ods

import (
	"math"
	"strconv"
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
)

// OpenDocument namespaces
const (
	nsOffice  = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsTable   = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsText    = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	nsStyle   = "urn:oasis:names:tc:opendocument:xmlns:style:1.0"
	nsConfig  = "urn:oasis:names:tc:opendocument:xmlns:config:1.0"
	nsCalcExt = "urn:org:documentfoundation:names:experimental:calc:xmlns:calcext:1.0"
)

// office:value-type values
const (
	valueTypeString     = "string"
	valueTypeFloat      = "float"
	valueTypePercentage = "percentage"
	valueTypeCurrency   = "currency"
	valueTypeBoolean    = "boolean"
	valueTypeDate       = "date"
	valueTypeTime       = "time"
	valueTypeVoid       = "void"
)

type cellDecoder struct {
	formatDates bool
}

// decode returns the cell of a table-cell element. Undecodable values
// become error cells.
func (d *cellDecoder) decode(el *xmlevent.Element) *models.Cell {
	value := d.decodeValue(el)
	if formula, ok := el.AttrNS(nsTable, "formula"); ok && formula != "" {
		var computed any
		if !value.IsEmpty() {
			computed = value.Value()
			if value.Kind() == models.KindError {
				computed = value.RawValue()
			}
		}
		return models.NewFormulaCell(normalizeFormula(formula), computed)
	}
	return value
}

// normalizeFormula drops the namespace prefix of an OpenFormula expression:
// "of:=SUM([.A1:.A2])" becomes "=SUM([.A1:.A2])".
func normalizeFormula(f string) string {
	if i := strings.Index(f, ":="); i >= 0 && !strings.ContainsAny(f[:i], "=([") {
		f = f[i+1:]
	}
	if !strings.HasPrefix(f, "=") {
		f = "=" + f
	}
	return f
}

func (d *cellDecoder) decodeValue(el *xmlevent.Element) *models.Cell {
	if v, _ := el.AttrNS(nsCalcExt, "value-type"); v == "error" {
		return models.NewErrorCell(paragraphText(el))
	}
	typ, _ := el.AttrNS(nsOffice, "value-type")
	switch typ {
	case valueTypeString:
		return d.decodeString(el)
	case valueTypeFloat, valueTypePercentage, valueTypeCurrency:
		raw, _ := el.AttrNS(nsOffice, "value")
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return models.NewErrorCell(raw)
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<63 {
			return models.NewIntCell(int64(f))
		}
		return models.NewFloatCell(f)
	case valueTypeBoolean:
		raw, _ := el.AttrNS(nsOffice, "boolean-value")
		switch strings.ToLower(raw) {
		case "true", "1":
			return models.NewBooleanCell(true)
		case "false", "0":
			return models.NewBooleanCell(false)
		}
		return models.NewErrorCell(raw)
	case valueTypeDate:
		raw, _ := el.AttrNS(nsOffice, "date-value")
		t, ok := exceldate.ParseISO(raw)
		if !ok {
			return models.NewErrorCell(raw)
		}
		if d.formatDates {
			return models.NewStringCell(paragraphText(el))
		}
		return models.NewDateCell(t)
	case valueTypeTime:
		raw, _ := el.AttrNS(nsOffice, "time-value")
		dur, ok := exceldate.ParseISODuration(raw)
		if !ok {
			return models.NewErrorCell(raw)
		}
		if d.formatDates {
			return models.NewStringCell(paragraphText(el))
		}
		return models.NewDurationCell(dur)
	}
	return models.NewEmptyCell()
}

func (d *cellDecoder) decodeString(el *xmlevent.Element) *models.Cell {
	s := paragraphText(el)
	if s == "" {
		if v, ok := el.AttrNS(nsOffice, "string-value"); ok {
			s = v
		}
	}
	if s == "" {
		return models.NewEmptyCell()
	}
	return models.NewStringCell(s)
}

// paragraphText joins the text:p children of a cell with line feeds.
func paragraphText(el *xmlevent.Element) string {
	var paragraphs []string
	for _, c := range el.Elements() {
		if c.Name.Space == nsText && c.Name.Local == "p" {
			var b strings.Builder
			writeText(&b, c)
			paragraphs = append(paragraphs, b.String())
		}
	}
	return strings.Join(paragraphs, "\n")
}

// writeText renders inline content: spaces, tabs, line breaks, spans and links.
func writeText(b *strings.Builder, el *xmlevent.Element) {
	for _, c := range el.Children {
		if c.IsText() {
			b.WriteString(c.Text)
			continue
		}
		if c.Name.Space != nsText {
			continue
		}
		switch c.Name.Local {
		case "s":
			n := 1
			if v, ok := c.AttrNS(nsText, "c"); ok {
				if count, err := strconv.Atoi(v); err == nil && count > 0 {
					n = count
				}
			}
			b.WriteString(strings.Repeat(" ", n))
		case "tab":
			b.WriteByte('\t')
		case "line-break":
			b.WriteByte('\n')
		case "note":
		default:
			writeText(b, c)
		}
	}
}
