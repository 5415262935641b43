package ods

import (
	"fmt"
	"strings"
	"time"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

const (
	dateValueLayout   = "2006-01-02T15:04:05.999999999"
	dateDisplayLayout = "2006-01-02 15:04:05"
)

// WriteHeader writes nothing: the table element and its columns depend on
// the widest row and are produced when the document is assembled.
func (f *format) WriteHeader(ws *writer.Worksheet) error { return nil }

func (f *format) WriteFooter(ws *writer.Worksheet) error { return nil }

// odsCell is a rendered table cell without its repeat count.
type odsCell struct {
	attrs   string
	content string
	covered bool
	// spanned cells are never folded into a repeated run
	spanned bool
}

func (c odsCell) render(repeat int) string {
	tag := "table:table-cell"
	if c.covered {
		tag = "table:covered-table-cell"
	}
	attrs := c.attrs
	if repeat > 1 {
		attrs += fmt.Sprintf(` table:number-columns-repeated="%d"`, repeat)
	}
	if c.content == "" {
		return "<" + tag + attrs + "/>"
	}
	return "<" + tag + attrs + ">" + c.content + "</" + tag + ">"
}

// WriteRow writes every cell of row. Runs of identical adjacent cells are
// folded into one element with number-columns-repeated.
func (f *format) WriteRow(ws *writer.Worksheet, row *models.Row) error {
	rowIndex := ws.LastWrittenRowIndex() + 1
	rowStyle := f.styles.RowStyle(row)
	merges := ws.Sheet().MergedRanges()

	var sb strings.Builder
	fmt.Fprintf(&sb, `<table:table-row table:style-name="%s">`, f.styles.rowStyleName(row.Height()))
	if row.NumCells() == 0 {
		sb.WriteString("<table:table-cell/>")
	}

	var (
		run    odsCell
		repeat int
	)
	flush := func() {
		if repeat > 0 {
			sb.WriteString(run.render(repeat))
		}
	}
	for i, c := range row.Cells() {
		if c == nil {
			c = models.NewEmptyCell()
		}
		cell, err := f.renderCell(rowStyle, c)
		if err != nil {
			return err
		}
		applyMerges(&cell, merges, i, rowIndex)
		if repeat > 0 && cell == run && !cell.spanned {
			repeat++
			continue
		}
		flush()
		run, repeat = cell, 1
	}
	flush()
	sb.WriteString("</table:table-row>")
	return ws.WriteString(sb.String())
}

// applyMerges marks the anchor of a merged range with its spans and the
// other cells of the range as covered.
func applyMerges(cell *odsCell, merges []models.CellRange, column, rowIndex int) {
	for _, r := range merges {
		if !r.Contains(column, rowIndex) {
			continue
		}
		if column == r.StartColumn && rowIndex == r.StartRow {
			cell.attrs += fmt.Sprintf(` table:number-columns-spanned="%d" table:number-rows-spanned="%d"`,
				r.EndColumn-r.StartColumn+1, r.EndRow-r.StartRow+1)
			cell.spanned = true
		} else {
			cell.covered = true
		}
		return
	}
}

func (f *format) renderCell(rowStyle *models.Style, c *models.Cell) (odsCell, error) {
	style, err := f.styles.RegisterCell(rowStyle, c)
	if err != nil {
		return odsCell{}, err
	}
	var cell odsCell
	if style.ID() != 0 {
		cell.attrs = fmt.Sprintf(` table:style-name="%s"`, cellStyleName(style.ID()))
	}

	switch c.Kind() {
	case models.KindEmpty:
	case models.KindString:
		cell.attrs += ` office:value-type="string" calcext:value-type="string"`
		cell.content = paragraphs(c.Value().(string))
	case models.KindNumeric:
		v := writer.FormatNumber(c.Value())
		cell.attrs += fmt.Sprintf(` office:value-type="float" calcext:value-type="float" office:value="%s"`, v)
		cell.content = "<text:p>" + v + "</text:p>"
	case models.KindBoolean:
		v := c.Value().(bool)
		cell.attrs += fmt.Sprintf(` office:value-type="boolean" calcext:value-type="boolean" office:boolean-value="%t"`, v)
		cell.content = "<text:p>" + strings.ToUpper(fmt.Sprint(v)) + "</text:p>"
	case models.KindDate:
		t := c.Value().(time.Time)
		cell.attrs += fmt.Sprintf(` office:value-type="date" calcext:value-type="date" office:date-value="%s"`, t.Format(dateValueLayout))
		cell.content = "<text:p>" + t.Format(dateDisplayLayout) + "</text:p>"
	case models.KindDuration:
		d := c.Value().(time.Duration)
		cell.attrs += fmt.Sprintf(` office:value-type="time" calcext:value-type="time" office:time-value="%s"`, exceldate.FormatISODuration(d))
		cell.content = "<text:p>" + durationText(d) + "</text:p>"
	case models.KindFormula:
		cell.attrs += fmt.Sprintf(` table:formula="of:%s"`, escape.ODS(c.Formula()))
	case models.KindError:
		cell.attrs += ` office:value-type="string" calcext:value-type="error"`
		cell.content = "<text:p>" + escape.ODS(c.RawValue()) + "</text:p>"
	}
	return cell, nil
}

// paragraphs renders text as one text:p per line. Tabs and runs of spaces
// use their dedicated elements since XML consumers collapse whitespace.
func paragraphs(s string) string {
	var sb strings.Builder
	for _, line := range strings.Split(s, "\n") {
		sb.WriteString("<text:p>")
		writeLine(&sb, line)
		sb.WriteString("</text:p>")
	}
	return sb.String()
}

func writeLine(sb *strings.Builder, line string) {
	var text strings.Builder
	flushText := func() {
		sb.WriteString(escape.ODS(text.String()))
		text.Reset()
	}
	for i := 0; i < len(line); {
		switch line[i] {
		case '\t':
			flushText()
			sb.WriteString("<text:tab/>")
			i++
		case ' ':
			n := 1
			for i+n < len(line) && line[i+n] == ' ' {
				n++
			}
			// a single space between words is kept as text
			if n == 1 && i > 0 && i < len(line)-1 {
				text.WriteByte(' ')
			} else {
				flushText()
				if n == 1 {
					sb.WriteString("<text:s/>")
				} else {
					fmt.Fprintf(sb, `<text:s text:c="%d"/>`, n)
				}
			}
			i += n
		default:
			text.WriteByte(line[i])
			i++
		}
	}
	flushText()
}

func durationText(d time.Duration) string {
	sign := ""
	if d < 0 {
		sign, d = "-", -d
	}
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	return fmt.Sprintf("%s%02d:%02d:%02d", sign, h, m, s)
}
