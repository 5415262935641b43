package xlsx

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

const defaultRowHeight = 15

func (f *format) WriteHeader(ws *writer.Worksheet) error {
	sheet := ws.Sheet()
	opts := f.wb.Options()

	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<worksheet xmlns="` + nsMain + `" xmlns:r="` + nsRelationships + `">`)
	if v := sheet.SheetView(); v != nil {
		sb.WriteString(sheetViewXML(v))
	}
	if opts.DefaultColumnWidth > 0 || opts.DefaultRowHeight > 0 {
		height := opts.DefaultRowHeight
		sb.WriteString("<sheetFormatPr")
		if opts.DefaultColumnWidth > 0 {
			fmt.Fprintf(&sb, ` defaultColWidth="%s"`, writer.FormatNumber(opts.DefaultColumnWidth))
		}
		if height > 0 {
			fmt.Fprintf(&sb, ` defaultRowHeight="%s" customHeight="1"/>`, writer.FormatNumber(height))
		} else {
			fmt.Fprintf(&sb, ` defaultRowHeight="%d"/>`, defaultRowHeight)
		}
	}
	sb.WriteString(colsXML(sheet.ColumnWidths()))
	sb.WriteString("<sheetData>")
	return ws.WriteString(sb.String())
}

func sheetViewXML(v *writer.SheetView) string {
	var sb strings.Builder
	sb.WriteString(`<sheetViews><sheetView workbookViewId="0"`)
	if v.HideGridLines {
		sb.WriteString(` showGridLines="0"`)
	}
	if v.HideHeaders {
		sb.WriteString(` showRowColHeaders="0"`)
	}
	if v.RightToLeft {
		sb.WriteString(` rightToLeft="1"`)
	}
	if v.ZoomScale > 0 {
		fmt.Fprintf(&sb, ` zoomScale="%d"`, v.ZoomScale)
	}
	if !v.HasFrozenPanes() {
		sb.WriteString("/></sheetViews>")
		return sb.String()
	}
	sb.WriteString("><pane")
	if v.FreezeColumns > 0 {
		fmt.Fprintf(&sb, ` xSplit="%d"`, v.FreezeColumns)
	}
	if v.FreezeRows > 0 {
		fmt.Fprintf(&sb, ` ySplit="%d"`, v.FreezeRows)
	}
	pane := "bottomRight"
	switch {
	case v.FreezeColumns == 0:
		pane = "bottomLeft"
	case v.FreezeRows == 0:
		pane = "topRight"
	}
	fmt.Fprintf(&sb, ` topLeftCell="%s" activePane="%s" state="frozen"/>`, v.TopLeftCell(), pane)
	fmt.Fprintf(&sb, `<selection pane="%s" activeCell="%s" sqref="%s"/>`, pane, v.TopLeftCell(), v.TopLeftCell())
	sb.WriteString("</sheetView></sheetViews>")
	return sb.String()
}

// colsXML renders column widths as sorted, non-overlapping runs. A later
// width wins over an earlier one for the same column.
func colsXML(widths []writer.ColumnWidth) string {
	if len(widths) == 0 {
		return ""
	}
	byColumn := make(map[int]float64)
	for _, w := range widths {
		for c := w.Start; c <= w.End; c++ {
			byColumn[c] = w.Width
		}
	}
	columns := make([]int, 0, len(byColumn))
	for c := range byColumn {
		columns = append(columns, c)
	}
	sort.Ints(columns)

	var sb strings.Builder
	sb.WriteString("<cols>")
	for i := 0; i < len(columns); {
		start, width := columns[i], byColumn[columns[i]]
		j := i + 1
		for j < len(columns) && columns[j] == columns[j-1]+1 && byColumn[columns[j]] == width {
			j++
		}
		fmt.Fprintf(&sb, `<col min="%d" max="%d" width="%s" customWidth="1"/>`, start, columns[j-1], writer.FormatNumber(width))
		i = j
	}
	sb.WriteString("</cols>")
	return sb.String()
}

// WriteRow writes the non-empty cells of row. A row without any written
// cell is left out.
func (f *format) WriteRow(ws *writer.Worksheet, row *models.Row) error {
	rowIndex := ws.LastWrittenRowIndex() + 1
	rowStyle := f.styles.RowStyle(row)

	var cells strings.Builder
	for i, c := range row.Cells() {
		if c == nil {
			continue
		}
		if err := f.writeCell(&cells, rowIndex, i, rowStyle, c); err != nil {
			return err
		}
	}
	if cells.Len() == 0 && row.Height() == 0 {
		return nil
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, `<row r="%d" spans="1:%d"`, rowIndex, max(row.NumCells(), 1))
	if row.Height() > 0 {
		fmt.Fprintf(&sb, ` customHeight="1" ht="%s"`, writer.FormatNumber(row.Height()))
	}
	sb.WriteString(">")
	sb.WriteString(cells.String())
	sb.WriteString("</row>")
	return ws.WriteString(sb.String())
}

func (f *format) writeCell(sb *strings.Builder, rowIndex, column int, rowStyle *models.Style, c *models.Cell) error {
	style, err := f.styles.register(rowStyle, c)
	if err != nil {
		return err
	}
	ref, err := excelize.CoordinatesToCellName(column+1, rowIndex)
	if err != nil {
		return spouterr.New(spouterr.ErrValue, "add row", "", err)
	}

	open := `<c r="` + ref + `"`
	if style.ID() != 0 {
		open += ` s="` + strconv.Itoa(style.ID()) + `"`
	}

	switch c.Kind() {
	case models.KindEmpty:
		if f.styles.hasFillOrBorder(style.ID()) {
			sb.WriteString(open + "/>")
		}
	case models.KindString:
		text := c.Value().(string)
		if utf8.RuneCountInString(text) > MaxCellLength {
			return spouterr.Valuef("cell %s: text longer than %d characters", ref, MaxCellLength)
		}
		if f.sharedStrings == nil {
			fmt.Fprintf(sb, `%s t="inlineStr"><is><t xml:space="preserve">%s</t></is></c>`, open, escape.XLSX(text))
			return nil
		}
		idx, err := f.sharedStrings.add(text)
		if err != nil {
			return err
		}
		fmt.Fprintf(sb, `%s t="s"><v>%d</v></c>`, open, idx)
	case models.KindNumeric:
		fmt.Fprintf(sb, "%s><v>%s</v></c>", open, writer.FormatNumber(c.Value()))
	case models.KindBoolean:
		v := "0"
		if c.Value().(bool) {
			v = "1"
		}
		fmt.Fprintf(sb, `%s t="b"><v>%s</v></c>`, open, v)
	case models.KindDate:
		serial := exceldate.ToSerial(c.Value().(time.Time), false)
		fmt.Fprintf(sb, "%s><v>%s</v></c>", open, writer.FormatNumber(serial))
	case models.KindDuration:
		serial := exceldate.DurationToSerial(c.Value().(time.Duration))
		fmt.Fprintf(sb, "%s><v>%s</v></c>", open, writer.FormatNumber(serial))
	case models.KindFormula:
		formula := strings.TrimPrefix(c.Formula(), "=")
		fmt.Fprintf(sb, "%s><f>%s</f></c>", open, escape.XLSX(formula))
	case models.KindError:
		fmt.Fprintf(sb, `%s t="e"><v>%s</v></c>`, open, escape.XLSX(c.RawValue()))
	default:
		return spouterr.ErrUnsupportedType
	}
	return nil
}

func (f *format) WriteFooter(ws *writer.Worksheet) error {
	sheet := ws.Sheet()
	var sb strings.Builder
	sb.WriteString("</sheetData>")
	if r := sheet.AutoFilter(); r != nil {
		fmt.Fprintf(&sb, `<autoFilter ref="%s"/>`, r.String())
	}
	if merges := sheet.MergedRanges(); len(merges) > 0 {
		fmt.Fprintf(&sb, `<mergeCells count="%d">`, len(merges))
		for _, m := range merges {
			fmt.Fprintf(&sb, `<mergeCell ref="%s"/>`, m.String())
		}
		sb.WriteString("</mergeCells>")
	}
	sb.WriteString("</worksheet>")
	return ws.WriteString(sb.String())
}
