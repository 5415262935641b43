package xlsx

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	xlsxreader "github.com/openspout/openspout-sub000/pkg/spout/reader/xlsx"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

func outputPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "out.xlsx")
}

func readBack(t *testing.T, path string) [][]any {
	t.Helper()
	r, err := xlsxreader.Open(path, xlsxreader.Options{})
	require.NoError(t, err)
	defer r.Close()

	var out [][]any
	sheets := r.Sheets()
	for sheets.Next() {
		rows, err := reader.ReadAll(sheets.Sheet().RowIterator())
		require.NoError(t, err)
		for _, row := range rows {
			out = append(out, row.Values())
		}
	}
	require.NoError(t, sheets.Err())
	return out
}

func TestExcelizeOpensOutput(t *testing.T) {
	path := outputPath(t)
	w, err := Create(path, Options{Options: writer.Options{TempDir: t.TempDir()}, Title: "Report"})
	require.NoError(t, err)

	data := w.CurrentSheet()
	require.NoError(t, data.SetName("Data"))
	require.NoError(t, data.SetColumnWidth(20, 2))
	require.NoError(t, data.SetSheetView(writer.SheetView{FreezeRows: 1}))

	bold := models.NewStyle().SetFontBold().SetFontSize(14)
	require.NoError(t, w.AddRow(models.MustRow("name", "qty", "price", "double").WithStyle(bold)))
	require.NoError(t, w.AddRow(models.MustRow("apple", 42, 1.5, "=B2*2")))
	require.NoError(t, w.AddRow(models.MustRow("pear", 7, 0.25, true)))
	require.NoError(t, w.AddRow(models.MustRow("a & <b>", nil, -3, "wrap\nme")))

	merge, err := models.ParseCellRange("A5:B5")
	require.NoError(t, err)
	data.MergeCells(merge)
	filter, err := models.ParseCellRange("A1:D4")
	require.NoError(t, err)
	data.SetAutoFilter(&filter)

	hidden, err := w.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	require.NoError(t, hidden.SetName("Bob's"))
	hidden.SetVisible(false)
	require.NoError(t, w.AddRow(models.MustRow("secret")))
	require.NoError(t, w.SetCurrentSheet(data))
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Data", "Bob's"}, f.GetSheetList())
	assert.Equal(t, 0, f.GetActiveSheetIndex())
	visible, err := f.GetSheetVisible("Bob's")
	require.NoError(t, err)
	assert.False(t, visible)

	rows, err := f.GetRows("Data", excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"name", "qty", "price", "double"},
		{"apple", "42", "1.5", ""},
		{"pear", "7", "0.25", "1"},
		{"a & <b>", "", "-3", "wrap\nme"},
	}, rows)

	formula, err := f.GetCellFormula("Data", "D2")
	require.NoError(t, err)
	assert.Equal(t, "B2*2", formula)

	width, err := f.GetColWidth("Data", "B")
	require.NoError(t, err)
	assert.Equal(t, 20.0, width)

	merges, err := f.GetMergeCells("Data")
	require.NoError(t, err)
	require.Len(t, merges, 1)
	assert.Equal(t, "A5", merges[0].GetStartAxis())
	assert.Equal(t, "B5", merges[0].GetEndAxis())

	panes, err := f.GetPanes("Data")
	require.NoError(t, err)
	assert.True(t, panes.Freeze)
	assert.Equal(t, 1, panes.YSplit)
	assert.Equal(t, "A2", panes.TopLeftCell)

	var filterName *excelize.DefinedName
	for _, dn := range f.GetDefinedName() {
		dn := dn
		if dn.Name == "_xlnm._FilterDatabase" {
			filterName = &dn
		}
	}
	require.NotNil(t, filterName)
	assert.Equal(t, "'Data'!$A$1:$D$4", filterName.RefersTo)
	assert.Equal(t, "Data", filterName.Scope)

	styleID, err := f.GetCellStyle("Data", "A1")
	require.NoError(t, err)
	style, err := f.GetStyle(styleID)
	require.NoError(t, err)
	require.NotNil(t, style.Font)
	assert.True(t, style.Font.Bold)
	assert.Equal(t, 14.0, style.Font.Size)

	wrapID, err := f.GetCellStyle("Data", "D4")
	require.NoError(t, err)
	wrap, err := f.GetStyle(wrapID)
	require.NoError(t, err)
	require.NotNil(t, wrap.Alignment)
	assert.True(t, wrap.Alignment.WrapText)
}

func TestRoundTrip(t *testing.T) {
	when := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
	rows := []*models.Row{
		models.MustRow("text", 1, 2.5, true, when),
		models.MustRow(nil, "x", "_x0041_ literal", "tab\there"),
		models.MustRow(strings.Repeat("long", 1000)),
	}
	want := [][]any{
		{"text", int64(1), 2.5, true, when},
		{nil, "x", "_x0041_ literal", "tab\there"},
		{strings.Repeat("long", 1000)},
	}
	for _, inline := range []bool{true, false} {
		name := "shared strings"
		if inline {
			name = "inline strings"
		}
		t.Run(name, func(t *testing.T) {
			path := outputPath(t)
			w, err := Create(path, Options{UseInlineStrings: &inline})
			require.NoError(t, err)
			require.NoError(t, w.AddRows(rows...))
			require.NoError(t, w.Close())
			assert.Equal(t, want, readBack(t, path))
		})
	}
}

func TestEmptyRowsAreNotWritten(t *testing.T) {
	path := outputPath(t)
	w, err := Create(path, Options{})
	require.NoError(t, err)
	require.NoError(t, w.AddRows(models.MustRow("a", "b"), models.NewRow(), models.MustRow("c", "d")))
	assert.Equal(t, 3, w.Worksheets()[0].LastWrittenRowIndex())
	require.NoError(t, w.Close())

	assert.Equal(t, [][]any{{"a", "b"}, {"c", "d"}}, readBack(t, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	v, err := f.GetCellValue("Sheet1", "C3")
	require.NoError(t, err)
	assert.Equal(t, "", v)
	v, err = f.GetCellValue("Sheet1", "A3")
	require.NoError(t, err)
	assert.Equal(t, "c", v)
}

func TestSheetRotation(t *testing.T) {
	path := outputPath(t)
	w, err := Create(path, Options{Options: writer.Options{MaxRowsPerSheet: 2}})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.AddRow(models.MustRow(i+1)))
	}
	require.NoError(t, w.Close())

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{"Sheet1", "Sheet2", "Sheet3"}, f.GetSheetList())
	rows, err := f.GetRows("Sheet3")
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"5"}}, rows)
}

func TestCellTooLong(t *testing.T) {
	path := outputPath(t)
	tmp := t.TempDir()
	w, err := Create(path, Options{Options: writer.Options{TempDir: tmp}})
	require.NoError(t, err)
	require.NoError(t, w.AddRow(models.MustRow("ok")))

	err = w.AddRow(models.MustRow(strings.Repeat("x", MaxCellLength+1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, spouterr.ErrValue))
	assert.NoFileExists(t, path)
	entries, err := filepath.Glob(filepath.Join(tmp, "*"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestStyleSheet(t *testing.T) {
	reg, err := newStyleRegistry(nil)
	require.NoError(t, err)

	border := models.NewBorder(models.BorderPart{
		Name: models.BorderBottom, Color: models.ColorBlue, Width: models.BorderWidthMedium, Style: models.BorderStyleDashed,
	})
	red := models.NewStyle().SetBackgroundColor(models.ColorRed)
	for _, s := range []*models.Style{
		red,
		models.NewStyle().SetBackgroundColor(models.ColorRed).SetFontBold(),
		models.NewStyle().SetBorder(border),
		models.NewStyle().SetFormat("0.00"),
		models.NewStyle().SetFormat("#,##0.000"),
	} {
		_, err := reg.Register(s)
		require.NoError(t, err)
	}

	assert.Equal(t, []styleRef{
		{},
		{fillID: 2},
		{fillID: 2},
		{borderID: 1},
		{numFmtID: 2},
		{numFmtID: 164},
	}, reg.refs)
	assert.True(t, reg.hasFillOrBorder(1))
	assert.False(t, reg.hasFillOrBorder(4))

	xml := reg.styleSheetXML()
	assert.Contains(t, xml, `<numFmts count="1"><numFmt numFmtId="164" formatCode="#,##0.000"/></numFmts>`)
	assert.Contains(t, xml, `<fills count="3">`)
	assert.Contains(t, xml, `<fgColor rgb="FFFF0000"/>`)
	assert.Contains(t, xml, `<bottom style="mediumDashed"><color rgb="FF0070C0"/></bottom>`)
	assert.Contains(t, xml, `<cellXfs count="6">`)
}

func TestDateCellsGetAFormat(t *testing.T) {
	reg, err := newStyleRegistry(nil)
	require.NoError(t, err)
	rowStyle := reg.RowStyle(models.NewRow())

	date, err := reg.register(rowStyle, models.NewDateCell(time.Now()))
	require.NoError(t, err)
	assert.Equal(t, DefaultDateFormat, date.Style().Format())

	custom, err := reg.register(rowStyle, models.NewDateCell(time.Now()).WithStyle(models.NewStyle().SetFormat("d-mmm-yy")))
	require.NoError(t, err)
	assert.Equal(t, 15, reg.refs[custom.ID()].numFmtID)

	plain, err := reg.register(rowStyle, models.NewIntCell(1))
	require.NoError(t, err)
	assert.Equal(t, 0, plain.ID())
}

func TestColsXML(t *testing.T) {
	got := colsXML([]writer.ColumnWidth{
		{Start: 1, End: 3, Width: 10},
		{Start: 2, End: 2, Width: 30},
		{Start: 5, End: 6, Width: 10},
	})
	assert.Equal(t, `<cols>`+
		`<col min="1" max="1" width="10" customWidth="1"/>`+
		`<col min="2" max="2" width="30" customWidth="1"/>`+
		`<col min="3" max="3" width="10" customWidth="1"/>`+
		`<col min="5" max="6" width="10" customWidth="1"/>`+
		`</cols>`, got)
}
