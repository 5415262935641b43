package writer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// lineFormat writes one text line per row and concatenates the sheets.
type lineFormat struct {
	maxRows   int
	failOn    string
	wb        *Workbook
	rows      map[int][]string
	headers   []State
	released  int
	assembled bool
}

func newLineFormat(maxRows int) *lineFormat {
	return &lineFormat{maxRows: maxRows, rows: make(map[int][]string)}
}

func (f *lineFormat) Start(wb *Workbook) error {
	f.wb = wb
	return nil
}

func (f *lineFormat) MaxRows() int { return f.maxRows }

func (f *lineFormat) WriteHeader(ws *Worksheet) error {
	f.headers = append(f.headers, ws.State())
	return ws.WriteString("# " + ws.Sheet().Name() + "\n")
}

func (f *lineFormat) WriteRow(ws *Worksheet, row *models.Row) error {
	line := strings.Join(row.Strings(), ",")
	if f.failOn != "" && line == f.failOn {
		return spouterr.Valuef("cannot write %q", line)
	}
	f.rows[ws.Sheet().Index()] = append(f.rows[ws.Sheet().Index()], line)
	return ws.WriteString(fmt.Sprintf("%d:%s\n", ws.LastWrittenRowIndex()+1, line))
}

func (f *lineFormat) WriteFooter(ws *Worksheet) error { return ws.WriteString("#\n") }

func (f *lineFormat) CloseResources() error {
	f.released++
	return nil
}

func (f *lineFormat) Assemble(wb *Workbook, out io.Writer) error {
	for _, ws := range wb.Worksheets() {
		b, err := os.ReadFile(ws.Path())
		if err != nil {
			return err
		}
		if _, err := out.Write(b); err != nil {
			return err
		}
	}
	f.assembled = true
	return nil
}

func create(t *testing.T, f Format, opts Options) (*Workbook, string) {
	t.Helper()
	dir := t.TempDir()
	opts.TempDir = dir
	path := filepath.Join(dir, "out.txt")
	wb, err := Create(path, f, opts)
	require.NoError(t, err)
	return wb, path
}

func numberedRows(n int) []*models.Row {
	rows := make([]*models.Row, n)
	for i := range rows {
		rows[i] = models.MustRow(fmt.Sprintf("r%d", i+1))
	}
	return rows
}

func TestRotation(t *testing.T) {
	tests := []struct {
		rows, limit int
	}{
		{1, 3}, {3, 3}, {4, 3}, {10, 3}, {7, 1},
	}
	for _, tc := range tests {
		t.Run(fmt.Sprintf("%d rows limit %d", tc.rows, tc.limit), func(t *testing.T) {
			f := newLineFormat(1048576)
			wb, _ := create(t, f, Options{MaxRowsPerSheet: tc.limit})
			require.NoError(t, wb.AddRows(numberedRows(tc.rows)...))

			wantSheets := (tc.rows + tc.limit - 1) / tc.limit
			require.Len(t, wb.Sheets(), wantSheets)
			for i := 1; i <= tc.rows; i++ {
				sheet := (i - 1) / tc.limit
				assert.Contains(t, f.rows[sheet], fmt.Sprintf("r%d", i))
			}
			assert.Equal(t, wantSheets-1, wb.CurrentSheet().Index())
			require.NoError(t, wb.Close())
		})
	}
}

func TestRowsPastLimitAreDropped(t *testing.T) {
	f := newLineFormat(1048576)
	off := false
	wb, path := create(t, f, Options{MaxRowsPerSheet: 3, CreateNewSheetsAutomatically: &off})
	require.NoError(t, wb.AddRows(numberedRows(5)...))
	require.NoError(t, wb.Close())

	require.Len(t, wb.Sheets(), 1)
	assert.Equal(t, []string{"r1", "r2", "r3"}, f.rows[0])
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Sheet1\n1:r1\n2:r2\n3:r3\n#\n", string(content))
}

func TestFormatLimitCapsOption(t *testing.T) {
	f := newLineFormat(2)
	wb, _ := create(t, f, Options{MaxRowsPerSheet: 100})
	require.NoError(t, wb.AddRows(numberedRows(5)...))
	assert.Len(t, wb.Sheets(), 3)
	require.NoError(t, wb.Close())
}

func TestLifecycle(t *testing.T) {
	f := newLineFormat(1048576)
	wb, path := create(t, f, Options{})
	workDir := wb.WorkDir().Root()

	ws := wb.Worksheets()[0]
	assert.Equal(t, NotStarted, ws.State())
	require.NoError(t, wb.AddRow(models.MustRow("a", "b")))
	assert.Equal(t, Writing, ws.State())
	assert.Equal(t, 1, ws.LastWrittenRowIndex())
	assert.Equal(t, 2, ws.MaxColumns())

	// an empty row still advances the cursor
	require.NoError(t, wb.AddRow(models.NewRow()))
	assert.Equal(t, 2, ws.LastWrittenRowIndex())

	second, err := wb.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	assert.Equal(t, "Sheet2", second.Name())

	require.NoError(t, wb.Close())
	require.NoError(t, wb.Close())
	assert.Equal(t, Closed, ws.State())
	assert.Equal(t, []State{NotStarted, NotStarted}, f.headers)
	assert.True(t, f.assembled)
	assert.NoDirExists(t, workDir)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Sheet1\n1:a,b\n2:\n#\n# Sheet2\n#\n", string(content))

	err = wb.AddRow(models.MustRow("late"))
	assert.True(t, errors.Is(err, spouterr.ErrWriterClosed))
	_, err = wb.AddNewSheetAndMakeItCurrent()
	assert.True(t, errors.Is(err, spouterr.ErrWriterClosed))
}

func TestFailedRowRemovesOutput(t *testing.T) {
	f := newLineFormat(1048576)
	f.failOn = "bad"
	wb, path := create(t, f, Options{})
	workDir := wb.WorkDir().Root()

	require.NoError(t, wb.AddRow(models.MustRow("good")))
	err := wb.AddRow(models.MustRow("bad"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, spouterr.ErrValue))

	assert.NoFileExists(t, path)
	assert.NoDirExists(t, workDir)
	assert.False(t, f.assembled)
	assert.Equal(t, 1, f.released)
	assert.NoError(t, wb.Close())
	assert.True(t, errors.Is(wb.AddRow(models.MustRow("x")), spouterr.ErrWriterClosed))
}

func TestSetCurrentSheet(t *testing.T) {
	f := newLineFormat(1048576)
	wb, _ := create(t, f, Options{})
	first := wb.CurrentSheet()
	_, err := wb.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)

	require.NoError(t, wb.SetCurrentSheet(first))
	require.NoError(t, wb.AddRow(models.MustRow("back")))
	assert.Equal(t, []string{"back"}, f.rows[0])

	other, _ := create(t, newLineFormat(10), Options{})
	err = wb.SetCurrentSheet(other.CurrentSheet())
	assert.True(t, errors.Is(err, spouterr.ErrSheetNotFound))
	assert.True(t, errors.Is(err, spouterr.ErrFormat))

	require.NoError(t, wb.Close())
	require.NoError(t, other.Close())
}

func TestSheetNames(t *testing.T) {
	wb, _ := create(t, newLineFormat(10), Options{})
	defer wb.Close()
	sheet := wb.CurrentSheet()

	for _, name := range []string{
		"",
		strings.Repeat("x", MaxSheetNameLength+1),
		"a/b", `a\b`, "a?", "a*", "a:b", "[a]",
		"'quoted", "quoted'",
	} {
		err := sheet.SetName(name)
		assert.True(t, errors.Is(err, spouterr.ErrValue), "name %q", name)
	}
	require.NoError(t, sheet.SetName(strings.Repeat("é", MaxSheetNameLength)))
	require.NoError(t, sheet.SetName("Data"))
	require.NoError(t, sheet.SetName("Data"))

	second, err := wb.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	assert.True(t, errors.Is(second.SetName("DATA"), spouterr.ErrValue))

	// the old name is released on rename
	require.NoError(t, sheet.SetName("Sheet2x"))
	require.NoError(t, second.SetName("Data"))

	third, err := wb.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	assert.Equal(t, "Sheet3", third.Name())
}

func TestSheetNamesArePerWorkbook(t *testing.T) {
	a, _ := create(t, newLineFormat(10), Options{})
	b, _ := create(t, newLineFormat(10), Options{})
	require.NoError(t, a.CurrentSheet().SetName("Same"))
	require.NoError(t, b.CurrentSheet().SetName("Same"))
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
}

func TestSettingsBeforeFirstRow(t *testing.T) {
	wb, _ := create(t, newLineFormat(10), Options{})
	defer wb.Close()
	sheet := wb.CurrentSheet()

	require.NoError(t, sheet.SetColumnWidth(20, 1, 3))
	require.NoError(t, sheet.SetColumnWidthForRange(12, 6, 4))
	assert.Equal(t, []ColumnWidth{{1, 1, 20}, {3, 3, 20}, {4, 6, 12}}, sheet.ColumnWidths())
	assert.True(t, errors.Is(sheet.SetColumnWidth(0, 1), spouterr.ErrValue))
	assert.True(t, errors.Is(sheet.SetColumnWidthForRange(10, 0, 2), spouterr.ErrValue))

	require.NoError(t, sheet.SetSheetView(SheetView{FreezeRows: 1, FreezeColumns: 2, ZoomScale: 150}))
	assert.Equal(t, "C2", sheet.SheetView().TopLeftCell())
	assert.True(t, errors.Is(sheet.SetSheetView(SheetView{ZoomScale: 1000}), spouterr.ErrValue))

	require.NoError(t, wb.AddRow(models.MustRow("a")))
	assert.True(t, errors.Is(sheet.SetColumnWidth(10, 2), spouterr.ErrValue))
	assert.True(t, errors.Is(sheet.SetSheetView(SheetView{}), spouterr.ErrValue))

	r, err := models.ParseCellRange("A1:B2")
	require.NoError(t, err)
	sheet.MergeCells(r)
	sheet.SetAutoFilter(&r)
	assert.Equal(t, []models.CellRange{r}, sheet.MergedRanges())
	assert.Equal(t, &r, sheet.AutoFilter())
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{int64(42), "42"},
		{int64(-7), "-7"},
		{3.25, "3.25"},
		{1234567.0, "1234567"},
		{0.0, "0"},
		{1e-9, "1E-09"},
		{2.5e22, "2.5E+22"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, FormatNumber(tc.in), "%v", tc.in)
	}
}
