package spout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
)

func readValues(t *testing.T, path string, opts ReaderOptions) [][]any {
	t.Helper()
	r, err := OpenReader(path, opts)
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

type sheetInfo struct {
	Name            string
	Active, Visible bool
}

func readSheets(t *testing.T, path string) []sheetInfo {
	t.Helper()
	r, err := OpenReader(path, DefaultReaderOptions())
	require.NoError(t, err)
	defer r.Close()

	var out []sheetInfo
	sheets := r.Sheets()
	for sheets.Next() {
		s := sheets.Sheet()
		out = append(out, sheetInfo{s.Name(), s.IsActive(), s.IsVisible()})
	}
	require.NoError(t, sheets.Err())
	return out
}

func TestTypeFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Type
		ok   bool
	}{
		{"a.csv", TypeCSV, true},
		{"dir/B.XLSX", TypeXLSX, true},
		{"c.ods", TypeODS, true},
		{"d.xls", "", false},
		{"noext", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := TypeFromPath(tt.path)
			if !tt.ok {
				assert.ErrorIs(t, err, ErrUnsupportedType)
				assert.ErrorIs(t, err, ErrValue)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnsupportedType(t *testing.T) {
	dir := t.TempDir()
	_, err := OpenReader(filepath.Join(dir, "in.txt"), DefaultReaderOptions())
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = CreateWriter(filepath.Join(dir, "out.pdf"), DefaultWriterOptions())
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = CreateWriter(filepath.Join(dir, "out.bin"), WriterOptions{Type: "xls"})
	assert.ErrorIs(t, err, ErrUnsupportedType)
}

func TestExplicitTypeOverridesExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.bin")
	w, err := CreateWriter(path, WriterOptions{Type: TypeODS})
	require.NoError(t, err)
	require.NoError(t, w.AddRow(models.MustRow("x")))
	require.NoError(t, w.Close())

	assert.Equal(t, [][]any{{"x"}}, readValues(t, path, ReaderOptions{Type: TypeODS}))
}

func TestRoundTripAllFormats(t *testing.T) {
	shared := false
	tests := []struct {
		name string
		file string
		opts WriterOptions
	}{
		{"csv", "out.csv", WriterOptions{}},
		{"xlsx inline strings", "out.xlsx", WriterOptions{}},
		{"xlsx shared strings", "out.xlsx", WriterOptions{UseInlineStrings: &shared}},
		{"ods", "out.ods", WriterOptions{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			w, err := CreateWriter(path, tt.opts)
			require.NoError(t, err)
			require.NoError(t, w.AddRows(models.MustRow("a", "b"), models.NewRow(), models.MustRow("c", "d")))
			require.NoError(t, w.Close())

			assert.Equal(t, [][]any{{"a", "b"}, {"c", "d"}}, readValues(t, path, DefaultReaderOptions()))
		})
	}
}

func TestPreserveEmptyRows(t *testing.T) {
	preserve := true
	for _, file := range []string{"out.csv", "out.xlsx"} {
		t.Run(file, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), file)
			w, err := CreateWriter(path, DefaultWriterOptions())
			require.NoError(t, err)
			require.NoError(t, w.AddRows(models.MustRow("a", "b"), models.NewRow(), models.MustRow("c", "d")))
			require.NoError(t, w.Close())

			got := readValues(t, path, ReaderOptions{PreserveEmptyRows: &preserve})
			require.Len(t, got, 3)
			assert.Equal(t, []any{"a", "b"}, got[0])
			assert.Empty(t, got[1])
			assert.Equal(t, []any{"c", "d"}, got[2])
		})
	}
}

func writeWorkbook(t *testing.T, path string) {
	t.Helper()
	w, err := CreateWriter(path, DefaultWriterOptions())
	require.NoError(t, err)
	sw, ok := w.(SheetWriter)
	require.True(t, ok)

	require.NoError(t, sw.CurrentSheet().SetName("First"))
	require.NoError(t, w.AddRows(models.MustRow("name", "qty"), models.MustRow("apple", 3)))

	second, err := sw.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	require.NoError(t, second.SetName("Second"))
	require.NoError(t, w.AddRow(models.MustRow("x", true)))

	hidden, err := sw.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	require.NoError(t, hidden.SetName("Hidden"))
	hidden.SetVisible(false)
	require.NoError(t, w.AddRow(models.MustRow(1.5)))

	require.NoError(t, sw.SetCurrentSheet(second))
	require.NoError(t, w.Close())
}

func TestConvertKeepsSheets(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.xlsx")
	writeWorkbook(t, src)

	for _, dst := range []string{"out.ods", "out.xlsx"} {
		t.Run(dst, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), dst)
			require.NoError(t, Convert(src, path, DefaultReaderOptions(), DefaultWriterOptions()))

			assert.Equal(t, []sheetInfo{
				{"First", false, true},
				{"Second", true, true},
				{"Hidden", false, false},
			}, readSheets(t, path))
			assert.Equal(t, [][]any{
				{"name", "qty"},
				{"apple", int64(3)},
				{"x", true},
				{1.5},
			}, readValues(t, path, DefaultReaderOptions()))
		})
	}
}

func TestConvertToCSVTakesActiveSheet(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.ods")
	writeWorkbook(t, src)

	dst := filepath.Join(dir, "out.csv")
	require.NoError(t, Convert(src, dst, DefaultReaderOptions(), DefaultWriterOptions()))
	assert.Equal(t, [][]any{{"x", "TRUE"}}, readValues(t, dst, DefaultReaderOptions()))
}

func TestConvertMissingSource(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "out.xlsx")
	err := Convert(filepath.Join(dir, "missing.csv"), dst, DefaultReaderOptions(), DefaultWriterOptions())
	assert.ErrorIs(t, err, ErrIO)
	_, statErr := os.Stat(dst)
	assert.True(t, os.IsNotExist(statErr))
}

func TestOptionDefaults(t *testing.T) {
	r := DefaultReaderOptions()
	assert.False(t, r.ShouldFormatDates())
	assert.False(t, r.ShouldPreserveEmptyRows())

	w := DefaultWriterOptions()
	assert.True(t, w.ShouldCreateNewSheetsAutomatically())
	assert.True(t, w.ShouldUseInlineStrings())
	assert.True(t, w.ShouldAddBOM())

	off := false
	w.AddBOM = &off
	assert.False(t, w.ShouldAddBOM())
}
