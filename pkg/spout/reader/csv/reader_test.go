package csv

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

func writeFile(t *testing.T, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path
}

func readRows(t *testing.T, content []byte, opts Options) [][]any {
	t.Helper()
	r, err := Open(writeFile(t, content), opts)
	require.NoError(t, err)
	defer r.Close()

	it := r.Sheets()
	require.True(t, it.Next())
	rows, err := reader.ReadAll(it.Sheet().RowIterator())
	require.NoError(t, err)
	require.False(t, it.Next())

	out := make([][]any, len(rows))
	for i, row := range rows {
		out[i] = row.Values()
	}
	return out
}

func TestReadDefaults(t *testing.T) {
	content := "name,note,qty\n" +
		"\"Doe, John\",\"line1\nline2\",3\r\n" +
		"\n" +
		"x,,\"say \"\"hi\"\"\"\n"
	rows := readRows(t, []byte(content), Options{})
	assert.Equal(t, [][]any{
		{"name", "note", "qty"},
		{"Doe, John", "line1\nline2", "3"},
		{"x", nil, `say "hi"`},
	}, rows)
}

func TestCellKinds(t *testing.T) {
	r, err := Open(writeFile(t, []byte("a,,1\n")), Options{})
	require.NoError(t, err)
	defer r.Close()

	it := r.Sheets()
	require.True(t, it.Next())
	sheet := it.Sheet()
	assert.Equal(t, 0, sheet.Index())
	assert.True(t, sheet.IsActive())
	assert.True(t, sheet.IsVisible())

	rows := sheet.RowIterator()
	require.True(t, rows.Next())
	cells := rows.Row().Cells()
	require.Len(t, cells, 3)
	assert.Equal(t, models.KindString, cells[0].Kind())
	assert.Equal(t, models.KindEmpty, cells[1].Kind())
	assert.Equal(t, models.KindString, cells[2].Kind())
}

func TestPreserveEmptyRows(t *testing.T) {
	content := []byte("a,b\n\nc,d\n")
	opts := Options{Options: reader.Options{PreserveEmptyRows: true}}
	assert.Equal(t, [][]any{{"a", "b"}, {}, {"c", "d"}}, readRows(t, content, opts))
	assert.Equal(t, [][]any{{"a", "b"}, {"c", "d"}}, readRows(t, content, Options{}))
}

func TestCustomDelimiterAndEnclosure(t *testing.T) {
	content := []byte("'a;b';c\n'it''s';\n")
	opts := Options{FieldDelimiter: ';', FieldEnclosure: '\''}
	assert.Equal(t, [][]any{{"a;b", "c"}, {"it's", nil}}, readRows(t, content, opts))
}

func TestTabDelimiter(t *testing.T) {
	rows := readRows(t, []byte("a\tb\n1\t2\n"), Options{FieldDelimiter: '\t'})
	assert.Equal(t, [][]any{{"a", "b"}, {"1", "2"}}, rows)
}

func TestEncodings(t *testing.T) {
	utf16le, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("é,ü\n"))
	require.NoError(t, err)
	utf16be, err := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("é,ü\n"))
	require.NoError(t, err)
	utf32le, err := utf32.UTF32(utf32.LittleEndian, utf32.UseBOM).NewEncoder().Bytes([]byte("é,ü\n"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		content  []byte
		encoding string
	}{
		{"utf8", []byte("é,ü\n"), ""},
		{"utf8 bom", append([]byte{0xEF, 0xBB, 0xBF}, "é,ü\n"...), ""},
		{"utf16le bom", utf16le, ""},
		{"utf16be bom overrides label", utf16be, "ISO-8859-1"},
		{"utf32le bom", utf32le, ""},
		{"latin1", []byte{0xE9, ',', 0xFC, '\n'}, "ISO-8859-1"},
		{"auto utf8", []byte("é,ü\n"), EncodingAuto},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rows := readRows(t, tc.content, Options{Encoding: tc.encoding})
			assert.Equal(t, [][]any{{"é", "ü"}}, rows)
		})
	}
}

func TestUnknownEncoding(t *testing.T) {
	_, err := Open(writeFile(t, []byte("a\n")), Options{Encoding: "no-such-charset"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, spouterr.ErrValue))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "missing.csv"), Options{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, spouterr.ErrIO))
}

func TestRewind(t *testing.T) {
	r, err := Open(writeFile(t, []byte("a\nb\n")), Options{})
	require.NoError(t, err)
	defer r.Close()

	it := r.Sheets()
	require.True(t, it.Next())
	rows := it.Sheet().RowIterator()
	for i := 0; i < 3; i++ {
		require.NoError(t, rows.Rewind())
		got, err := reader.ReadAll(rows)
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "b", got[1].Cell(0).Value())
	}
}

func TestCloseMidIteration(t *testing.T) {
	r, err := Open(writeFile(t, []byte("a\nb\nc\n")), Options{})
	require.NoError(t, err)

	it := r.Sheets()
	require.True(t, it.Next())
	rows := it.Sheet().RowIterator()
	require.True(t, rows.Next())
	require.NoError(t, r.Close())
	require.NoError(t, r.Close())
	assert.False(t, rows.Next())
	assert.False(t, r.Sheets().Next())
}

func TestTokenizer(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  [][]string
	}{
		{"plain", "a,b\nc,d", [][]string{{"a", "b"}, {"c", "d"}}},
		{"blank lines", "a\n\n\r\nb\n", [][]string{{"a"}, {}, {}, {"b"}}},
		{"trailing delimiter", "a,\n,", [][]string{{"a", ""}, {"", ""}}},
		{"quoted empty", "\"\"\n", [][]string{{""}}},
		{"escaped enclosure", "\"a\"\"b\",c\n", [][]string{{"a\"b", "c"}}},
		{"enclosure inside field", "ab\"c,d\n", [][]string{{"ab\"c", "d"}}},
		{"crlf in quotes", "\"a\r\nb\"\r\n", [][]string{{"a\r\nb"}}},
		{"unterminated", "\"abc", [][]string{{"abc"}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tk := newTokenizer(strings.NewReader(tc.input), ',', '"')
			var got [][]string
			for {
				rec, err := tk.next()
				if err != nil {
					break
				}
				got = append(got, rec)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetectEncoding(t *testing.T) {
	name, err := DetectEncoding([]byte("plain ascii, and é"))
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, name)

	// a rune cut by the sample boundary is still UTF-8
	name, err = DetectEncoding([]byte("ab\xC3"))
	require.NoError(t, err)
	assert.Equal(t, EncodingUTF8, name)
}
