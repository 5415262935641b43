package sharedstrings

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

const sstPath = "xl/sharedStrings.xml"

func writeArchive(t *testing.T, sst string) *archive.Reader {
	t.Helper()
	dir, err := archive.NewWorkDir(t.TempDir(), "parts-")
	require.NoError(t, err)
	require.NoError(t, dir.WriteFile(sstPath, sst))

	out := filepath.Join(t.TempDir(), "book.xlsx")
	f, err := os.Create(out)
	require.NoError(t, err)
	require.NoError(t, archive.Write(f, []archive.Entry{dir.Entry(sstPath)}, 0))
	require.NoError(t, f.Close())

	ar, err := archive.Open(out)
	require.NoError(t, err)
	t.Cleanup(func() { ar.Close() })
	return ar
}

func sstXML(count string, items ...string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"` + count + `>`)
	for _, it := range items {
		b.WriteString(it)
	}
	b.WriteString(`</sst>`)
	return b.String()
}

func TestChoose(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		budgetKB int64
		want     string
	}{
		{"small table, unbounded", 10, -1, "memory"},
		{"unknown size", -1, -1, "file"},
		{"chunk sized table", ChunkSize, -1, "file"},
		{"below chunk size", ChunkSize - 1, -1, "memory"},
		{"budget exceeded", 100, 1200, "file"},
		{"budget respected", 99, 1200, "memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Choose(tt.count, tt.budgetKB))
		})
	}
}

func TestExtractInMemory(t *testing.T) {
	ar := writeArchive(t, sstXML(` count="5" uniqueCount="4"`,
		`<si><t>plain</t></si>`,
		`<si><t xml:space="preserve">  spaced  </t></si>`,
		`<si><r><rPr><b/></rPr><t>rich </t></r><r><t xml:space="preserve">text</t></r><rPh sb="0" eb="1"><t>ignored</t></rPh></si>`,
		`<si><t>tab_x0009_here</t></si>`,
	))
	m := NewManager(ar, sstPath, Options{MemoryBudgetKB: -1})
	require.NoError(t, m.Extract())
	defer m.Cleanup()

	assert.IsType(t, &inMemory{}, m.strategy)
	assert.Equal(t, 4, m.Len())

	want := []string{"plain", "  spaced  ", "richtext", "tab\there"}
	for i, w := range want {
		got, err := m.StringAt(i)
		require.NoError(t, err)
		assert.Equal(t, w, got)
	}

	_, err := m.StringAt(4)
	assert.ErrorIs(t, err, spouterr.ErrNotFound)
	_, err = m.StringAt(-1)
	assert.ErrorIs(t, err, spouterr.ErrNotFound)
}

func TestExtractFileBased(t *testing.T) {
	const n = ChunkSize + 25
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf("<si><t>s%d</t></si>", i)
	}
	tmp := t.TempDir()
	ar := writeArchive(t, sstXML(fmt.Sprintf(` uniqueCount="%d"`, n), items...))
	m := NewManager(ar, sstPath, Options{TempDir: tmp, MemoryBudgetKB: -1})
	require.NoError(t, m.Extract())

	assert.IsType(t, &fileBased{}, m.strategy)
	assert.Equal(t, n, m.Len())
	root := m.workDir.Root()
	assert.FileExists(t, filepath.Join(root, "sharedstrings0"))
	assert.FileExists(t, filepath.Join(root, "sharedstrings1"))

	// Alternate between chunks to exercise the cache.
	for _, i := range []int{0, ChunkSize + 3, 17, n - 1, ChunkSize - 1, ChunkSize} {
		got, err := m.StringAt(i)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("s%d", i), got)
	}

	_, err := m.StringAt(n)
	assert.ErrorIs(t, err, spouterr.ErrNotFound)

	require.NoError(t, m.Cleanup())
	_, err = os.Stat(root)
	assert.True(t, os.IsNotExist(err))
	require.NoError(t, m.Cleanup())
}

func TestExtractUnknownCount(t *testing.T) {
	ar := writeArchive(t, sstXML("", `<si><t>a</t></si>`, `<si><t>b</t></si>`))
	m := NewManager(ar, sstPath, Options{TempDir: t.TempDir(), MemoryBudgetKB: -1})
	require.NoError(t, m.Extract())
	defer m.Cleanup()

	assert.IsType(t, &fileBased{}, m.strategy)
	got, err := m.StringAt(1)
	require.NoError(t, err)
	assert.Equal(t, "b", got)
}

func TestExtractLowMemoryBudget(t *testing.T) {
	ar := writeArchive(t, sstXML(` uniqueCount="2"`, `<si><t>a</t></si>`, `<si><t>b</t></si>`))
	m := NewManager(ar, sstPath, Options{TempDir: t.TempDir(), MemoryBudgetKB: 10})
	require.NoError(t, m.Extract())
	defer m.Cleanup()

	assert.IsType(t, &fileBased{}, m.strategy)
	got, err := m.StringAt(0)
	require.NoError(t, err)
	assert.Equal(t, "a", got)
}

func TestMissingTable(t *testing.T) {
	ar := writeArchive(t, sstXML("", `<si><t>a</t></si>`))
	m := NewManager(ar, "xl/missing.xml", Options{})
	assert.False(t, m.HasSharedStrings())
	require.NoError(t, m.Extract())
	_, err := m.StringAt(0)
	assert.ErrorIs(t, err, spouterr.ErrNotFound)
}

func TestMalformedTable(t *testing.T) {
	ar := writeArchive(t, `<sst><si><t>a</si></sst>`)
	m := NewManager(ar, sstPath, Options{MemoryBudgetKB: -1})
	err := m.Extract()
	assert.ErrorIs(t, err, spouterr.ErrFormat)
	assert.NoError(t, m.Cleanup())
}
