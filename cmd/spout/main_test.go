package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openspout/openspout-sub000/pkg/spout"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(&out)
	cmd.SetArgs(args)
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, path string, opts spout.WriterOptions, rows ...*models.Row) {
	t.Helper()
	w, err := spout.CreateWriter(path, opts)
	require.NoError(t, err)
	require.NoError(t, w.AddRows(rows...))
	require.NoError(t, w.Close())
}

func TestConvertAndDump(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("a,b\n1,\"x,y\"\n"), 0o644))

	out := filepath.Join(dir, "out.xlsx")
	_, err := execute(t, "convert", in, out)
	require.NoError(t, err)

	got, err := execute(t, "dump", out)
	require.NoError(t, err)
	assert.Equal(t,
		`{"sheet":"Sheet1","row":1,"cells":["a","b"]}`+"\n"+
			`{"sheet":"Sheet1","row":2,"cells":["1","x,y"]}`+"\n",
		got)
}

func TestDumpSelectsSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.ods")
	w, err := spout.CreateWriter(path, spout.DefaultWriterOptions())
	require.NoError(t, err)
	sw := w.(spout.SheetWriter)
	require.NoError(t, w.AddRow(models.MustRow("first")))
	second, err := sw.AddNewSheetAndMakeItCurrent()
	require.NoError(t, err)
	require.NoError(t, second.SetName("Second"))
	require.NoError(t, w.AddRow(models.MustRow(2.5, true)))
	require.NoError(t, w.Close())

	want := `{"sheet":"Second","row":1,"cells":[2.5,true]}` + "\n"
	for _, sel := range []string{"Second", "1"} {
		got, err := execute(t, "dump", path, "--sheet", sel)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err = execute(t, "dump", path, "--sheet", "Missing")
	assert.ErrorIs(t, err, spout.ErrSheetNotFound)
}

func TestSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	writeFixture(t, path, spout.DefaultWriterOptions(), models.MustRow("x"))

	got, err := execute(t, "sheets", path)
	require.NoError(t, err)
	assert.Equal(t, `{"index":0,"name":"Sheet1","active":true,"visible":true}`+"\n", got)
}

func TestEnvironmentOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n"), 0o644))
	t.Setenv("SPOUT_DELIMITER", ";")

	got, err := execute(t, "dump", path)
	require.NoError(t, err)
	assert.Equal(t, `{"sheet":"","row":1,"cells":["a","b"]}`+"\n", got)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a|b\n"), 0o644))
	config := filepath.Join(dir, "spout.json")
	require.NoError(t, os.WriteFile(config, []byte(`{"delimiter": "|"}`), 0o644))

	got, err := execute(t, "dump", path, "--config", config)
	require.NoError(t, err)
	assert.Equal(t, `{"sheet":"","row":1,"cells":["a","b"]}`+"\n", got)

	_, err = execute(t, "dump", path, "--config", filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}

func TestFlagWinsOverEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.csv")
	require.NoError(t, os.WriteFile(path, []byte("a;b\n"), 0o644))
	t.Setenv("SPOUT_DELIMITER", "|")

	got, err := execute(t, "dump", path, "--delimiter", ";")
	require.NoError(t, err)
	assert.Equal(t, `{"sheet":"","row":1,"cells":["a","b"]}`+"\n", got)
}

func TestConvertUnsupportedOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.csv")
	require.NoError(t, os.WriteFile(in, []byte("a\n"), 0o644))

	_, err := execute(t, "convert", in, filepath.Join(dir, "out.pdf"))
	assert.ErrorIs(t, err, spout.ErrUnsupportedType)
}

func TestParseRune(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{"", 0, false},
		{",", ',', false},
		{`\t`, '\t', false},
		{"tab", '\t', false},
		{"é", 'é', false},
		{";;", 0, true},
	}
	for _, tt := range tests {
		got, err := parseRune("delimiter", tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestVersion(t *testing.T) {
	got, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "spout v"+version+"\n", got)
}
