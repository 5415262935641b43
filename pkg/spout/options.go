// Package spout reads and writes XLSX, ODS and CSV spreadsheets one row at a
// time.
package spout

import (
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Type is a spreadsheet file format.
type Type string

const (
	// TypeCSV is delimiter-separated text with a single sheet.
	TypeCSV Type = "csv"
	// TypeXLSX is an Office Open XML workbook.
	TypeXLSX Type = "xlsx"
	// TypeODS is an OpenDocument spreadsheet.
	TypeODS Type = "ods"
)

// TypeFromPath returns the type matching the extension of path.
func TypeFromPath(path string) (Type, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	switch t := Type(ext); t {
	case TypeCSV, TypeXLSX, TypeODS:
		return t, nil
	}
	return "", spouterr.New(spouterr.ErrUnsupportedType, "detect type", path, spouterr.Valuef("unknown extension %q", filepath.Ext(path)))
}

func resolveType(t Type, path string) (Type, error) {
	if t == "" {
		return TypeFromPath(path)
	}
	switch t := Type(strings.ToLower(string(t))); t {
	case TypeCSV, TypeXLSX, TypeODS:
		return t, nil
	}
	return "", spouterr.New(spouterr.ErrUnsupportedType, "detect type", path, spouterr.Valuef("unknown type %q", t))
}

// ReaderOptions configures OpenReader.
type ReaderOptions struct {
	// Type selects the format. Empty derives it from the file extension.
	Type Type
	// FormatDates returns dates as the text a spreadsheet application shows.
	// If nil, defaults to false.
	FormatDates *bool
	// PreserveEmptyRows yields empty rows instead of skipping them.
	// If nil, defaults to false.
	PreserveEmptyRows *bool
	TempDir           string

	// CSV only.
	FieldDelimiter rune
	FieldEnclosure rune
	Encoding       string

	// XLSX only: memory allowed for shared strings, see xlsx.Options.
	MemoryBudgetKB int64

	Logger *zap.Logger
}

// DefaultReaderOptions returns default reader options.
func DefaultReaderOptions() ReaderOptions {
	return ReaderOptions{}
}

func (o ReaderOptions) ShouldFormatDates() bool {
	return o.FormatDates != nil && *o.FormatDates
}

func (o ReaderOptions) ShouldPreserveEmptyRows() bool {
	return o.PreserveEmptyRows != nil && *o.PreserveEmptyRows
}

// WriterOptions configures CreateWriter.
type WriterOptions struct {
	// Type selects the format. Empty derives it from the file extension.
	Type    Type
	TempDir string

	DefaultRowStyle    *models.Style
	DefaultColumnWidth float64
	DefaultRowHeight   float64
	// MaxRowsPerSheet caps the rows of a sheet below the format limit.
	MaxRowsPerSheet int
	// CreateNewSheetsAutomatically continues on a new sheet once a sheet is
	// full. If nil, defaults to true; otherwise extra rows are dropped.
	CreateNewSheetsAutomatically *bool

	// XLSX only. If nil, defaults to true.
	UseInlineStrings *bool
	// XLSX and ODS.
	CompressionLevel int
	Creator          string

	// CSV only.
	FieldDelimiter rune
	FieldEnclosure rune
	// AddBOM writes a UTF-8 byte order mark. If nil, defaults to true.
	AddBOM *bool

	Logger *zap.Logger
}

// DefaultWriterOptions returns default writer options.
func DefaultWriterOptions() WriterOptions {
	return WriterOptions{}
}

func (o WriterOptions) ShouldCreateNewSheetsAutomatically() bool {
	return o.CreateNewSheetsAutomatically == nil || *o.CreateNewSheetsAutomatically
}

func (o WriterOptions) ShouldUseInlineStrings() bool {
	return o.UseInlineStrings == nil || *o.UseInlineStrings
}

func (o WriterOptions) ShouldAddBOM() bool {
	return o.AddBOM == nil || *o.AddBOM
}
