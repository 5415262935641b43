package spout

import (
	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	csvreader "github.com/openspout/openspout-sub000/pkg/spout/reader/csv"
	odsreader "github.com/openspout/openspout-sub000/pkg/spout/reader/ods"
	xlsxreader "github.com/openspout/openspout-sub000/pkg/spout/reader/xlsx"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
	csvwriter "github.com/openspout/openspout-sub000/pkg/spout/writer/csv"
	odswriter "github.com/openspout/openspout-sub000/pkg/spout/writer/ods"
	xlsxwriter "github.com/openspout/openspout-sub000/pkg/spout/writer/xlsx"
)

// Writer is the write side shared by every format.
type Writer interface {
	AddRow(row *models.Row) error
	AddRows(rows ...*models.Row) error
	Close() error
}

// SheetWriter is a Writer managing several sheets. XLSX and ODS writers
// implement it.
type SheetWriter interface {
	Writer
	Sheets() []*writer.Sheet
	CurrentSheet() *writer.Sheet
	SetCurrentSheet(s *writer.Sheet) error
	AddNewSheetAndMakeItCurrent() (*writer.Sheet, error)
}

// OpenReader opens path with the reader of its type.
func OpenReader(path string, opts ReaderOptions) (reader.Reader, error) {
	t, err := resolveType(opts.Type, path)
	if err != nil {
		return nil, err
	}
	ro := reader.Options{
		FormatDates:       opts.ShouldFormatDates(),
		PreserveEmptyRows: opts.ShouldPreserveEmptyRows(),
		TempDir:           opts.TempDir,
		Logger:            opts.Logger,
	}
	ro.LoggerOrNop().Debug("opening reader", zap.String("path", path), zap.String("type", string(t)))

	switch t {
	case TypeCSV:
		r, err := csvreader.Open(path, csvreader.Options{
			Options:        ro,
			FieldDelimiter: opts.FieldDelimiter,
			FieldEnclosure: opts.FieldEnclosure,
			Encoding:       opts.Encoding,
		})
		if err != nil {
			return nil, err
		}
		return r, nil
	case TypeODS:
		r, err := odsreader.Open(path, ro)
		if err != nil {
			return nil, err
		}
		return r, nil
	default:
		r, err := xlsxreader.Open(path, xlsxreader.Options{Options: ro, MemoryBudgetKB: opts.MemoryBudgetKB})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
}

// CreateWriter creates path with the writer of its type.
func CreateWriter(path string, opts WriterOptions) (Writer, error) {
	t, err := resolveType(opts.Type, path)
	if err != nil {
		return nil, err
	}
	if opts.Logger != nil {
		opts.Logger.Debug("creating writer", zap.String("path", path), zap.String("type", string(t)))
	}

	wo := writer.Options{
		TempDir:                      opts.TempDir,
		DefaultRowStyle:              opts.DefaultRowStyle,
		DefaultColumnWidth:           opts.DefaultColumnWidth,
		DefaultRowHeight:             opts.DefaultRowHeight,
		MaxRowsPerSheet:              opts.MaxRowsPerSheet,
		CreateNewSheetsAutomatically: opts.CreateNewSheetsAutomatically,
		Logger:                       opts.Logger,
	}
	switch t {
	case TypeCSV:
		addBOM := opts.ShouldAddBOM()
		w, err := csvwriter.Create(path, csvwriter.Options{
			FieldDelimiter: opts.FieldDelimiter,
			FieldEnclosure: opts.FieldEnclosure,
			AddBOM:         &addBOM,
			Logger:         opts.Logger,
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	case TypeODS:
		w, err := odswriter.Create(path, odswriter.Options{
			Options:          wo,
			CompressionLevel: opts.CompressionLevel,
			Creator:          opts.Creator,
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	default:
		inline := opts.ShouldUseInlineStrings()
		w, err := xlsxwriter.Create(path, xlsxwriter.Options{
			Options:          wo,
			UseInlineStrings: &inline,
			CompressionLevel: opts.CompressionLevel,
			Creator:          opts.Creator,
		})
		if err != nil {
			return nil, err
		}
		return w, nil
	}
}
