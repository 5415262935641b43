package writer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Format is the format-specific half of a workbook writer.
type Format interface {
	// Start runs once the working directory exists, before any sheet.
	Start(wb *Workbook) error
	// MaxRows is the number of rows a sheet of the format can hold.
	MaxRows() int
	// WriteHeader starts the temporary file of a sheet.
	WriteHeader(ws *Worksheet) error
	// WriteRow appends row at index ws.LastWrittenRowIndex()+1.
	WriteRow(ws *Worksheet, row *models.Row) error
	// WriteFooter ends the temporary file of a sheet.
	WriteFooter(ws *Worksheet) error
	// CloseResources finishes format side files such as the shared strings.
	// It can run again on the failure path and must be idempotent.
	CloseResources() error
	// Assemble writes the archive once every sheet file is complete.
	Assemble(wb *Workbook, out io.Writer) error
}

const bufferSize = 64 * 1024

// Workbook manages the sheets of a file being written.
type Workbook struct {
	path    string
	out     *os.File
	opts    Options
	format  Format
	maxRows int
	logger  *zap.Logger
	workDir *archive.WorkDir

	names      map[string]*Sheet
	worksheets []*Worksheet
	current    *Worksheet
	closed     bool
}

// Create creates the output file and the working directory, and opens the
// first sheet.
func Create(path string, format Format, opts Options) (*Workbook, error) {
	workDir, err := archive.NewWorkDir(opts.TempDir, "spout-")
	if err != nil {
		return nil, err
	}
	out, err := os.Create(path)
	if err != nil {
		workDir.Remove()
		return nil, spouterr.IO("create", path, err)
	}
	wb := &Workbook{
		path:    path,
		out:     out,
		opts:    opts,
		format:  format,
		maxRows: opts.maxRows(format.MaxRows()),
		logger:  opts.LoggerOrNop(),
		workDir: workDir,
		names:   make(map[string]*Sheet),
	}
	if err := format.Start(wb); err != nil {
		wb.abort()
		return nil, err
	}
	if _, err := wb.AddNewSheetAndMakeItCurrent(); err != nil {
		wb.abort()
		return nil, err
	}
	wb.logger.Debug("created workbook", zap.String("path", path), zap.String("work_dir", workDir.Root()),
		zap.Int("max_rows_per_sheet", wb.maxRows))
	return wb, nil
}

func (wb *Workbook) Path() string { return wb.path }

// WorkDir is the temporary directory of the workbook.
func (wb *Workbook) WorkDir() *archive.WorkDir { return wb.workDir }

func (wb *Workbook) Options() Options { return wb.opts }

func (wb *Workbook) Logger() *zap.Logger { return wb.logger }

// Worksheets returns every worksheet in creation order.
func (wb *Workbook) Worksheets() []*Worksheet { return wb.worksheets }

// Sheets returns every sheet in creation order.
func (wb *Workbook) Sheets() []*Sheet {
	sheets := make([]*Sheet, len(wb.worksheets))
	for i, ws := range wb.worksheets {
		sheets[i] = ws.sheet
	}
	return sheets
}

// CurrentSheet returns the sheet rows are added to.
func (wb *Workbook) CurrentSheet() *Sheet { return wb.current.sheet }

// SetCurrentSheet makes s the sheet rows are added to.
func (wb *Workbook) SetCurrentSheet(s *Sheet) error {
	if s == nil || s.book != wb {
		return spouterr.ErrSheetNotFound
	}
	wb.current = wb.worksheets[s.index]
	return nil
}

// AddNewSheetAndMakeItCurrent creates a sheet after the last one.
func (wb *Workbook) AddNewSheetAndMakeItCurrent() (*Sheet, error) {
	if wb.closed {
		return nil, spouterr.ErrWriterClosed
	}
	index := len(wb.worksheets)
	sheet := &Sheet{index: index, visible: true, book: wb}
	sheet.name = wb.defaultSheetName(index)
	wb.names[strings.ToLower(sheet.name)] = sheet

	part := fmt.Sprintf("sheets/sheet%d.xml", index+1)
	f, err := wb.workDir.Create(part)
	if err != nil {
		delete(wb.names, strings.ToLower(sheet.name))
		return nil, err
	}
	ws := &Worksheet{sheet: sheet, path: wb.workDir.Path(part), file: f, w: bufio.NewWriterSize(f, bufferSize)}
	wb.worksheets = append(wb.worksheets, ws)
	wb.current = ws
	return sheet, nil
}

// AddRow writes row to the current sheet. A full sheet is followed by a new
// one, or the row is dropped when automatic sheet creation is off. Any error
// closes the writer and deletes the output file.
func (wb *Workbook) AddRow(row *models.Row) error {
	if wb.closed {
		return spouterr.ErrWriterClosed
	}
	if err := wb.addRow(row); err != nil {
		wb.abort()
		return err
	}
	return nil
}

// AddRows writes rows in order, stopping at the first error.
func (wb *Workbook) AddRows(rows ...*models.Row) error {
	for _, row := range rows {
		if err := wb.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}

func (wb *Workbook) addRow(row *models.Row) error {
	ws := wb.current
	if ws.lastWrittenRowIndex >= wb.maxRows {
		if !wb.opts.ShouldCreateNewSheetsAutomatically() {
			wb.logger.Debug("dropped row past sheet limit", zap.String("sheet", ws.sheet.name))
			return nil
		}
		if _, err := wb.AddNewSheetAndMakeItCurrent(); err != nil {
			return err
		}
		wb.logger.Debug("rotated sheet", zap.String("from", ws.sheet.name), zap.String("to", wb.current.sheet.name))
		ws = wb.current
	}
	if err := wb.startSheet(ws); err != nil {
		return err
	}
	if err := wb.format.WriteRow(ws, row); err != nil {
		return err
	}
	ws.state = Writing
	ws.lastWrittenRowIndex++
	ws.maxColumns = max(ws.maxColumns, row.NumCells())
	return nil
}

// startSheet writes the sheet header on first use; the header depends on
// settings made after the sheet was created.
func (wb *Workbook) startSheet(ws *Worksheet) error {
	if ws.state != NotStarted {
		return nil
	}
	ws.sheet.started = true
	if err := wb.format.WriteHeader(ws); err != nil {
		return err
	}
	ws.state = HeaderWritten
	return nil
}

// Close finishes every sheet and assembles the output file. The working
// directory is removed in every case. Close is idempotent.
func (wb *Workbook) Close() error {
	if wb.closed {
		return nil
	}
	wb.closed = true

	err := wb.finish()
	if err != nil {
		wb.cleanup(true)
		return err
	}
	return wb.cleanup(false)
}

func (wb *Workbook) finish() error {
	for _, ws := range wb.worksheets {
		if err := wb.startSheet(ws); err != nil {
			return err
		}
		if err := wb.format.WriteFooter(ws); err != nil {
			return err
		}
		if err := ws.close(); err != nil {
			return err
		}
	}
	if err := wb.format.CloseResources(); err != nil {
		return err
	}
	wb.logger.Debug("assembling archive", zap.String("path", wb.path), zap.Int("sheets", len(wb.worksheets)))
	if err := wb.format.Assemble(wb, wb.out); err != nil {
		return err
	}
	if err := wb.out.Close(); err != nil {
		return spouterr.IO("close", wb.path, err)
	}
	wb.out = nil
	return nil
}

// abort releases everything after a failed write, leaving no output file.
func (wb *Workbook) abort() {
	wb.closed = true
	wb.cleanup(true)
}

// cleanup closes the remaining handles and removes the working directory,
// and the output file when failed is set.
func (wb *Workbook) cleanup(failed bool) error {
	var errs []error
	for _, ws := range wb.worksheets {
		if err := ws.close(); err != nil {
			errs = append(errs, err)
		}
	}
	if failed {
		if err := wb.format.CloseResources(); err != nil {
			wb.logger.Warn("close format resources", zap.Error(err))
		}
	}
	if wb.out != nil {
		if err := wb.out.Close(); err != nil {
			errs = append(errs, spouterr.IO("close", wb.path, err))
		}
		wb.out = nil
	}
	if failed {
		if err := os.Remove(wb.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			wb.logger.Warn("remove partial output", zap.String("path", wb.path), zap.Error(err))
		}
	}
	if err := wb.workDir.Remove(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
