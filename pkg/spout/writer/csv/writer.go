// Package csv writes rows as delimiter-separated text.
package csv

import (
	"bufio"
	stdcsv "encoding/csv"
	"errors"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

const utf8BOM = "\xEF\xBB\xBF"

// recordWriter is satisfied by encoding/csv and by the custom enclosure writer.
type recordWriter interface {
	Write(record []string) error
	Flush() error
}

// Writer writes a single CSV file. It has no sheets; styles are ignored.
type Writer struct {
	path   string
	file   *os.File
	rw     recordWriter
	logger *zap.Logger
	closed bool
}

// Create truncates or creates the file at path.
func Create(path string, opts Options) (*Writer, error) {
	delim, encl := opts.delimiter(), opts.enclosure()
	if delim == encl || strings.ContainsRune("\r\n", delim) || strings.ContainsRune("\r\n", encl) {
		return nil, spouterr.Valuef("invalid delimiter %q or enclosure %q", delim, encl)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, spouterr.IO("create", path, err)
	}
	w := &Writer{path: path, file: f, logger: opts.loggerOrNop()}
	if encl == '"' {
		cw := stdcsv.NewWriter(f)
		cw.Comma = delim
		w.rw = stdWriter{cw}
	} else {
		w.rw = &enclosureWriter{w: bufio.NewWriter(f), delim: delim, encl: encl}
	}
	if opts.ShouldAddBOM() {
		if _, err := f.WriteString(utf8BOM); err != nil {
			w.abort()
			return nil, spouterr.IO("write", path, err)
		}
	}
	w.logger.Debug("created csv writer", zap.String("path", path), zap.String("delimiter", string(delim)), zap.String("enclosure", string(encl)))
	return w, nil
}

func (w *Writer) Path() string { return w.path }

// AddRow writes one record. On error the writer is closed and the output
// file removed.
func (w *Writer) AddRow(row *models.Row) error {
	if w.closed {
		return spouterr.ErrWriterClosed
	}
	record := make([]string, row.NumCells())
	for i, c := range row.Cells() {
		record[i] = cellText(c)
	}
	if err := w.rw.Write(record); err != nil {
		w.abort()
		return spouterr.IO("add row", w.path, err)
	}
	return nil
}

func (w *Writer) AddRows(rows ...*models.Row) error {
	for _, row := range rows {
		if err := w.AddRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes and closes the file. It is idempotent.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if err := w.rw.Flush(); err != nil {
		w.file.Close()
		w.remove()
		return spouterr.IO("close", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		w.remove()
		return spouterr.IO("close", w.path, err)
	}
	return nil
}

func (w *Writer) abort() {
	w.closed = true
	w.file.Close()
	w.remove()
}

func (w *Writer) remove() {
	if err := os.Remove(w.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		w.logger.Warn("remove partial output", zap.String("path", w.path), zap.Error(err))
	}
}

// cellText renders a cell the way a spreadsheet shows it in text form.
func cellText(c *models.Cell) string {
	if c == nil {
		return ""
	}
	switch c.Kind() {
	case models.KindString:
		return c.Value().(string)
	case models.KindNumeric:
		return writer.FormatNumber(c.Value())
	case models.KindBoolean:
		if c.Value().(bool) {
			return "TRUE"
		}
		return "FALSE"
	case models.KindDate:
		return c.Value().(time.Time).Format(time.RFC3339)
	case models.KindDuration:
		return exceldate.FormatISODuration(c.Value().(time.Duration))
	case models.KindFormula:
		return c.Formula()
	case models.KindError:
		return c.RawValue()
	}
	return ""
}

type stdWriter struct {
	*stdcsv.Writer
}

func (w stdWriter) Flush() error {
	w.Writer.Flush()
	return w.Error()
}

// enclosureWriter quotes fields with a custom enclosure, doubling it inside
// quoted fields.
type enclosureWriter struct {
	w     *bufio.Writer
	delim rune
	encl  rune
}

func (e *enclosureWriter) Write(record []string) error {
	for i, field := range record {
		if i > 0 {
			if _, err := e.w.WriteRune(e.delim); err != nil {
				return err
			}
		}
		if !e.needsQuotes(field) {
			if _, err := e.w.WriteString(field); err != nil {
				return err
			}
			continue
		}
		encl := string(e.encl)
		quoted := encl + strings.ReplaceAll(field, encl, encl+encl) + encl
		if _, err := e.w.WriteString(quoted); err != nil {
			return err
		}
	}
	_, err := e.w.WriteString("\n")
	return err
}

func (e *enclosureWriter) needsQuotes(field string) bool {
	if field == "" {
		return false
	}
	if strings.ContainsRune(field, e.delim) || strings.ContainsRune(field, e.encl) || strings.ContainsAny(field, "\r\n") {
		return true
	}
	return field[0] == ' ' || field[0] == '\t'
}

func (e *enclosureWriter) Flush() error { return e.w.Flush() }
