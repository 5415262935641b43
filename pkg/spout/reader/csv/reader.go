// Package csv reads delimited text files as a single-sheet workbook.
package csv

import (
	stdcsv "encoding/csv"
	"errors"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Reader is an opened CSV file.
type Reader struct {
	file   *os.File
	path   string
	opts   Options
	logger *zap.Logger
	sheet  *Sheet
	closed bool
}

// Open opens the file at path. The encoding is resolved here so that an
// unknown label fails before any row is read.
func Open(path string, opts Options) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, spouterr.IO("open", path, err)
	}
	_, name, err := decodingReader(f, opts.Encoding)
	if err != nil {
		f.Close()
		return nil, err
	}
	r := &Reader{file: f, path: path, opts: opts, logger: opts.LoggerOrNop()}
	r.sheet = &Sheet{rows: &rowIterator{r: r}}
	r.logger.Debug("opened csv",
		zap.String("path", path),
		zap.String("encoding", name),
		zap.String("delimiter", string(opts.delimiter())),
	)
	return r, nil
}

// Sheets returns an iterator yielding the only sheet of the file.
func (r *Reader) Sheets() reader.SheetIterator {
	return &sheetIterator{r: r}
}

// Close releases the file. It is idempotent.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if err := r.file.Close(); err != nil {
		return spouterr.IO("close", r.path, err)
	}
	return nil
}

type sheetIterator struct {
	r    *Reader
	done bool
}

func (it *sheetIterator) Next() bool {
	if it.done || it.r.closed {
		return false
	}
	it.done = true
	return true
}

func (it *sheetIterator) Sheet() reader.Sheet { return it.r.sheet }
func (it *sheetIterator) Err() error { return nil }

// Sheet is the single sheet of a CSV file. It has no name and is always
// active and visible.
type Sheet struct {
	rows *rowIterator
}

func (s *Sheet) Index() int { return 0 }
func (s *Sheet) Name() string { return "" }
func (s *Sheet) IsActive() bool { return true }
func (s *Sheet) IsVisible() bool { return true }
func (s *Sheet) RowIterator() reader.RowIterator { return s.rows }

// recordSource yields records; blank lines are empty records.
type recordSource interface {
	next() ([]string, error)
}

type stdSource struct {
	cr *stdcsv.Reader
}

func (s stdSource) next() ([]string, error) { return s.cr.Read() }

type rowIterator struct {
	r       *Reader
	src     recordSource
	started bool
	row     *models.Row
	err     error
}

// Rewind seeks back to the start of the file. It can be called any number
// of times.
func (it *rowIterator) Rewind() error {
	it.started = true
	it.row = nil
	it.err = nil
	if it.r.closed {
		it.err = spouterr.Formatf("rewind", "reader is closed")
		return it.err
	}
	if _, err := it.r.file.Seek(0, io.SeekStart); err != nil {
		it.err = spouterr.IO("rewind", it.r.path, err)
		return it.err
	}
	in, _, err := decodingReader(it.r.file, it.r.opts.Encoding)
	if err != nil {
		it.err = err
		return err
	}

	delim, encl := it.r.opts.delimiter(), it.r.opts.enclosure()
	if encl == '"' && !it.r.opts.PreserveEmptyRows {
		cr := stdcsv.NewReader(in)
		cr.Comma = delim
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		it.src = stdSource{cr: cr}
	} else {
		it.src = newTokenizer(in, delim, encl)
	}
	return nil
}

func (it *rowIterator) Next() bool {
	if !it.started {
		if err := it.Rewind(); err != nil {
			return false
		}
	}
	if it.err != nil || it.src == nil {
		return false
	}
	if it.r.closed {
		it.src = nil
		return false
	}
	for {
		record, err := it.src.next()
		if errors.Is(err, io.EOF) {
			it.src = nil
			return false
		}
		if err != nil {
			it.err = spouterr.Format("read row", it.r.path, err)
			return false
		}
		if len(record) == 0 && !it.r.opts.PreserveEmptyRows {
			continue
		}
		it.row = recordRow(record)
		return true
	}
}

func (it *rowIterator) Row() *models.Row { return it.row }
func (it *rowIterator) Err() error { return it.err }

func recordRow(record []string) *models.Row {
	cells := make([]*models.Cell, len(record))
	for i, v := range record {
		if v == "" {
			cells[i] = models.NewEmptyCell()
		} else {
			cells[i] = models.NewStringCell(v)
		}
	}
	return models.NewRow(cells...)
}
