// Package xlsx reads Office Open XML workbooks row by row.
package xlsx

import (
	"encoding/xml"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xlsx/sharedstrings"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
)

// Reader is an opened XLSX workbook.
type Reader struct {
	archive *archive.Reader
	info    *workbookInfo
	strings *sharedstrings.Manager
	sheets  []*Sheet
	logger  *zap.Logger
	closed  bool
}

// Open opens the workbook at path and extracts its shared strings.
func Open(path string, opts Options) (*Reader, error) {
	logger := opts.LoggerOrNop()
	ar, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	r := &Reader{archive: ar, logger: logger}
	if err := r.load(opts); err != nil {
		r.Close()
		return nil, err
	}
	logger.Debug("opened workbook",
		zap.String("path", path),
		zap.Int("sheets", len(r.sheets)),
		zap.Bool("date1904", r.info.date1904),
	)
	return r, nil
}

func (r *Reader) load(opts Options) error {
	info, err := readWorkbookInfo(r.archive)
	if err != nil {
		return err
	}
	r.info = info

	styles, err := readStyleTable(r.archive, info.stylesPath)
	if err != nil {
		return err
	}

	r.strings = sharedstrings.NewManager(r.archive, info.sharedStringsPath, sharedstrings.Options{
		TempDir:        opts.TempDir,
		MemoryBudgetKB: opts.MemoryBudgetKB,
		Logger:         r.logger,
	})
	if err := r.strings.Extract(); err != nil {
		return err
	}

	decoder := &cellDecoder{
		strings:     r.strings,
		styles:      styles,
		use1904:     info.date1904,
		formatDates: opts.FormatDates,
	}
	for _, si := range info.sheets {
		r.sheets = append(r.sheets, &Sheet{
			info:    si,
			archive: r.archive,
			rows:    newRowIterator(r.archive, si.path, decoder, opts),
		})
	}
	return nil
}

// Sheets returns an iterator over the worksheets in workbook order.
func (r *Reader) Sheets() reader.SheetIterator {
	return &sheetIterator{sheets: r.sheets, pos: -1}
}

// Uses1904Dates reports whether the workbook uses the 1904 date system.
func (r *Reader) Uses1904Dates() bool { return r.info != nil && r.info.date1904 }

// Close releases the archive and the shared strings cache. It is safe to
// call more than once and in the middle of an iteration.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	for _, s := range r.sheets {
		s.rows.close()
	}
	var err error
	if r.strings != nil {
		err = r.strings.Cleanup()
	}
	if cerr := r.archive.Close(); err == nil {
		err = cerr
	}
	return err
}

type sheetIterator struct {
	sheets []*Sheet
	pos    int
}

func (it *sheetIterator) Next() bool {
	if it.pos < len(it.sheets) {
		it.pos++
	}
	return it.pos < len(it.sheets)
}

func (it *sheetIterator) Sheet() reader.Sheet {
	if it.pos < 0 || it.pos >= len(it.sheets) {
		return nil
	}
	return it.sheets[it.pos]
}

func (it *sheetIterator) Err() error { return nil }

// Sheet is a worksheet of an XLSX workbook.
type Sheet struct {
	info    sheetInfo
	archive *archive.Reader
	rows    *rowIterator
}

func (s *Sheet) Index() int { return s.info.index }
func (s *Sheet) Name() string { return s.info.name }
func (s *Sheet) IsActive() bool { return s.info.active }
func (s *Sheet) IsVisible() bool { return s.info.visible }

func (s *Sheet) RowIterator() reader.RowIterator { return s.rows }

// MergeCells returns the merged ranges of the sheet. The worksheet part is
// read in a separate pass, independent of the row iterator.
func (s *Sheet) MergeCells() ([]models.CellRange, error) {
	rc, err := s.archive.OpenEntry(s.info.path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var ranges []models.CellRange
	d := xmlevent.NewDispatcher(xmlevent.NewReader(rc, s.archive.Path()+"#"+s.info.path))
	d.Register(xml.Name{Local: "mergeCell"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		ref, _ := n.AttrValue("ref")
		if cr, err := models.ParseCellRange(ref); err == nil {
			ranges = append(ranges, cr)
		}
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Local: "mergeCells"}, xmlevent.End, func(n *xmlevent.Node) (xmlevent.Result, error) {
		return xmlevent.Stop, nil
	})
	if _, err := d.RunUntilStopped(); err != nil {
		return nil, err
	}
	return ranges, nil
}
