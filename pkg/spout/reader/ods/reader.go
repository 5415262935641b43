// Package ods reads OpenDocument spreadsheets row by row.
//
// Sheet metadata and rows come from the same content.xml stream: moving to
// the next sheet abandons the rows of the current one, and row iterators can
// only be rewound once.
package ods

import (
	"encoding/xml"
	"io"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

const (
	contentPath  = "content.xml"
	settingsPath = "settings.xml"
)

// Reader is an opened ODS document.
type Reader struct {
	archive     *archive.Reader
	opts        reader.Options
	logger      *zap.Logger
	activeSheet string

	stream     io.ReadCloser
	generation int
	closed     bool
}

// Open opens the document at path.
func Open(path string, opts reader.Options) (*Reader, error) {
	ar, err := archive.Open(path)
	if err != nil {
		return nil, err
	}
	if !ar.Has(contentPath) {
		ar.Close()
		return nil, spouterr.Format("open", path, spouterr.NotFoundf("archive entry %q", contentPath))
	}
	r := &Reader{archive: ar, opts: opts, logger: opts.LoggerOrNop()}
	if ar.Has(settingsPath) {
		active, err := readActiveTable(ar)
		if err != nil {
			ar.Close()
			return nil, err
		}
		r.activeSheet = active
	}
	r.logger.Debug("opened document", zap.String("path", path), zap.String("active_sheet", r.activeSheet))
	return r, nil
}

// readActiveTable returns the name of the table selected when the document
// was saved.
func readActiveTable(ar *archive.Reader) (string, error) {
	rc, err := ar.OpenEntry(settingsPath)
	if err != nil {
		return "", err
	}
	defer rc.Close()

	var active string
	d := xmlevent.NewDispatcher(xmlevent.NewReader(rc, ar.Path()+"#"+settingsPath))
	d.Register(xml.Name{Space: nsConfig, Local: "config-item"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		if name, _ := n.AttrNS(nsConfig, "name"); name != "ActiveTable" {
			return xmlevent.Continue, nil
		}
		el, err := n.Expand()
		if err != nil {
			return xmlevent.Stop, err
		}
		active = el.TextContent()
		return xmlevent.Stop, nil
	})
	if _, err := d.RunUntilStopped(); err != nil {
		return "", err
	}
	return active, nil
}

// Sheets restarts reading the content stream and returns an iterator over
// its tables. Sheets of earlier iterators can no longer be read.
func (r *Reader) Sheets() reader.SheetIterator {
	it := &sheetIterator{r: r, hiddenStyles: make(map[string]bool)}
	if r.closed {
		it.err = spouterr.Formatf("read sheets", "reader is closed")
		return it
	}
	r.closeStream()
	rc, err := r.archive.OpenEntry(contentPath)
	if err != nil {
		it.err = err
		return it
	}
	r.stream = rc
	r.generation++
	it.generation = r.generation
	it.xr = xmlevent.NewReader(rc, r.archive.Path()+"#"+contentPath)

	d := xmlevent.NewDispatcher(it.xr)
	d.Register(xml.Name{Space: nsStyle, Local: "style"}, xmlevent.Start, it.onStyle)
	d.Register(xml.Name{Space: nsTable, Local: "table"}, xmlevent.Start, it.onTable)
	it.dispatcher = d
	return it
}

func (r *Reader) closeStream() {
	if r.stream == nil {
		return
	}
	if err := r.stream.Close(); err != nil {
		r.logger.Warn("close content stream", zap.Error(err))
	}
	r.stream = nil
}

// Close releases the document. It is safe to call more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.closeStream()
	return r.archive.Close()
}

type sheetIterator struct {
	r            *Reader
	generation   int
	xr           *xmlevent.Reader
	dispatcher   *xmlevent.Dispatcher
	hiddenStyles map[string]bool

	next    *Sheet
	current *Sheet
	index   int
	done    bool
	err     error
}

func (it *sheetIterator) onStyle(n *xmlevent.Node) (xmlevent.Result, error) {
	if family, _ := n.AttrNS(nsStyle, "family"); family != "table" {
		return xmlevent.Continue, nil
	}
	el, err := n.Expand()
	if err != nil {
		return xmlevent.Stop, err
	}
	name, _ := el.AttrNS(nsStyle, "name")
	if props := el.Child("table-properties"); props != nil {
		if display, _ := props.AttrNS(nsTable, "display"); display == "false" {
			it.hiddenStyles[name] = true
		}
	}
	return xmlevent.Continue, nil
}

func (it *sheetIterator) onTable(n *xmlevent.Node) (xmlevent.Result, error) {
	name, _ := n.AttrNS(nsTable, "name")
	styleName, _ := n.AttrNS(nsTable, "style-name")
	s := &Sheet{
		index:   it.index,
		name:    name,
		visible: !it.hiddenStyles[styleName],
		iter:    it,
	}
	if it.r.activeSheet == "" {
		s.active = it.index == 0
	} else {
		s.active = name == it.r.activeSheet
	}
	s.rows = newRowIterator(s, it.xr, &cellDecoder{formatDates: it.r.opts.FormatDates}, it.r.opts.PreserveEmptyRows)
	it.next = s
	it.index++
	return xmlevent.Stop, nil
}

func (it *sheetIterator) Next() bool {
	if it.err != nil || it.done {
		return false
	}
	if it.r.closed || it.r.generation != it.generation {
		it.err = spouterr.Formatf("read sheets", "sheet iterator was invalidated")
		return false
	}
	it.current = nil
	stopped, err := it.dispatcher.RunUntilStopped()
	if err != nil {
		it.err = err
		return false
	}
	if !stopped || it.next == nil {
		it.done = true
		return false
	}
	it.current, it.next = it.next, nil
	return true
}

func (it *sheetIterator) Sheet() reader.Sheet {
	if it.current == nil {
		return nil
	}
	return it.current
}

func (it *sheetIterator) Err() error { return it.err }

// Sheet is a table of an ODS document.
type Sheet struct {
	index   int
	name    string
	active  bool
	visible bool
	iter    *sheetIterator
	rows    *rowIterator
}

func (s *Sheet) Index() int { return s.index }

func (s *Sheet) Name() string { return s.name }

func (s *Sheet) IsActive() bool { return s.active }

func (s *Sheet) IsVisible() bool { return s.visible }

func (s *Sheet) RowIterator() reader.RowIterator { return s.rows }

// detached reports whether the shared stream moved past this sheet.
func (s *Sheet) detached() bool {
	it := s.iter
	return it.r.closed || it.r.generation != it.generation || it.current != s
}

// MergeCells returns the ranges covered by spanned cells. It reads the
// document in a separate pass.
func (s *Sheet) MergeCells() ([]models.CellRange, error) {
	ar := s.iter.r.archive
	if s.iter.r.closed {
		return nil, spouterr.Formatf("read merged cells", "reader is closed")
	}
	rc, err := ar.OpenEntry(contentPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var (
		ranges     []models.CellRange
		tableIndex int
		inTable    bool
		row        int
		nextRow    = 1
		column     int
	)
	d := xmlevent.NewDispatcher(xmlevent.NewReader(rc, ar.Path()+"#"+contentPath))
	d.Register(xml.Name{Space: nsTable, Local: "table"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		inTable = tableIndex == s.index
		tableIndex++
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Space: nsTable, Local: "table"}, xmlevent.End, func(n *xmlevent.Node) (xmlevent.Result, error) {
		if inTable {
			return xmlevent.Stop, nil
		}
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Space: nsTable, Local: "table-row"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		if inTable {
			row = nextRow
			nextRow += repeatAttr(n, "number-rows-repeated")
			column = 0
		}
		return xmlevent.Continue, nil
	})
	onCell := func(n *xmlevent.Node) (xmlevent.Result, error) {
		if !inTable {
			return xmlevent.Continue, nil
		}
		cols, rows := repeatAttr(n, "number-columns-spanned"), repeatAttr(n, "number-rows-spanned")
		if cols > 1 || rows > 1 {
			cr, err := models.NewCellRange(column, row, column+cols-1, row+rows-1)
			if err == nil {
				ranges = append(ranges, cr)
			}
		}
		column += repeatAttr(n, "number-columns-repeated")
		return xmlevent.Continue, nil
	}
	d.Register(xml.Name{Space: nsTable, Local: "table-cell"}, xmlevent.Start, onCell)
	d.Register(xml.Name{Space: nsTable, Local: "covered-table-cell"}, xmlevent.Start, onCell)
	if _, err := d.RunUntilStopped(); err != nil {
		return nil, err
	}
	return ranges, nil
}
