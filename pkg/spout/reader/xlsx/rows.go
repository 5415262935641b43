package xlsx

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// rowIterator streams the rows of one worksheet part. Every Rewind reopens
// the part, so the iterator can be rewound any number of times.
type rowIterator struct {
	archive           *archive.Reader
	path              string
	decoder           *cellDecoder
	preserveEmptyRows bool
	logger            *zap.Logger

	rc         io.ReadCloser
	dispatcher *xmlevent.Dispatcher
	started    bool
	closed     bool
	done       bool

	// sheet-level column count from the dimension element
	numColumns int

	// row being decoded
	current      *models.Row
	currentIndex int
	lastColumn   int
	lastRowIndex int

	// decoded row waiting to be yielded, and the next row index to yield
	pending      *models.Row
	pendingIndex int
	nextIndex    int

	row *models.Row
	err error
}

func newRowIterator(ar *archive.Reader, path string, decoder *cellDecoder, opts Options) *rowIterator {
	return &rowIterator{
		archive:           ar,
		path:              path,
		decoder:           decoder,
		preserveEmptyRows: opts.PreserveEmptyRows,
		logger:            opts.LoggerOrNop(),
	}
}

func (it *rowIterator) Rewind() error {
	if it.closed {
		return spouterr.Formatf("rewind", "reader is closed")
	}
	it.closeStream()
	rc, err := it.archive.OpenEntry(it.path)
	if err != nil {
		it.err = err
		return err
	}
	it.rc = rc
	it.dispatcher = it.newDispatcher(xmlevent.NewReader(rc, it.archive.Path()+"#"+it.path))

	it.started = true
	it.done = false
	it.numColumns = 0
	it.current, it.pending, it.row = nil, nil, nil
	it.lastRowIndex = 0
	it.nextIndex = 1
	it.err = nil
	return nil
}

func (it *rowIterator) newDispatcher(r *xmlevent.Reader) *xmlevent.Dispatcher {
	d := xmlevent.NewDispatcher(r)
	d.Register(xml.Name{Local: "dimension"}, xmlevent.Start, it.onDimension)
	d.Register(xml.Name{Local: "row"}, xmlevent.Start, it.onRowStart)
	d.Register(xml.Name{Local: "c"}, xmlevent.Start, it.onCell)
	d.Register(xml.Name{Local: "row"}, xmlevent.End, it.onRowEnd)
	d.Register(xml.Name{Local: "sheetData"}, xmlevent.End, it.onSheetDataEnd)
	return d
}

func (it *rowIterator) onDimension(n *xmlevent.Node) (xmlevent.Result, error) {
	ref, _ := n.AttrValue("ref")
	if _, end, ok := strings.Cut(ref, ":"); ok {
		if col, _, err := excelize.CellNameToCoordinates(end); err == nil {
			it.numColumns = col
		}
	}
	return xmlevent.Continue, nil
}

func (it *rowIterator) onRowStart(n *xmlevent.Node) (xmlevent.Result, error) {
	index := it.lastRowIndex + 1
	if r, ok := n.AttrValue("r"); ok {
		if v, err := strconv.Atoi(r); err == nil && v > 0 {
			index = v
		}
	}
	numColumns := it.numColumns
	if spans, ok := n.AttrValue("spans"); ok {
		if i := strings.LastIndexByte(spans, ':'); i >= 0 {
			if v, err := strconv.Atoi(spans[i+1:]); err == nil && v > 0 && v <= excelize.MaxColumns {
				numColumns = v
			}
		}
	}

	cells := make([]*models.Cell, numColumns)
	for i := range cells {
		cells[i] = models.NewEmptyCell()
	}
	it.current = models.NewRow(cells...)
	it.currentIndex = index
	it.lastRowIndex = index
	it.lastColumn = -1
	return xmlevent.Continue, nil
}

func (it *rowIterator) onCell(n *xmlevent.Node) (xmlevent.Result, error) {
	el, err := n.Expand()
	if err != nil {
		return xmlevent.Stop, err
	}
	if it.current == nil {
		return xmlevent.Continue, nil
	}
	column := it.lastColumn + 1
	if ref, ok := el.AttrValue("r"); ok {
		if col, _, err := excelize.CellNameToCoordinates(ref); err == nil {
			column = col - 1
		}
	}
	cell, err := it.decoder.decode(el)
	if err != nil {
		return xmlevent.Stop, err
	}
	it.current.SetCellAtIndex(column, cell)
	it.lastColumn = column
	return xmlevent.Continue, nil
}

func (it *rowIterator) onRowEnd(n *xmlevent.Node) (xmlevent.Result, error) {
	row := it.current
	it.current = nil
	if row == nil || (row.IsEmpty() && !it.preserveEmptyRows) {
		return xmlevent.Continue, nil
	}
	it.pending = row
	it.pendingIndex = it.currentIndex
	return xmlevent.Stop, nil
}

func (it *rowIterator) onSheetDataEnd(n *xmlevent.Node) (xmlevent.Result, error) {
	it.done = true
	return xmlevent.Stop, nil
}

func (it *rowIterator) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.started {
		if err := it.Rewind(); err != nil {
			return false
		}
	}
	for {
		if it.pending != nil {
			if it.preserveEmptyRows && it.nextIndex < it.pendingIndex {
				it.row = models.NewRow()
				it.nextIndex++
				return true
			}
			it.row = it.pending
			it.nextIndex = it.pendingIndex + 1
			it.pending = nil
			return true
		}
		if it.done {
			it.row = nil
			it.closeStream()
			return false
		}
		stopped, err := it.dispatcher.RunUntilStopped()
		if err != nil {
			it.err = err
			it.row = nil
			return false
		}
		if !stopped {
			it.done = true
		}
	}
}

func (it *rowIterator) Row() *models.Row { return it.row }

func (it *rowIterator) Err() error { return it.err }

func (it *rowIterator) closeStream() {
	if it.rc == nil {
		return
	}
	if err := it.rc.Close(); err != nil {
		it.logger.Warn("close worksheet stream", zap.String("path", it.path), zap.Error(err))
	}
	it.rc, it.dispatcher = nil, nil
}

func (it *rowIterator) close() {
	it.closeStream()
	it.closed = true
	it.row, it.pending, it.current = nil, nil, nil
}
