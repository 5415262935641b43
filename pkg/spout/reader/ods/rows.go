package ods

import (
	"encoding/xml"
	"strconv"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// maxColumns is the column ceiling of the format. Spreadsheet applications
// pad rows up to it with one repeated empty cell.
const maxColumns = 16384

// lookback holds the last decoded cell of the row. Its repeat count only
// becomes final once the next cell starts or the row ends.
type lookback struct {
	cell   *models.Cell
	repeat int
}

// rowIterator reads the rows of one table from the content stream shared
// with the sheet iterator. It can only be rewound once.
type rowIterator struct {
	sheet             *Sheet
	dispatcher        *xmlevent.Dispatcher
	decoder           *cellDecoder
	preserveEmptyRows bool

	started bool
	done    bool

	// row being decoded
	current      *models.Row
	previous     *lookback
	rowsRepeated int

	// decoded row served again while repeats remain
	buffered    *models.Row
	repeatsLeft int

	row *models.Row
	err error
}

func newRowIterator(s *Sheet, r *xmlevent.Reader, decoder *cellDecoder, preserveEmptyRows bool) *rowIterator {
	it := &rowIterator{sheet: s, decoder: decoder, preserveEmptyRows: preserveEmptyRows}
	d := xmlevent.NewDispatcher(r)
	d.Register(xml.Name{Space: nsTable, Local: "table-row"}, xmlevent.Start, it.onRowStart)
	d.Register(xml.Name{Space: nsTable, Local: "table-cell"}, xmlevent.Start, it.onCell)
	d.Register(xml.Name{Space: nsTable, Local: "covered-table-cell"}, xmlevent.Start, it.onCell)
	d.Register(xml.Name{Space: nsTable, Local: "table-row"}, xmlevent.End, it.onRowEnd)
	d.Register(xml.Name{Space: nsTable, Local: "table"}, xmlevent.End, it.onTableEnd)
	it.dispatcher = d
	return it
}

// Rewind positions the iterator on the first row. The table and the sheet
// list share one stream, so a second call fails.
func (it *rowIterator) Rewind() error {
	if it.started {
		return spouterr.ErrIteratorNotRewindable
	}
	it.started = true
	return nil
}

func repeatAttr(n *xmlevent.Node, local string) int {
	if v, ok := n.AttrNS(nsTable, local); ok {
		if count, err := strconv.Atoi(v); err == nil && count > 0 {
			return count
		}
	}
	return 1
}

func (it *rowIterator) onRowStart(n *xmlevent.Node) (xmlevent.Result, error) {
	it.current = models.NewRow()
	it.previous = nil
	it.rowsRepeated = repeatAttr(n, "number-rows-repeated")
	return xmlevent.Continue, nil
}

func (it *rowIterator) onCell(n *xmlevent.Node) (xmlevent.Result, error) {
	repeat := repeatAttr(n, "number-columns-repeated")
	el, err := n.Expand()
	if err != nil {
		return xmlevent.Stop, err
	}
	if it.current == nil {
		return xmlevent.Continue, nil
	}
	cell := it.decoder.decode(el)
	if it.previous != nil {
		it.addCells(it.previous.cell, it.previous.repeat)
	}
	it.previous = &lookback{cell: cell, repeat: repeat}
	return xmlevent.Continue, nil
}

func (it *rowIterator) addCells(c *models.Cell, n int) {
	if room := maxColumns - it.current.NumCells(); n > room {
		n = room
	}
	for i := 0; i < n; i++ {
		it.current.AddCell(c)
	}
}

func (it *rowIterator) onRowEnd(n *xmlevent.Node) (xmlevent.Result, error) {
	row, last := it.current, it.previous
	it.current, it.previous = nil, nil
	if row == nil {
		return xmlevent.Continue, nil
	}

	empty := row.IsEmpty() && (last == nil || last.cell.IsEmpty())
	if empty && !it.preserveEmptyRows {
		return xmlevent.Continue, nil
	}
	if last != nil {
		repeat := last.repeat
		if empty || row.NumCells()+repeat == maxColumns {
			repeat = 1
		}
		it.current = row
		it.addCells(last.cell, repeat)
		it.current = nil
	}

	it.buffered = row
	it.repeatsLeft = it.rowsRepeated
	return xmlevent.Stop, nil
}

func (it *rowIterator) onTableEnd(n *xmlevent.Node) (xmlevent.Result, error) {
	it.done = true
	return xmlevent.Stop, nil
}

func (it *rowIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.started = true
	for {
		if it.repeatsLeft > 0 {
			it.repeatsLeft--
			it.row = it.buffered
			return true
		}
		it.buffered = nil
		if it.done {
			it.row = nil
			return false
		}
		if it.sheet.detached() {
			it.err = spouterr.Formatf("read row", "sheet %q is no longer the current sheet", it.sheet.name)
			it.row = nil
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
