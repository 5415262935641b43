package writer

import (
	"bufio"
	"io"
	"os"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// State is the position of a worksheet in its write lifecycle.
type State int

const (
	NotStarted State = iota
	HeaderWritten
	Writing
	Closed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case HeaderWritten:
		return "header written"
	case Writing:
		return "writing"
	case Closed:
		return "closed"
	}
	return "unknown"
}

// Worksheet is the streaming state of a Sheet: its temporary file and its
// row cursor.
type Worksheet struct {
	sheet *Sheet
	path  string
	file  *os.File
	w     *bufio.Writer
	state State

	lastWrittenRowIndex int
	maxColumns          int
}

func (ws *Worksheet) Sheet() *Sheet { return ws.sheet }

// Path is the temporary file holding the sheet body.
func (ws *Worksheet) Path() string { return ws.path }

// Writer returns the buffered writer of the temporary file.
func (ws *Worksheet) Writer() io.Writer { return ws.w }

// WriteString appends a fragment to the temporary file.
func (ws *Worksheet) WriteString(s string) error {
	if _, err := ws.w.WriteString(s); err != nil {
		return spouterr.IO("write sheet", ws.path, err)
	}
	return nil
}

func (ws *Worksheet) State() State { return ws.state }

// LastWrittenRowIndex is the 1-based index of the last row written, 0 for
// an empty sheet.
func (ws *Worksheet) LastWrittenRowIndex() int { return ws.lastWrittenRowIndex }

// MaxColumns is the largest cell count of the rows written so far.
func (ws *Worksheet) MaxColumns() int { return ws.maxColumns }

// close flushes and closes the temporary file. It is idempotent.
func (ws *Worksheet) close() error {
	if ws.file == nil {
		return nil
	}
	ferr := ws.w.Flush()
	cerr := ws.file.Close()
	ws.file = nil
	ws.state = Closed
	if ferr != nil {
		return spouterr.IO("close sheet", ws.path, ferr)
	}
	if cerr != nil {
		return spouterr.IO("close sheet", ws.path, cerr)
	}
	return nil
}
