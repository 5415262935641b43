package xlsx

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

const (
	sharedStringsPart = "xl/sharedStrings.xml"
	sharedStringsBody = "sharedStrings.body"
)

// sharedStringsWriter appends every string to the table without
// deduplication; the count is only known when it closes.
type sharedStringsWriter struct {
	dir    *archive.WorkDir
	file   *os.File
	w      *bufio.Writer
	count  int
	closed bool
}

func newSharedStringsWriter(dir *archive.WorkDir) (*sharedStringsWriter, error) {
	f, err := dir.Create(sharedStringsBody)
	if err != nil {
		return nil, err
	}
	return &sharedStringsWriter{dir: dir, file: f, w: bufio.NewWriter(f)}, nil
}

// add writes s to the table and returns its index.
func (s *sharedStringsWriter) add(text string) (int, error) {
	if _, err := fmt.Fprintf(s.w, `<si><t xml:space="preserve">%s</t></si>`, escape.XLSX(text)); err != nil {
		return 0, spouterr.IO("write shared strings", s.file.Name(), err)
	}
	s.count++
	return s.count - 1, nil
}

// close writes the table part from the collected body. It is idempotent.
func (s *sharedStringsWriter) close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.w.Flush(); err != nil {
		s.file.Close()
		return spouterr.IO("write shared strings", s.file.Name(), err)
	}
	if err := s.file.Close(); err != nil {
		return spouterr.IO("write shared strings", s.file.Name(), err)
	}

	body, err := os.Open(s.dir.Path(sharedStringsBody))
	if err != nil {
		return spouterr.IO("write shared strings", sharedStringsBody, err)
	}
	defer body.Close()
	out, err := s.dir.Create(sharedStringsPart)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(out)
	fmt.Fprintf(w, `%s<sst xmlns="%s" count="%d" uniqueCount="%d">`, xmlHeader, nsMain, s.count, s.count)
	if _, err := io.Copy(w, body); err != nil {
		out.Close()
		return spouterr.IO("write shared strings", sharedStringsPart, err)
	}
	w.WriteString("</sst>")
	if err := w.Flush(); err != nil {
		out.Close()
		return spouterr.IO("write shared strings", sharedStringsPart, err)
	}
	if err := out.Close(); err != nil {
		return spouterr.IO("write shared strings", sharedStringsPart, err)
	}
	return nil
}
