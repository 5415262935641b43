// Package archive reads and writes the zip containers of XLSX and ODS files.
package archive

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zip"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Reader gives access to the entries of a zip archive by name.
// Names are matched case-insensitively, as package parts are.
type Reader struct {
	path  string
	file  *os.File
	zr    *zip.Reader
	index map[string]*zip.File
}

// Open opens the archive at path. It fails with an I/O error when the file
// cannot be read and with a format error when it is not a zip archive.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, spouterr.IO("open", path, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, spouterr.IO("open", path, err)
	}
	zr, err := zip.NewReader(f, fi.Size())
	if err != nil {
		f.Close()
		return nil, spouterr.Format("open", path, err)
	}

	index := make(map[string]*zip.File, len(zr.File))
	for _, zf := range zr.File {
		index[strings.ToLower(strings.TrimPrefix(zf.Name, "/"))] = zf
	}
	return &Reader{path: path, file: f, zr: zr, index: index}, nil
}

// Path returns the path of the archive on disk.
func (r *Reader) Path() string { return r.path }

// Has reports whether the archive contains an entry.
func (r *Reader) Has(name string) bool {
	_, ok := r.index[normalize(name)]
	return ok
}

// Names returns the entry names in archive order.
func (r *Reader) Names() []string {
	names := make([]string, len(r.zr.File))
	for i, zf := range r.zr.File {
		names[i] = zf.Name
	}
	return names
}

// OpenEntry opens an entry for reading. A missing entry is a format error
// wrapping spouterr.ErrNotFound.
func (r *Reader) OpenEntry(name string) (io.ReadCloser, error) {
	zf, ok := r.index[normalize(name)]
	if !ok {
		return nil, spouterr.Format("open entry", r.path, spouterr.NotFoundf("archive entry %q", name))
	}
	rc, err := zf.Open()
	if err != nil {
		return nil, spouterr.Format("open entry", r.path+"#"+name, err)
	}
	return rc, nil
}

// ReadEntry returns the full content of a small entry.
func (r *Reader) ReadEntry(name string) ([]byte, error) {
	rc, err := r.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, spouterr.Format("read entry", r.path+"#"+name, err)
	}
	return data, nil
}

func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func normalize(name string) string {
	return strings.ToLower(strings.TrimPrefix(name, "/"))
}
