package archive

import (
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Entry is a file on disk to be stored in the archive under Name.
type Entry struct {
	Name string
	Path string
	// Store disables compression, as required for the ODS mimetype entry.
	Store bool
}

// Write streams entries, in order, into a zip archive written to w.
// level is a flate compression level; 0 selects flate.DefaultCompression.
func Write(w io.Writer, entries []Entry, level int) error {
	if level == 0 {
		level = flate.DefaultCompression
	}
	zw := zip.NewWriter(w)
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, e := range entries {
		if err := addEntry(zw, e); err != nil {
			zw.Close()
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return spouterr.IO("write archive", "", err)
	}
	return nil
}

func addEntry(zw *zip.Writer, e Entry) error {
	f, err := os.Open(e.Path)
	if err != nil {
		return spouterr.IO("write archive", e.Path, err)
	}
	defer f.Close()

	method := zip.Deflate
	if e.Store {
		method = zip.Store
	}
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: filepath.ToSlash(e.Name), Method: method})
	if err != nil {
		return spouterr.IO("write archive", e.Name, err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return spouterr.IO("write archive", e.Name, err)
	}
	return nil
}
