package archive

import (
	"os"
	"path/filepath"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// WorkDir is a temporary directory holding the parts of an archive being built.
type WorkDir struct {
	root string
}

// NewWorkDir creates a unique directory under parent (os.TempDir when empty).
func NewWorkDir(parent, prefix string) (*WorkDir, error) {
	root, err := os.MkdirTemp(parent, prefix)
	if err != nil {
		return nil, spouterr.IO("create temp dir", parent, err)
	}
	return &WorkDir{root: root}, nil
}

func (d *WorkDir) Root() string { return d.root }

// Path returns the absolute path of a slash-separated part name.
func (d *WorkDir) Path(name string) string {
	return filepath.Join(d.root, filepath.FromSlash(name))
}

// Create creates a part file, creating its parent directories.
func (d *WorkDir) Create(name string) (*os.File, error) {
	p := d.Path(name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return nil, spouterr.IO("create part", p, err)
	}
	f, err := os.Create(p)
	if err != nil {
		return nil, spouterr.IO("create part", p, err)
	}
	return f, nil
}

// WriteFile writes a whole part.
func (d *WorkDir) WriteFile(name, content string) error {
	f, err := d.Create(name)
	if err != nil {
		return err
	}
	if _, err := f.WriteString(content); err != nil {
		f.Close()
		return spouterr.IO("write part", f.Name(), err)
	}
	if err := f.Close(); err != nil {
		return spouterr.IO("write part", f.Name(), err)
	}
	return nil
}

// Entry returns the archive entry of a part.
func (d *WorkDir) Entry(name string) Entry {
	return Entry{Name: name, Path: d.Path(name)}
}

// Remove deletes the directory and everything in it.
func (d *WorkDir) Remove() error {
	if err := os.RemoveAll(d.root); err != nil {
		return spouterr.IO("remove temp dir", d.root, err)
	}
	return nil
}
