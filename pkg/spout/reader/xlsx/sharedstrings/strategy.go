// Package sharedstrings serves the shared string table of an XLSX workbook.
//
// The table is read once. Small tables are kept in memory; large tables, or
// tables of unknown size, are spilled to chunk files on disk so that resident
// memory stays bounded.
package sharedstrings

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

const (
	// ChunkSize is the number of strings per chunk file.
	ChunkSize = 10000
	// kbPerString is the estimated memory cost of one cached string.
	kbPerString = 12
)

// Strategy stores the strings of a table by index.
type Strategy interface {
	// Add stores the string with the next index.
	Add(s string) error
	// Close is called once every string was added.
	Close() error
	// StringAt returns the string at index i or a spouterr.ErrNotFound error.
	StringAt(i int) (string, error)
	// Cleanup releases the storage.
	Cleanup() error
	// Len returns the number of strings stored.
	Len() int
}

// Choose returns the strategy for a table of numStrings strings (negative
// when unknown) given a memory budget in KB (negative when unbounded).
func Choose(numStrings int, budgetKB int64) string {
	switch {
	case numStrings < 0:
		return "file"
	case numStrings >= ChunkSize:
		return "file"
	case budgetKB >= 0 && int64(numStrings)*kbPerString >= budgetKB:
		return "file"
	}
	return "memory"
}

type inMemory struct {
	strings []string
}

func newInMemory(capacity int) *inMemory {
	return &inMemory{strings: make([]string, 0, capacity)}
}

func (m *inMemory) Add(s string) error {
	m.strings = append(m.strings, s)
	return nil
}

func (m *inMemory) Close() error { return nil }

func (m *inMemory) StringAt(i int) (string, error) {
	if i < 0 || i >= len(m.strings) {
		return "", spouterr.NotFoundf("shared string %d (table has %d)", i, len(m.strings))
	}
	return m.strings[i], nil
}

func (m *inMemory) Cleanup() error {
	m.strings = nil
	return nil
}

func (m *inMemory) Len() int { return len(m.strings) }

// fileBased writes strings as JSON lines into chunk files of chunkSize
// strings and keeps the most recently read chunk in memory.
type fileBased struct {
	dir       string
	chunkSize int
	count     int

	file *os.File
	w    *bufio.Writer

	cachedChunk int
	cached      []string
}

func newFileBased(dir string, chunkSize int) *fileBased {
	return &fileBased{dir: dir, chunkSize: chunkSize, cachedChunk: -1}
}

func (f *fileBased) chunkPath(chunk int) string {
	return filepath.Join(f.dir, "sharedstrings"+strconv.Itoa(chunk))
}

func (f *fileBased) Add(s string) error {
	if f.count%f.chunkSize == 0 {
		if err := f.closeChunk(); err != nil {
			return err
		}
		file, err := os.Create(f.chunkPath(f.count / f.chunkSize))
		if err != nil {
			return spouterr.IO("cache shared strings", f.dir, err)
		}
		f.file, f.w = file, bufio.NewWriter(file)
	}
	line, err := json.Marshal(s)
	if err != nil {
		return spouterr.IO("cache shared strings", f.dir, err)
	}
	f.w.Write(line)
	if err := f.w.WriteByte('\n'); err != nil {
		return spouterr.IO("cache shared strings", f.file.Name(), err)
	}
	f.count++
	return nil
}

func (f *fileBased) closeChunk() error {
	if f.file == nil {
		return nil
	}
	err := f.w.Flush()
	if cerr := f.file.Close(); err == nil {
		err = cerr
	}
	f.file, f.w = nil, nil
	if err != nil {
		return spouterr.IO("cache shared strings", f.dir, err)
	}
	return nil
}

func (f *fileBased) Close() error { return f.closeChunk() }

func (f *fileBased) StringAt(i int) (string, error) {
	if i < 0 || i >= f.count {
		return "", spouterr.NotFoundf("shared string %d (table has %d)", i, f.count)
	}
	chunk := i / f.chunkSize
	if chunk != f.cachedChunk {
		if err := f.loadChunk(chunk); err != nil {
			return "", err
		}
	}
	offset := i % f.chunkSize
	if offset >= len(f.cached) {
		return "", spouterr.NotFoundf("shared string %d missing from chunk %d", i, chunk)
	}
	return f.cached[offset], nil
}

func (f *fileBased) loadChunk(chunk int) error {
	data, err := os.ReadFile(f.chunkPath(chunk))
	if err != nil {
		return spouterr.IO("read shared strings", f.chunkPath(chunk), err)
	}
	lines := bytes.Split(bytes.TrimSuffix(data, []byte{'\n'}), []byte{'\n'})
	cached := make([]string, len(lines))
	for j, line := range lines {
		if err := json.Unmarshal(line, &cached[j]); err != nil {
			return spouterr.IO("read shared strings", f.chunkPath(chunk), err)
		}
	}
	f.cached, f.cachedChunk = cached, chunk
	return nil
}

func (f *fileBased) Cleanup() error {
	f.closeChunk()
	f.cached, f.cachedChunk = nil, -1
	if err := os.RemoveAll(f.dir); err != nil {
		return spouterr.IO("remove shared strings cache", f.dir, err)
	}
	return nil
}

func (f *fileBased) Len() int { return f.count }
