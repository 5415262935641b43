package sharedstrings

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/mem"
	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Options configures the caching strategy.
type Options struct {
	// TempDir hosts the chunk files. Empty selects os.TempDir().
	TempDir string
	// MemoryBudgetKB bounds the memory used by the in-memory strategy.
	// 0 derives the budget from the available system memory and a negative
	// value means unbounded.
	MemoryBudgetKB int64
	Logger         *zap.Logger
}

// Manager extracts the shared string table of a workbook and serves it by index.
type Manager struct {
	archive *archive.Reader
	path    string
	opts    Options
	logger  *zap.Logger

	strategy Strategy
	workDir  *archive.WorkDir
}

// NewManager creates a manager for the table stored at path inside the archive.
func NewManager(ar *archive.Reader, path string, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{archive: ar, path: path, opts: opts, logger: logger}
}

// HasSharedStrings reports whether the archive contains the table.
func (m *Manager) HasSharedStrings() bool {
	return m.path != "" && m.archive.Has(m.path)
}

// Extract reads the whole table. It must be called once, before StringAt.
func (m *Manager) Extract() error {
	if !m.HasSharedStrings() {
		m.strategy = newInMemory(0)
		return nil
	}
	rc, err := m.archive.OpenEntry(m.path)
	if err != nil {
		return err
	}
	defer rc.Close()

	r := xmlevent.NewReader(rc, m.archive.Path()+"#"+m.path)
	d := xmlevent.NewDispatcher(r)
	d.Register(xml.Name{Local: "sst"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		count := tableSize(n)
		if err := m.chooseStrategy(count); err != nil {
			return xmlevent.Stop, err
		}
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Local: "si"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		if m.strategy == nil {
			if err := m.chooseStrategy(-1); err != nil {
				return xmlevent.Stop, err
			}
		}
		el, err := n.Expand()
		if err != nil {
			return xmlevent.Stop, err
		}
		return xmlevent.Continue, m.strategy.Add(Text(el))
	})
	if _, err := d.RunUntilStopped(); err != nil {
		return err
	}
	if m.strategy == nil {
		m.strategy = newInMemory(0)
	}
	return m.strategy.Close()
}

// tableSize returns the number of unique strings announced by the sst
// element, or -1 when unknown.
func tableSize(n *xmlevent.Node) int {
	for _, attr := range []string{"uniqueCount", "count"} {
		if v, ok := n.AttrValue(attr); ok {
			if count, err := strconv.Atoi(v); err == nil && count >= 0 {
				return count
			}
		}
	}
	return -1
}

func (m *Manager) memoryBudgetKB() int64 {
	if m.opts.MemoryBudgetKB != 0 {
		return m.opts.MemoryBudgetKB
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		m.logger.Debug("available memory unknown", zap.Error(err))
		return -1
	}
	return int64(vm.Available / 1024)
}

func (m *Manager) chooseStrategy(count int) error {
	budget := m.memoryBudgetKB()
	kind := Choose(count, budget)
	m.logger.Debug("caching shared strings",
		zap.String("path", m.path),
		zap.Int("count", count),
		zap.Int64("budget_kb", budget),
		zap.String("strategy", kind),
	)
	if kind == "memory" {
		m.strategy = newInMemory(count)
		return nil
	}
	wd, err := archive.NewWorkDir(m.opts.TempDir, "spout-sharedstrings-")
	if err != nil {
		return err
	}
	m.workDir = wd
	m.strategy = newFileBased(wd.Root(), ChunkSize)
	return nil
}

// Text returns the text of a rich string element (si or is). Phonetic runs
// are skipped and text nodes are trimmed unless they preserve whitespace.
func Text(si *xmlevent.Element) string {
	var b strings.Builder
	si.Walk(func(el *xmlevent.Element) bool {
		switch el.Name.Local {
		case "rPh":
			return false
		case "t":
			text := el.TextContent()
			if v, _ := el.AttrValue("space"); v != "preserve" {
				text = strings.TrimSpace(text)
			}
			b.WriteString(text)
			return false
		}
		return true
	})
	return escape.XLSXUnescape(b.String())
}

// StringAt returns the string at index i. An index outside the table is a
// spouterr.ErrNotFound error.
func (m *Manager) StringAt(i int) (string, error) {
	if m.strategy == nil {
		return "", spouterr.NotFoundf("shared string %d: table not extracted", i)
	}
	return m.strategy.StringAt(i)
}

// Len returns the number of strings extracted.
func (m *Manager) Len() int {
	if m.strategy == nil {
		return 0
	}
	return m.strategy.Len()
}

// Cleanup releases the cache. It is safe to call more than once.
func (m *Manager) Cleanup() error {
	var err error
	if m.strategy != nil {
		err = m.strategy.Cleanup()
		m.strategy = nil
	}
	if m.workDir != nil {
		if rerr := m.workDir.Remove(); err == nil {
			err = rerr
		}
		m.workDir = nil
	}
	return err
}
