package xlsx

import "github.com/openspout/openspout-sub000/pkg/spout/reader"

// Options configures the XLSX reader.
type Options struct {
	reader.Options
	// MemoryBudgetKB bounds the memory used to cache shared strings in
	// memory. 0 derives it from the available system memory, a negative
	// value means unbounded.
	MemoryBudgetKB int64
}
