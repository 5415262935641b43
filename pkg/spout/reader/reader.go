// Package reader defines the read-side API shared by the CSV, XLSX and ODS readers.
//
// A Reader exposes its sheets through a SheetIterator; each Sheet exposes a
// forward-only RowIterator that materializes one row at a time:
//
//	it := sheet.RowIterator()
//	for it.Next() {
//		row := it.Row()
//		...
//	}
//	if err := it.Err(); err != nil {
//		...
//	}
package reader

import (
	"github.com/openspout/openspout-sub000/pkg/spout/models"
)

// Reader is an opened spreadsheet file.
type Reader interface {
	// Sheets returns an iterator over the sheets, in workbook order.
	Sheets() SheetIterator
	// Close releases the file and any temporary resources. It is safe to
	// call at any point, including in the middle of an iteration.
	Close() error
}

// SheetIterator walks the sheets of a workbook.
type SheetIterator interface {
	Next() bool
	Sheet() Sheet
	Err() error
}

// Sheet is one worksheet of a workbook.
type Sheet interface {
	// Index is the 0-based position of the sheet in the workbook.
	Index() int
	Name() string
	// IsActive reports whether the sheet was selected when the file was saved.
	IsActive() bool
	IsVisible() bool
	// RowIterator returns the iterator of the sheet. Repeated calls return
	// the same iterator.
	RowIterator() RowIterator
}

// RowIterator is a forward-only row cursor. The first call to Next rewinds
// the iterator when Rewind was not called explicitly.
type RowIterator interface {
	// Rewind positions the iterator before the first row. Some formats can
	// only be rewound once and return spouterr.ErrIteratorNotRewindable.
	Rewind() error
	Next() bool
	// Row returns the current row. It is valid until the next call to Next.
	Row() *models.Row
	Err() error
}
