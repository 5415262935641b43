package spout

import (
	"fmt"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Error kinds, see package spouterr.
var (
	ErrIO                    = spouterr.ErrIO
	ErrFormat                = spouterr.ErrFormat
	ErrValue                 = spouterr.ErrValue
	ErrNotFound              = spouterr.ErrNotFound
	ErrIteratorNotRewindable = spouterr.ErrIteratorNotRewindable
	ErrSheetNotFound         = spouterr.ErrSheetNotFound
	ErrUnsupportedType       = spouterr.ErrUnsupportedType
	ErrWriterClosed          = spouterr.ErrWriterClosed
)

// Error is the structured error returned by readers and writers.
type Error = spouterr.Error

// ConvertError represents an error while copying one sheet.
type ConvertError struct {
	SheetName string
	Stage     string // "read", "write"
	Err       error
}

func (e *ConvertError) Error() string {
	return fmt.Sprintf("convert sheet %q (%s): %v", e.SheetName, e.Stage, e.Err)
}

func (e *ConvertError) Unwrap() error {
	return e.Err
}

// NewConvertError creates a new ConvertError.
func NewConvertError(sheetName, stage string, err error) *ConvertError {
	return &ConvertError{
		SheetName: sheetName,
		Stage:     stage,
		Err:       err,
	}
}
