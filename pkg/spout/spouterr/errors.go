// Package spouterr defines the error taxonomy shared by every reader and writer.
package spouterr

import (
	"errors"
	"fmt"
)

// Error kinds. Every error returned by this module matches exactly one of
// them with errors.Is.
var (
	// ErrIO indicates the underlying file or archive could not be opened, created, read or written.
	ErrIO = errors.New("i/o error")
	// ErrFormat indicates malformed or unsupported input, or misuse of a read-side API.
	ErrFormat = errors.New("invalid format")
	// ErrValue indicates a value that cannot be represented in the target format.
	ErrValue = errors.New("invalid value")
	// ErrNotFound indicates a lookup outside the bounds of a table.
	ErrNotFound = errors.New("not found")
)

var (
	// ErrIteratorNotRewindable is returned when a forward-only row iterator is rewound twice.
	ErrIteratorNotRewindable = fmt.Errorf("%w: iterator cannot be rewound twice", ErrFormat)
	// ErrSheetNotFound is returned when a sheet does not belong to the workbook.
	ErrSheetNotFound = fmt.Errorf("%w: sheet not found", ErrFormat)
	// ErrUnsupportedType is returned for an unknown file type or cell value type.
	ErrUnsupportedType = fmt.Errorf("%w: unsupported type", ErrValue)
	// ErrWriterClosed is returned when rows are added to a closed writer.
	ErrWriterClosed = fmt.Errorf("%w: writer is closed", ErrIO)
)

// Error describes a failed operation.
type Error struct {
	Kind error
	Op   string // "open", "read row", "add row", "close", ...
	Path string // file or archive entry, may be empty
	Err  error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// New creates a new Error. An err that already carries kind is returned as is.
func New(kind error, op, path string, err error) error {
	if err != nil && errors.Is(err, kind) {
		return err
	}
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// IO wraps err as an I/O error.
func IO(op, path string, err error) error {
	return New(ErrIO, op, path, err)
}

// Format wraps err as a format error.
func Format(op, path string, err error) error {
	return New(ErrFormat, op, path, err)
}

// Formatf creates a format error from a message.
func Formatf(op, format string, args ...any) error {
	return &Error{Kind: ErrFormat, Op: op, Err: fmt.Errorf(format, args...)}
}

// Valuef creates a value error from a message.
func Valuef(format string, args ...any) error {
	return &Error{Kind: ErrValue, Err: fmt.Errorf(format, args...)}
}

// NotFoundf creates a not-found error from a message.
func NotFoundf(format string, args ...any) error {
	return &Error{Kind: ErrNotFound, Err: fmt.Errorf(format, args...)}
}
