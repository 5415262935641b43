package spouterr

import (
	"errors"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMatchesKindAndCause(t *testing.T) {
	err := IO("open", "book.xlsx", fs.ErrNotExist)

	assert.ErrorIs(t, err, ErrIO)
	assert.ErrorIs(t, err, fs.ErrNotExist)
	assert.NotErrorIs(t, err, ErrFormat)
	assert.Equal(t, "open: i/o error (book.xlsx): file does not exist", err.Error())
}

func TestNewKeepsErrorsOfSameKind(t *testing.T) {
	inner := Formatf("parse xml", "unexpected EOF")
	outer := Format("read row", "xl/worksheets/sheet1.xml", inner)

	assert.Same(t, inner, outer)
}

func TestDerivedSentinels(t *testing.T) {
	tests := []struct {
		err  error
		kind error
	}{
		{ErrIteratorNotRewindable, ErrFormat},
		{ErrSheetNotFound, ErrFormat},
		{ErrUnsupportedType, ErrValue},
		{ErrWriterClosed, ErrIO},
	}
	for _, tt := range tests {
		assert.True(t, errors.Is(tt.err, tt.kind), "%v should be %v", tt.err, tt.kind)
	}
}

func TestValueAndNotFound(t *testing.T) {
	assert.ErrorIs(t, Valuef("string of %d characters", 40000), ErrValue)
	assert.ErrorIs(t, NotFoundf("index %d", 7), ErrNotFound)
}
