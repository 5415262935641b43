package spout

import (
	"errors"
	"os"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/reader"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

// Convert streams src into dst. A multi-sheet destination receives one sheet
// per source sheet, named after it, with the same visibility and active
// sheet. A CSV destination receives the active sheet only.
//
// On failure dst is removed.
func Convert(src, dst string, ropts ReaderOptions, wopts WriterOptions) error {
	logger := ropts.Logger
	if logger == nil {
		logger = wopts.Logger
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	r, err := OpenReader(src, ropts)
	if err != nil {
		return err
	}
	defer r.Close()

	w, err := CreateWriter(dst, wopts)
	if err != nil {
		return err
	}
	if err := copySheets(r, w, logger); err != nil {
		if cerr := w.Close(); cerr != nil {
			logger.Warn("close after failed conversion", zap.Error(cerr))
		}
		if rerr := os.Remove(dst); rerr != nil && !errors.Is(rerr, os.ErrNotExist) {
			logger.Warn("remove partial output", zap.String("path", dst), zap.Error(rerr))
		}
		return err
	}
	return w.Close()
}

func copySheets(r reader.Reader, w Writer, logger *zap.Logger) error {
	sw, multi := w.(SheetWriter)
	var (
		active *writer.Sheet
		copied int
	)
	sheets := r.Sheets()
	for sheets.Next() {
		s := sheets.Sheet()
		if !multi {
			if !s.IsActive() {
				continue
			}
			return copyRows(s, w)
		}

		target := sw.CurrentSheet()
		if copied > 0 {
			var err error
			if target, err = sw.AddNewSheetAndMakeItCurrent(); err != nil {
				return NewConvertError(s.Name(), "write", err)
			}
		}
		if s.Name() != "" {
			if err := target.SetName(s.Name()); err != nil {
				logger.Warn("keeping generated sheet name", zap.String("source", s.Name()), zap.String("name", target.Name()), zap.Error(err))
			}
		}
		target.SetVisible(s.IsVisible())
		if s.IsActive() {
			active = target
		}
		if err := copyRows(s, w); err != nil {
			return err
		}
		copied++
		logger.Debug("copied sheet", zap.String("sheet", s.Name()), zap.Int("index", s.Index()))
	}
	if err := sheets.Err(); err != nil {
		return err
	}
	if active != nil {
		return sw.SetCurrentSheet(active)
	}
	return nil
}

func copyRows(s reader.Sheet, w Writer) error {
	it := s.RowIterator()
	for it.Next() {
		if err := w.AddRow(it.Row()); err != nil {
			return NewConvertError(s.Name(), "write", err)
		}
	}
	if err := it.Err(); err != nil {
		return NewConvertError(s.Name(), "read", err)
	}
	return nil
}
