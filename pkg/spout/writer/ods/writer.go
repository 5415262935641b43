// Package ods writes OpenDocument spreadsheets.
//
// Each sheet's rows go to a temporary table body. content.xml is assembled
// from the bodies when the writer closes, once every style and column count
// is known.
package ods

import (
	"bufio"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

const contentPart = "content.xml"

// Writer writes an ODS file. Sheet management comes from the embedded
// workbook. Merged ranges only apply to rows written after they were added.
type Writer struct {
	*writer.Workbook
}

// Create starts writing the document at path.
func Create(path string, opts Options) (*Writer, error) {
	if opts.Created.IsZero() {
		opts.Created = time.Now()
	}
	f := &format{opts: opts}
	wb, err := writer.Create(path, f, opts.Options)
	if err != nil {
		return nil, err
	}
	return &Writer{Workbook: wb}, nil
}

// format implements writer.Format for ODS.
type format struct {
	opts   Options
	wb     *writer.Workbook
	styles *styleRegistry
}

func (f *format) Start(wb *writer.Workbook) error {
	f.wb = wb
	reg, err := newStyleRegistry(f.opts.DefaultRowStyle)
	if err != nil {
		return err
	}
	f.styles = reg
	return nil
}

func (f *format) MaxRows() int { return MaxRows }

func (f *format) CloseResources() error { return nil }

// Assemble writes the document parts and zips them, mimetype first and
// uncompressed.
func (f *format) Assemble(wb *writer.Workbook, out io.Writer) error {
	dir := wb.WorkDir()
	sheets := wb.Sheets()

	if err := f.writeContent(wb); err != nil {
		return err
	}
	parts := []struct {
		name    string
		content string
	}{
		{"mimetype", mimeType},
		{"META-INF/manifest.xml", manifestXML()},
		{"meta.xml", metaXML(f.opts.creator(), f.opts.Created)},
		{"settings.xml", settingsXML(sheets, wb.CurrentSheet())},
		{"styles.xml", stylesXML(f.styles)},
	}
	entries := make([]archive.Entry, 0, len(parts)+1)
	for _, p := range parts {
		if err := dir.WriteFile(p.name, p.content); err != nil {
			return err
		}
		entries = append(entries, dir.Entry(p.name))
	}
	entries[0].Store = true
	entries = append(entries, dir.Entry(contentPart))

	wb.Logger().Debug("writing ods archive",
		zap.Int("sheets", len(sheets)),
		zap.Int("styles", f.styles.Len()),
	)
	return archive.Write(out, entries, f.opts.CompressionLevel)
}

// writeContent streams content.xml, copying each table body in place.
func (f *format) writeContent(wb *writer.Workbook) error {
	file, err := wb.WorkDir().Create(contentPart)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(file)
	if err := f.copyContent(w, wb); err != nil {
		file.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		file.Close()
		return spouterr.IO("write part", file.Name(), err)
	}
	if err := file.Close(); err != nil {
		return spouterr.IO("write part", file.Name(), err)
	}
	return nil
}

func (f *format) copyContent(w *bufio.Writer, wb *writer.Workbook) error {
	sheets := wb.Sheets()
	// table openings register the column styles listed in the head
	worksheets := wb.Worksheets()
	opens := make([]string, len(worksheets))
	for i, ws := range worksheets {
		opens[i] = tableOpenXML(f.styles, ws.Sheet(), ws.MaxColumns())
	}
	if _, err := w.WriteString(contentHead(f.styles, sheets, wb.Options())); err != nil {
		return spouterr.IO("write part", contentPart, err)
	}
	for i, ws := range worksheets {
		if _, err := w.WriteString(opens[i]); err != nil {
			return spouterr.IO("write part", contentPart, err)
		}
		body, err := os.Open(ws.Path())
		if err != nil {
			return spouterr.IO("read table", ws.Path(), err)
		}
		_, err = io.Copy(w, body)
		body.Close()
		if err != nil {
			return spouterr.IO("read table", ws.Path(), err)
		}
		if _, err := w.WriteString(tableCloseXML); err != nil {
			return spouterr.IO("write part", contentPart, err)
		}
	}
	if _, err := w.WriteString(contentTail(sheets)); err != nil {
		return spouterr.IO("write part", contentPart, err)
	}
	return nil
}
