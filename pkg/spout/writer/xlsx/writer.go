// Package xlsx writes Office Open XML workbooks.
//
// Rows are streamed to one temporary file per sheet; styles, the shared
// string table and the workbook parts are produced when the writer closes.
package xlsx

import (
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

// Writer writes an XLSX file. Sheet management comes from the embedded
// workbook.
type Writer struct {
	*writer.Workbook
}

// Create starts writing the workbook at path.
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

// format implements writer.Format for XLSX.
type format struct {
	opts          Options
	wb            *writer.Workbook
	styles        *styleRegistry
	sharedStrings *sharedStringsWriter
}

func (f *format) Start(wb *writer.Workbook) error {
	f.wb = wb
	reg, err := newStyleRegistry(f.opts.DefaultRowStyle)
	if err != nil {
		return err
	}
	f.styles = reg
	if !f.opts.ShouldUseInlineStrings() {
		ssw, err := newSharedStringsWriter(wb.WorkDir())
		if err != nil {
			return err
		}
		f.sharedStrings = ssw
	}
	return nil
}

func (f *format) MaxRows() int { return MaxRows }

func (f *format) CloseResources() error {
	if f.sharedStrings == nil {
		return nil
	}
	return f.sharedStrings.close()
}

// Assemble writes the workbook parts and zips them with the sheets.
func (f *format) Assemble(wb *writer.Workbook, out io.Writer) error {
	dir := wb.WorkDir()
	sheets := wb.Sheets()
	shared := f.sharedStrings != nil

	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML(len(sheets), shared)},
		{"_rels/.rels", rootRelsXML()},
		{"docProps/app.xml", appXML(f.opts.creator())},
		{"docProps/core.xml", coreXML(f.opts.creator(), f.opts.Title, f.opts.Created)},
		{"xl/workbook.xml", workbookXML(sheets, wb.CurrentSheet().Index())},
		{"xl/_rels/workbook.xml.rels", workbookRelsXML(len(sheets), shared)},
		{"xl/styles.xml", f.styles.styleSheetXML()},
	}
	entries := make([]archive.Entry, 0, len(parts)+len(sheets)+1)
	for _, p := range parts {
		if err := dir.WriteFile(p.name, p.content); err != nil {
			return err
		}
		entries = append(entries, dir.Entry(p.name))
	}
	if shared {
		entries = append(entries, dir.Entry(sharedStringsPart))
	}
	for _, ws := range wb.Worksheets() {
		entries = append(entries, archive.Entry{Name: worksheetPart(ws.Sheet().Index()), Path: ws.Path()})
	}

	wb.Logger().Debug("writing xlsx archive",
		zap.Int("entries", len(entries)),
		zap.Int("styles", f.styles.Len()),
		zap.Bool("shared_strings", shared),
	)
	return archive.Write(out, entries, f.opts.CompressionLevel)
}
