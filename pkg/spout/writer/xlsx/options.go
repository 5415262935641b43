package xlsx

import (
	"time"

	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

// MaxRows is the row limit of an XLSX sheet.
const MaxRows = 1048576

// MaxCellLength is the longest text a cell can hold.
const MaxCellLength = 32767

// Options configures the XLSX writer.
type Options struct {
	writer.Options
	// UseInlineStrings writes text into the cells instead of the shared
	// string table. If nil, defaults to true.
	UseInlineStrings *bool
	// CompressionLevel is a flate level; 0 selects the default level.
	CompressionLevel int
	// Creator and Title fill the document properties.
	Creator string
	Title   string
	// Created is the creation time stored in the document properties.
	// Zero selects the time the writer was created.
	Created time.Time
}

// ShouldUseInlineStrings returns whether text is written inline.
func (o Options) ShouldUseInlineStrings() bool {
	if o.UseInlineStrings != nil {
		return *o.UseInlineStrings
	}
	return true
}

func (o Options) creator() string {
	if o.Creator == "" {
		return "OpenSpout"
	}
	return o.Creator
}
