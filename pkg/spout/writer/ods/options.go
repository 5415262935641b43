package ods

import (
	"time"

	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

// MaxRows is the row limit of an ODS sheet.
const MaxRows = 1048576

// Options configures the ODS writer.
type Options struct {
	writer.Options
	// CompressionLevel is a flate level; 0 selects the default level.
	CompressionLevel int
	// Creator is stored in meta.xml.
	Creator string
	// Created is stored in meta.xml; it defaults to the time the writer
	// was created.
	Created time.Time
}

func (o Options) creator() string {
	if o.Creator == "" {
		return "OpenSpout"
	}
	return o.Creator
}
