package csv

import "github.com/openspout/openspout-sub000/pkg/spout/reader"

// Options configures a CSV reader.
type Options struct {
	reader.Options
	// FieldDelimiter separates fields. Zero selects ','.
	FieldDelimiter rune
	// FieldEnclosure quotes fields. Zero selects '"'.
	FieldEnclosure rune
	// Encoding is an IANA charset label, "auto" to guess it from the content,
	// or empty for UTF-8.
	Encoding string
}

func (o Options) delimiter() rune {
	if o.FieldDelimiter == 0 {
		return ','
	}
	return o.FieldDelimiter
}

func (o Options) enclosure() rune {
	if o.FieldEnclosure == 0 {
		return '"'
	}
	return o.FieldEnclosure
}
