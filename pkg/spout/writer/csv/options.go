package csv

import "go.uber.org/zap"

// Options configures the CSV writer.
type Options struct {
	// FieldDelimiter separates fields. Zero selects ','.
	FieldDelimiter rune
	// FieldEnclosure quotes fields. Zero selects '"'.
	FieldEnclosure rune
	// AddBOM writes a UTF-8 byte order mark first. Nil means true.
	AddBOM *bool
	Logger *zap.Logger
}

func (o Options) ShouldAddBOM() bool {
	return o.AddBOM == nil || *o.AddBOM
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

func (o Options) loggerOrNop() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
