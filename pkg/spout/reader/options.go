package reader

import "go.uber.org/zap"

// Options holds the settings shared by every reader.
type Options struct {
	// FormatDates returns dates and times as the text shown by a spreadsheet
	// application instead of time values.
	FormatDates bool
	// PreserveEmptyRows yields empty rows instead of skipping them.
	PreserveEmptyRows bool
	// TempDir hosts temporary files. Empty selects os.TempDir().
	TempDir string
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// LoggerOrNop returns the configured logger or a no-op logger.
func (o Options) LoggerOrNop() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}
