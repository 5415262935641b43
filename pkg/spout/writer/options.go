// Package writer implements the workbook and worksheet management shared by
// the XLSX and ODS writers.
//
// A Workbook streams each sheet into its own temporary file and hands the
// files to the format for assembly into the final archive on Close:
//
//	wb.AddRow(models.MustRow("a", 1))
//	sheet, _ := wb.AddNewSheetAndMakeItCurrent()
//	sheet.SetName("Totals")
//	...
//	err := wb.Close()
package writer

import (
	"go.uber.org/zap"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
)

// Options holds the settings shared by the workbook writers.
type Options struct {
	// TempDir hosts the working directory. Empty selects os.TempDir().
	TempDir string
	// DefaultRowStyle is style 0, applied under every row and cell style.
	DefaultRowStyle *models.Style
	// DefaultColumnWidth and DefaultRowHeight are in character widths and
	// points. Zero keeps the application defaults.
	DefaultColumnWidth float64
	DefaultRowHeight   float64
	// MaxRowsPerSheet caps the rows of a sheet. Zero or a value above the
	// format limit selects the format limit.
	MaxRowsPerSheet int
	// CreateNewSheetsAutomatically opens a new sheet when the current one is
	// full. If nil, defaults to true. When disabled, rows past the limit are
	// dropped.
	CreateNewSheetsAutomatically *bool
	// Logger receives debug output. Nil disables logging.
	Logger *zap.Logger
}

// ShouldCreateNewSheetsAutomatically returns whether full sheets rotate.
func (o Options) ShouldCreateNewSheetsAutomatically() bool {
	if o.CreateNewSheetsAutomatically != nil {
		return *o.CreateNewSheetsAutomatically
	}
	return true
}

// LoggerOrNop returns the configured logger or a no-op logger.
func (o Options) LoggerOrNop() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o Options) maxRows(formatLimit int) int {
	if o.MaxRowsPerSheet <= 0 || o.MaxRowsPerSheet > formatLimit {
		return formatLimit
	}
	return o.MaxRowsPerSheet
}
