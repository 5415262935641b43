package writer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// MaxSheetNameLength is the longest sheet name accepted by spreadsheet applications.
const MaxSheetNameLength = 31

const invalidSheetNameChars = `\/?*:[]`

// SheetView holds the display settings of a sheet.
type SheetView struct {
	HideGridLines bool
	HideHeaders   bool
	RightToLeft   bool
	// ZoomScale is a percentage; zero keeps 100.
	ZoomScale int
	// FreezeRows and FreezeColumns are the number of leading rows and
	// columns kept visible while scrolling.
	FreezeRows    int
	FreezeColumns int
}

// HasFrozenPanes reports whether rows or columns are frozen.
func (v SheetView) HasFrozenPanes() bool {
	return v.FreezeRows > 0 || v.FreezeColumns > 0
}

// TopLeftCell returns the first scrollable cell, e.g. "B3".
func (v SheetView) TopLeftCell() string {
	name, _ := excelize.CoordinatesToCellName(v.FreezeColumns+1, v.FreezeRows+1)
	return name
}

// ColumnWidth applies Width to the 1-based columns Start through End.
type ColumnWidth struct {
	Start int
	End   int
	Width float64
}

// Sheet is a worksheet of a workbook being written.
type Sheet struct {
	index   int
	name    string
	visible bool
	book    *Workbook

	view         *SheetView
	columnWidths []ColumnWidth
	merges       []models.CellRange
	autoFilter   *models.CellRange
	started      bool
}

func (s *Sheet) Index() int { return s.index }
func (s *Sheet) Name() string { return s.name }
func (s *Sheet) IsVisible() bool { return s.visible }

// SetName renames the sheet. The name must be unique within the workbook,
// ignoring case.
func (s *Sheet) SetName(name string) error {
	if err := validateSheetName(name); err != nil {
		return err
	}
	if other, ok := s.book.names[strings.ToLower(name)]; ok && other != s {
		return spouterr.Valuef("sheet name %q is already used", name)
	}
	delete(s.book.names, strings.ToLower(s.name))
	s.name = name
	s.book.names[strings.ToLower(name)] = s
	return nil
}

func validateSheetName(name string) error {
	switch {
	case name == "":
		return spouterr.Valuef("sheet name is empty")
	case utf8.RuneCountInString(name) > MaxSheetNameLength:
		return spouterr.Valuef("sheet name %q is longer than %d characters", name, MaxSheetNameLength)
	case strings.ContainsAny(name, invalidSheetNameChars):
		return spouterr.Valuef("sheet name %q contains one of %s", name, invalidSheetNameChars)
	case strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'"):
		return spouterr.Valuef("sheet name %q starts or ends with a single quote", name)
	}
	return nil
}

func (s *Sheet) SetVisible(visible bool) { s.visible = visible }

// SheetView returns the display settings, or nil when none were set.
func (s *Sheet) SheetView() *SheetView { return s.view }

// SetSheetView sets the display settings. They must be set before the first
// row of the sheet is written.
func (s *Sheet) SetSheetView(v SheetView) error {
	if err := s.checkNotStarted("sheet view"); err != nil {
		return err
	}
	if v.ZoomScale < 0 || v.ZoomScale > 400 || v.FreezeRows < 0 || v.FreezeColumns < 0 {
		return spouterr.Valuef("invalid sheet view %+v", v)
	}
	s.view = &v
	return nil
}

// SetColumnWidth sets the width of the given 1-based columns. Widths must be
// set before the first row of the sheet is written.
func (s *Sheet) SetColumnWidth(width float64, columns ...int) error {
	for _, c := range columns {
		if err := s.SetColumnWidthForRange(width, c, c); err != nil {
			return err
		}
	}
	return nil
}

// SetColumnWidthForRange sets the width of the 1-based columns start through end.
func (s *Sheet) SetColumnWidthForRange(width float64, start, end int) error {
	if err := s.checkNotStarted("column width"); err != nil {
		return err
	}
	if start > end {
		start, end = end, start
	}
	if start < 1 || end > excelize.MaxColumns {
		return spouterr.Valuef("column range %d-%d out of bounds", start, end)
	}
	if width <= 0 {
		return spouterr.Valuef("column width %v must be positive", width)
	}
	s.columnWidths = append(s.columnWidths, ColumnWidth{Start: start, End: end, Width: width})
	return nil
}

func (s *Sheet) ColumnWidths() []ColumnWidth { return s.columnWidths }

// MergeCells merges the cells of r. Merges can be added until the writer closes.
func (s *Sheet) MergeCells(r models.CellRange) {
	s.merges = append(s.merges, r)
}

func (s *Sheet) MergedRanges() []models.CellRange { return s.merges }

// SetAutoFilter puts a filter on the range; nil removes it.
func (s *Sheet) SetAutoFilter(r *models.CellRange) {
	s.autoFilter = r
}

func (s *Sheet) AutoFilter() *models.CellRange { return s.autoFilter }

func (s *Sheet) checkNotStarted(what string) error {
	if s.started {
		return spouterr.Valuef("%s of sheet %q must be set before its first row", what, s.name)
	}
	return nil
}

// defaultSheetName returns the first free "SheetN" name.
func (wb *Workbook) defaultSheetName(index int) string {
	for n := index + 1; ; n++ {
		name := fmt.Sprintf("Sheet%d", n)
		if _, taken := wb.names[strings.ToLower(name)]; !taken {
			return name
		}
	}
}
