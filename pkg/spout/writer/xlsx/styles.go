package xlsx

import (
	"fmt"
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
	"github.com/openspout/openspout-sub000/pkg/spout/writer/styles"
)

// Formats given to date and duration cells whose style has none.
const (
	DefaultDateFormat     = "yyyy-mm-dd hh:mm:ss"
	DefaultDurationFormat = "[h]:mm:ss"
)

// Fill 0 is "none" and fill 1 the reserved gray125 pattern; border 0 is the
// empty border.
const (
	firstCustomFill   = 2
	firstCustomBorder = 1
)

// styleRef is what a cellXfs entry points to.
type styleRef struct {
	numFmtID int
	fillID   int
	borderID int
}

// styleRegistry extends the generic registry with the sub-resource tables
// of styles.xml.
type styleRegistry struct {
	*styles.Registry
	fills   *styles.Table
	borders *styles.Table
	numFmts *styles.Table
	refs    []styleRef
}

func newStyleRegistry(defaultStyle *models.Style) (*styleRegistry, error) {
	r := &styleRegistry{
		fills:   styles.NewTable(firstCustomFill),
		borders: styles.NewTable(firstCustomBorder),
		numFmts: styles.NewTable(exceldate.FirstCustomFormatID),
	}
	reg, err := styles.NewRegistry(defaultStyle, r.addRefs)
	if err != nil {
		return nil, err
	}
	r.Registry = reg
	return r, nil
}

// addRefs registers the fill, border and number format of a new style.
func (r *styleRegistry) addRefs(rs models.RegisteredStyle) {
	s := rs.Style()
	var ref styleRef
	if s.HasBackgroundColor() {
		ref.fillID = r.fills.ID(s.BackgroundColor())
	}
	if s.HasBorder() {
		ref.borderID = r.borders.ID(borderXML(s.Border()))
	}
	if s.HasFormat() {
		if id, ok := exceldate.BuiltinFormatID(s.Format()); ok {
			ref.numFmtID = id
		} else {
			ref.numFmtID = r.numFmts.ID(s.Format())
		}
	}
	r.refs = append(r.refs, ref)
}

// register resolves the style of a cell, giving dates and durations a
// number format when they have none.
func (r *styleRegistry) register(rowStyle *models.Style, c *models.Cell) (models.RegisteredStyle, error) {
	s := styles.Merge(rowStyle, c)
	if !s.HasFormat() {
		switch c.Kind() {
		case models.KindDate:
			s = s.Clone().SetFormat(DefaultDateFormat)
		case models.KindDuration:
			s = s.Clone().SetFormat(DefaultDurationFormat)
		}
	}
	return r.Register(s)
}

// hasFillOrBorder reports whether an empty cell with this style is visible.
func (r *styleRegistry) hasFillOrBorder(id int) bool {
	return r.refs[id].fillID != 0 || r.refs[id].borderID != 0
}

// borderStyles maps a style and width to the SpreadsheetML border style.
var borderStyles = map[models.BorderStyle]map[models.BorderWidth]string{
	models.BorderStyleSolid: {
		models.BorderWidthThin: "thin", models.BorderWidthMedium: "medium", models.BorderWidthThick: "thick",
	},
	models.BorderStyleDashed: {
		models.BorderWidthThin: "dashed", models.BorderWidthMedium: "mediumDashed", models.BorderWidthThick: "mediumDashed",
	},
	models.BorderStyleDotted: {
		models.BorderWidthThin: "dotted", models.BorderWidthMedium: "dotted", models.BorderWidthThick: "dotted",
	},
	models.BorderStyleDouble: {
		models.BorderWidthThin: "double", models.BorderWidthMedium: "double", models.BorderWidthThick: "double",
	},
}

func borderXML(b *models.Border) string {
	var sb strings.Builder
	sb.WriteString("<border>")
	for _, name := range []models.BorderName{models.BorderLeft, models.BorderRight, models.BorderTop, models.BorderBottom} {
		p := b.Part(name)
		if p == nil || p.Style == models.BorderStyleNone {
			fmt.Fprintf(&sb, "<%s/>", name)
			continue
		}
		fmt.Fprintf(&sb, `<%s style="%s"><color rgb="%s"/></%s>`, name, borderStyles[p.Style][p.Width], models.ToARGB(p.Color), name)
	}
	sb.WriteString("<diagonal/></border>")
	return sb.String()
}

func fontXML(s *models.Style) string {
	var sb strings.Builder
	sb.WriteString("<font>")
	if s.IsFontBold() {
		sb.WriteString("<b/>")
	}
	if s.IsFontItalic() {
		sb.WriteString("<i/>")
	}
	if s.IsFontUnderline() {
		sb.WriteString("<u/>")
	}
	if s.IsFontStrikethrough() {
		sb.WriteString("<strike/>")
	}
	fmt.Fprintf(&sb, `<sz val="%s"/><color rgb="%s"/><name val="%s"/>`,
		writer.FormatNumber(s.FontSize()), models.ToARGB(s.FontColor()), escape.XML(s.FontName()))
	sb.WriteString("</font>")
	return sb.String()
}

func alignmentXML(s *models.Style) string {
	var attrs []string
	if h := s.HorizontalAlignment(); h != "" {
		attrs = append(attrs, fmt.Sprintf(`horizontal="%s"`, h))
	}
	if v := s.VerticalAlignment(); v != "" {
		attrs = append(attrs, fmt.Sprintf(`vertical="%s"`, v))
	}
	if s.ShouldWrapText() {
		attrs = append(attrs, `wrapText="1"`)
	}
	if s.ShouldShrinkToFit() {
		attrs = append(attrs, `shrinkToFit="1"`)
	}
	if len(attrs) == 0 {
		return ""
	}
	return "<alignment " + strings.Join(attrs, " ") + "/>"
}

// styleSheetXML renders xl/styles.xml. Font ids equal style ids.
func (r *styleRegistry) styleSheetXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<styleSheet xmlns="` + nsMain + `">`)

	if keys := r.numFmts.Keys(); len(keys) > 0 {
		fmt.Fprintf(&sb, `<numFmts count="%d">`, len(keys))
		for i, code := range keys {
			fmt.Fprintf(&sb, `<numFmt numFmtId="%d" formatCode="%s"/>`, exceldate.FirstCustomFormatID+i, escape.XML(code))
		}
		sb.WriteString("</numFmts>")
	}

	all := r.Styles()
	fmt.Fprintf(&sb, `<fonts count="%d">`, len(all))
	for _, rs := range all {
		sb.WriteString(fontXML(rs.Style()))
	}
	sb.WriteString("</fonts>")

	fmt.Fprintf(&sb, `<fills count="%d">`, firstCustomFill+r.fills.Len())
	sb.WriteString(`<fill><patternFill patternType="none"/></fill><fill><patternFill patternType="gray125"/></fill>`)
	for _, rgb := range r.fills.Keys() {
		fmt.Fprintf(&sb, `<fill><patternFill patternType="solid"><fgColor rgb="%s"/></patternFill></fill>`, models.ToARGB(rgb))
	}
	sb.WriteString("</fills>")

	fmt.Fprintf(&sb, `<borders count="%d">`, firstCustomBorder+r.borders.Len())
	sb.WriteString("<border><left/><right/><top/><bottom/><diagonal/></border>")
	for _, b := range r.borders.Keys() {
		sb.WriteString(b)
	}
	sb.WriteString("</borders>")

	sb.WriteString(`<cellStyleXfs count="1"><xf numFmtId="0" fontId="0" fillId="0" borderId="0"/></cellStyleXfs>`)
	fmt.Fprintf(&sb, `<cellXfs count="%d">`, len(all))
	for _, rs := range all {
		s, ref := rs.Style(), r.refs[rs.ID()]
		fmt.Fprintf(&sb, `<xf numFmtId="%d" fontId="%d" fillId="%d" borderId="%d" xfId="0"`, ref.numFmtID, rs.ID(), ref.fillID, ref.borderID)
		if s.HasFont() {
			sb.WriteString(` applyFont="1"`)
		}
		if ref.fillID != 0 {
			sb.WriteString(` applyFill="1"`)
		}
		if ref.borderID != 0 {
			sb.WriteString(` applyBorder="1"`)
		}
		if s.HasFormat() {
			sb.WriteString(` applyNumberFormat="1"`)
		}
		if align := alignmentXML(s); align != "" {
			sb.WriteString(` applyAlignment="1">` + align + "</xf>")
		} else {
			sb.WriteString("/>")
		}
	}
	sb.WriteString("</cellXfs>")
	sb.WriteString(`<cellStyles count="1"><cellStyle name="Normal" xfId="0" builtinId="0"/></cellStyles>`)
	sb.WriteString("</styleSheet>")
	return sb.String()
}
