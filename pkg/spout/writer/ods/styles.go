package ods

import (
	"fmt"
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
	"github.com/openspout/openspout-sub000/pkg/spout/writer/styles"
)

// pointsPerCharacter converts a column width in characters to points.
const pointsPerCharacter = 5.25

// styleRegistry extends the generic registry with the font faces, column
// widths and row heights referenced by content.xml.
type styleRegistry struct {
	*styles.Registry
	fonts   *styles.Table
	columns *styles.Table
	rows    *styles.Table
}

func newStyleRegistry(defaultStyle *models.Style) (*styleRegistry, error) {
	r := &styleRegistry{
		fonts:   styles.NewTable(0),
		columns: styles.NewTable(1),
		rows:    styles.NewTable(2),
	}
	reg, err := styles.NewRegistry(defaultStyle, func(rs models.RegisteredStyle) {
		r.fonts.ID(rs.Style().FontName())
	})
	if err != nil {
		return nil, err
	}
	r.Registry = reg
	return r, nil
}

func cellStyleName(id int) string { return fmt.Sprintf("ce%d", id+1) }

// columnStyleName returns the style of a column width; co0 has no width.
func (r *styleRegistry) columnStyleName(width float64) string {
	if width <= 0 {
		return "co0"
	}
	return fmt.Sprintf("co%d", r.columns.ID(writer.FormatNumber(width*pointsPerCharacter)))
}

// rowStyleName returns the style of a row height; ro1 is the default height.
func (r *styleRegistry) rowStyleName(height float64) string {
	if height <= 0 {
		return "ro1"
	}
	return fmt.Sprintf("ro%d", r.rows.ID(writer.FormatNumber(height)))
}

var textAligns = map[models.HorizontalAlignment]string{
	models.AlignLeft:    "start",
	models.AlignRight:   "end",
	models.AlignCenter:  "center",
	models.AlignJustify: "justify",
}

var verticalAligns = map[models.VerticalAlignment]string{
	models.AlignTop:         "top",
	models.AlignMiddle:      "middle",
	models.AlignBottom:      "bottom",
	models.AlignDistributed: "middle",
}

var borderWidths = map[models.BorderWidth]string{
	models.BorderWidthThin:   "0.75pt",
	models.BorderWidthMedium: "1.75pt",
	models.BorderWidthThick:  "2.5pt",
}

func borderAttr(p models.BorderPart) string {
	if p.Style == models.BorderStyleNone {
		return "none"
	}
	return fmt.Sprintf("%s %s #%s", borderWidths[p.Width], p.Style, p.Color)
}

func cellStyleXML(rs models.RegisteredStyle) string {
	s := rs.Style()
	var sb strings.Builder
	fmt.Fprintf(&sb, `<style:style style:name="%s" style:family="table-cell" style:parent-style-name="Default">`, cellStyleName(rs.ID()))

	var cell []string
	if s.ShouldWrapText() {
		cell = append(cell, `fo:wrap-option="wrap"`)
	}
	if s.ShouldShrinkToFit() {
		cell = append(cell, `style:shrink-to-fit="true"`)
	}
	if v, ok := verticalAligns[s.VerticalAlignment()]; ok {
		cell = append(cell, fmt.Sprintf(`style:vertical-align="%s"`, v))
	}
	if s.HasBackgroundColor() {
		cell = append(cell, fmt.Sprintf(`fo:background-color="#%s"`, s.BackgroundColor()))
	}
	if s.HasBorder() {
		for _, p := range s.Border().Parts() {
			cell = append(cell, fmt.Sprintf(`fo:border-%s="%s"`, p.Name, borderAttr(p)))
		}
	}
	if len(cell) > 0 {
		sb.WriteString("<style:table-cell-properties " + strings.Join(cell, " ") + "/>")
	}
	if a, ok := textAligns[s.HorizontalAlignment()]; ok {
		fmt.Fprintf(&sb, `<style:paragraph-properties fo:text-align="%s"/>`, a)
	}

	fmt.Fprintf(&sb, `<style:text-properties fo:font-size="%spt" fo:color="#%s" style:font-name="%s"`,
		writer.FormatNumber(s.FontSize()), s.FontColor(), escape.ODS(s.FontName()))
	if s.IsFontBold() {
		sb.WriteString(` fo:font-weight="bold" style:font-weight-asian="bold" style:font-weight-complex="bold"`)
	}
	if s.IsFontItalic() {
		sb.WriteString(` fo:font-style="italic" style:font-style-asian="italic" style:font-style-complex="italic"`)
	}
	if s.IsFontUnderline() {
		sb.WriteString(` style:text-underline-style="solid" style:text-underline-width="auto" style:text-underline-color="font-color"`)
	}
	if s.IsFontStrikethrough() {
		sb.WriteString(` style:text-line-through-style="solid"`)
	}
	sb.WriteString("/></style:style>")
	return sb.String()
}

func (r *styleRegistry) fontFacesXML() string {
	var sb strings.Builder
	sb.WriteString("<office:font-face-decls>")
	for _, name := range r.fonts.Keys() {
		n := escape.ODS(name)
		fmt.Fprintf(&sb, `<style:font-face style:name="%s" svg:font-family="%s"/>`, n, n)
	}
	sb.WriteString("</office:font-face-decls>")
	return sb.String()
}

// automaticStylesXML renders the table, column, row and cell styles.
func (r *styleRegistry) automaticStylesXML(sheets []*writer.Sheet, opts writer.Options) string {
	var sb strings.Builder
	sb.WriteString("<office:automatic-styles>")
	for _, s := range sheets {
		mode := "lr-tb"
		if v := s.SheetView(); v != nil && v.RightToLeft {
			mode = "rl-tb"
		}
		fmt.Fprintf(&sb, `<style:style style:name="%s" style:family="table" style:master-page-name="Default">`+
			`<style:table-properties table:display="%t" style:writing-mode="%s"/></style:style>`,
			tableStyleName(s), s.IsVisible(), mode)
	}

	if opts.DefaultColumnWidth > 0 {
		fmt.Fprintf(&sb, `<style:style style:name="co0" style:family="table-column">`+
			`<style:table-column-properties fo:break-before="auto" style:column-width="%spt"/></style:style>`,
			writer.FormatNumber(opts.DefaultColumnWidth*pointsPerCharacter))
	} else {
		sb.WriteString(`<style:style style:name="co0" style:family="table-column">` +
			`<style:table-column-properties fo:break-before="auto" style:use-optimal-column-width="true"/></style:style>`)
	}
	for i, width := range r.columns.Keys() {
		fmt.Fprintf(&sb, `<style:style style:name="co%d" style:family="table-column">`+
			`<style:table-column-properties fo:break-before="auto" style:use-optimal-column-width="false" style:column-width="%spt"/></style:style>`,
			i+1, width)
	}

	height := "15"
	if opts.DefaultRowHeight > 0 {
		height = writer.FormatNumber(opts.DefaultRowHeight)
	}
	fmt.Fprintf(&sb, `<style:style style:name="ro1" style:family="table-row">`+
		`<style:table-row-properties fo:break-before="auto" style:row-height="%spt" style:use-optimal-row-height="true"/></style:style>`, height)
	for i, h := range r.rows.Keys() {
		fmt.Fprintf(&sb, `<style:style style:name="ro%d" style:family="table-row">`+
			`<style:table-row-properties fo:break-before="auto" style:row-height="%spt" style:use-optimal-row-height="false"/></style:style>`,
			i+2, h)
	}

	for _, rs := range r.Styles() {
		sb.WriteString(cellStyleXML(rs))
	}
	sb.WriteString("</office:automatic-styles>")
	return sb.String()
}

func tableStyleName(s *writer.Sheet) string { return fmt.Sprintf("ta%d", s.Index()+1) }
