package ods

import (
	"fmt"
	"strings"
	"time"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/models"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

const (
	xmlHeader  = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"
	mimeType   = "application/vnd.oasis.opendocument.spreadsheet"
	odfVersion = "1.2"

	nsOffice   = "urn:oasis:names:tc:opendocument:xmlns:office:1.0"
	nsStyle    = "urn:oasis:names:tc:opendocument:xmlns:style:1.0"
	nsText     = "urn:oasis:names:tc:opendocument:xmlns:text:1.0"
	nsTable    = "urn:oasis:names:tc:opendocument:xmlns:table:1.0"
	nsFO       = "urn:oasis:names:tc:opendocument:xmlns:xsl-fo-compatible:1.0"
	nsSVG      = "urn:oasis:names:tc:opendocument:xmlns:svg-compatible:1.0"
	nsNumber   = "urn:oasis:names:tc:opendocument:xmlns:datastyle:1.0"
	nsMeta     = "urn:oasis:names:tc:opendocument:xmlns:meta:1.0"
	nsConfig   = "urn:oasis:names:tc:opendocument:xmlns:config:1.0"
	nsManifest = "urn:oasis:names:tc:opendocument:xmlns:manifest:1.0"
	nsDC       = "http://purl.org/dc/elements/1.1/"
	nsCalcExt  = "urn:org:documentfoundation:names:experimental:calc:xmlns:calcext:1.0"
	nsOF       = "urn:oasis:names:tc:opendocument:xmlns:of:1.2"
)

// documentAttrs declares the namespaces used by content.xml and styles.xml.
var documentAttrs = strings.Join([]string{
	`xmlns:office="` + nsOffice + `"`,
	`xmlns:style="` + nsStyle + `"`,
	`xmlns:text="` + nsText + `"`,
	`xmlns:table="` + nsTable + `"`,
	`xmlns:fo="` + nsFO + `"`,
	`xmlns:svg="` + nsSVG + `"`,
	`xmlns:number="` + nsNumber + `"`,
	`xmlns:calcext="` + nsCalcExt + `"`,
	`xmlns:of="` + nsOF + `"`,
	`office:version="` + odfVersion + `"`,
}, " ")

func manifestXML() string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<manifest:manifest xmlns:manifest="%s" manifest:version="%s">`, nsManifest, odfVersion)
	fmt.Fprintf(&sb, `<manifest:file-entry manifest:full-path="/" manifest:media-type="%s" manifest:version="%s"/>`, mimeType, odfVersion)
	for _, part := range []string{"content.xml", "styles.xml", "meta.xml", "settings.xml"} {
		fmt.Fprintf(&sb, `<manifest:file-entry manifest:full-path="%s" manifest:media-type="text/xml"/>`, part)
	}
	sb.WriteString("</manifest:manifest>")
	return sb.String()
}

func metaXML(creator string, created time.Time) string {
	c := escape.ODS(creator)
	date := created.UTC().Format("2006-01-02T15:04:05Z")
	return xmlHeader +
		fmt.Sprintf(`<office:document-meta xmlns:office="%s" xmlns:meta="%s" xmlns:dc="%s" office:version="%s">`, nsOffice, nsMeta, nsDC, odfVersion) +
		"<office:meta>" +
		"<meta:generator>" + c + "</meta:generator>" +
		"<dc:creator>" + c + "</dc:creator>" +
		"<meta:creation-date>" + date + "</meta:creation-date>" +
		"</office:meta></office:document-meta>"
}

func stylesXML(reg *styleRegistry) string {
	def := reg.Default().Style()
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString("<office:document-styles " + documentAttrs + ">")
	sb.WriteString(reg.fontFacesXML())
	sb.WriteString("<office:styles>")
	fmt.Fprintf(&sb, `<style:default-style style:family="table-cell">`+
		`<style:text-properties style:font-name="%s" fo:font-size="%spt" fo:color="#%s"/></style:default-style>`,
		escape.ODS(def.FontName()), writer.FormatNumber(def.FontSize()), def.FontColor())
	sb.WriteString(`<style:style style:name="Default" style:family="table-cell"/>`)
	sb.WriteString("</office:styles>")
	sb.WriteString(`<office:automatic-styles><style:page-layout style:name="pm1"/></office:automatic-styles>`)
	sb.WriteString(`<office:master-styles><style:master-page style:name="Default" style:page-layout-name="pm1"/></office:master-styles>`)
	sb.WriteString("</office:document-styles>")
	return sb.String()
}

// settingsXML stores the active table and the per-table view settings.
func settingsXML(sheets []*writer.Sheet, active *writer.Sheet) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	fmt.Fprintf(&sb, `<office:document-settings xmlns:office="%s" xmlns:config="%s" office:version="%s">`, nsOffice, nsConfig, odfVersion)
	sb.WriteString(`<office:settings><config:config-item-set config:name="ooo:view-settings">`)
	sb.WriteString(`<config:config-item-map-indexed config:name="Views"><config:config-item-map-entry>`)
	sb.WriteString(configItem("ViewId", "string", "view1"))
	sb.WriteString(`<config:config-item-map-named config:name="Tables">`)
	for _, s := range sheets {
		if v := s.SheetView(); v != nil {
			sb.WriteString(tableSettingsXML(s.Name(), v))
		}
	}
	sb.WriteString("</config:config-item-map-named>")
	sb.WriteString(configItem("ActiveTable", "string", escape.ODS(active.Name())))
	sb.WriteString("</config:config-item-map-entry></config:config-item-map-indexed>")
	sb.WriteString("</config:config-item-set></office:settings></office:document-settings>")
	return sb.String()
}

func configItem(name, typ, value string) string {
	return fmt.Sprintf(`<config:config-item config:name="%s" config:type="%s">%s</config:config-item>`, name, typ, value)
}

func tableSettingsXML(name string, v *writer.SheetView) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<config:config-item-map-entry config:name="%s">`, escape.ODS(name))
	sb.WriteString(configItem("ShowGrid", "boolean", fmt.Sprint(!v.HideGridLines)))
	sb.WriteString(configItem("HasColumnRowHeaders", "boolean", fmt.Sprint(!v.HideHeaders)))
	if v.ZoomScale > 0 {
		sb.WriteString(configItem("ZoomValue", "int", fmt.Sprint(v.ZoomScale)))
	}
	if v.FreezeColumns > 0 {
		sb.WriteString(configItem("HorizontalSplitMode", "short", "2"))
		sb.WriteString(configItem("HorizontalSplitPosition", "int", fmt.Sprint(v.FreezeColumns)))
		sb.WriteString(configItem("PositionRight", "int", fmt.Sprint(v.FreezeColumns)))
	}
	if v.FreezeRows > 0 {
		sb.WriteString(configItem("VerticalSplitMode", "short", "2"))
		sb.WriteString(configItem("VerticalSplitPosition", "int", fmt.Sprint(v.FreezeRows)))
		sb.WriteString(configItem("PositionBottom", "int", fmt.Sprint(v.FreezeRows)))
	}
	if v.HasFrozenPanes() {
		pane := "3"
		switch {
		case v.FreezeColumns == 0:
			pane = "2"
		case v.FreezeRows == 0:
			pane = "1"
		}
		sb.WriteString(configItem("ActiveSplitRange", "short", pane))
	}
	sb.WriteString("</config:config-item-map-entry>")
	return sb.String()
}

// contentHead opens content.xml up to the first table.
func contentHead(reg *styleRegistry, sheets []*writer.Sheet, opts writer.Options) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString("<office:document-content " + documentAttrs + ">")
	sb.WriteString(reg.fontFacesXML())
	sb.WriteString(reg.automaticStylesXML(sheets, opts))
	sb.WriteString("<office:body><office:spreadsheet>")
	return sb.String()
}

// contentTail closes content.xml after the last table.
func contentTail(sheets []*writer.Sheet) string {
	var sb strings.Builder
	sb.WriteString(databaseRangesXML(sheets))
	sb.WriteString("</office:spreadsheet></office:body></office:document-content>")
	return sb.String()
}

func tableOpenXML(reg *styleRegistry, s *writer.Sheet, maxColumns int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<table:table table:style-name="%s" table:name="%s">`, tableStyleName(s), escape.ODS(s.Name()))
	sb.WriteString(columnsXML(reg, s.ColumnWidths(), maxColumns))
	return sb.String()
}

const tableCloseXML = "</table:table>"

// columnsXML describes the columns up to the widest row or the last column
// with a width, folding runs of equal widths.
func columnsXML(reg *styleRegistry, widths []writer.ColumnWidth, maxColumns int) string {
	byColumn := make(map[int]float64)
	last := maxColumns
	for _, w := range widths {
		for c := w.Start; c <= w.End; c++ {
			byColumn[c] = w.Width
		}
		last = max(last, w.End)
	}
	last = max(last, 1)

	var sb strings.Builder
	for c := 1; c <= last; {
		width := byColumn[c]
		n := 1
		for c+n <= last && byColumn[c+n] == width {
			n++
		}
		fmt.Fprintf(&sb, `<table:table-column table:style-name="%s"`, reg.columnStyleName(width))
		if n > 1 {
			fmt.Fprintf(&sb, ` table:number-columns-repeated="%d"`, n)
		}
		fmt.Fprintf(&sb, ` table:default-cell-style-name="%s"/>`, cellStyleName(0))
		c += n
	}
	return sb.String()
}

// quoteTableName quotes a table name for a cell range address.
func quoteTableName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func rangeAddress(sheet string, r models.CellRange) string {
	t := quoteTableName(sheet)
	return t + "." + r.StartCell() + ":" + t + "." + r.EndCell()
}

func databaseRangesXML(sheets []*writer.Sheet) string {
	var filtered []*writer.Sheet
	for _, s := range sheets {
		if s.AutoFilter() != nil {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("<table:database-ranges>")
	for _, s := range filtered {
		fmt.Fprintf(&sb, `<table:database-range table:name="__Anonymous_Sheet_DB__%d" table:target-range-address="%s" table:display-filter-buttons="true"/>`,
			s.Index(), escape.ODS(rangeAddress(s.Name(), *s.AutoFilter())))
	}
	sb.WriteString("</table:database-ranges>")
	return sb.String()
}
