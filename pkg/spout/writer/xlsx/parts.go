package xlsx

import (
	"fmt"
	"strings"
	"time"

	"github.com/openspout/openspout-sub000/pkg/spout/escape"
	"github.com/openspout/openspout-sub000/pkg/spout/writer"
)

const (
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"

	nsMain          = "http://schemas.openxmlformats.org/spreadsheetml/2006/main"
	nsRelationships = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
	nsPackageRels   = "http://schemas.openxmlformats.org/package/2006/relationships"

	relOfficeDocument = nsRelationships + "/officeDocument"
	relWorksheet      = nsRelationships + "/worksheet"
	relStyles         = nsRelationships + "/styles"
	relSharedStrings  = nsRelationships + "/sharedStrings"
	relExtended       = nsRelationships + "/extended-properties"
	relCore           = nsPackageRels + "/metadata/core-properties"

	ctWorkbook      = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"
	ctWorksheet     = "application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"
	ctStyles        = "application/vnd.openxmlformats-officedocument.spreadsheetml.styles+xml"
	ctSharedStrings = "application/vnd.openxmlformats-officedocument.spreadsheetml.sharedStrings+xml"
	ctCore          = "application/vnd.openxmlformats-package.core-properties+xml"
	ctExtended      = "application/vnd.openxmlformats-officedocument.extended-properties+xml"
)

func worksheetPart(index int) string {
	return fmt.Sprintf("xl/worksheets/sheet%d.xml", index+1)
}

func contentTypesXML(sheets int, sharedStrings bool) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">`)
	sb.WriteString(`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>`)
	sb.WriteString(`<Default Extension="xml" ContentType="application/xml"/>`)
	fmt.Fprintf(&sb, `<Override PartName="/xl/workbook.xml" ContentType="%s"/>`, ctWorkbook)
	for i := 0; i < sheets; i++ {
		fmt.Fprintf(&sb, `<Override PartName="/%s" ContentType="%s"/>`, worksheetPart(i), ctWorksheet)
	}
	fmt.Fprintf(&sb, `<Override PartName="/xl/styles.xml" ContentType="%s"/>`, ctStyles)
	if sharedStrings {
		fmt.Fprintf(&sb, `<Override PartName="/%s" ContentType="%s"/>`, sharedStringsPart, ctSharedStrings)
	}
	fmt.Fprintf(&sb, `<Override PartName="/docProps/core.xml" ContentType="%s"/>`, ctCore)
	fmt.Fprintf(&sb, `<Override PartName="/docProps/app.xml" ContentType="%s"/>`, ctExtended)
	sb.WriteString("</Types>")
	return sb.String()
}

func rootRelsXML() string {
	return xmlHeader + `<Relationships xmlns="` + nsPackageRels + `">` +
		`<Relationship Id="rIdWorkbook" Type="` + relOfficeDocument + `" Target="xl/workbook.xml"/>` +
		`<Relationship Id="rIdCore" Type="` + relCore + `" Target="docProps/core.xml"/>` +
		`<Relationship Id="rIdApp" Type="` + relExtended + `" Target="docProps/app.xml"/>` +
		`</Relationships>`
}

func workbookRelsXML(sheets int, sharedStrings bool) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<Relationships xmlns="` + nsPackageRels + `">`)
	for i := 0; i < sheets; i++ {
		fmt.Fprintf(&sb, `<Relationship Id="rIdSheet%d" Type="%s" Target="worksheets/sheet%d.xml"/>`, i+1, relWorksheet, i+1)
	}
	fmt.Fprintf(&sb, `<Relationship Id="rIdStyles" Type="%s" Target="styles.xml"/>`, relStyles)
	if sharedStrings {
		fmt.Fprintf(&sb, `<Relationship Id="rIdSharedStrings" Type="%s" Target="sharedStrings.xml"/>`, relSharedStrings)
	}
	sb.WriteString("</Relationships>")
	return sb.String()
}

// quoteSheetName quotes a sheet name for use in a formula reference.
func quoteSheetName(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// absoluteRef returns a $A$1:$B$2 reference.
func absoluteRef(start, end string) string {
	abs := func(cell string) string {
		i := strings.IndexAny(cell, "0123456789")
		return "$" + cell[:i] + "$" + cell[i:]
	}
	return abs(start) + ":" + abs(end)
}

func workbookXML(sheets []*writer.Sheet, active int) string {
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<workbook xmlns="` + nsMain + `" xmlns:r="` + nsRelationships + `">`)
	sb.WriteString(`<workbookPr/>`)
	fmt.Fprintf(&sb, `<bookViews><workbookView activeTab="%d"/></bookViews>`, active)
	sb.WriteString("<sheets>")
	for _, s := range sheets {
		fmt.Fprintf(&sb, `<sheet name="%s" sheetId="%d" r:id="rIdSheet%d"`, escape.XML(s.Name()), s.Index()+1, s.Index()+1)
		if !s.IsVisible() {
			sb.WriteString(` state="hidden"`)
		}
		sb.WriteString("/>")
	}
	sb.WriteString("</sheets>")

	var names strings.Builder
	for _, s := range sheets {
		r := s.AutoFilter()
		if r == nil {
			continue
		}
		fmt.Fprintf(&names, `<definedName name="_xlnm._FilterDatabase" localSheetId="%d" hidden="1">%s!%s</definedName>`,
			s.Index(), escape.XML(quoteSheetName(s.Name())), absoluteRef(r.StartCell(), r.EndCell()))
	}
	if names.Len() > 0 {
		sb.WriteString("<definedNames>" + names.String() + "</definedNames>")
	}
	sb.WriteString("</workbook>")
	return sb.String()
}

func coreXML(creator, title string, created time.Time) string {
	stamp := created.UTC().Format(time.RFC3339)
	var sb strings.Builder
	sb.WriteString(xmlHeader)
	sb.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties"` +
		` xmlns:dc="http://purl.org/dc/elements/1.1/" xmlns:dcterms="http://purl.org/dc/terms/"` +
		` xmlns:dcmitype="http://purl.org/dc/dcmitype/" xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance">`)
	if title != "" {
		fmt.Fprintf(&sb, "<dc:title>%s</dc:title>", escape.XML(title))
	}
	fmt.Fprintf(&sb, "<dc:creator>%s</dc:creator>", escape.XML(creator))
	fmt.Fprintf(&sb, `<dcterms:created xsi:type="dcterms:W3CDTF">%s</dcterms:created>`, stamp)
	fmt.Fprintf(&sb, `<dcterms:modified xsi:type="dcterms:W3CDTF">%s</dcterms:modified>`, stamp)
	sb.WriteString("<cp:revision>0</cp:revision></cp:coreProperties>")
	return sb.String()
}

func appXML(creator string) string {
	return xmlHeader + `<Properties xmlns="http://schemas.openxmlformats.org/officeDocument/2006/extended-properties"` +
		` xmlns:vt="http://schemas.openxmlformats.org/officeDocument/2006/docPropsVTypes">` +
		"<Application>" + escape.XML(creator) + "</Application><TotalTime>0</TotalTime></Properties>"
}
