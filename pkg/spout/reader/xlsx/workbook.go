package xlsx

import (
	"encoding/xml"
	"path"
	"strconv"
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

const (
	packageRelsPath     = "_rels/.rels"
	defaultWorkbookPath = "xl/workbook.xml"
)

// relationship type suffixes
const (
	relOfficeDocument = "/officeDocument"
	relWorksheet      = "/worksheet"
	relSharedStrings  = "/sharedStrings"
	relStyles         = "/styles"
)

type relationship struct {
	id     string
	typ    string
	target string
}

// sheetInfo describes one worksheet as declared in the workbook part.
type sheetInfo struct {
	index   int
	name    string
	rID     string
	path    string
	visible bool
	active  bool
}

// workbookInfo holds the workbook-level metadata needed to read sheets.
type workbookInfo struct {
	path              string
	sheets            []sheetInfo
	date1904          bool
	sharedStringsPath string
	stylesPath        string
}

// relsPath returns the relationships part of a package part.
func relsPath(part string) string {
	dir, file := path.Split(part)
	return dir + "_rels/" + file + ".rels"
}

// resolveRelativePath resolves a relationship target against the directory
// of the part owning the relationship.
func resolveRelativePath(target, baseDir string) string {
	if strings.HasPrefix(target, "/") {
		return strings.TrimPrefix(path.Clean(target), "/")
	}
	return strings.TrimPrefix(path.Join(baseDir, target), "/")
}

func readRelationships(ar *archive.Reader, name string) ([]relationship, error) {
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	var rels []relationship
	d := xmlevent.NewDispatcher(xmlevent.NewReader(rc, ar.Path()+"#"+name))
	d.Register(xml.Name{Local: "Relationship"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		var rel relationship
		rel.id, _ = n.AttrValue("Id")
		rel.typ, _ = n.AttrValue("Type")
		rel.target, _ = n.AttrValue("Target")
		rels = append(rels, rel)
		return xmlevent.Continue, nil
	})
	if _, err := d.RunUntilStopped(); err != nil {
		return nil, err
	}
	return rels, nil
}

// findWorkbookPath returns the main document part declared by the package
// relationships, or the conventional location when they are missing.
func findWorkbookPath(ar *archive.Reader) (string, error) {
	if !ar.Has(packageRelsPath) {
		return defaultWorkbookPath, nil
	}
	rels, err := readRelationships(ar, packageRelsPath)
	if err != nil {
		return "", err
	}
	for _, rel := range rels {
		if strings.HasSuffix(rel.typ, relOfficeDocument) {
			return resolveRelativePath(rel.target, "/"), nil
		}
	}
	return defaultWorkbookPath, nil
}

func readWorkbookInfo(ar *archive.Reader) (*workbookInfo, error) {
	wbPath, err := findWorkbookPath(ar)
	if err != nil {
		return nil, err
	}
	if !ar.Has(wbPath) {
		return nil, spouterr.Format("open", ar.Path(), spouterr.NotFoundf("workbook part %q", wbPath))
	}
	info := &workbookInfo{path: wbPath}

	targets := make(map[string]string) // rId -> part
	baseDir := path.Dir(wbPath)
	if rp := relsPath(wbPath); ar.Has(rp) {
		rels, err := readRelationships(ar, rp)
		if err != nil {
			return nil, err
		}
		for _, rel := range rels {
			part := resolveRelativePath(rel.target, baseDir)
			switch {
			case strings.HasSuffix(rel.typ, relWorksheet):
				targets[rel.id] = part
			case strings.HasSuffix(rel.typ, relSharedStrings):
				info.sharedStringsPath = part
			case strings.HasSuffix(rel.typ, relStyles):
				info.stylesPath = part
			}
		}
	}
	if info.sharedStringsPath == "" && ar.Has(path.Join(baseDir, "sharedStrings.xml")) {
		info.sharedStringsPath = path.Join(baseDir, "sharedStrings.xml")
	}
	if info.stylesPath == "" && ar.Has(path.Join(baseDir, "styles.xml")) {
		info.stylesPath = path.Join(baseDir, "styles.xml")
	}

	if err := parseWorkbookSheets(ar, info, targets); err != nil {
		return nil, err
	}
	return info, nil
}

// parseWorkbookSheets reads sheet declarations, the date system and the
// active tab from the workbook part.
func parseWorkbookSheets(ar *archive.Reader, info *workbookInfo, targets map[string]string) error {
	rc, err := ar.OpenEntry(info.path)
	if err != nil {
		return err
	}
	defer rc.Close()

	activeTab := 0
	d := xmlevent.NewDispatcher(xmlevent.NewReader(rc, ar.Path()+"#"+info.path))
	d.Register(xml.Name{Local: "workbookPr"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		v, _ := n.AttrValue("date1904")
		info.date1904 = v == "1" || strings.EqualFold(v, "true")
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Local: "workbookView"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		if v, ok := n.AttrValue("activeTab"); ok {
			if tab, err := strconv.Atoi(v); err == nil {
				activeTab = tab
			}
		}
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Local: "sheet"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		s := sheetInfo{index: len(info.sheets), visible: true}
		s.name, _ = n.AttrValue("name")
		s.rID, _ = n.AttrValue("id")
		if state, _ := n.AttrValue("state"); state == "hidden" || state == "veryHidden" {
			s.visible = false
		}
		s.path = targets[s.rID]
		if s.path == "" {
			s.path = path.Join(path.Dir(info.path), "worksheets", "sheet"+strconv.Itoa(s.index+1)+".xml")
		}
		info.sheets = append(info.sheets, s)
		return xmlevent.Continue, nil
	})
	if _, err := d.RunUntilStopped(); err != nil {
		return err
	}
	if activeTab >= 0 && activeTab < len(info.sheets) {
		info.sheets[activeTab].active = true
	}
	return nil
}
