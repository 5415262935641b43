package xlsx

import (
	"encoding/xml"
	"strconv"

	"github.com/openspout/openspout-sub000/pkg/spout/archive"
	"github.com/openspout/openspout-sub000/pkg/spout/exceldate"
	"github.com/openspout/openspout-sub000/pkg/spout/reader/xmlevent"
)

// cellFormat is an entry of cellXfs.
type cellFormat struct {
	numFmtID int
	// applyNumberFormat set to false disables the number format
	applyDisabled bool
}

// styleTable answers whether a cell style formats numbers as dates.
type styleTable struct {
	customFormats map[int]string
	cellFormats   []cellFormat
	dateFormats   map[int]string // style id -> date format code, "" when not a date
}

func newStyleTable() *styleTable {
	return &styleTable{customFormats: make(map[int]string), dateFormats: make(map[int]string)}
}

func readStyleTable(ar *archive.Reader, name string) (*styleTable, error) {
	st := newStyleTable()
	if name == "" || !ar.Has(name) {
		return st, nil
	}
	rc, err := ar.OpenEntry(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	inCellXfs := false
	d := xmlevent.NewDispatcher(xmlevent.NewReader(rc, ar.Path()+"#"+name))
	d.Register(xml.Name{Local: "numFmt"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		idAttr, _ := n.AttrValue("numFmtId")
		code, _ := n.AttrValue("formatCode")
		if id, err := strconv.Atoi(idAttr); err == nil {
			st.customFormats[id] = code
		}
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Local: "cellXfs"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		inCellXfs = true
		return xmlevent.Continue, nil
	})
	d.Register(xml.Name{Local: "cellXfs"}, xmlevent.End, func(n *xmlevent.Node) (xmlevent.Result, error) {
		inCellXfs = false
		return xmlevent.Stop, nil
	})
	d.Register(xml.Name{Local: "xf"}, xmlevent.Start, func(n *xmlevent.Node) (xmlevent.Result, error) {
		if !inCellXfs {
			return xmlevent.Continue, nil
		}
		var f cellFormat
		if v, ok := n.AttrValue("numFmtId"); ok {
			f.numFmtID, _ = strconv.Atoi(v)
		}
		if v, ok := n.AttrValue("applyNumberFormat"); ok {
			f.applyDisabled = v == "0" || v == "false"
		}
		st.cellFormats = append(st.cellFormats, f)
		return xmlevent.Continue, nil
	})
	if _, err := d.RunUntilStopped(); err != nil {
		return nil, err
	}
	return st, nil
}

// dateFormat returns the format code of a style that formats numbers as
// dates. Style 0 never does.
func (st *styleTable) dateFormat(styleID int) (string, bool) {
	if styleID <= 0 || styleID >= len(st.cellFormats) {
		return "", false
	}
	if code, ok := st.dateFormats[styleID]; ok {
		return code, code != ""
	}
	code := st.resolveDateFormat(st.cellFormats[styleID])
	st.dateFormats[styleID] = code
	return code, code != ""
}

func (st *styleTable) resolveDateFormat(f cellFormat) string {
	if f.applyDisabled {
		return ""
	}
	if exceldate.IsBuiltinDateFormatID(f.numFmtID) {
		return exceldate.BuiltinFormats[f.numFmtID]
	}
	if f.numFmtID < exceldate.FirstCustomFormatID {
		return ""
	}
	code := st.customFormats[f.numFmtID]
	if exceldate.IsDateFormat(code) {
		return code
	}
	return ""
}
