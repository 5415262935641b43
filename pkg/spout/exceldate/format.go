package exceldate

import (
	"regexp"
	"strings"
)

// FirstCustomFormatID is the first id available to custom number formats.
const FirstCustomFormatID = 164

// BuiltinFormats maps the built-in number format ids to their format codes.
var BuiltinFormats = map[int]string{
	0:  "General",
	1:  "0",
	2:  "0.00",
	3:  "#,##0",
	4:  "#,##0.00",
	9:  "0%",
	10: "0.00%",
	11: "0.00E+00",
	12: "# ?/?",
	13: "# ??/??",
	14: "mm-dd-yy",
	15: "d-mmm-yy",
	16: "d-mmm",
	17: "mmm-yy",
	18: "h:mm AM/PM",
	19: "h:mm:ss AM/PM",
	20: "h:mm",
	21: "h:mm:ss",
	22: "m/d/yy h:mm",
	37: "#,##0 ;(#,##0)",
	38: "#,##0 ;[Red](#,##0)",
	39: "#,##0.00;(#,##0.00)",
	40: "#,##0.00;[Red](#,##0.00)",
	45: "mm:ss",
	46: "[h]:mm:ss",
	47: "mmss.0",
	48: "##0.0E+0",
	49: "@",
}

// BuiltinFormatID returns the built-in id of a format code.
func BuiltinFormatID(code string) (int, bool) {
	for id, c := range BuiltinFormats {
		if c == code {
			return id, true
		}
	}
	return 0, false
}

// IsBuiltinDateFormatID reports whether id is one of the built-in date and time formats.
func IsBuiltinDateFormatID(id int) bool {
	return (id >= 14 && id <= 22) || (id >= 45 && id <= 47)
}

var (
	// bracket sections not opened or closed by an escaped bracket
	bracketSection = regexp.MustCompile(`\[[^\]]*\]`)
	quotedLiteral  = regexp.MustCompile(`"[^"]+"`)
)

// dateTokens are searched case-insensitively in the reduced format code.
var dateTokens = []string{"e", "yy", "m", "d", "h", "s"}

// IsDateFormat reports whether a custom format code displays dates or times.
// Bracketed sections ([Red], [$-409], ...) and quoted literals are ignored, as
// are characters escaped with a backslash.
func IsDateFormat(code string) bool {
	if code == "" || strings.EqualFold(code, "General") || code == "@" {
		return false
	}
	reduced := stripEscapedBrackets(code)
	reduced = bracketSection.ReplaceAllString(reduced, "")
	reduced = quotedLiteral.ReplaceAllString(reduced, "")
	reduced = strings.ToLower(reduced)

	for _, tok := range dateTokens {
		for i := 0; i+len(tok) <= len(reduced); i++ {
			if reduced[i:i+len(tok)] == tok && (i == 0 || reduced[i-1] != '\\') {
				return true
			}
		}
	}
	return false
}

// stripEscapedBrackets removes "\[" and "\]" so that escaped brackets do not
// open or close a section.
func stripEscapedBrackets(code string) string {
	if !strings.Contains(code, `\[`) && !strings.Contains(code, `\]`) {
		return code
	}
	r := strings.NewReplacer(`\[`, "", `\]`, "")
	return r.Replace(code)
}
