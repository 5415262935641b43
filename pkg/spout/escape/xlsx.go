package escape

import (
	"fmt"
	"strings"
)

const hexDigits = "0123456789ABCDEF"

// isEscapableControl reports whether c is written as _xHHHH_.
// Tab, line feed and carriage return are kept as is.
func isEscapableControl(c byte) bool {
	return c <= 0x08 || c == 0x0B || c == 0x0C || (c >= 0x0E && c <= 0x1F)
}

// XLSX escapes text for a SpreadsheetML part. An existing _xHHHH_ sequence is
// protected as _x005F_xHHHH_ so that XLSXUnescape restores it literally.
func XLSX(s string) string {
	return xmlReplacer.Replace(sanitize(escapeControls(s)))
}

func escapeControls(s string) string {
	if !needsControlEscape(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 16)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '_' && isPlaceholderAt(s, i):
			b.WriteString("_x005F")
		case isEscapableControl(c):
			fmt.Fprintf(&b, "_x%04X_", c)
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}

func needsControlEscape(s string) bool {
	for i := 0; i < len(s); i++ {
		if isEscapableControl(s[i]) || (s[i] == '_' && isPlaceholderAt(s, i)) {
			return true
		}
	}
	return false
}

// isPlaceholderAt reports whether s[i:] starts with _xHHHH_ (upper-case hex).
func isPlaceholderAt(s string, i int) bool {
	if i+7 > len(s) || s[i] != '_' || s[i+1] != 'x' || s[i+6] != '_' {
		return false
	}
	for j := i + 2; j < i+6; j++ {
		if !strings.ContainsRune(hexDigits, rune(s[j])) {
			return false
		}
	}
	return true
}

func placeholderValue(s string, i int) byte {
	var v int
	for j := i + 2; j < i+6; j++ {
		v = v<<4 | strings.IndexByte(hexDigits, s[j])
	}
	if v > 0x1F {
		return 0xFF
	}
	return byte(v)
}

// XLSXUnescape decodes _xHHHH_ placeholders of control characters. The input
// must already have its XML entities decoded.
func XLSXUnescape(s string) string {
	if !strings.Contains(s, "_x") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '_' && isPlaceholderAt(s, i) {
			// _x005F_xHHHH_ is a protected literal placeholder
			if s[i+2:i+6] == "005F" && isPlaceholderAt(s, i+6) {
				b.WriteString(s[i+6 : i+13])
				i += 13
				continue
			}
			if c := placeholderValue(s, i); c != 0xFF && isEscapableControl(c) {
				b.WriteByte(c)
				i += 7
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
