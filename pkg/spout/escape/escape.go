// Package escape converts cell text to and from its XML representation.
//
// Both escapers encode the XML-significant characters. The XLSX escaper also
// encodes control characters as _xHHHH_ placeholders, and Unescape reverses
// that on text whose XML entities were already decoded by the parser.
package escape

import (
	"strings"
	"unicode/utf8"
)

var xmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#039;",
)

// XML escapes the five XML-significant characters and replaces characters
// that are not allowed in an XML document with U+FFFD.
func XML(s string) string {
	return xmlReplacer.Replace(sanitize(s))
}

// sanitize replaces invalid UTF-8 and code points outside the XML 1.0 Char
// production. Tab, line feed and carriage return are kept.
func sanitize(s string) string {
	clean := true
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && isInvalidAt(s, i)) {
			clean = false
			break
		}
	}
	if clean {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i, r := range s {
		if !isXMLChar(r) || (r == utf8.RuneError && isInvalidAt(s, i)) {
			b.WriteRune(utf8.RuneError)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isInvalidAt(s string, i int) bool {
	_, size := utf8.DecodeRuneInString(s[i:])
	return size <= 1
}

func isXMLChar(r rune) bool {
	switch {
	case r == 0x09 || r == 0x0A || r == 0x0D:
		return true
	case r >= 0x20 && r <= 0xD7FF:
		return true
	case r >= 0xE000 && r <= 0xFFFD:
		return true
	case r >= 0x10000 && r <= 0x10FFFF:
		return true
	}
	return false
}

// ODS escapes text for an OpenDocument part. Control characters cannot be
// represented and become U+FFFD.
func ODS(s string) string {
	return XML(s)
}
