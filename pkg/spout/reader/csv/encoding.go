package csv

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/gogs/chardet"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/encoding/unicode/utf32"
	"golang.org/x/text/transform"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Encoding names understood besides the IANA labels.
const (
	EncodingUTF8 = "UTF-8"
	EncodingAuto = "auto"
)

const detectSize = 2048

type bom struct {
	mark     []byte
	name     string
	encoding encoding.Encoding
}

// boms lists byte order marks, longest first so UTF-32LE wins over UTF-16LE.
var boms = []bom{
	{[]byte{0xFF, 0xFE, 0x00, 0x00}, "UTF-32LE", utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM)},
	{[]byte{0x00, 0x00, 0xFE, 0xFF}, "UTF-32BE", utf32.UTF32(utf32.BigEndian, utf32.IgnoreBOM)},
	{[]byte{0xEF, 0xBB, 0xBF}, EncodingUTF8, nil},
	{[]byte{0xFF, 0xFE}, "UTF-16LE", unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)},
	{[]byte{0xFE, 0xFF}, "UTF-16BE", unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)},
}

// lookupEncoding returns the decoder for a label; nil stands for UTF-8.
func lookupEncoding(label string) (encoding.Encoding, error) {
	switch strings.ToUpper(strings.TrimSpace(label)) {
	case "", "UTF-8", "UTF8":
		return nil, nil
	case "UTF-32", "UTF-32BE":
		return utf32.UTF32(utf32.BigEndian, utf32.UseBOM), nil
	case "UTF-32LE":
		return utf32.UTF32(utf32.LittleEndian, utf32.IgnoreBOM), nil
	}
	enc, name := charset.Lookup(label)
	if enc == nil {
		return nil, spouterr.Valuef("unsupported encoding %q", label)
	}
	if name == "utf-8" {
		return nil, nil
	}
	return enc, nil
}

// DetectEncoding guesses the charset of content. Valid UTF-8 is reported
// as UTF-8 without running the statistical detector.
func DetectEncoding(content []byte) (string, error) {
	if utf8.Valid(trimPartialRune(content)) {
		return EncodingUTF8, nil
	}
	detector := chardet.NewTextDetector()
	result, err := detector.DetectBest(content)
	if err != nil {
		return "", spouterr.Format("detect encoding", "", err)
	}
	return result.Charset, nil
}

// trimPartialRune drops a rune cut in half at the end of a sample.
func trimPartialRune(b []byte) []byte {
	for i := 1; i <= utf8.UTFMax && i <= len(b); i++ {
		if utf8.RuneStart(b[len(b)-i]) {
			if !utf8.FullRune(b[len(b)-i:]) {
				return b[:len(b)-i]
			}
			break
		}
	}
	return b
}

// decodingReader strips a byte order mark and converts r to UTF-8. A byte
// order mark takes precedence over the configured label.
func decodingReader(r io.Reader, label string) (io.Reader, string, error) {
	br := bufio.NewReaderSize(r, detectSize)
	head, _ := br.Peek(4)
	for _, b := range boms {
		if bytes.HasPrefix(head, b.mark) {
			br.Discard(len(b.mark))
			if b.encoding == nil {
				return br, EncodingUTF8, nil
			}
			return transform.NewReader(br, b.encoding.NewDecoder()), b.name, nil
		}
	}

	if strings.EqualFold(label, EncodingAuto) {
		sample, _ := br.Peek(detectSize)
		detected, err := DetectEncoding(sample)
		if err != nil {
			return nil, "", err
		}
		label = detected
	}
	enc, err := lookupEncoding(label)
	if err != nil {
		return nil, "", err
	}
	if enc == nil {
		return br, EncodingUTF8, nil
	}
	return transform.NewReader(br, enc.NewDecoder()), label, nil
}
