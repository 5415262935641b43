package csv

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// tokenizer splits records for enclosures other than '"' and keeps blank
// lines, which encoding/csv drops.
type tokenizer struct {
	r     *bufio.Reader
	delim rune
	encl  rune
}

func newTokenizer(r io.Reader, delim, encl rune) *tokenizer {
	return &tokenizer{r: bufio.NewReader(r), delim: delim, encl: encl}
}

// next returns the fields of the next record. A blank line yields an empty
// record. An unterminated enclosure runs to the end of the input.
func (t *tokenizer) next() ([]string, error) {
	var (
		fields   []string
		field    strings.Builder
		quoted   bool
		started  bool
		fieldNew = true
	)
	for {
		r, _, err := t.r.ReadRune()
		if errors.Is(err, io.EOF) {
			if !started {
				return nil, io.EOF
			}
			return append(fields, field.String()), nil
		}
		if err != nil {
			return nil, err
		}
		started = true

		if quoted {
			if r != t.encl {
				field.WriteRune(r)
				continue
			}
			if n, _, err := t.r.ReadRune(); err == nil {
				if n == t.encl {
					field.WriteRune(t.encl)
					continue
				}
				t.r.UnreadRune()
			}
			quoted = false
			continue
		}

		switch r {
		case t.encl:
			if fieldNew {
				quoted = true
				fieldNew = false
				continue
			}
			field.WriteRune(r)
		case t.delim:
			fields = append(fields, field.String())
			field.Reset()
			fieldNew = true
		case '\r', '\n':
			if r == '\r' {
				if n, _, err := t.r.ReadRune(); err == nil && n != '\n' {
					t.r.UnreadRune()
				}
			}
			if fields == nil && field.Len() == 0 && fieldNew {
				return []string{}, nil
			}
			return append(fields, field.String()), nil
		default:
			field.WriteRune(r)
			fieldNew = false
		}
	}
}
