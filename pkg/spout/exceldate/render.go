package exceldate

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/nfp"
)

// Format renders t with a spreadsheet date format code. Only the date and
// time tokens of the first section are honored; literals are copied.
func Format(t time.Time, code string) string {
	ps := nfp.NumberFormatParser()
	sections := ps.Parse(code)
	if len(sections) == 0 {
		return t.Format("2006-01-02 15:04:05")
	}
	items := sections[0].Items
	twelveHour := false
	for _, tok := range items {
		if tok.TType == nfp.TokenTypeDateTimes && isAmPm(tok.TValue) {
			twelveHour = true
		}
	}

	var b strings.Builder
	lastDateToken := ""
	for i, tok := range items {
		switch tok.TType {
		case nfp.TokenTypeDateTimes:
			v := strings.ToLower(tok.TValue)
			minutes := strings.HasPrefix(v, "m") && len(v) <= 2 &&
				(strings.HasPrefix(lastDateToken, "h") || nextDateTokenIsSeconds(items[i+1:]))
			b.WriteString(renderDateToken(t, v, minutes, twelveHour))
			lastDateToken = v
		case nfp.TokenTypeElapsedDateTimes:
			v := strings.ToLower(strings.Trim(tok.TValue, "[]"))
			b.WriteString(renderElapsed(t, v))
			lastDateToken = v
		case nfp.TokenTypeZeroPlaceHolder:
			if strings.HasPrefix(lastDateToken, "s") {
				b.WriteString(fractionalSeconds(t, len(tok.TValue)))
			} else {
				b.WriteString(tok.TValue)
			}
		case nfp.TokenTypeLiteral, nfp.TokenTypeDecimalPoint:
			b.WriteString(tok.TValue)
		}
	}
	return b.String()
}

func isAmPm(v string) bool {
	v = strings.ToLower(v)
	return v == "am/pm" || v == "a/p"
}

func nextDateTokenIsSeconds(items []nfp.Token) bool {
	for _, tok := range items {
		if tok.TType == nfp.TokenTypeDateTimes || tok.TType == nfp.TokenTypeElapsedDateTimes {
			return strings.HasPrefix(strings.ToLower(tok.TValue), "s")
		}
	}
	return false
}

func renderDateToken(t time.Time, v string, minutes, twelveHour bool) string {
	switch {
	case v == "am/pm":
		if t.Hour() < 12 {
			return "AM"
		}
		return "PM"
	case v == "a/p":
		if t.Hour() < 12 {
			return "A"
		}
		return "P"
	case v == "yy" || v == "y":
		return fmt.Sprintf("%02d", t.Year()%100)
	case strings.HasPrefix(v, "y") || strings.HasPrefix(v, "e"):
		return fmt.Sprintf("%04d", t.Year())
	case v == "mmmmm":
		return t.Month().String()[:1]
	case v == "mmmm":
		return t.Month().String()
	case v == "mmm":
		return t.Month().String()[:3]
	case v == "mm":
		if minutes {
			return fmt.Sprintf("%02d", t.Minute())
		}
		return fmt.Sprintf("%02d", int(t.Month()))
	case v == "m":
		if minutes {
			return fmt.Sprint(t.Minute())
		}
		return fmt.Sprint(int(t.Month()))
	case strings.HasPrefix(v, "dddd"):
		return t.Weekday().String()
	case v == "ddd":
		return t.Weekday().String()[:3]
	case v == "dd":
		return fmt.Sprintf("%02d", t.Day())
	case v == "d":
		return fmt.Sprint(t.Day())
	case v == "hh" || v == "h":
		h := t.Hour()
		if twelveHour {
			h %= 12
			if h == 0 {
				h = 12
			}
		}
		if v == "hh" {
			return fmt.Sprintf("%02d", h)
		}
		return fmt.Sprint(h)
	case v == "ss":
		return fmt.Sprintf("%02d", t.Second())
	case v == "s":
		return fmt.Sprint(t.Second())
	}
	return ""
}

// renderElapsed renders [h], [m] and [s] as totals since serial 0.
func renderElapsed(t time.Time, v string) string {
	elapsed := t.Sub(base1900)
	var n int64
	switch {
	case strings.HasPrefix(v, "h"):
		n = int64(elapsed / time.Hour)
	case strings.HasPrefix(v, "m"):
		n = int64(elapsed / time.Minute)
	case strings.HasPrefix(v, "s"):
		n = int64(elapsed / time.Second)
	default:
		return ""
	}
	return fmt.Sprintf("%0*d", len(v), n)
}

func fractionalSeconds(t time.Time, digits int) string {
	frac := fmt.Sprintf("%09d", t.Nanosecond())
	if digits > len(frac) {
		digits = len(frac)
	}
	return frac[:digits]
}
