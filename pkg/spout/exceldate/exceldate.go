// Package exceldate converts between spreadsheet serial numbers and calendar
// times and recognizes date number formats.
package exceldate

import (
	"math"
	"time"
)

const secondsPerDay = 86400

var (
	// base1900 is serial 0 of the 1900 date system.
	base1900 = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	// base1904 is serial 0 of the 1904 date system.
	base1904 = time.Date(1904, 1, 1, 0, 0, 0, 0, time.UTC)
)

// Serial bounds covering 0001-01-01 through 9999-12-31 23:59:59. The upper
// bounds are exclusive: anything above rounds into year 10000.
const (
	minSerial1900 = -693593
	maxSerial1900 = 2958466 - 0.5/secondsPerDay
	minSerial1904 = -695055
	maxSerial1904 = 2957004 - 0.5/secondsPerDay
)

func base(use1904 bool) time.Time {
	if use1904 {
		return base1904
	}
	return base1900
}

// IsValidSerial reports whether serial maps to a date between year 1 and year 9999.
func IsValidSerial(serial float64, use1904 bool) bool {
	if math.IsNaN(serial) || math.IsInf(serial, 0) {
		return false
	}
	if use1904 {
		return serial >= minSerial1904 && serial < maxSerial1904
	}
	return serial >= minSerial1900 && serial < maxSerial1900
}

// ToTime converts a serial number to a UTC wall-clock time rounded to the
// second. ok is false for serials outside the supported calendar range.
func ToTime(serial float64, use1904 bool) (t time.Time, ok bool) {
	if !IsValidSerial(serial, use1904) {
		return time.Time{}, false
	}
	days := math.Trunc(serial)
	secs := math.Round((serial - days) * secondsPerDay)
	t = base(use1904).AddDate(0, 0, int(days)).Add(time.Duration(secs) * time.Second)
	return t, true
}

// ToSerial converts the wall clock of t to a serial number. It is the inverse
// of ToTime.
func ToSerial(t time.Time, use1904 bool) float64 {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	secs := wall.Unix() - base(use1904).Unix()
	days := math.Floor(float64(secs) / secondsPerDay)
	rem := float64(secs) - days*secondsPerDay + float64(wall.Nanosecond())/1e9
	return days + rem/secondsPerDay
}

// DurationToSerial converts a duration to a fraction of days.
func DurationToSerial(d time.Duration) float64 {
	return d.Seconds() / secondsPerDay
}
