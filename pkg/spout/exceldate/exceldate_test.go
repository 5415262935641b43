package exceldate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToTime(t *testing.T) {
	tests := []struct {
		serial   float64
		use1904  bool
		expected string
	}{
		{0, false, "1899-12-30 00:00:00"},
		{1, false, "1899-12-31 00:00:00"},
		{0, true, "1904-01-01 00:00:00"},
		{43905.5729166667, false, "2020-03-15 13:45:00"},
		{0.75, false, "1899-12-30 18:00:00"},
		{-0.5, false, "1899-12-29 12:00:00"},
		{2958465, false, "9999-12-31 00:00:00"},
		{-693593, false, "0001-01-01 00:00:00"},
		{1462, true, "1908-01-02 00:00:00"},
	}
	for _, tt := range tests {
		got, ok := ToTime(tt.serial, tt.use1904)
		require.True(t, ok, "serial %v", tt.serial)
		assert.Equal(t, tt.expected, got.Format("2006-01-02 15:04:05"), "serial %v (1904=%v)", tt.serial, tt.use1904)
	}
}

func TestToTimeOutOfRange(t *testing.T) {
	tests := []struct {
		serial  float64
		use1904 bool
	}{
		{2958466, false},
		{-693594, false},
		{2957004, true},
		{-695056, true},
	}
	for _, tt := range tests {
		_, ok := ToTime(tt.serial, tt.use1904)
		assert.False(t, ok, "serial %v (1904=%v)", tt.serial, tt.use1904)
	}
}

func TestToSerialIsInverse(t *testing.T) {
	times := []time.Time{
		time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC),
		time.Date(1900, 3, 1, 6, 30, 0, 0, time.UTC),
		time.Date(2020, 3, 15, 13, 45, 30, 0, time.UTC),
		time.Date(1850, 7, 4, 23, 59, 59, 0, time.UTC),
		time.Date(9999, 12, 31, 23, 59, 59, 0, time.UTC),
	}
	for _, use1904 := range []bool{false, true} {
		for _, want := range times {
			got, ok := ToTime(ToSerial(want, use1904), use1904)
			require.True(t, ok)
			assert.True(t, want.Equal(got), "want %v, got %v", want, got)
		}
	}
}

func TestToSerialUsesWallClock(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*3600)
	assert.Equal(t, 1.375, ToSerial(time.Date(1899, 12, 31, 9, 0, 0, 0, loc), false))
}

func TestIsDateFormat(t *testing.T) {
	tests := []struct {
		code     string
		expected bool
	}{
		{"General", false},
		{"0.00", false},
		{"#,##0", false},
		{"@", false},
		{"yyyy-mm-dd", true},
		{"dd/mm/yyyy hh:mm:ss", true},
		{"h:mm AM/PM", true},
		{"[h]:mm:ss", true},
		{"[Red]0.00", false},
		{`[$-409]0.00`, false},
		{`0.00" days"`, false},
		{`"date"0`, false},
		{`\d0.00`, false},
		{`[$-409]mmm-yy`, true},
		{"mmss.0", true},
		{"0.00E+00", true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, IsDateFormat(tt.code), "IsDateFormat(%q)", tt.code)
	}
}

func TestIsBuiltinDateFormatID(t *testing.T) {
	for id := 0; id < 60; id++ {
		expected := (id >= 14 && id <= 22) || id == 45 || id == 46 || id == 47
		assert.Equal(t, expected, IsBuiltinDateFormatID(id), "id %d", id)
	}
}

func TestBuiltinFormatID(t *testing.T) {
	id, ok := BuiltinFormatID("0.00%")
	assert.True(t, ok)
	assert.Equal(t, 10, id)

	_, ok = BuiltinFormatID("yyyy-mm-dd hh:mm:ss")
	assert.False(t, ok)
}

func TestFormat(t *testing.T) {
	tm := time.Date(2020, 3, 5, 14, 7, 9, 0, time.UTC)
	tests := []struct {
		code     string
		expected string
	}{
		{"yyyy-mm-dd", "2020-03-05"},
		{"mm-dd-yy", "03-05-20"},
		{"d-mmm-yy", "5-Mar-20"},
		{"hh:mm:ss", "14:07:09"},
		{"h:mm AM/PM", "2:07 PM"},
		{"m/d/yy h:mm", "3/5/20 14:07"},
		{"dddd d mmmm", "Thursday 5 March"},
		{"mmmm yyyy", "March 2020"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, Format(tm, tt.code), "Format(%q)", tt.code)
	}
}

func TestParseISO(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"2021-06-01", time.Date(2021, 6, 1, 0, 0, 0, 0, time.UTC), true},
		{"2021-06-01T10:20:30", time.Date(2021, 6, 1, 10, 20, 30, 0, time.UTC), true},
		{"2021-06-01T10:20:30.5", time.Date(2021, 6, 1, 10, 20, 30, 500000000, time.UTC), true},
		{"2021-13-01", time.Time{}, false},
		{"yesterday", time.Time{}, false},
	}
	for _, tt := range tests {
		got, ok := ParseISO(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.True(t, tt.want.Equal(got), "%s: got %v", tt.in, got)
		}
	}
}

func TestISODuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"PT12H30M05S", 12*time.Hour + 30*time.Minute + 5*time.Second, true},
		{"PT36H00M00S", 36 * time.Hour, true},
		{"P1DT2H", 26 * time.Hour, true},
		{"-PT1H", -time.Hour, true},
		{"PT0.5S", 500 * time.Millisecond, true},
		{"PT", 0, false},
		{"12:30", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseISODuration(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	assert.Equal(t, "PT36H05M09S", FormatISODuration(36*time.Hour+5*time.Minute+9*time.Second))
	assert.Equal(t, "-PT01H00M00S", FormatISODuration(-time.Hour))
	d, ok := ParseISODuration(FormatISODuration(100*time.Hour + 59*time.Second))
	assert.True(t, ok)
	assert.Equal(t, 100*time.Hour+59*time.Second, d)
}
