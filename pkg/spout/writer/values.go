package writer

import (
	"math"
	"strconv"
)

// FormatNumber renders an int64 or float64 cell value as an xsd:double.
func FormatNumber(v any) string {
	switch x := v.(type) {
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if a := math.Abs(x); a != 0 && (a < 1e-6 || a >= 1e21) {
			return strconv.FormatFloat(x, 'E', -1, 64)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	}
	return "0"
}
