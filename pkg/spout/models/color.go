package models

import (
	"fmt"
	"strings"

	"github.com/openspout/openspout-sub000/pkg/spout/spouterr"
)

// Standard colors as RRGGBB.
const (
	ColorBlack      = "000000"
	ColorWhite      = "FFFFFF"
	ColorRed        = "FF0000"
	ColorDarkRed    = "C00000"
	ColorOrange     = "FFC000"
	ColorYellow     = "FFFF00"
	ColorLightGreen = "92D040"
	ColorGreen      = "00B050"
	ColorLightBlue  = "00B0E0"
	ColorBlue       = "0070C0"
	ColorDarkBlue   = "002060"
	ColorPurple     = "7030A0"
)

// RGB returns the RRGGBB color for the given components.
func RGB(r, g, b int) (string, error) {
	for _, c := range []int{r, g, b} {
		if c < 0 || c > 255 {
			return "", spouterr.Valuef("color component %d out of range 0-255", c)
		}
	}
	return fmt.Sprintf("%02X%02X%02X", r, g, b), nil
}

// ToARGB returns the opaque ARGB form of an RRGGBB color.
func ToARGB(rgb string) string {
	return "FF" + strings.ToUpper(rgb)
}

func validateColor(c string) error {
	if len(c) != 6 {
		return spouterr.Valuef("color %q is not RRGGBB", c)
	}
	for _, r := range c {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return spouterr.Valuef("color %q is not RRGGBB", c)
		}
	}
	return nil
}
