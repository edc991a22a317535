package teams

// Team codes and bar colors
// Codes is the fixed set of franchises whose logos are downloaded
// Colors holds the secondary color used as the bar background per team

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// DefaultColor is used for any team code missing from Colors.
const DefaultColor = "#808080"

// LogoSuffix is appended to the team code in every logo file name and URL.
const LogoSuffix = "_light"

// Codes lists every NHL team code a logo is fetched for.
var Codes = []string{
	"ANA", "BOS", "BUF", "CAR", "CBJ", "CGY", "CHI", "COL",
	"DAL", "DET", "EDM", "FLA", "LAK", "MIN", "MTL", "NJD",
	"NSH", "NYI", "NYR", "OTT", "PHI", "PIT", "SEA", "SJS",
	"STL", "TBL", "TOR", "VAN", "VGK", "WPG", "WSH", "ARI",
}

// Colors maps a team code to the hex color used behind its logo.
var Colors = map[string]string{
	"WPG": "#7B303E", // Dark Red
	"WSH": "#C8102E", // Red
	"LAK": "#A2AAAD", // Silver
	"TBL": "#00205B", // Dark Blue
	"COL": "#236192", // Steel Blue
	"SEA": "#99D9D9", // Ice Blue
	"OTT": "#C69214", // Gold
	"ANA": "#B5985A", // Vegas Gold
	"MIN": "#C51230", // Red
	"CGY": "#F1BE48", // Gold
}

// ColorFor returns the hex color for code, or DefaultColor.
func ColorFor(code string) string {
	if c, ok := Colors[strings.ToUpper(strings.TrimSpace(code))]; ok {
		return c
	}
	return DefaultColor
}

// RGBAFor is ColorFor parsed into an opaque color.
func RGBAFor(code string) color.RGBA {
	c, err := ParseHex(ColorFor(code))
	if err != nil {
		// Colors and DefaultColor are constants, a parse failure is a typo in this file
		panic(err)
	}
	return c
}

// ParseHex parses "#RRGGBB" (leading # optional) into an opaque RGBA.
func ParseHex(hex string) (color.RGBA, error) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: want 6 digits", hex)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

// LogoFileName is the on-disk name of a team logo with the given extension ("svg", "jpg").
func LogoFileName(code, ext string) string {
	return code + LogoSuffix + "." + ext
}
