// internal/pkg/palette/palette.go
package palette

import (
	"math"
	"unicode"
	"unicode/utf16"
)

// Neutral is used for empty input.
const Neutral = "#ccc"

// Stat bar segment colours, in bar order.
const (
	SegmentDark  = "#1a1a1a"
	SegmentLight = "#e8d44d"
	SegmentMuted = "#c8c8c8"
)

var siteColors = []string{"#f5d94e", "#e57373", "#81c784", "#64b5f6", "#ffb74d", "#ba68c8"}

// ExtraSegments colours buckets beyond the first three.
var ExtraSegments = []string{"#64b5f6", "#ba68c8", "#ffb74d", "#81c784"}

// SiteColor maps s to a palette colour, landing on the same dot colour the
// browser dashboard shows. The hash runs over UTF-16 code units; only the shift
// wraps to 32 bits, the running sum is a float64 and may leave the int32 range.
func SiteColor(s string) string {
	if s == "" {
		return Neutral
	}

	var hash float64
	for _, unit := range utf16.Encode([]rune(s)) {
		shifted := toInt32(hash) << 5
		hash = float64(unit) + (float64(shifted) - hash)
	}

	i := int(math.Mod(math.Abs(hash), float64(len(siteColors))))
	return siteColors[i]
}

// toInt32 truncates f and wraps it modulo 2^32 into the int32 range.
func toInt32(f float64) int32 {
	return int32(int64(math.Mod(math.Trunc(f), 1<<32)))
}

// SegmentColor returns the stat bar colour for the i-th bucket.
func SegmentColor(i int) string {
	switch i {
	case 0:
		return SegmentDark
	case 1:
		return SegmentLight
	case 2:
		return SegmentMuted
	}
	return ExtraSegments[(i-3)%len(ExtraSegments)]
}

// BadgeColors is the background/foreground pair of a status badge.
type BadgeColors struct {
	Background string `json:"background"`
	Foreground string `json:"foreground"`
}

// Badge colours a status: healthy states green, in-use states yellow, the rest slate.
func Badge(status string) BadgeColors {
	switch status {
	case "active", "available":
		return BadgeColors{Background: "#dcfce7", Foreground: "#166534"}
	case "maintenance", "assigned":
		return BadgeColors{Background: "#fef9c3", Foreground: "#854d0e"}
	default:
		return BadgeColors{Background: "#f1f5f9", Foreground: "#64748b"}
	}
}

// Initial returns the upper-cased first letter used for row avatars, or fallback.
func Initial(s, fallback string) string {
	for _, r := range s {
		return string(unicode.ToUpper(r))
	}
	return fallback
}
