package linkfilter

import (
	"math"
	"strconv"
	"strings"
)

// FormatClicks renders a click count the way the dashboard displays it:
// "934", "1.2K", "3.4M". One decimal is kept for abbreviated values.
func FormatClicks(n int64) string {
	switch {
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1_000_000, 'f', 1, 64) + "M"
	case n >= 1_000:
		return strconv.FormatFloat(float64(n)/1_000, 'f', 1, 64) + "K"
	default:
		return strconv.FormatInt(n, 10)
	}
}

// ParseClicks reconstructs an integer from a display string produced by
// FormatClicks. The abbreviation is lossy by design: "1.2K" parses to
// 1200, not the original exact count. Unparseable input yields 0.
func ParseClicks(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}

	mult := int64(1)
	switch {
	case strings.HasSuffix(s, "M"), strings.HasSuffix(s, "m"):
		mult = 1_000_000
		s = s[:len(s)-1]
	case strings.HasSuffix(s, "K"), strings.HasSuffix(s, "k"):
		mult = 1_000
		s = s[:len(s)-1]
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return 0
	}
	return int64(math.Round(f * float64(mult)))
}
