package aggregator

import (
	"fmt"
	"math"
)

// FormatMinutes renders minutes rounded to the nearest whole minute, e.g. "7h 30m".
func FormatMinutes(minutes float64) string {
	total := int(math.Round(math.Max(minutes, 0)))
	return fmt.Sprintf("%dh %02dm", total/60, total%60)
}

// FormatHours renders minutes as decimal hours with two places, e.g. "1.08".
func FormatHours(minutes float64) string {
	return fmt.Sprintf("%.2f", math.Max(minutes, 0)/60)
}
