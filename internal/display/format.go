// Package display holds formatting helpers for terminal output.
package display

import (
	"fmt"
	"time"
)

// FormatDuration renders a duration compactly: "42s", "3m05s", "2h14m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}

// FormatCount renders n with thousands separators ("8,500").
func FormatCount(n int) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return FormatCount(n/1000) + fmt.Sprintf(",%03d", n%1000)
}

// FormatRate renders a whole-percent success rate.
func FormatRate(pct int) string {
	return fmt.Sprintf("%d%%", pct)
}
