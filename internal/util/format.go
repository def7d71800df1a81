package util

import (
	"fmt"
	"time"
)

// FormatNumber formats an int64 with K/M suffix for readability.
// Examples: 500 -> "500", 1500 -> "1.5K", 1500000 -> "1.5M"
func FormatNumber(n int64) string {
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	if n < 1000000 {
		return fmt.Sprintf("%.1fK", float64(n)/1000)
	}
	return fmt.Sprintf("%.1fM", float64(n)/1000000)
}

// FormatPercent renders a 0..1 ratio as a percentage with one decimal.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}

// FormatMinutes renders a minute count, dropping the fraction when whole.
// Examples: 5 -> "5m", 2.5 -> "2.5m"
func FormatMinutes(m float64) string {
	if m == float64(int64(m)) {
		return fmt.Sprintf("%dm", int64(m))
	}
	return fmt.Sprintf("%.1fm", m)
}

// FormatDateTime formats a time in local date-time format (2006-01-02 15:04).
// Returns "-" for the zero time.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}
