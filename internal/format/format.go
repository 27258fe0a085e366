// Package format turns raw market values into display strings.
package format

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
)

// Placeholder is shown wherever a value is missing upstream.
const Placeholder = "—"

const (
	ClassUp      = "price-up"
	ClassDown    = "price-down"
	ClassNeutral = "price-neutral"
)

// USD formats v as dollars with grouping and two decimals: "$43,250.00".
func USD(v float64) string {
	return "$" + humanize.FormatFloat("#,###.##", v)
}

// WholeUSD formats v as whole dollars with grouping: "$2,345,678,901".
func WholeUSD(v float64) string {
	return "$" + humanize.FormatFloat("#,###.", v)
}

// Price formats an optional price, falling back to the placeholder.
func Price(p *float64) string {
	if p == nil {
		return Placeholder
	}
	return USD(*p)
}

// CompactUSD formats large dollar values with T/B/M/K suffixes.
func CompactUSD(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("$%.2fK", v/1e3)
	default:
		return fmt.Sprintf("$%.2f", v)
	}
}

// Percent formats a change with an explicit sign for gains: "+2.34%".
func Percent(v float64) string {
	if v > 0 {
		return fmt.Sprintf("+%.2f%%", v)
	}
	return fmt.Sprintf("%.2f%%", v)
}

// PercentPtr formats an optional change, falling back to the placeholder.
func PercentPtr(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return Percent(*v)
}

// ChangeClass returns the css class for a change value.
func ChangeClass(v float64) string {
	switch {
	case v > 0:
		return ClassUp
	case v < 0:
		return ClassDown
	default:
		return ClassNeutral
	}
}

// Dominance formats a share as "52.34%".
func Dominance(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

// Truncate cuts s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return strings.TrimSpace(string(r[:n])) + "..."
}

const (
	secondsPerMinute = 60
	secondsPerHour   = 3600
	secondsPerDay    = 86400
	secondsPerMonth  = 2592000
	secondsPerYear   = 31536000
)

// TimeAgo renders the floored age of an epoch-seconds timestamp relative to now.
// Future timestamps count as zero elapsed.
func TimeAgo(now time.Time, epochSeconds int64) string {
	elapsed := now.Unix() - epochSeconds
	if elapsed < 0 {
		elapsed = 0
	}
	switch {
	case elapsed >= secondsPerYear:
		return fmt.Sprintf("%d years ago", elapsed/secondsPerYear)
	case elapsed >= secondsPerMonth:
		return fmt.Sprintf("%d months ago", elapsed/secondsPerMonth)
	case elapsed >= secondsPerDay:
		return fmt.Sprintf("%d days ago", elapsed/secondsPerDay)
	case elapsed >= secondsPerHour:
		return fmt.Sprintf("%d hours ago", elapsed/secondsPerHour)
	case elapsed >= secondsPerMinute:
		return fmt.Sprintf("%d minutes ago", elapsed/secondsPerMinute)
	default:
		return fmt.Sprintf("%d seconds ago", elapsed)
	}
}
