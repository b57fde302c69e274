package util

import (
	"fmt"
	"strings"
	"time"

	"github.com/fatih/color"
)

var (
	Red        = color.New(color.FgRed).SprintFunc()
	RedBold    = color.New(color.FgRed, color.Bold).SprintFunc()
	Green      = color.New(color.FgGreen).SprintFunc()
	GreenBold  = color.New(color.FgGreen, color.Bold).SprintFunc()
	Yellow     = color.New(color.FgYellow).SprintFunc()
	YellowBold = color.New(color.FgYellow, color.Bold).SprintFunc()
	Blue       = color.New(color.FgBlue).SprintFunc()
	BlueBold   = color.New(color.FgBlue, color.Bold).SprintFunc()
	Cyan       = color.New(color.FgCyan).SprintFunc()
	Gray       = color.New(color.FgHiBlack).SprintFunc()
	Bold       = color.New(color.Bold).SprintFunc()
)

func Iif(condition bool, trueVal, falseVal string) string {
	if condition {
		return trueVal
	}
	return falseVal
}

// Plural returns "1 show", "2 shows".
func Plural(n int, noun string) string {
	return fmt.Sprintf("%d %s", n, Iif(n == 1, noun, noun+"s"))
}

// Runtime renders a runtime in minutes, or "?" when TVmaze has none.
func Runtime(minutes int) string {
	if minutes <= 0 {
		return "?"
	}
	return fmt.Sprintf("%d min", minutes)
}

func Truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func GetOrdinalSuffix(day int) string {
	if day >= 11 && day <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// FormatRunTime renders t as "15th October 2026 at 12:00".
func FormatRunTime(t time.Time) string {
	return fmt.Sprintf("%d%s %s %d at %s", t.Day(), GetOrdinalSuffix(t.Day()), t.Month(), t.Year(), t.Format("15:04"))
}
