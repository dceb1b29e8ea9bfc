package timeutil

import (
	"strings"
	"time"
)

var isoDateFormatReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"MM", "01",
	"M", "1",
	"DD", "02",
	"D", "2",
	"+hh:mm", "Z07:00",
	"+hhmm", "Z0700",
	"+hh", "Z07",
	"-hh:mm", "Z07:00",
	"-hhmm", "Z0700",
	"hh", "15",
	"mm", "04",
	"m", "4",
	"ss", "05",
	".SSS", ".000",
	".SS", ".00",
	".S", ".0",
	"-hh", "Z07",
	"Z", "Z07:00",
)

// Layout returns Go time layout, ISO date formats (i.e. YYYY-MM-DD hh:mm:ss) are converted, Go layouts are returned as is
func Layout(format string) string {
	if format == "" {
		return time.RFC3339
	}
	if !strings.Contains(format, "YYYY") {
		return format
	}
	return isoDateFormatReplacer.Replace(format)
}

// Parse parses value in UTC, a T or space date time separator is accepted either way, a value shorter than layout is matched against layout prefix
func Parse(layout, value string) (time.Time, error) {
	layout = Layout(layout)
	if strings.Contains(value, "T") != strings.Contains(layout, "T") {
		layout = strings.Replace(layout, "T", " ", 1)
		value = strings.Replace(value, "T", " ", 1)
	}
	ts, err := time.ParseInLocation(layout, value, time.UTC)
	if err == nil || len(value) >= len(layout) {
		return ts, err
	}
	if prefixed, prefixErr := time.ParseInLocation(layout[:len(value)], value, time.UTC); prefixErr == nil {
		return prefixed, nil
	}
	return ts, err
}
