// Package dateutils provides common date and time operations used throughout the application.
package dateutils

import (
	"fmt"
	"strings"
	"time"
)

// Day is the unit of distance in all proximity and horizon calculations.
// Source dates carry no reliable time-of-day precision.
const Day = 24 * time.Hour

// Common date format constants used throughout the application
const (
	DateLayoutISO       = "2006-01-02"
	DateLayoutLongMonth = "January 2, 2006"
	DateLayoutMonth     = "Jan 2, 2006"
	DateLayoutUS        = "01/02/2006"
)

// CommonFormats is a list of standard formats to try when parsing dates.
// The long-month layout is what the transaction listing renders its date
// headings in; ISO is the ledger input convention.
var CommonFormats = []string{
	DateLayoutISO,
	DateLayoutLongMonth,
	DateLayoutMonth,
	DateLayoutUS,
	"2/1/2006",
	"02.01.2006",
}

// ParseDate attempts to parse a date string using multiple common formats.
func ParseDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	if dateStr == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}

	for _, format := range CommonFormats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}

// FormatDate formats a time.Time value according to the specified layout.
// If no layout is provided, DateLayoutISO is used.
func FormatDate(date time.Time, layout string) string {
	if layout == "" {
		layout = DateLayoutISO
	}
	return date.Format(layout)
}

// Delta returns the signed duration a-b. A positive result means a is later.
func Delta(a, b time.Time) time.Duration {
	return a.Sub(b)
}

// AbsDelta returns the absolute duration between two dates.
func AbsDelta(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}

// WithinDays reports whether two dates are strictly closer than the given
// number of days. A pair exactly at the boundary is NOT within.
func WithinDays(a, b time.Time, days int) bool {
	return AbsDelta(a, b) < time.Duration(days)*Day
}

// DaysApart returns the whole number of days between two dates.
func DaysApart(a, b time.Time) int {
	return int(AbsDelta(a, b) / Day)
}
