package helpers

import "time"

// Dates is the #dates helper object: utilities for formatting and
// picking apart time values inside template expressions.
type Dates struct{}

// Now returns the current time.
func (Dates) Now() time.Time {
	return time.Now()
}

// Format renders the time using a Go reference layout.
func (Dates) Format(t time.Time, layout string) string {
	return t.Format(layout)
}

// Year returns the year of the time.
func (Dates) Year(t time.Time) int {
	return t.Year()
}

// Month returns the full month name of the time.
func (Dates) Month(t time.Time) string {
	return t.Month().String()
}

// Day returns the day of the month of the time.
func (Dates) Day(t time.Time) int {
	return t.Day()
}
