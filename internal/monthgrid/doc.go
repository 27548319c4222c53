// Package monthgrid turns a list of raw calendar events and a (year, month)
// reference into a renderable month view: a Sunday-first grid of 5 or 6 weeks
// whose day cells carry the events that start on that day.
//
// Everything in this package is pure and synchronous. Locale and time zone
// are never read from the environment; they are carried by a Formatter so the
// same input always produces the same grid.
//
// Example usage:
//
//	f := monthgrid.NewFormatter(monthgrid.ResolveLocale("en-US"), time.Local, "Google")
//	byDay := f.GroupEventsByDay(events)
//	weeks := monthgrid.BuildMonthGrid(2025, 1, byDay)
//	label := f.FormatMonthLabel(2025, 1) // "February 2025"
package monthgrid
