// Package ics is an event source backed by an iCalendar (RFC 5545) feed, for
// deployments that publish a calendar as an ICS subscription URL instead of
// granting Google API access.
//
// The feed is fetched with conditional requests (ETag / Last-Modified) and
// cached in memory and optionally on disk. Recurring events are expanded
// into single instances inside the requested month, honoring EXDATE and
// RECURRENCE-ID overrides.
package ics
