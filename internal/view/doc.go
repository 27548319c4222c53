// Package view holds the presentation state behind the calendar screens:
// the month calendar, the login screen and the calendar tab.
//
// Components talk to the outside world only through the EventSource,
// AuthURLProvider and SignInChecker interfaces. A failing collaborator never
// fails a component; it degrades to an empty or default state and the failure
// is logged and counted.
package view
