// Package cmd implements the command-line interface for calview.
//
// This package provides the following commands:
//   - serve: Start the web UI with the login screen and the month calendar
//   - show: Print a month grid to the terminal, optionally interactive
//   - auth: Connect a Google account from the terminal
//   - version: Display version information
//
// Settings come from the YAML config file, a .env file, the environment and
// flags, in increasing order of precedence.
package cmd
