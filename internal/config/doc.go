// Package config loads the calview configuration.
//
// Settings are layered: a YAML file (created with defaults on first run),
// then a .env file and the process environment, then command-line flags
// applied by the cmd package.
package config
