package view

import "errors"

var errNoSource = errors.New("no event source configured")
