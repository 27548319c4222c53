package instrumentation

import "strings"

// RouteOther is the route label for paths outside the known set.
const RouteOther = "other"

// NormalizeRoute maps a request path to a bounded set of route labels so
// that arbitrary URLs cannot blow up metric cardinality.
//
// Example:
//
//	NormalizeRoute("/api/calendar", known)  // "/api/calendar"
//	NormalizeRoute("/wp-login.php", known)  // "other"
func NormalizeRoute(path string, known []string) string {
	if path == "" {
		path = "/"
	}
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}
	for _, r := range known {
		if path == r {
			return r
		}
	}
	return RouteOther
}
