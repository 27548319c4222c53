package view

import (
	"context"

	"github.com/teemow/calview/internal/monthgrid"
)

// EventSource fetches the raw events of one user and month ("YYYY-MM").
type EventSource interface {
	FetchMonthlyEvents(ctx context.Context, userID, yearMonth string) ([]monthgrid.RawEvent, error)
}

// NamedSource is implemented by event sources that report a name for logs
// and metrics.
type NamedSource interface {
	Name() string
}

// AuthURLProvider returns the OAuth consent URL. An empty URL means sign-in
// is not configured.
type AuthURLProvider interface {
	AuthURL(ctx context.Context) (string, error)
}

// SignInChecker reports whether a user has connected their calendar.
type SignInChecker interface {
	IsSignedIn(ctx context.Context, userID string) (bool, error)
}

func sourceName(src EventSource) string {
	if n, ok := src.(NamedSource); ok {
		return n.Name()
	}
	return "unknown"
}

// StaticSignIn is a SignInChecker with a fixed answer. It is used for event
// sources that need no per-user sign-in, such as a shared ICS feed.
type StaticSignIn bool

// IsSignedIn returns the fixed answer.
func (s StaticSignIn) IsSignedIn(context.Context, string) (bool, error) {
	return bool(s), nil
}
