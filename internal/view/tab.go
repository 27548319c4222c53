package view

import (
	"context"
	"log/slog"
	"sync"

	"github.com/teemow/calview/internal/logging"
)

// TabState is what the calendar tab shows: a spinner while Loading, then
// either the month calendar or the login screen.
type TabState struct {
	SignedIn bool `json:"signedIn"`
	Loading  bool `json:"loading"`
}

// CalendarTab decides between the month calendar and the login screen.
type CalendarTab struct {
	checker SignInChecker
	logger  *slog.Logger

	mu    sync.Mutex
	state TabState
}

// NewCalendarTab creates a tab in the loading state.
func NewCalendarTab(checker SignInChecker, logger *slog.Logger) *CalendarTab {
	if logger == nil {
		logger = slog.Default()
	}
	return &CalendarTab{
		checker: checker,
		logger:  logging.WithComponent(logger, "calendar_tab"),
		state:   TabState{Loading: true},
	}
}

// Check asks whether userID is signed in. A failed check counts as signed
// out. Loading is false once Check returns.
func (t *CalendarTab) Check(ctx context.Context, userID string) TabState {
	signedIn := false
	if t.checker != nil {
		ok, err := t.checker.IsSignedIn(ctx, userID)
		if err != nil {
			t.logger.WarnContext(ctx, "Failed to check Google sign-in status",
				logging.UserHash(userID), logging.Err(err))
		} else {
			signedIn = ok
		}
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TabState{SignedIn: signedIn}
	return t.state
}

// State returns the last known state.
func (t *CalendarTab) State() TabState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}
