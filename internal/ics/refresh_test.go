package ics

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teemow/calview/internal/logging"
)

func TestNewRefresher_InvalidSchedule(t *testing.T) {
	src := newTestSource(t, "https://example.com/cal.ics", "")
	_, err := NewRefresher(src, "every now and then", time.UTC, logging.Discard())
	assert.Error(t, err)
}

func TestRefresher_WarmsCacheOnStart(t *testing.T) {
	feed := &fakeFeed{body: testFeed}
	srv := httptest.NewServer(feed)
	defer srv.Close()

	src := newTestSource(t, srv.URL, "")
	r, err := NewRefresher(src, "", time.UTC, logging.Discard())
	require.NoError(t, err)

	r.Start()
	defer r.Stop(context.Background())

	require.Eventually(t, func() bool {
		src.mu.Lock()
		defer src.mu.Unlock()
		return src.body != nil
	}, 5*time.Second, 10*time.Millisecond)
}
