package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

var _ Logger = (*SlogAdapter)(nil)

func TestNewSlogAdapter_WithNil(t *testing.T) {
	adapter := NewSlogAdapter(nil, "")
	if adapter.Logger() == nil {
		t.Error("adapter logger should fall back to slog.Default()")
	}
}

func TestNewSlogAdapter_Component(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	adapter := NewSlogAdapter(base, "ics_fetcher").With("feed", "team")
	adapter.Debug("fetched", "status", 304)
	adapter.Warn("slow feed")

	out := buf.String()
	for _, want := range []string{"component=ics_fetcher", "feed=team", "status=304", "level=WARN"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
}

func TestDiscard(t *testing.T) {
	// Should not panic
	d := Discard()
	d.Info("dropped", "key", "value")
	d.Error("dropped")
}
