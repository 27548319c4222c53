package view

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

type fakeAuthURL struct {
	url   string
	err   error
	calls int
}

func (f *fakeAuthURL) AuthURL(context.Context) (string, error) {
	f.calls++
	return f.url, f.err
}

func TestLoginScreen_Login(t *testing.T) {
	provider := &fakeAuthURL{url: "https://accounts.google.com/o/oauth2/auth?state=x"}
	screen := NewLoginScreen(provider, "/static/google_logo.svg", discardLogger())

	screen.Init(context.Background())
	screen.Init(context.Background())

	if provider.calls != 1 {
		t.Errorf("AuthURL called %d times, want 1", provider.calls)
	}
	u, ok := screen.Login()
	if !ok || u != provider.url {
		t.Errorf("Login() = (%q, %v), want (%q, true)", u, ok, provider.url)
	}
	if screen.LogoURL() != "/static/google_logo.svg" {
		t.Errorf("LogoURL() = %q", screen.LogoURL())
	}
}

func TestLoginScreen_Unconfigured(t *testing.T) {
	tests := []struct {
		name     string
		provider AuthURLProvider
	}{
		{"empty url", &fakeAuthURL{}},
		{"provider error", &fakeAuthURL{url: "ignored", err: errors.New("apex down")}},
		{"no provider", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var logs bytes.Buffer
			screen := NewLoginScreen(tt.provider, "", slog.New(slog.NewTextHandler(&logs, nil)))
			screen.Init(context.Background())

			u, ok := screen.Login()
			if ok || u != "" {
				t.Errorf("Login() = (%q, %v), want (\"\", false)", u, ok)
			}
			if !strings.Contains(logs.String(), "OAuth URL not configured") {
				t.Errorf("expected diagnostic in logs, got %q", logs.String())
			}
		})
	}
}

func TestLoginScreen_LoginBeforeInit(t *testing.T) {
	screen := NewLoginScreen(&fakeAuthURL{url: "https://example.com"}, "", discardLogger())
	if _, ok := screen.Login(); ok {
		t.Error("Login() before Init should be a no-op")
	}
}
