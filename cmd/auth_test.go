package cmd

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

type fakeExchanger struct {
	account string
	code    string
	err     error
}

func (f *fakeExchanger) AuthCodeURLForAccount(account string) (string, error) {
	return "https://accounts.example.com/o/oauth2/auth?state=xyz", nil
}

func (f *fakeExchanger) ExchangeForAccount(_ context.Context, account, code string) error {
	f.account = account
	f.code = code
	return f.err
}

func TestExtractAuthCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare code", input: "4/0Abc-123", want: "4/0Abc-123"},
		{name: "bare code with whitespace", input: "  4/0Abc  \n", want: "4/0Abc"},
		{name: "redirect url", input: "http://127.0.0.1:8080/oauth2/callback?state=s&code=4%2F0Abc", want: "4/0Abc"},
		{name: "redirect url without code", input: "http://127.0.0.1:8080/oauth2/callback?state=s", wantErr: true},
		{name: "access denied", input: "http://127.0.0.1:8080/oauth2/callback?error=access_denied", wantErr: true},
		{name: "empty", input: "   ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractAuthCode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("extractAuthCode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("extractAuthCode(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestRunAuth(t *testing.T) {
	ex := &fakeExchanger{}
	var out bytes.Buffer

	err := runAuth(context.Background(), ex, "alice", strings.NewReader("http://localhost/cb?code=abc\n"), &out)
	if err != nil {
		t.Fatalf("runAuth() error = %v", err)
	}
	if ex.account != "alice" || ex.code != "abc" {
		t.Errorf("exchanged (%q, %q), want (alice, abc)", ex.account, ex.code)
	}
	if !strings.Contains(out.String(), "Go to https://accounts.example.com/") {
		t.Errorf("output does not show the consent URL: %q", out.String())
	}
	if !strings.Contains(out.String(), "Google account connected for alice") {
		t.Errorf("output does not confirm the connection: %q", out.String())
	}
}

func TestRunAuthErrors(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		err := runAuth(context.Background(), &fakeExchanger{}, "alice", strings.NewReader(""), &bytes.Buffer{})
		if err == nil {
			t.Fatal("expected an error on empty input")
		}
	})

	t.Run("exchange fails", func(t *testing.T) {
		want := errors.New("invalid_grant")
		err := runAuth(context.Background(), &fakeExchanger{err: want}, "alice", strings.NewReader("abc\n"), &bytes.Buffer{})
		if !errors.Is(err, want) {
			t.Errorf("runAuth() error = %v, want %v", err, want)
		}
	})
}
