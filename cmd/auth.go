package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/spf13/cobra"
)

// codeExchanger is the part of google.Authenticator the auth command uses.
type codeExchanger interface {
	AuthCodeURLForAccount(account string) (string, error)
	ExchangeForAccount(ctx context.Context, account, code string) error
}

func newAuthCmd() *cobra.Command {
	var user string

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Connect a Google account from the terminal",
		Long: `Connect a Google account from the terminal.

Prints the Google consent URL. Open it in a browser, grant access, then paste
either the full URL you were redirected to or just the value of its "code"
parameter. The token is stored in the token directory under the given user.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if user == "" {
				user = appConfig.DefaultUser
			}
			auth := newAuthenticator(appConfig, appLogger)
			if !auth.Configured() {
				return errors.New("no Google OAuth client configured, set GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET")
			}
			return runAuth(cmd.Context(), auth, user, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&user, "user", "", "CRM user id to store the token under (default: default_user from config)")

	return cmd
}

func runAuth(ctx context.Context, auth codeExchanger, user string, in io.Reader, out io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	authURL, err := auth.AuthCodeURLForAccount(user)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Go to %s\n", authURL)
	fmt.Fprintf(out, "Authorizing for user: %s\n", user)
	fmt.Fprint(out, "Enter code or redirect URL> ")

	bs := bufio.NewScanner(in)
	if !bs.Scan() {
		if err := bs.Err(); err != nil {
			return err
		}
		return io.ErrUnexpectedEOF
	}

	code, err := extractAuthCode(bs.Text())
	if err != nil {
		return err
	}
	if err := auth.ExchangeForAccount(ctx, user, code); err != nil {
		return err
	}
	fmt.Fprintf(out, "Google account connected for %s\n", user)
	return nil
}

// extractAuthCode accepts either a bare authorization code or the redirect
// URL carrying it in its query.
func extractAuthCode(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", errors.New("authorization code cannot be empty")
	}
	if !strings.Contains(input, "://") {
		return input, nil
	}

	u, err := url.Parse(input)
	if err != nil {
		return "", fmt.Errorf("invalid redirect URL: %w", err)
	}
	q := u.Query()
	if msg := q.Get("error"); msg != "" {
		return "", fmt.Errorf("google denied access: %s", msg)
	}
	code := q.Get("code")
	if code == "" {
		return "", errors.New("redirect URL has no code parameter")
	}
	return code, nil
}
