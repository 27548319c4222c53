package google

import (
	"context"
	"fmt"
	"regexp"
)

// DefaultAccount is used when a request does not name a user.
const DefaultAccount = "default"

var accountNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_@.-]{0,127}$`)

// validateAccountName ensures the account name is safe to use in a file name.
// Emails and CRM user ids are accepted; path separators and leading dots are not.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNameRegex.MatchString(account) {
		return fmt.Errorf("invalid account name %q: must start with a letter or digit and contain only letters, digits, '_', '-', '.', '@'", account)
	}
	return nil
}

type accountKey struct{}

// ContextWithAccount returns a context carrying the account the next OAuth
// flow is started for.
func ContextWithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, accountKey{}, account)
}

// AccountFromContext returns the account stored by ContextWithAccount, or
// DefaultAccount.
func AccountFromContext(ctx context.Context) string {
	if account, ok := ctx.Value(accountKey{}).(string); ok && account != "" {
		return account
	}
	return DefaultAccount
}
