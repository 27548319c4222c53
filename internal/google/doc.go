// Package google handles the Google OAuth2 side of calview: building the
// consent URL shown by the login screen, exchanging the authorization code
// on the callback, and storing per-user tokens on disk.
//
// The TokenProvider interface lets API clients obtain tokens without caring
// where they are stored. Authenticator implements it on top of a TokenStore
// and refreshes expired tokens transparently.
package google
