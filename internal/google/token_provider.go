package google

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// TokenProvider supplies authenticated HTTP clients per account.
type TokenProvider interface {
	// HTTPClient returns a client that authenticates as account.
	HTTPClient(ctx context.Context, account string) (*http.Client, error)

	// HasTokenForAccount checks if a token exists for the specified account
	HasTokenForAccount(account string) bool
}

// FileTokenProvider reads tokens written by the auth command.
type FileTokenProvider struct {
	creds Credentials
}

// NewFileTokenProvider creates a provider using creds to refresh tokens.
func NewFileTokenProvider(creds Credentials) *FileTokenProvider {
	return &FileTokenProvider{creds: creds}
}

// HTTPClient returns an authenticated client for account.
func (p *FileTokenProvider) HTTPClient(ctx context.Context, account string) (*http.Client, error) {
	client, err := GetHTTPClientForAccount(ctx, p.creds, account)
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", account, err)
	}
	return client, nil
}

// Token returns the current token of account, refreshing it if needed.
func (p *FileTokenProvider) Token(ctx context.Context, account string) (*oauth2.Token, error) {
	ts, err := GetTokenSourceForAccount(ctx, p.creds, account)
	if err != nil {
		return nil, err
	}
	token, err := ts.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to get token from file: %w", err)
	}
	return token, nil
}

// HasTokenForAccount checks if a token file exists for the specified account
func (p *FileTokenProvider) HasTokenForAccount(account string) bool {
	return HasTokenForAccount(account)
}
