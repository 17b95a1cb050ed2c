package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DefaultAccount is used when no account name is given.
const DefaultAccount = "default"

// ErrNoToken is returned when no token was stored for an account.
var ErrNoToken = errors.New("no Google OAuth token stored")

var accountNameRe = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// validateAccountName keeps account names usable as file name parts.
func validateAccountName(account string) error {
	if account == "" {
		return fmt.Errorf("account name cannot be empty")
	}
	if !accountNameRe.MatchString(account) {
		return fmt.Errorf("invalid account name %q: only letters, digits, hyphens and underscores are allowed", account)
	}
	return nil
}

// Credentials are the OAuth client credentials of the installed app.
type Credentials struct {
	ClientID     string
	ClientSecret string
	// RedirectURL defaults to the out-of-band URN used by the auth command.
	RedirectURL string
}

// OAuthConfig builds the oauth2 configuration for Gmail read access.
func OAuthConfig(creds Credentials) *oauth2.Config {
	redirect := creds.RedirectURL
	if redirect == "" {
		redirect = "urn:ietf:wg:oauth:2.0:oob"
	}
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirect,
		Scopes:       DefaultOAuthScopes,
	}
}

// GetAuthURL returns the consent URL for account.
func GetAuthURL(creds Credentials, account string) string {
	return OAuthConfig(creds).AuthCodeURL(account, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
}

// SaveToken exchanges an authorization code and stores the token for
// account.
func SaveToken(ctx context.Context, creds Credentials, account, authCode string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}

	t, err := OAuthConfig(creds).Exchange(ctx, authCode)
	if err != nil {
		return fmt.Errorf("failed to exchange auth code: %w", err)
	}
	return writeToken(getTokenFilePath(account), t)
}

// HasTokenForAccount reports whether a token file exists for account.
func HasTokenForAccount(account string) bool {
	if validateAccountName(account) != nil {
		return false
	}
	_, err := os.Stat(getTokenFilePath(account))
	return err == nil
}

// GetTokenSourceForAccount returns a refreshing token source for the
// stored token of account.
func GetTokenSourceForAccount(ctx context.Context, creds Credentials, account string) (oauth2.TokenSource, error) {
	if err := validateAccountName(account); err != nil {
		return nil, err
	}

	tok, err := readToken(getTokenFilePath(account))
	if err != nil {
		return nil, err
	}
	return OAuthConfig(creds).TokenSource(ctx, tok), nil
}

// GetHTTPClientForAccount returns an authenticated client for account.
// It uses HTTP/1.1; the Gmail batch endpoints reset HTTP/2 streams under
// load.
func GetHTTPClientForAccount(ctx context.Context, creds Credentials, account string) (*http.Client, error) {
	ts, err := GetTokenSourceForAccount(ctx, creds, account)
	if err != nil {
		return nil, err
	}

	return &http.Client{
		Transport: &oauth2.Transport{
			Source: oauth2.ReuseTokenSource(nil, ts),
			Base:   &http.Transport{ForceAttemptHTTP2: false, Proxy: http.ProxyFromEnvironment},
		},
	}, nil
}

// DeleteToken removes the stored token of account.
func DeleteToken(account string) error {
	if err := validateAccountName(account); err != nil {
		return err
	}
	if err := os.Remove(getTokenFilePath(account)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}

func getTokenFilePath(account string) string {
	return filepath.Join(tokenDir(), "google-"+account+".token")
}

func tokenDir() string {
	return filepath.Join(userCacheDir(), "inboxchat")
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoToken
		}
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("invalid token file %s: %w", path, err)
	}
	if tok.RefreshToken == "" && tok.AccessToken == "" {
		return nil, fmt.Errorf("invalid token file %s: no tokens", path)
	}
	return &tok, nil
}

func writeToken(path string, tok *oauth2.Token) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

func userCacheDir() string {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(homeDir(), "Library", "Caches")
	case "windows":
		for _, ev := range []string{"LOCALAPPDATA", "TEMP", "TMP"} {
			if v := os.Getenv(ev); v != "" {
				return v
			}
		}
		return os.TempDir()
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return xdg
	}
	return filepath.Join(homeDir(), ".cache")
}

func homeDir() string {
	if runtime.GOOS == "windows" {
		return os.Getenv("HOMEDRIVE") + os.Getenv("HOMEPATH")
	}
	return os.Getenv("HOME")
}

// GetAuthenticationErrorMessage tells the user how to authorize account.
func GetAuthenticationErrorMessage(account string) string {
	return fmt.Sprintf("No Google OAuth token for account %q. Run `inboxchat auth --account %s` "+
		"and follow the consent URL to grant read access to Gmail.", account, account)
}
