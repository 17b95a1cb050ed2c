// Package credential stores secrets such as the LLM API key in the system
// keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/99designs/keyring"
)

const serviceName = "inboxchat"

// Keys known to the credential command.
const (
	KeyLLMAPIKey = "llm-api-key"
)

// EnvLLMAPIKey is read when the keyring has no LLM API key.
const EnvLLMAPIKey = "INBOXCHAT_LLM_API_KEY"

// ErrNotFound is returned when a key is not stored.
var ErrNotFound = errors.New("credential not found")

// KnownKeys lists the keys the credential command accepts.
func KnownKeys() []string {
	return []string{KeyLLMAPIKey}
}

// IsKnownKey reports whether key is one of KnownKeys.
func IsKnownKey(key string) bool {
	for _, k := range KnownKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// Store reads and writes credentials.
type Store struct {
	ring keyring.Keyring
}

// NewStore wraps an opened keyring.
func NewStore(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

// Open returns a store backed by the system keyring.
func Open() (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir(),
		FilePasswordFunc:         keyring.FixedStringPrompt("inboxchat-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return NewStore(ring), nil
}

func fileDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".inboxchat-credentials")
	}
	return filepath.Join(home, ".config", "inboxchat", "credentials")
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if err != nil {
		if errors.Is(err, keyring.ErrKeyNotFound) {
			return "", fmt.Errorf("getting credential %q: %w", key, ErrNotFound)
		}
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}
	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:         key,
		Data:        []byte(value),
		Label:       serviceName + " " + key,
		Description: "inboxchat credential",
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}
	return nil
}

// Delete removes a credential by key. Deleting a missing key is not an
// error.
func (s *Store) Delete(key string) error {
	err := s.ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}
	return nil
}

// LLMAPIKey returns the LLM API key from the store, falling back to the
// INBOXCHAT_LLM_API_KEY environment variable. A nil store only checks the
// environment.
func LLMAPIKey(s *Store) (string, error) {
	if s != nil {
		key, err := s.Get(KeyLLMAPIKey)
		if err == nil && key != "" {
			return key, nil
		}
		if err != nil && !errors.Is(err, ErrNotFound) {
			if env := os.Getenv(EnvLLMAPIKey); env != "" {
				return env, nil
			}
			return "", err
		}
	}
	if env := os.Getenv(EnvLLMAPIKey); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("%s: %w", KeyLLMAPIKey, ErrNotFound)
}
