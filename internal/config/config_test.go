package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_ReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `accounts: [work, personal]
page_size: 25
search_timeout: 15s
inbox_limit: 100
llm:
  model: test-model
  disabled: true
google:
  client_id: id
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"work", "personal"}, cfg.Accounts)
	assert.Equal(t, 25, cfg.PageSize)
	assert.Equal(t, 15*time.Second, cfg.SearchTimeout)
	assert.Equal(t, 100, cfg.InboxLimit)
	assert.Equal(t, "test-model", cfg.LLM.Model)
	assert.True(t, cfg.LLM.Disabled)
	assert.Equal(t, "id", cfg.Google.ClientID)
	// untouched keys keep their defaults
	assert.Equal(t, Default().LLM.MaxTokens, cfg.LLM.MaxTokens)
	assert.Equal(t, Default().ConversationWindow, cfg.ConversationWindow)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("page_size: 25\n"), 0o600))

	t.Setenv("INBOXCHAT_PAGE_SIZE", "5")
	t.Setenv("INBOXCHAT_LLM_MODEL", "env-model")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, "env-model", cfg.LLM.Model)
}

func TestLoad_RejectsInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("search_timeout: 5s\npage_size: 0\n"), 0o600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search_timeout")
	assert.Contains(t, err.Error(), "page_size")
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("accounts: [unterminated\n"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Accounts = []string{"work"}
	cfg.PageSize = 20
	cfg.SearchTimeout = 25 * time.Second
	cfg.LogUtterances = true

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "no accounts", mutate: func(c *Config) { c.Accounts = nil }, wantErr: true},
		{name: "page size too large", mutate: func(c *Config) { c.PageSize = 51 }, wantErr: true},
		{name: "page size at cap", mutate: func(c *Config) { c.PageSize = 50 }},
		{name: "timeout too long", mutate: func(c *Config) { c.SearchTimeout = time.Minute }, wantErr: true},
		{name: "timeout lower bound", mutate: func(c *Config) { c.SearchTimeout = 15 * time.Second }},
		{name: "tiny window", mutate: func(c *Config) { c.ConversationWindow = 1 }, wantErr: true},
		{name: "negative rate", mutate: func(c *Config) { c.LLM.RequestsPerMinute = -1 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
