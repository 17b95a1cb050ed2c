package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/teemow/inboxchat/internal/assistant"
	"github.com/teemow/inboxchat/internal/conversation"
	"github.com/teemow/inboxchat/internal/gmail"
	"github.com/teemow/inboxchat/internal/intent"
	"github.com/teemow/inboxchat/internal/llm"
)

// EnvPrefix prefixes environment overrides, e.g. INBOXCHAT_PAGE_SIZE.
const EnvPrefix = "INBOXCHAT"

// DefaultSessionIdleTimeout is how long the server keeps an idle session.
const DefaultSessionIdleTimeout = 30 * time.Minute

// LLMConfig configures the conversational fallback.
type LLMConfig struct {
	Endpoint          string        `mapstructure:"endpoint" yaml:"endpoint"`
	Model             string        `mapstructure:"model" yaml:"model"`
	MaxTokens         int           `mapstructure:"max_tokens" yaml:"max_tokens"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout" yaml:"timeout"`
	// Disabled turns the fallback off even when an API key exists.
	Disabled bool `mapstructure:"disabled" yaml:"disabled"`
}

// GoogleConfig holds the OAuth client of the installed app.
type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id" yaml:"client_id"`
	ClientSecret string `mapstructure:"client_secret" yaml:"client_secret"`
}

// Config is the top-level application configuration.
type Config struct {
	// Accounts are the Gmail accounts to read, by token name.
	Accounts []string `mapstructure:"accounts" yaml:"accounts"`

	PageSize           int           `mapstructure:"page_size" yaml:"page_size"`
	SearchTimeout      time.Duration `mapstructure:"search_timeout" yaml:"search_timeout"`
	InboxLimit         int           `mapstructure:"inbox_limit" yaml:"inbox_limit"`
	SearchLimit        int           `mapstructure:"search_limit" yaml:"search_limit"`
	ConversationWindow int           `mapstructure:"conversation_window" yaml:"conversation_window"`
	SessionIdleTimeout time.Duration `mapstructure:"session_idle_timeout" yaml:"session_idle_timeout"`
	LogUtterances      bool          `mapstructure:"log_utterances" yaml:"log_utterances"`

	LLM    LLMConfig    `mapstructure:"llm" yaml:"llm"`
	Google GoogleConfig `mapstructure:"google" yaml:"google"`
}

// DefaultPath returns ~/.config/inboxchat/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "inboxchat", "config.yaml")
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Accounts:           []string{"default"},
		PageSize:           intent.DefaultPageSize,
		SearchTimeout:      assistant.DefaultSearchTimeout,
		InboxLimit:         gmail.DefaultRefreshResults,
		SearchLimit:        gmail.DefaultSearchResults,
		ConversationWindow: conversation.DefaultWindow,
		SessionIdleTimeout: DefaultSessionIdleTimeout,
		LLM: LLMConfig{
			Endpoint:          llm.DefaultEndpoint,
			Model:             llm.DefaultModel,
			MaxTokens:         llm.DefaultMaxTokens,
			RequestsPerMinute: 20,
			Timeout:           30 * time.Second,
		},
	}
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("accounts", d.Accounts)
	v.SetDefault("page_size", d.PageSize)
	v.SetDefault("search_timeout", d.SearchTimeout)
	v.SetDefault("inbox_limit", d.InboxLimit)
	v.SetDefault("search_limit", d.SearchLimit)
	v.SetDefault("conversation_window", d.ConversationWindow)
	v.SetDefault("session_idle_timeout", d.SessionIdleTimeout)
	v.SetDefault("log_utterances", d.LogUtterances)
	v.SetDefault("llm.endpoint", d.LLM.Endpoint)
	v.SetDefault("llm.model", d.LLM.Model)
	v.SetDefault("llm.max_tokens", d.LLM.MaxTokens)
	v.SetDefault("llm.requests_per_minute", d.LLM.RequestsPerMinute)
	v.SetDefault("llm.timeout", d.LLM.Timeout)
	v.SetDefault("llm.disabled", d.LLM.Disabled)
	v.SetDefault("google.client_id", d.Google.ClientID)
	v.SetDefault("google.client_secret", d.Google.ClientSecret)
}

// Load reads the YAML file at path. A missing file yields the defaults.
// Environment variables such as INBOXCHAT_PAGE_SIZE or
// INBOXCHAT_LLM_MODEL override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v, Default())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		var pathErr *os.PathError
		if !errors.As(err, &notFound) && !errors.As(err, &pathErr) {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	v.Set("accounts", cfg.Accounts)
	v.Set("page_size", cfg.PageSize)
	v.Set("search_timeout", cfg.SearchTimeout.String())
	v.Set("inbox_limit", cfg.InboxLimit)
	v.Set("search_limit", cfg.SearchLimit)
	v.Set("conversation_window", cfg.ConversationWindow)
	v.Set("session_idle_timeout", cfg.SessionIdleTimeout.String())
	v.Set("log_utterances", cfg.LogUtterances)
	v.Set("llm.endpoint", cfg.LLM.Endpoint)
	v.Set("llm.model", cfg.LLM.Model)
	v.Set("llm.max_tokens", cfg.LLM.MaxTokens)
	v.Set("llm.requests_per_minute", cfg.LLM.RequestsPerMinute)
	v.Set("llm.timeout", cfg.LLM.Timeout.String())
	v.Set("llm.disabled", cfg.LLM.Disabled)
	v.Set("google.client_id", cfg.Google.ClientID)
	v.Set("google.client_secret", cfg.Google.ClientSecret)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Validate checks ranges. Search timeouts outside 15s..30s are rejected
// rather than clamped so a typo in the file is noticed.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Accounts) == 0 {
		errs = append(errs, errors.New("at least one account is required"))
	}
	if c.PageSize < 1 || c.PageSize > intent.MaxPageSize {
		errs = append(errs, fmt.Errorf("page_size must be between 1 and %d, got %d", intent.MaxPageSize, c.PageSize))
	}
	if c.SearchTimeout < assistant.MinSearchTimeout || c.SearchTimeout > assistant.MaxSearchTimeout {
		errs = append(errs, fmt.Errorf("search_timeout must be between %s and %s, got %s",
			assistant.MinSearchTimeout, assistant.MaxSearchTimeout, c.SearchTimeout))
	}
	if c.InboxLimit < 1 {
		errs = append(errs, fmt.Errorf("inbox_limit must be positive, got %d", c.InboxLimit))
	}
	if c.SearchLimit < 1 {
		errs = append(errs, fmt.Errorf("search_limit must be positive, got %d", c.SearchLimit))
	}
	if c.ConversationWindow < 2 {
		errs = append(errs, fmt.Errorf("conversation_window must be at least 2, got %d", c.ConversationWindow))
	}
	if c.LLM.MaxTokens < 1 {
		errs = append(errs, fmt.Errorf("llm.max_tokens must be positive, got %d", c.LLM.MaxTokens))
	}
	if c.LLM.RequestsPerMinute < 0 {
		errs = append(errs, fmt.Errorf("llm.requests_per_minute must not be negative, got %d", c.LLM.RequestsPerMinute))
	}
	return errors.Join(errs...)
}
