// Package config loads and saves the inboxchat YAML configuration.
//
// Values come from three layers, lowest first: built-in defaults, the
// config file (~/.config/inboxchat/config.yaml unless overridden) and
// INBOXCHAT_* environment variables. Nested keys map to environment
// names with underscores, so llm.model becomes INBOXCHAT_LLM_MODEL.
package config
