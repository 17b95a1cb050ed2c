// Package cmd implements the command-line interface for inboxchat.
//
// This package provides the following commands:
//   - chat: Interactive chat with the mailbox in the terminal
//   - serve: Start the MCP server to provide chat tools for AI assistants
//   - auth: Authorize a Google account for read access to Gmail
//   - credential: Store or delete secrets in the system keyring
//   - config: Write or show the configuration file
//   - generate-docs: Generate markdown documentation for all MCP tools
//   - version: Display version information
//
// The chat command is the default command when no subcommand is specified.
package cmd
