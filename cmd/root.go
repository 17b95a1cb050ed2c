package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxchat/internal/config"
	"github.com/teemow/inboxchat/internal/logging"
)

// rootCmd represents the base command for the inboxchat application
var rootCmd = &cobra.Command{
	Use:   "inboxchat",
	Short: "Chat with your Gmail inbox",
	Long: `inboxchat answers plain-language questions about your mailbox, such as
"show unread emails", "emails from github" or "emails about invoice".

It can run as:
  - An interactive chat in the terminal (default)
  - An MCP (Model Context Protocol) server for AI assistants`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

var (
	configPath string
	debugMode  bool
	logFormat  string
)

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "inboxchat version %s\n" .Version}}`)

	// If no subcommand is provided, start the interactive chat
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "chat")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultPath(), "Path to the configuration file")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")

	rootCmd.AddCommand(newChatCmd())
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newCredentialCmd())
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// newLogger builds the process logger. Logs go to stderr so they never mix
// with MCP traffic on stdout.
func newLogger() *slog.Logger {
	logger := logging.New(os.Stderr, debugMode, logFormat)
	slog.SetDefault(logger)
	return logger
}
