package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxchat/internal/google"
)

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage Google account authorization",
		Long: `Authorize inboxchat to read Gmail for an account.

Tokens are stored per account name under the user cache directory. The
OAuth client comes from the google section of the config file or from the
GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET env vars.`,
	}

	cmd.AddCommand(newAuthLoginCmd())
	cmd.AddCommand(newAuthStatusCmd())
	cmd.AddCommand(newAuthLogoutCmd())

	return cmd
}

func newAuthLoginCmd() *cobra.Command {
	var (
		account string
		code    string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize an account and store its token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			creds := googleCredentials(cfg)
			if creds.ClientID == "" || creds.ClientSecret == "" {
				return errors.New("google client id and secret are required (config file or GOOGLE_CLIENT_ID/GOOGLE_CLIENT_SECRET)")
			}

			out := cmd.OutOrStdout()
			if code == "" {
				fmt.Fprintf(out, "Open this URL in your browser to authorize account %q:\n\n%s\n\n", account, google.GetAuthURL(creds, account))
				code, err = promptValue("Authorization code", "Paste the code shown after granting access", false)
				if err != nil {
					return err
				}
			}

			if err := google.SaveToken(cmd.Context(), creds, account, code); err != nil {
				return fmt.Errorf("failed to save token for account %q: %w", account, err)
			}
			fmt.Fprintf(out, "Account %q authorized.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name to authorize")
	cmd.Flags().StringVar(&code, "code", "", "Authorization code, skips the interactive prompt")

	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which configured accounts have a token",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, account := range cfg.Accounts {
				status := "not authorized"
				if google.HasTokenForAccount(account) {
					status = "authorized"
				}
				fmt.Fprintf(out, "%-20s %s\n", account, status)
			}
			return nil
		},
	}
}

func newAuthLogoutCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "logout",
		Short: "Delete the stored token of an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := google.DeleteToken(account); err != nil {
				return fmt.Errorf("failed to delete token for account %q: %w", account, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Token for account %q deleted.\n", account)
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", google.DefaultAccount, "Account name to log out")

	return cmd
}
