package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/teemow/inboxchat/internal/credential"
)

func checkCredentialKey(key string) error {
	if !credential.IsKnownKey(key) {
		return fmt.Errorf("unknown credential %q (known: %s)", key, strings.Join(credential.KnownKeys(), ", "))
	}
	return nil
}

func newCredentialCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credential",
		Short: "Manage secrets in the system keyring",
		Long: `Store and remove secrets such as the LLM API key.

Secrets live in the OS keyring. On systems without one an encrypted file
under the user config directory is used instead.`,
	}

	cmd.AddCommand(newCredentialSetCmd())
	cmd.AddCommand(newCredentialDeleteCmd())

	return cmd
}

func newCredentialSetCmd() *cobra.Command {
	var fromStdin bool

	cmd := &cobra.Command{
		Use:   "set <key>",
		Short: "Store a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkCredentialKey(key); err != nil {
				return err
			}

			var (
				value string
				err   error
			)
			if fromStdin {
				value, err = readValue(cmd.InOrStdin())
			} else {
				value, err = promptValue(key, "The value is stored in the system keyring", true)
			}
			if err != nil {
				return err
			}

			store, err := credential.Open()
			if err != nil {
				return fmt.Errorf("failed to open keyring: %w", err)
			}
			if err := store.Set(key, value); err != nil {
				return fmt.Errorf("failed to store %s: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s.\n", key)
			return nil
		},
	}

	cmd.Flags().BoolVar(&fromStdin, "stdin", false, "Read the value from the first line of stdin")

	return cmd
}

func newCredentialDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a secret",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key := args[0]
			if err := checkCredentialKey(key); err != nil {
				return err
			}

			store, err := credential.Open()
			if err != nil {
				return fmt.Errorf("failed to open keyring: %w", err)
			}
			err = store.Delete(key)
			switch {
			case errors.Is(err, credential.ErrNotFound):
				fmt.Fprintf(cmd.OutOrStdout(), "%s was not set.\n", key)
				return nil
			case err != nil:
				return fmt.Errorf("failed to delete %s: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s.\n", key)
			return nil
		},
	}
}
