package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/config"
	"github.com/KhanhRomVN/termi-tool/internal/errclass"
	"github.com/KhanhRomVN/termi-tool/internal/logging"
)

// NewAccountsAddCommand creates the 'accounts add' command
func NewAccountsAddCommand(cfg *config.Config) *cobra.Command {
	var apiKey string

	cmd := &cobra.Command{
		Use:   "add <account>",
		Short: "Register a Gemini account and its API key",
		Long: `Register a new account in the rotation pool.

The API key can be passed with --key, or entered on stdin when the
flag is omitted. The first account added becomes the current one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.TrimSpace(args[0])

			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			key := strings.TrimSpace(apiKey)
			if key == "" {
				if cfg.NonInteractive {
					return errclass.UserError{
						Message:    "No API key provided",
						Suggestion: "Pass the key with --key in non-interactive mode",
					}
				}
				fmt.Fprintf(os.Stderr, "Enter API key for %s: ", name)
				reader := bufio.NewReader(os.Stdin)
				line, err := reader.ReadString('\n')
				if err != nil {
					return fmt.Errorf("failed to read API key: %w", err)
				}
				key = strings.TrimSpace(line)
			}
			if key == "" {
				return errclass.UserError{
					Message:    "API key must not be empty",
					Suggestion: "Create a key at https://aistudio.google.com/apikey",
				}
			}

			if err := store.Add(name, key); err != nil {
				return err
			}

			cfg.Logger.Info("✓ Added account %s (key %s)", name, logging.MaskKey(key))
			if current, ok := store.Current(); ok && current == name {
				cfg.Logger.Info("%s is now the current account", name)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&apiKey, "key", "", "API key for the account (read from stdin when omitted)")

	return cmd
}
