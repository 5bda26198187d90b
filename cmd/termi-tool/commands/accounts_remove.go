package commands

import (
	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/config"
)

// NewAccountsRemoveCommand creates the 'accounts remove' command
func NewAccountsRemoveCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove <account>",
		Short: "Remove an account from the rotation pool",
		Long: `Remove an account and its stored API key.

When the removed account was current, the oldest remaining account
becomes current.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			if err := store.Remove(args[0]); err != nil {
				return err
			}

			cfg.Logger.Info("✓ Removed account %s", args[0])
			if current, ok := store.Current(); ok {
				cfg.Logger.Info("Current account is now %s", current)
			}
			return nil
		},
	}

	return cmd
}
