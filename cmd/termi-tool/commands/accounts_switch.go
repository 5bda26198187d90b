package commands

import (
	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/config"
)

// NewAccountsSwitchCommand creates the 'accounts switch' command
func NewAccountsSwitchCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "switch <account>",
		Short: "Make an account the current one",
		Long: `Mark an account as current.

Annotation runs start with the current account and rotate onward
from there.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			if err := store.Switch(args[0]); err != nil {
				return err
			}

			cfg.Logger.Info("✓ Switched to account %s", args[0])
			return nil
		},
	}

	return cmd
}
