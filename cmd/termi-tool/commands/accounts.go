package commands

import (
	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/config"
)

// NewAccountsCommand creates the parent 'accounts' command
func NewAccountsCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage Gemini accounts and their API keys",
		Long: `Manage the pool of Gemini accounts used for annotation.

Each account pairs an identifier (usually the account email) with an
API key. One account is marked current; annotation starts there and
rotates through the rest when an account hits its quota.

Examples:
  termi-tool accounts add alice@gmail.com
  termi-tool accounts list
  termi-tool accounts switch bob@gmail.com
  termi-tool accounts remove alice@gmail.com`,
	}

	// Add subcommands
	cmd.AddCommand(
		NewAccountsAddCommand(cfg),
		NewAccountsListCommand(cfg),
		NewAccountsSwitchCommand(cfg),
		NewAccountsRemoveCommand(cfg),
	)

	return cmd
}
