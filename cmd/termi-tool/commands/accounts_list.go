package commands

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/config"
	"github.com/KhanhRomVN/termi-tool/internal/logging"
)

// NewAccountsListCommand creates the 'accounts list' command
func NewAccountsListCommand(cfg *config.Config) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered accounts",
		Long: `List all registered accounts in rotation order.

API keys are always shown masked. The current account is marked
with an asterisk.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cfg)
			if err != nil {
				return err
			}

			creds, err := store.List()
			if err != nil {
				return err
			}
			current, _ := store.Current()

			if jsonOutput {
				type accountInfo struct {
					Account string `json:"account"`
					Key     string `json:"key"`
					AddedAt string `json:"added_at"`
					Current bool   `json:"current"`
				}
				infos := make([]accountInfo, 0, len(creds))
				for _, cred := range creds {
					added, _ := store.AddedAt(cred.Name)
					infos = append(infos, accountInfo{
						Account: cred.Name,
						Key:     logging.MaskKey(cred.Key),
						AddedAt: added,
						Current: cred.Name == current,
					})
				}
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(infos)
			}

			if len(creds) == 0 {
				cfg.Logger.Info("No accounts registered. Add one with 'termi-tool accounts add'")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tACCOUNT\tKEY\tADDED")
			for _, cred := range creds {
				marker := " "
				if cred.Name == current {
					marker = "*"
				}
				added, _ := store.AddedAt(cred.Name)
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, cred.Name, logging.MaskKey(cred.Key), added)
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")

	return cmd
}
