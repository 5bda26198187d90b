package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/KhanhRomVN/termi-tool/internal/accounts"
	"github.com/KhanhRomVN/termi-tool/internal/config"
	"github.com/KhanhRomVN/termi-tool/internal/gemini"
)

// NewDoctorCommand creates the doctor command
func NewDoctorCommand(cfg *config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and account health",
		Long: `Verify that termi-tool is ready to annotate.

This command checks:
- Configuration file validity
- The account store and its current-account pointer
- That every account has an API key available
- Keyring availability when key storage is set to the OS keyring`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Logger.Info("Checking termi-tool configuration...")
			if err := cfg.Load(); err != nil {
				cfg.Logger.Error("Configuration error: %v", err)
				return fmt.Errorf("failed to load config: %w", err)
			}
			cfg.Logger.Info("✓ Configuration loaded (%s)", cfg.Describe())

			dir := cfg.AccountsDir()
			if dir == "" {
				dir = accounts.DefaultDir()
			}

			var opts []accounts.Option
			if cfg.UseKeyring() {
				opts = append(opts, accounts.WithKeyring(accounts.OSKeyring{}))
			}
			store, err := accounts.NewFileStore(dir, opts...)
			if err != nil {
				cfg.Logger.Error("Account store error: %v", err)
				return fmt.Errorf("failed to open account store: %w", err)
			}
			cfg.Logger.Info("✓ Account store at %s", dir)

			creds, err := store.List()
			if err != nil {
				cfg.Logger.Error("Account store unreadable: %v", err)
				return err
			}
			if len(creds) == 0 {
				cfg.Logger.Warn("No accounts registered; run 'termi-tool accounts add'")
				return nil
			}

			current, hasCurrent := store.Current()
			if !hasCurrent {
				cfg.Logger.Warn("No current account set; run 'termi-tool accounts switch'")
			}

			healthy := 0
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "\tACCOUNT\tKEY\tSTATUS")
			for _, cred := range creds {
				marker := " "
				if cred.Name == current {
					marker = "*"
				}
				status := "ok"
				keyState := "present"
				if cred.Key == "" {
					status = "missing key"
					keyState = "absent"
				} else {
					healthy++
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", marker, cred.Name, keyState, status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			model := cfg.Model()
			if model == "" {
				model = gemini.DefaultModel
			}
			cfg.Logger.Info("✓ Model: %s", model)

			if healthy < len(creds) {
				return fmt.Errorf("%d of %d account(s) have no API key", len(creds)-healthy, len(creds))
			}
			cfg.Logger.Info("✓ %d account(s) ready", healthy)
			return nil
		},
	}

	return cmd
}
