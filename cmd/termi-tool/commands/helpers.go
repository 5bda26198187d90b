package commands

import (
	"fmt"

	"github.com/KhanhRomVN/termi-tool/internal/accounts"
	"github.com/KhanhRomVN/termi-tool/internal/config"
)

// openStore loads the configuration and opens the account store it
// points at, wiring in the OS keyring when configured.
func openStore(cfg *config.Config) (*accounts.FileStore, error) {
	if err := cfg.Load(); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

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
		return nil, fmt.Errorf("failed to open account store: %w", err)
	}
	return store, nil
}
