package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mintbot/internal/config"
	"mintbot/internal/launch"
	"mintbot/internal/wallet"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file and referenced pools without running anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewManager(cfgPath).Load()
		if err != nil {
			return err
		}

		wallets, err := wallet.LoadPool(cfg.Wallets.KeysFile)
		if err != nil {
			return err
		}
		pool, err := launch.LoadPool(cfg.Tokens.PoolFile)
		if err != nil {
			return err
		}

		fmt.Printf("config ok: %s\n", cfgPath)
		fmt.Printf("  network:  %s\n", cfg.Network)
		fmt.Printf("  campaign: %d tokens over %s (%s mode)\n", cfg.Campaign.TotalTokens, cfg.Campaign.Duration, cfg.Mode())
		fmt.Printf("  wallets:  %d\n", len(wallets))
		fmt.Printf("  tokens:   %d candidates\n", len(pool))
		return nil
	},
}
