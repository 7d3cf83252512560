package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"mintbot/internal/config"
	"mintbot/internal/state"
	logx "mintbot/pkg/logx"
)

var statusRecent int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show campaign progress and recent launches",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.NewManager(cfgPath).Load()
		if err != nil {
			return err
		}

		store := state.NewStore(state.NewFileSubstrate(cfg.State.Path), logx.Nop())
		prog, err := store.Load()
		if err != nil {
			return err
		}

		total := cfg.Campaign.TotalTokens
		fmt.Printf("campaign: %d / %d tokens created\n", prog.TokensCreated, total)
		if prog.StartedAt.IsZero() {
			fmt.Println("started:  never")
		} else {
			fmt.Printf("started:  %s\n", prog.StartedAt.Format(time.RFC3339))
		}
		if !prog.LastCompletedAt.IsZero() {
			fmt.Printf("last:     %s\n", prog.LastCompletedAt.Format(time.RFC3339))
		}
		if prog.TokensCreated >= total {
			fmt.Println("state:    complete")
		} else {
			fmt.Printf("state:    %d remaining\n", total-prog.TokensCreated)
		}

		audit, err := openAudit(cfg, logx.Nop())
		if err != nil {
			return err
		}
		if audit == nil {
			return nil
		}
		defer audit.Close()

		entries, err := audit.RecentLaunches(context.Background(), statusRecent)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		fmt.Printf("\nrecent launches (%d):\n", len(entries))
		for _, e := range entries {
			status := "ok"
			if !e.OK {
				status = "FAIL " + e.Error
			}
			fmt.Printf("  %s  run=%s seq=%d wallet=%d %s  %s\n",
				e.At.Format("2006-01-02 15:04:05"), e.RunID, e.Seq, e.WalletIndex, e.Symbol, status)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().IntVar(&statusRecent, "recent", 10, "number of audit entries to show")
}
