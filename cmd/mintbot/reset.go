package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mintbot/internal/config"
	"mintbot/internal/state"
	logx "mintbot/pkg/logx"
)

var resetYes bool

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase campaign progress (the next run starts from zero)",
	Long:  "Erase campaign progress. Tokens already created on-chain are NOT\nundone; the next run will schedule the full total again.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !resetYes {
			return errors.New("refusing to reset without --yes")
		}
		cfg, err := config.NewManager(cfgPath).Load()
		if err != nil {
			return err
		}
		store := state.NewStore(state.NewFileSubstrate(cfg.State.Path), logx.Nop())
		if err := store.Reset(); err != nil {
			return err
		}
		fmt.Println("progress reset:", cfg.State.Path)
		return nil
	},
}

func init() {
	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
}
