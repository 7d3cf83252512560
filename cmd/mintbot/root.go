package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:           "mintbot",
	Short:         "Token launch campaign runner",
	Long:          "mintbot schedules a fixed number of create-then-sell token launches\nacross a wallet pool over a configured time window, with durable,\ncrash-safe progress.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "./config.yaml", "path to config file (YAML or JSON)")
	rootCmd.AddCommand(runCmd, statusCmd, resetCmd, validateCmd)
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
