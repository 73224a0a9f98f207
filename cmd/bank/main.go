package main

import (
	"os"

	"github.com/spf13/cobra"
)

const (
	appName = "bank_system"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          appName,
		Short:        "In-memory banking core: clients, accounts, deposits and withdrawals",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to a YAML config file (BANK_* env vars override it)")
	cmd.AddCommand(serveCmd(&configPath), demoCmd(&configPath))
	return cmd
}
