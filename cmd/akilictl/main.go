// Command akilictl runs maintenance tasks against the akili store: one-off
// news syncs, admin account bootstrap and CSV export/import.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:           "akilictl",
	Short:         "Maintenance CLI for the akili news backend",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config (default $AKILI_CONFIG)")
	rootCmd.AddCommand(ingestCmd, adminCmd, exportCmd, importCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "akilictl: %v\n", err)
		os.Exit(1)
	}
}
