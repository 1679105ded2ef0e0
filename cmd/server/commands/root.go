// Package commands implements the pva-server command tree.
package commands

import (
	"github.com/spf13/cobra"
)

var configFile string

var rootCmd = &cobra.Command{
	Use:   "pva-server",
	Short: "PVA channel-access gateway server",
	Long: `pva-server serves a PVAccess-style channel-access protocol stack:
a TCP session acceptor, a UDP beacon/discovery responder, and an
optional debug monitor endpoint, all sharing one channel table.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServe,
}

// Execute runs the root command. Called by main.main.
func Execute() error {
	return rootCmd.Execute()
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "path to YAML config file (channel table, tunables)")
	rootCmd.Flags().String("host", "", "server listen host (default 0.0.0.0)")
	rootCmd.Flags().String("port", "", "TCP session port (default 5075)")
	rootCmd.Flags().String("udp-port", "", "UDP beacon/discovery port (default 5076)")
	rootCmd.Flags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.Flags().String("monitor-addr", "", "address to serve the debug monitor endpoint on, e.g. :8081 (empty disables it)")
}
