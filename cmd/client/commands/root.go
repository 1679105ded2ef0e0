// Package commands implements the pva-client command tree.
package commands

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pva-client",
	Short: "PVA channel-access client",
	Long: `pva-client drives the client role of the channel-access protocol:
"search" discovers which server serves a named channel over UDP
broadcast, and "connect" opens a TCP session to a server and fetches
one channel's root introspection.`,
	SilenceUsage:  true,
	SilenceErrors: true,
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
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(connectCmd)
}
