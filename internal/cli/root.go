// Package cli implements the daywatch command-line interface using Cobra.
// The daemon owns all state; every other subcommand talks to it over the
// local HTTP API.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daywatch",
	Short: "daywatch — track your active work time",
	Long: `daywatch measures how long you have actually worked today, not how
long your machine has been on. It counts seconds of real input activity
toward a daily goal, nudges you to rest your eyes and stretch, and tells
you when you are done.

Start the daemon with "daywatch serve"; the menu-bar front end and the
other subcommands talk to it over the local API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
