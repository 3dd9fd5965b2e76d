package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(pauseCmd)
	rootCmd.AddCommand(resumeCmd)
}

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Stop counting active time until resumed",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiPost("/api/pause", nil); err != nil {
			return err
		}
		fmt.Println("Tracking paused.")
		return nil
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume counting active time",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiPost("/api/resume", nil); err != nil {
			return err
		}
		fmt.Println("Tracking resumed.")
		return nil
	},
}
