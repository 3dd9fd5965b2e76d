package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daywatch-app/daywatch/internal/domain"
)

func init() {
	rootCmd.AddCommand(statusCmd)
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show today's tracking state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	var snap domain.Snapshot
	if err := apiGet("/api/status", &snap); err != nil {
		return err
	}

	state := "active"
	switch {
	case snap.Paused:
		state = "paused"
	case !snap.Active:
		state = "idle"
	}
	if snap.InMeeting {
		state += " (in meeting)"
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Worked today:\t%s\n", snap.FormattedActive)
	fmt.Fprintf(w, "State:\t%s\n", state)
	fmt.Fprintf(w, "Progress:\t%.0f%%\n", snap.Progress*100)
	if !snap.WorkStart.IsZero() {
		fmt.Fprintf(w, "Started:\t%s\n", snap.WorkStart.Local().Format("15:04"))
	}
	if snap.IdleSeconds > 0 {
		fmt.Fprintf(w, "Idle today:\t%s\n", domain.FormatActive(snap.IdleSeconds))
	}
	if !snap.GoalReached.IsZero() {
		fmt.Fprintf(w, "Goal reached:\t%s\n", snap.GoalReached.Local().Format("15:04"))
	} else if !snap.EstimatedFinish.IsZero() {
		fmt.Fprintf(w, "Done around:\t%s\n", snap.EstimatedFinish.Local().Format("15:04"))
	}
	return w.Flush()
}
