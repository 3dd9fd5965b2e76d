package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/daywatch-app/daywatch/internal/daemon"
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configSetGoalCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and edit the daywatch configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		fmt.Printf("# %s\n", filepath.Join(daemon.Home(), "config.toml"))
		return toml.NewEncoder(os.Stdout).Encode(cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path := filepath.Join(daemon.Home(), "config.toml")
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists", path)
		}
		if err := daemon.SaveConfig(daemon.DefaultConfig()); err != nil {
			return err
		}
		fmt.Printf("Wrote %s\n", path)
		return nil
	},
}

var configSetGoalCmd = &cobra.Command{
	Use:   "set-goal <hours>",
	Short: "Set the daily active-time goal in hours",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hours, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid hours %q", args[0])
		}

		cfg, err := daemon.LoadConfig()
		if err != nil {
			return err
		}
		set := cfg.Settings()
		set.DailyGoalSeconds = int(hours * 3600)
		if err := set.Validate(); err != nil {
			return err
		}
		if err := daemon.SaveConfig(cfg.WithSettings(set)); err != nil {
			return err
		}

		// Push to a running daemon too; ignore connection errors since the
		// file is already updated for the next start.
		if err := apiPost("/api/settings", set); err != nil {
			fmt.Printf("Saved. Daemon not updated (%v); restart it to apply.\n", err)
			return nil
		}
		fmt.Printf("Daily goal set to %sh.\n", args[0])
		return nil
	},
}
