package main

import (
	"fmt"
	"os"
	"time"

	"q2stage/internal/app"
	"q2stage/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// newApp loads the config (defaults if absent) and creates a StageApp.
// The caller must defer app.Close().
func newApp() (*app.StageApp, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.Load(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	a, err := app.NewStageApp(cfg, os.Stderr)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}

	return a, nil
}

var rootCmd = &cobra.Command{
	Use:   "q2stage CONFIGURATION",
	Short: "Copy build/release/CONFIGURATION/game.dll into its baseq2 directory",
	Long: `Stages the compiled game module for one build configuration.

Creates build/release/CONFIGURATION/baseq2 if it does not exist and copies
build/release/CONFIGURATION/game.dll into it, replacing any previous copy.
Paths are relative to the current directory.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		run, err := a.Stage(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Staged %s -> %s (%d bytes)\n", run.SourcePath, run.DestinationPath, run.Size)
		return nil
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View recorded staging runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		runs, err := a.History(limit)
		if err != nil {
			return err
		}

		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No staging runs recorded.")
			return nil
		}

		for _, r := range runs {
			duration := r.FinishedAt.Sub(r.StartedAt).Truncate(time.Millisecond)
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %-12s  %s  %-7s  %8d  %s\n",
				shortID(r.ID),
				r.Configuration,
				r.StartedAt.Local().Format("2006-01-02 15:04:05"),
				r.Status,
				r.Size,
				duration,
			)
			if r.Error != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "          %s\n", r.Error)
			}
		}
		return nil
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with logging and history enabled",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at %s\n", defaults["config_path"])
		fmt.Fprintf(cmd.OutOrStdout(), "Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.Load(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration from %s:\n\n", defaults["config_path"])
		fmt.Fprintf(out, "Log Dir:      %s\n", orDefault(cfg.LogDir, "(stderr only)"))
		fmt.Fprintf(out, "Log Level:    %s\n", orDefault(cfg.LogLevel, "warn"))
		fmt.Fprintf(out, "Write Mode:   %s\n", orDefault(cfg.Write.Mode, "direct"))
		fmt.Fprintf(out, "History:      %s\n", orDefault(cfg.History.Type, "none"))
		if cfg.History.DataDir != "" {
			fmt.Fprintf(out, "History Dir:  %s\n", cfg.History.DataDir)
		}
		return nil
	},
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func init() {
	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
}
