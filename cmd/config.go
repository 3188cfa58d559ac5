package cmd

import (
	"fmt"
	"strconv"
	"strings"

	cfgpkg "github.com/KaramelBytes/healthloom-cli/internal/config"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "View or set HealthLoom configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No config loaded")
			return nil
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "registry_path: %s\n", cfg.RegistryPath)
		fmt.Fprintf(out, "output_format: %s\n", cfg.OutputFormat)
		fmt.Fprintf(out, "significance_level: %g\n", cfg.SignificanceLevel)
		fmt.Fprintf(out, "min_samples: %d\n", cfg.MinSamples)
		fmt.Fprintf(out, "max_results: %d\n", cfg.MaxResults)
		fmt.Fprintf(out, "log_level: %s\n", cfg.LogLevel)
		fmt.Fprintf(out, "log_format: %s\n", cfg.LogFormat)
		fmt.Fprintf(out, "sweep_workers: %d\n", cfg.SweepWorkers)
		fmt.Fprintf(out, "watch_debounce_ms: %d\n", cfg.WatchDebounceMs)
		if cfg.SheetName != "" {
			fmt.Fprintf(out, "sheet_name: %s\n", cfg.SheetName)
		}
		fmt.Fprintf(out, "sheet_index: %d\n", cfg.SheetIndex)
		return nil
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a config value and save to disk",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, val := args[0], args[1]
		if cfg == nil {
			c, err := cfgpkg.Load(cfgFile)
			if err != nil {
				return err
			}
			cfg = c
		}
		next := *cfg
		switch key {
		case "registry_path":
			next.RegistryPath = val
		case "output_format":
			next.OutputFormat = strings.ToLower(val)
		case "significance_level":
			f, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return fmt.Errorf("invalid float for significance_level: %w", err)
			}
			next.SignificanceLevel = f
		case "min_samples", "max_results", "sweep_workers", "watch_debounce_ms", "sheet_index":
			i, err := strconv.Atoi(val)
			if err != nil {
				return fmt.Errorf("invalid int for %s: %w", key, err)
			}
			switch key {
			case "min_samples":
				next.MinSamples = i
			case "max_results":
				next.MaxResults = i
			case "sweep_workers":
				next.SweepWorkers = i
			case "watch_debounce_ms":
				next.WatchDebounceMs = i
			case "sheet_index":
				next.SheetIndex = i
			}
		case "log_level":
			next.LogLevel = strings.ToLower(val)
		case "log_format":
			next.LogFormat = strings.ToLower(val)
		case "sheet_name":
			next.SheetName = val
		default:
			return fmt.Errorf("unknown key: %s", key)
		}
		if err := next.Validate(); err != nil {
			return err
		}
		if err := cfgpkg.Save(&next, cfgFile); err != nil {
			return err
		}
		cfg = &next
		fmt.Fprintln(cmd.OutOrStdout(), "✓ Saved config")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetCmd)
}
