package cmd

import (
	"fmt"
	"log/slog"
	"os"

	cfgpkg "github.com/KaramelBytes/healthloom-cli/internal/config"
	"github.com/KaramelBytes/healthloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
	// Structured logger for diagnostics; user-facing messages go to stdout
	logger = slog.Default()
)

var rootCmd = &cobra.Command{
	Use:   "healthloom",
	Short: "HealthLoom CLI: find correlations in personal health logs",
	Long: `HealthLoom ingests dated health records (CSV, TSV or XLSX), tracks a registry
of variables such as sleep, diet and blood markers, and reports the pairs of
active variables whose Pearson correlation is significant up to a cutoff date.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		loadConfig(cmd)
	},
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.healthloom/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
}

func loadConfig(cmd *cobra.Command) {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to built-in defaults
		fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level := cfg.LogLevel
	if debug {
		level = "debug"
	}
	logger = logging.New(cmd.ErrOrStderr(), level, cfg.LogFormat)
	logging.Component(logger, "cli").Debug("config loaded",
		slog.String("command", cmd.CommandPath()),
		slog.String("registry", cfg.RegistryPath),
	)
}
