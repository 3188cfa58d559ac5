package cmd

import (
	"log/slog"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
	"github.com/KaramelBytes/healthloom-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	anaCutoff     string
	anaRegistry   string
	anaVars       []string
	anaFormat     string
	anaOutputPath string
	anaAll        bool
	anaMaxResults int
	anaSheetName  string
	anaSheetIndex int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Report significant correlations between active variables",
	Long: `Loads a CSV, TSV or XLSX health log, keeps records dated on or before the
cutoff and correlates every pair of active registry variables. Pairs with a
p-value below the significance level are listed, strongest first.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := resolveFormat(anaFormat)
		if err != nil {
			return err
		}
		cutoff, err := parseCutoff(anaCutoff)
		if err != nil {
			return err
		}
		reg, _, err := loadRegistry(anaRegistry)
		if err != nil {
			return err
		}
		if err := applyVarSpecs(reg, anaVars); err != nil {
			return err
		}
		opt := analysisOptions()
		if cmd.Flags().Changed("max-results") {
			opt.MaxResults = anaMaxResults
		}

		recs, err := loadRecords(path, sourceOptions(anaSheetName, anaSheetIndex))
		if err != nil {
			return err
		}
		session := analysis.NewSession(reg, cutoff, opt)
		results := session.SetRecords(recs)
		snap := session.Snapshot()
		if anaAll {
			results = analysis.Evaluate(snap.Records, snap.Variables, snap.Cutoff, snap.Options)
		}
		logging.Component(logger, "cli").Debug("analysis complete",
			slog.String("file", path),
			slog.Int("records", len(recs)),
			slog.Int("results", len(results)),
		)

		body, err := render(format, buildMeta(path, snap, anaAll), results)
		if err != nil {
			return err
		}
		return writeOutput(cmd, anaOutputPath, body, "analysis")
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVar(&anaCutoff, "cutoff", "", "last date to include, YYYY-MM-DD (default today)")
	analyzeCmd.Flags().StringVar(&anaRegistry, "registry", "", "variable registry file (default from config)")
	analyzeCmd.Flags().StringArrayVar(&anaVars, "var", nil, "extra active variable name[:category[:unit]] (repeatable)")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "", "output format: markdown|json (default from config)")
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().BoolVar(&anaAll, "all", false, "list every evaluated pair, not only significant ones")
	analyzeCmd.Flags().IntVar(&anaMaxResults, "max-results", 0, "show at most N correlations (0 = unlimited)")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX: sheet name to load")
	analyzeCmd.Flags().IntVar(&anaSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
