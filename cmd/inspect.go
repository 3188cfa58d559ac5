package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
	"github.com/KaramelBytes/healthloom-cli/internal/report"
	"github.com/KaramelBytes/healthloom-cli/internal/summary"
	"github.com/KaramelBytes/healthloom-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	insPairs      bool
	insCutoff     string
	insRegistry   string
	insFormat     string
	insOutputPath string
	insSheetName  string
	insSheetIndex int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Summarize the fields and date coverage of a health log",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := resolveFormat(insFormat)
		if err != nil {
			return err
		}
		recs, err := loadRecords(path, sourceOptions(insSheetName, insSheetIndex))
		if err != nil {
			return err
		}
		sum := summary.Summarize(recs)
		sum.Name = filepath.Base(path)

		var snap analysis.Snapshot
		var pairs []analysis.Result
		if insPairs {
			cutoff, err := parseCutoff(insCutoff)
			if err != nil {
				return err
			}
			reg, _, err := loadRegistry(insRegistry)
			if err != nil {
				return err
			}
			snap = analysis.Snapshot{Records: recs, Variables: reg.Variables(), Cutoff: cutoff, Options: analysisOptions()}
			pairs = analysis.Evaluate(snap.Records, snap.Variables, snap.Cutoff, snap.Options)
		}

		var body string
		if format == "json" {
			doc := struct {
				Summary *summary.Summary  `json:"summary"`
				Pairs   []analysis.Result `json:"pairs,omitempty"`
			}{sum, pairs}
			b, err := utils.PrettyJSON(doc)
			if err != nil {
				return err
			}
			body = string(b) + "\n"
		} else {
			var b strings.Builder
			b.WriteString(sum.Markdown())
			if insPairs {
				b.WriteString("\n")
				b.WriteString(report.Markdown(buildMeta(path, snap, true), pairs))
			}
			body = b.String()
		}
		if err := writeOutput(cmd, insOutputPath, body, "inspection"); err != nil {
			return err
		}
		if sum.Dated < sum.Records && insOutputPath == "" {
			fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: %d of %d records have no usable date and are never analyzed\n", sum.Records-sum.Dated, sum.Records)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().BoolVar(&insPairs, "pairs", false, "also list every evaluated pair of active variables")
	inspectCmd.Flags().StringVar(&insCutoff, "cutoff", "", "last date to include with --pairs, YYYY-MM-DD (default today)")
	inspectCmd.Flags().StringVar(&insRegistry, "registry", "", "variable registry file (default from config)")
	inspectCmd.Flags().StringVarP(&insFormat, "format", "f", "", "output format: markdown|json (default from config)")
	inspectCmd.Flags().StringVarP(&insOutputPath, "output", "o", "", "optional path to write the summary")
	inspectCmd.Flags().StringVar(&insSheetName, "sheet-name", "", "XLSX: sheet name to load")
	inspectCmd.Flags().IntVar(&insSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
