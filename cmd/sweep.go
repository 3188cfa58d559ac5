package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
	"github.com/KaramelBytes/healthloom-cli/internal/logging"
	"github.com/KaramelBytes/healthloom-cli/internal/report"
	"github.com/KaramelBytes/healthloom-cli/internal/utils"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const maxSweepCutoffs = 1000

var (
	swFrom       string
	swTo         string
	swStepDays   int
	swWorkers    int
	swRegistry   string
	swVars       []string
	swFormat     string
	swOutputPath string
	swSheetName  string
	swSheetIndex int
)

var sweepCmd = &cobra.Command{
	Use:   "sweep <file>",
	Short: "Repeat the analysis over a range of cutoff dates",
	Long: `Runs the correlation analysis once per cutoff from --from to --to (inclusive)
in steps of --step days, so you can see how correlations emerge or fade as
more history accumulates. Cutoffs are evaluated in parallel.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format, err := resolveFormat(swFormat)
		if err != nil {
			return err
		}
		cutoffs, err := sweepCutoffs(swFrom, swTo, swStepDays)
		if err != nil {
			return err
		}
		reg, _, err := loadRegistry(swRegistry)
		if err != nil {
			return err
		}
		if err := applyVarSpecs(reg, swVars); err != nil {
			return err
		}
		recs, err := loadRecords(path, sourceOptions(swSheetName, swSheetIndex))
		if err != nil {
			return err
		}
		workers := currentConfig().SweepWorkers
		if cmd.Flags().Changed("workers") {
			workers = swWorkers
		}
		if workers < 1 {
			workers = 1
		}

		base := analysis.Snapshot{Records: recs, Variables: reg.Variables(), Options: analysisOptions()}
		results := make([][]analysis.Result, len(cutoffs))
		log := logging.Component(logger, "sweep")

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(workers)
		for i, cutoff := range cutoffs {
			i, cutoff := i, cutoff
			g.Go(func() error {
				start := time.Now()
				res, err := analysis.AnalyzeContext(ctx, base.Records, base.Variables, cutoff, base.Options)
				if err != nil {
					return fmt.Errorf("cutoff %s: %w", cutoff.Format(analysis.DateLayout), err)
				}
				results[i] = res
				log.Debug("cutoff analyzed",
					slog.String("cutoff", cutoff.Format(analysis.DateLayout)),
					slog.Int("significant", len(res)),
					slog.Duration("elapsed", time.Since(start)),
				)
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		var body string
		if format == "json" {
			docs := make([]json.RawMessage, len(cutoffs))
			for i, cutoff := range cutoffs {
				snap := base
				snap.Cutoff = cutoff
				b, err := report.JSON(buildMeta(path, snap, false), results[i])
				if err != nil {
					return err
				}
				docs[i] = b
			}
			b, err := utils.PrettyJSON(docs)
			if err != nil {
				return err
			}
			body = string(b) + "\n"
		} else {
			var b strings.Builder
			b.WriteString("[SWEEP]\n")
			b.WriteString(fmt.Sprintf("Cutoffs: %d (%s to %s, every %d days)\n",
				len(cutoffs), cutoffs[0].Format(analysis.DateLayout), cutoffs[len(cutoffs)-1].Format(analysis.DateLayout), swStepDays))
			for i, cutoff := range cutoffs {
				b.WriteString(fmt.Sprintf("- %s: %d significant\n", cutoff.Format(analysis.DateLayout), len(results[i])))
			}
			for i, cutoff := range cutoffs {
				snap := base
				snap.Cutoff = cutoff
				b.WriteString("\n")
				b.WriteString(report.Markdown(buildMeta(path, snap, false), results[i]))
			}
			body = b.String()
		}
		return writeOutput(cmd, swOutputPath, body, "sweep")
	},
}

// sweepCutoffs lists the dates from..to inclusive, stepDays apart.
func sweepCutoffs(from, to string, stepDays int) ([]time.Time, error) {
	if stepDays < 1 {
		return nil, fmt.Errorf("--step must be at least 1 day")
	}
	start, err := analysis.ParseDate(from)
	if err != nil {
		return nil, fmt.Errorf("--from: %w", err)
	}
	end := analysis.Today()
	if strings.TrimSpace(to) != "" {
		if end, err = analysis.ParseDate(to); err != nil {
			return nil, fmt.Errorf("--to: %w", err)
		}
	}
	if end.Before(start) {
		return nil, fmt.Errorf("--to %s is before --from %s", end.Format(analysis.DateLayout), start.Format(analysis.DateLayout))
	}
	var out []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, stepDays) {
		if len(out) == maxSweepCutoffs {
			return nil, fmt.Errorf("sweep would evaluate more than %d cutoffs; increase --step", maxSweepCutoffs)
		}
		out = append(out, d)
	}
	return out, nil
}

func init() {
	rootCmd.AddCommand(sweepCmd)
	sweepCmd.Flags().StringVar(&swFrom, "from", "", "first cutoff, YYYY-MM-DD")
	sweepCmd.Flags().StringVar(&swTo, "to", "", "last cutoff, YYYY-MM-DD (default today)")
	sweepCmd.Flags().IntVar(&swStepDays, "step", 7, "days between cutoffs")
	sweepCmd.Flags().IntVar(&swWorkers, "workers", 0, "parallel analyses (default from config)")
	sweepCmd.Flags().StringVar(&swRegistry, "registry", "", "variable registry file (default from config)")
	sweepCmd.Flags().StringArrayVar(&swVars, "var", nil, "extra active variable name[:category[:unit]] (repeatable)")
	sweepCmd.Flags().StringVarP(&swFormat, "format", "f", "", "output format: markdown|json (default from config)")
	sweepCmd.Flags().StringVarP(&swOutputPath, "output", "o", "", "optional path to write the sweep report")
	sweepCmd.Flags().StringVar(&swSheetName, "sheet-name", "", "XLSX: sheet name to load")
	sweepCmd.Flags().IntVar(&swSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	_ = sweepCmd.MarkFlagRequired("from")
}
