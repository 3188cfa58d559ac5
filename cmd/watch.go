package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
	"github.com/KaramelBytes/healthloom-cli/internal/logging"
	"github.com/KaramelBytes/healthloom-cli/internal/source"
	"github.com/KaramelBytes/healthloom-cli/internal/utils"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
)

var (
	wCutoff     string
	wRegistry   string
	wVars       []string
	wFormat     string
	wDebounceMs int
	wSheetName  string
	wSheetIndex int
)

var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Re-run the analysis whenever the log or the registry changes",
	Long: `Prints the analysis, then watches the data file and the variable registry.
Each change starts a fresh analysis that replaces any run still in progress;
only the newest results are printed. A file that fails to load leaves the
previous results in place. Stop with Ctrl+C.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := resolveFormat(wFormat)
		if err != nil {
			return err
		}
		if _, err := parseCutoff(wCutoff); err != nil {
			return err
		}
		regPath, err := resolveRegistryPath(wRegistry)
		if err != nil {
			return err
		}
		if regPath, err = filepath.Abs(regPath); err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		dataPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("resolve path: %w", err)
		}
		debounce := time.Duration(currentConfig().WatchDebounceMs) * time.Millisecond
		if cmd.Flags().Changed("debounce-ms") {
			debounce = time.Duration(wDebounceMs) * time.Millisecond
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		ws := &watchSession{
			dataPath:     dataPath,
			registryPath: regPath,
			srcOpt:       sourceOptions(wSheetName, wSheetIndex),
			vars:         wVars,
			cutoff:       wCutoff,
			opt:          analysisOptions(),
			log:          logging.Component(logger, "watch"),
		}
		out := cmd.OutOrStdout()
		ws.runner = analysis.NewRunner(ctx, logger, func(o analysis.Outcome) {
			body, err := render(format, buildMeta(dataPath, o.Snapshot, false), o.Results)
			if err != nil {
				ws.log.Error("render failed", slog.String("error", err.Error()))
				return
			}
			fmt.Fprintf(out, "✓ Analysis updated %s (%d significant, %s)\n",
				time.Now().Format("15:04:05"), len(o.Results), o.Elapsed.Round(time.Millisecond))
			fmt.Fprint(out, body)
		})
		defer ws.runner.Close()

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		defer watcher.Close()
		if err := utils.EnsureDir(filepath.Dir(regPath)); err != nil {
			return fmt.Errorf("ensure registry dir: %w", err)
		}
		for _, dir := range ws.dirs() {
			if err := watcher.Add(dir); err != nil {
				return fmt.Errorf("watch %s: %w", dir, err)
			}
		}

		// first report is printed before any change is considered
		if err := ws.trigger(); err != nil {
			return err
		}
		ws.runner.Wait()
		fmt.Fprintf(cmd.ErrOrStderr(), "Watching %s and %s (Ctrl+C to stop)\n", dataPath, regPath)
		return ws.loop(ctx, cmd, watcher, debounce)
	},
}

type watchSession struct {
	dataPath     string
	registryPath string
	srcOpt       source.Options
	vars         []string
	cutoff       string
	opt          analysis.Options
	runner       *analysis.Runner
	log          *slog.Logger
}

// dirs lists the directories to watch. Directories are watched instead of the
// files so that editors which save by rename keep being observed.
func (w *watchSession) dirs() []string {
	a, b := filepath.Dir(w.dataPath), filepath.Dir(w.registryPath)
	if a == b {
		return []string{a}
	}
	return []string{a, b}
}

func (w *watchSession) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Clean(ev.Name)
	return name == w.dataPath || name == w.registryPath
}

// snapshot reloads the registry and the data file. The cutoff is re-read each
// time so that an unset cutoff follows the current date.
func (w *watchSession) snapshot() (analysis.Snapshot, error) {
	cutoff, err := parseCutoff(w.cutoff)
	if err != nil {
		return analysis.Snapshot{}, err
	}
	reg, _, err := loadRegistry(w.registryPath)
	if err != nil {
		return analysis.Snapshot{}, err
	}
	if err := applyVarSpecs(reg, w.vars); err != nil {
		return analysis.Snapshot{}, err
	}
	recs, err := loadRecords(w.dataPath, w.srcOpt)
	if err != nil {
		return analysis.Snapshot{}, err
	}
	return analysis.Snapshot{Records: recs, Variables: reg.Variables(), Cutoff: cutoff, Options: w.opt}, nil
}

func (w *watchSession) trigger() error {
	snap, err := w.snapshot()
	if err != nil {
		return err
	}
	id := w.runner.Trigger(snap)
	w.log.Debug("reload triggered", slog.String("run_id", id))
	return nil
}

func (w *watchSession) loop(ctx context.Context, cmd *cobra.Command, watcher *fsnotify.Watcher, debounce time.Duration) error {
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			fmt.Fprintln(cmd.ErrOrStderr(), "✓ Stopped watching")
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			w.log.Debug("change detected", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
			fire = time.After(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", slog.String("error", err.Error()))
		case <-fire:
			fire = nil
			if err := w.trigger(); err != nil {
				// keep the previous results on screen
				fmt.Fprintf(cmd.ErrOrStderr(), "⚠ Warning: reload failed, keeping previous results: %v\n", err)
			}
		}
	}
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringVar(&wCutoff, "cutoff", "", "last date to include, YYYY-MM-DD (default today, re-evaluated on each change)")
	watchCmd.Flags().StringVar(&wRegistry, "registry", "", "variable registry file (default from config)")
	watchCmd.Flags().StringArrayVar(&wVars, "var", nil, "extra active variable name[:category[:unit]] (repeatable)")
	watchCmd.Flags().StringVarP(&wFormat, "format", "f", "", "output format: markdown|json (default from config)")
	watchCmd.Flags().IntVar(&wDebounceMs, "debounce-ms", 0, "quiet period after a change before re-running (default from config)")
	watchCmd.Flags().StringVar(&wSheetName, "sheet-name", "", "XLSX: sheet name to load")
	watchCmd.Flags().IntVar(&wSheetIndex, "sheet-index", 0, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
}
