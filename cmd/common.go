package cmd

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/healthloom-cli/internal/config"
	"github.com/KaramelBytes/healthloom-cli/internal/record"
	"github.com/KaramelBytes/healthloom-cli/internal/report"
	"github.com/KaramelBytes/healthloom-cli/internal/source"
	"github.com/KaramelBytes/healthloom-cli/internal/utils"
	"github.com/KaramelBytes/healthloom-cli/internal/variable"
	"github.com/spf13/cobra"
)

func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}

// resolveRegistryPath prefers the --registry flag over the configured path.
func resolveRegistryPath(flag string) (string, error) {
	p := flag
	if p == "" {
		p = currentConfig().RegistryPath
	}
	return utils.ExpandHome(p)
}

func loadRegistry(flag string) (*variable.Registry, string, error) {
	path, err := resolveRegistryPath(flag)
	if err != nil {
		return nil, "", err
	}
	reg, err := variable.Load(path)
	if err != nil {
		return nil, "", err
	}
	return reg, path, nil
}

// applyVarSpecs adds ad-hoc variables from --var flags, or activates them when
// the registry already has a variable of that name. The registry file is not touched.
func applyVarSpecs(reg *variable.Registry, specs []string) error {
	for _, spec := range specs {
		v, err := variable.ParseSpec(spec)
		if err != nil {
			return fmt.Errorf("--var %q: %w", spec, err)
		}
		if _, ok := reg.Get(v.Name); ok {
			if err := reg.SetActive(v.Name, true); err != nil {
				return err
			}
			continue
		}
		if err := reg.Add(v); err != nil {
			return fmt.Errorf("--var %q: %w", spec, err)
		}
	}
	return nil
}

func analysisOptions() analysis.Options {
	c := currentConfig()
	opt := analysis.DefaultOptions()
	if c.SignificanceLevel > 0 {
		opt.Alpha = c.SignificanceLevel
	}
	if c.MinSamples > 0 {
		opt.MinSamples = c.MinSamples
	}
	opt.MaxResults = c.MaxResults
	return opt
}

// parseCutoff reads a --cutoff value; empty means today.
func parseCutoff(s string) (time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return analysis.Today(), nil
	}
	d, err := analysis.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("--cutoff: %w", err)
	}
	return d, nil
}

func sourceOptions(sheetName string, sheetIndex int) source.Options {
	c := currentConfig()
	opt := source.Options{SheetName: c.SheetName, SheetIndex: c.SheetIndex}
	if sheetName != "" {
		opt.SheetName = sheetName
	}
	if sheetIndex > 0 {
		opt.SheetIndex = sheetIndex
	}
	return opt
}

func loadRecords(path string, opt source.Options) ([]record.Record, error) {
	raw, err := source.LoadFile(path, opt)
	if err != nil {
		return nil, err
	}
	recs, err := record.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", filepath.Base(path), err)
	}
	return recs, nil
}

func buildMeta(sourcePath string, snap analysis.Snapshot, all bool) report.Meta {
	active := 0
	// Snapshot variables come from a registry, so rebuilding one only fails on a hand-made snapshot.
	if reg, err := variable.NewRegistry(snap.Variables...); err == nil {
		active = len(reg.Active())
	}
	return report.Meta{
		Source:     filepath.Base(sourcePath),
		Cutoff:     snap.Cutoff,
		Records:    len(snap.Records),
		Analyzed:   len(analysis.FilterByCutoff(snap.Records, snap.Cutoff)),
		Variables:  active,
		Alpha:      snap.Options.Alpha,
		MinSamples: snap.Options.EffectiveMinSamples(),
		All:        all,
	}
}

func resolveFormat(flag string) (string, error) {
	f := strings.ToLower(strings.TrimSpace(flag))
	if f == "" {
		f = currentConfig().OutputFormat
	}
	switch f {
	case "markdown", "md", "":
		return "markdown", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported --format: %s (use markdown|json)", flag)
	}
}

func render(format string, m report.Meta, results []analysis.Result) (string, error) {
	if format == "json" {
		b, err := report.JSON(m, results)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return report.Markdown(m, results), nil
}

// writeOutput writes body to path, or to stdout when path is empty.
func writeOutput(cmd *cobra.Command, path, body, what string) error {
	if path == "" {
		fmt.Fprint(cmd.OutOrStdout(), body)
		return nil
	}
	if err := utils.SafeWriteFile(path, []byte(body)); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote %s to %s\n", what, path)
	return nil
}
