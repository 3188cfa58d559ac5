// Package report renders correlation results for people and for machines.
package report

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
)

// Meta describes the run that produced a result set.
type Meta struct {
	Source     string
	Cutoff     time.Time
	Records    int // records ingested
	Analyzed   int // records dated on or before the cutoff
	Variables  int // active variables
	Alpha      float64
	MinSamples int // effective per-variable minimum; 0 reads as 3
	// All marks an unfiltered listing of every evaluated pair.
	All bool
}

// Markdown renders results as bracketed sections with a fixed-width table.
func Markdown(m Meta, results []analysis.Result) string {
	var b strings.Builder
	b.WriteString("[ANALYSIS]\n")
	if m.Source != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", m.Source))
	}
	b.WriteString(fmt.Sprintf("Cutoff: %s\n", m.Cutoff.Format(analysis.DateLayout)))
	b.WriteString(fmt.Sprintf("Records: %d (analyzed %d)\n", m.Records, m.Analyzed))
	b.WriteString(fmt.Sprintf("Active variables: %d\n", m.Variables))
	b.WriteString(fmt.Sprintf("Significance level: %g\n\n", m.Alpha))

	if m.All {
		b.WriteString("[EVALUATED PAIRS]\n")
	} else {
		b.WriteString("[SIGNIFICANT CORRELATIONS]\n")
	}
	if len(results) == 0 {
		b.WriteString("(none)\n")
	} else {
		b.WriteString(table(results, m))
	}

	b.WriteString("\n[NOTES]\n")
	for _, n := range notes(m, results) {
		b.WriteString("- " + n + "\n")
	}
	return b.String()
}

func table(results []analysis.Result, m Meta) string {
	w1, w2 := len("variable1"), len("variable2")
	for _, r := range results {
		if len(r.Variable1) > w1 {
			w1 = len(r.Variable1)
		}
		if len(r.Variable2) > w2 {
			w2 = len(r.Variable2)
		}
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("| %-*s | %-*s | %8s | %8s | %4s |", w1, "variable1", w2, "variable2", "r", "p", "n"))
	if m.All {
		b.WriteString(" sig |")
	}
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("|%s|%s|%s|%s|%s|", dashes(w1+2), dashes(w2+2), dashes(10), dashes(10), dashes(6)))
	if m.All {
		b.WriteString(dashes(5) + "|")
	}
	b.WriteString("\n")
	for _, r := range results {
		b.WriteString(fmt.Sprintf("| %-*s | %-*s | %8.3f | %8s | %4d |", w1, r.Variable1, w2, r.Variable2, r.Correlation, formatP(r.PValue), r.N1))
		if m.All {
			mark := "   "
			if r.Significant(m.Alpha) {
				mark = " * "
			}
			b.WriteString(" " + mark + " |")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func notes(m Meta, results []analysis.Result) []string {
	minSamples := m.MinSamples
	if minSamples <= 0 {
		minSamples = analysis.DefaultOptions().MinSamples
	}
	var out []string
	switch {
	case m.Analyzed == 0:
		out = append(out, fmt.Sprintf("No records dated on or before %s.", m.Cutoff.Format(analysis.DateLayout)))
	case m.Variables < 2:
		out = append(out, "At least two active variables are needed to form a pair.")
	case len(results) == 0 && !m.All:
		out = append(out, fmt.Sprintf("No significant correlations among %d analyzed records.", m.Analyzed))
	}
	out = append(out,
		"Each variable's values are taken independently of its partner's, so pairs are positional, not matched by date.",
		fmt.Sprintf("Variables with fewer than %d numeric values are skipped.", minSamples),
	)
	return out
}

func formatP(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", p)
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func dashes(n int) string { return strings.Repeat("-", n) }

type jsonResult struct {
	Variable1   string   `json:"variable1"`
	Variable2   string   `json:"variable2"`
	Correlation *float64 `json:"correlation"`
	PValue      *float64 `json:"pValue"`
	N1          int      `json:"n1"`
	N2          int      `json:"n2"`
	Significant bool     `json:"significant"`
}

type jsonReport struct {
	Source     string       `json:"source,omitempty"`
	Cutoff     string       `json:"cutoff"`
	Records    int          `json:"records"`
	Analyzed   int          `json:"analyzed"`
	Variables  int          `json:"activeVariables"`
	Alpha      float64      `json:"alpha"`
	MinSamples int          `json:"minSamples"`
	Filtered   bool         `json:"filtered"`
	Results    []jsonResult `json:"results"`
}

// JSON renders results as an indented document. Non-finite numbers become null.
func JSON(m Meta, results []analysis.Result) ([]byte, error) {
	doc := jsonReport{
		Source:     m.Source,
		Cutoff:     m.Cutoff.Format(analysis.DateLayout),
		Records:    m.Records,
		Analyzed:   m.Analyzed,
		Variables:  m.Variables,
		Alpha:      m.Alpha,
		MinSamples: m.MinSamples,
		Filtered:   !m.All,
		Results:    make([]jsonResult, 0, len(results)),
	}
	for _, r := range results {
		doc.Results = append(doc.Results, jsonResult{
			Variable1:   r.Variable1,
			Variable2:   r.Variable2,
			Correlation: finite(r.Correlation),
			PValue:      finite(r.PValue),
			N1:          r.N1,
			N2:          r.N2,
			Significant: r.Significant(m.Alpha),
		})
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	return append(out, '\n'), nil
}
