// Package summary describes the fields of an ingested record set.
package summary

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/go-gota/gota/series"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
	"github.com/KaramelBytes/healthloom-cli/internal/record"
)

// Field kinds as shown in the schema listing.
const (
	KindDate    = "date"
	KindNumeric = "numeric"
	KindMixed   = "mixed"
	KindText    = "text"
	KindEmpty   = "empty"
)

// Stats holds descriptive statistics over a field's numeric values.
type Stats struct {
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
}

// Field summarizes one column. Numeric counts values the engine can coerce,
// which includes numeric-looking text.
type Field struct {
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Present int    `json:"present"`
	Missing int    `json:"missing"`
	Blank   int    `json:"blank"`
	Numeric int    `json:"numeric"`
	Stats   *Stats `json:"stats,omitempty"`
}

// Summary is the result of Summarize.
type Summary struct {
	Name    string  `json:"name,omitempty"`
	Records int     `json:"records"`
	Dated   int     `json:"dated"`
	First   string  `json:"first,omitempty"`
	Last    string  `json:"last,omitempty"`
	Fields  []Field `json:"fields"`
}

// Summarize inspects every field that appears in any record. Fields are
// listed with the date field first, then alphabetically.
func Summarize(records []record.Record) *Summary {
	s := &Summary{Records: len(records)}
	seen := map[string]bool{}
	for _, r := range records {
		for _, f := range r.Fields() {
			seen[f] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if (names[i] == record.DateField) != (names[j] == record.DateField) {
			return names[i] == record.DateField
		}
		return names[i] < names[j]
	})
	for _, n := range names {
		s.Fields = append(s.Fields, summarizeField(records, n))
	}

	for _, r := range records {
		if _, ok := analysis.RecordDate(r); ok {
			s.Dated++
		}
	}
	if first, last, ok := analysis.DateSpan(records); ok {
		s.First, s.Last = first.Format(analysis.DateLayout), last.Format(analysis.DateLayout)
	}
	return s
}

func summarizeField(records []record.Record, name string) Field {
	f := Field{Name: name}
	var nums []float64
	for _, r := range records {
		v := r.Get(name)
		if v.IsMissing() {
			f.Missing++
			continue
		}
		f.Present++
		if strings.TrimSpace(v.String()) == "" {
			f.Blank++
			continue
		}
		if name == record.DateField {
			continue
		}
		if x, ok := v.Numeric(); ok {
			nums = append(nums, x)
		}
	}
	f.Numeric = len(nums)
	filled := f.Present - f.Blank
	switch {
	case name == record.DateField:
		f.Kind = KindDate
	case filled == 0:
		f.Kind = KindEmpty
	case f.Numeric == filled:
		f.Kind = KindNumeric
	case f.Numeric > 0:
		f.Kind = KindMixed
	default:
		f.Kind = KindText
	}
	if len(nums) > 0 {
		f.Stats = describe(nums, name)
	}
	return f
}

func describe(values []float64, name string) *Stats {
	s := series.New(values, series.Float, name)
	st := &Stats{
		Mean:   s.Mean(),
		Std:    s.StdDev(),
		Min:    s.Min(),
		Q1:     s.Quantile(0.25),
		Median: s.Median(),
		Q3:     s.Quantile(0.75),
		Max:    s.Max(),
	}
	if len(values) < 2 {
		st.Std = 0
	}
	return st
}

// Markdown renders the summary in the bracketed section layout used by reports.
func (s *Summary) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", s.Name))
	}
	b.WriteString(fmt.Sprintf("Records: %d (dated %d)\n", s.Records, s.Dated))
	if s.First != "" {
		b.WriteString(fmt.Sprintf("Coverage: %s to %s\n", s.First, s.Last))
	}
	b.WriteString(fmt.Sprintf("Fields: %d\n\n", len(s.Fields)))

	b.WriteString("[SCHEMA]\n")
	for _, f := range s.Fields {
		total := f.Present + f.Missing
		missPct := 0.0
		if total > 0 {
			missPct = float64(f.Missing+f.Blank) * 100.0 / float64(total)
		}
		b.WriteString(fmt.Sprintf("- %s: %s (values %d, missing %.1f%%)", f.Name, f.Kind, f.Present-f.Blank, missPct))
		if f.Stats != nil {
			st := f.Stats
			b.WriteString(fmt.Sprintf(": n %d, min %.4g, median %.4g, max %.4g, mean %.4g, std %.4g",
				f.Numeric, st.Min, st.Median, st.Max, st.Mean, finite(st.Std)))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func finite(f float64) float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
