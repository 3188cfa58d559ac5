// Package analysis computes pairwise Pearson correlations between the active
// variables of a registry over date-filtered records.
package analysis

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/KaramelBytes/healthloom-cli/internal/record"
	"github.com/KaramelBytes/healthloom-cli/internal/stats"
	"github.com/KaramelBytes/healthloom-cli/internal/variable"
)

// minSampleFloor is the smallest per-variable sample size that is analyzed;
// sequences of two or fewer values are skipped.
const minSampleFloor = 3

// Options tunes the significance filter and ranking.
type Options struct {
	// Alpha is the exclusive p-value threshold for significance.
	Alpha float64
	// MinSamples is the minimum length of each sample sequence. Values below 3 are raised to 3.
	MinSamples int
	// MaxResults truncates the ranked list; 0 means unlimited.
	MaxResults int
}

// DefaultOptions returns the standard analysis settings.
func DefaultOptions() Options {
	return Options{Alpha: 0.05, MinSamples: minSampleFloor}
}

// EffectiveMinSamples is MinSamples raised to the floor of 3.
func (o Options) EffectiveMinSamples() int {
	if o.MinSamples < minSampleFloor {
		return minSampleFloor
	}
	return o.MinSamples
}

// Result is one analyzed variable pair. Variable1 is the one with the lower
// registry index. N1 is the sample size used for the statistics.
type Result struct {
	Variable1   string  `json:"variable1"`
	Variable2   string  `json:"variable2"`
	Correlation float64 `json:"correlation"`
	PValue      float64 `json:"pValue"`
	N1          int     `json:"n1"`
	N2          int     `json:"n2"`
}

// Significant reports whether the pair passes the alpha threshold.
// Non-finite p-values never pass.
func (r Result) Significant(alpha float64) bool {
	return stats.Significant(r.PValue, alpha)
}

// MarshalJSON encodes a non-finite correlation or p-value as null.
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Variable1   string   `json:"variable1"`
		Variable2   string   `json:"variable2"`
		Correlation *float64 `json:"correlation"`
		PValue      *float64 `json:"pValue"`
		N1          int      `json:"n1"`
		N2          int      `json:"n2"`
	}{r.Variable1, r.Variable2, finite(r.Correlation), finite(r.PValue), r.N1, r.N2})
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// Analyze returns the significant correlations among active variables over
// records dated on or before cutoff, strongest first.
func Analyze(records []record.Record, variables []variable.Variable, cutoff time.Time) []Result {
	out, _ := AnalyzeContext(context.Background(), records, variables, cutoff, DefaultOptions())
	return out
}

// AnalyzeContext is Analyze with explicit options. It returns ctx.Err() if ctx
// is cancelled before every pair has been evaluated.
func AnalyzeContext(ctx context.Context, records []record.Record, variables []variable.Variable, cutoff time.Time, opt Options) ([]Result, error) {
	all, err := evaluate(ctx, records, variables, cutoff, opt)
	if err != nil {
		return nil, err
	}
	return Rank(all, opt), nil
}

// Evaluate computes every eligible active pair without filtering by
// significance. Pairs appear in enumeration order.
func Evaluate(records []record.Record, variables []variable.Variable, cutoff time.Time, opt Options) []Result {
	out, _ := evaluate(context.Background(), records, variables, cutoff, opt)
	return out
}

// Rank keeps the significant results and orders them by descending |r|.
// Ties keep their input order.
func Rank(results []Result, opt Options) []Result {
	out := make([]Result, 0, len(results))
	for _, r := range results {
		if r.Significant(opt.Alpha) {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Correlation) > math.Abs(out[j].Correlation)
	})
	if opt.MaxResults > 0 && len(out) > opt.MaxResults {
		out = out[:opt.MaxResults]
	}
	return out
}

// Column reads the named field from every record and keeps the values that
// coerce to a number, in record order.
func Column(records []record.Record, name string) []float64 {
	var out []float64
	for _, r := range records {
		if f, ok := r.Get(name).Numeric(); ok {
			out = append(out, f)
		}
	}
	return out
}

func evaluate(ctx context.Context, records []record.Record, variables []variable.Variable, cutoff time.Time, opt Options) ([]Result, error) {
	filtered := FilterByCutoff(records, cutoff)
	minSamples := opt.EffectiveMinSamples()

	// Each variable's column is extracted independently of its partner, so the
	// two sequences of a pair are not aligned by record.
	columns := make(map[string][]float64)
	column := func(name string) []float64 {
		c, ok := columns[name]
		if !ok {
			c = Column(filtered, name)
			columns[name] = c
		}
		return c
	}

	var out []Result
	for i := range variables {
		if !variables[i].Active {
			continue
		}
		for j := i + 1; j < len(variables); j++ {
			if !variables[j].Active {
				continue
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			x := column(variables[i].Name)
			y := column(variables[j].Name)
			if len(x) < minSamples || len(y) < minSamples {
				continue
			}
			r := stats.Correlation(x, y)
			out = append(out, Result{
				Variable1:   variables[i].Name,
				Variable2:   variables[j].Name,
				Correlation: r,
				PValue:      stats.PValue(r, len(x)),
				N1:          len(x),
				N2:          len(y),
			})
		}
	}
	return out, nil
}
