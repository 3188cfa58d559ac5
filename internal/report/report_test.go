package report

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/healthloom-cli/internal/analysis"
)

func meta() Meta {
	return Meta{
		Source:     "log.csv",
		Cutoff:     time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
		Records:    13,
		Analyzed:   10,
		Variables:  4,
		Alpha:      0.05,
		MinSamples: 3,
	}
}

func TestMarkdownTable(t *testing.T) {
	md := Markdown(meta(), []analysis.Result{
		{Variable1: "weight", Variable2: "coffee", Correlation: -0.43348331685765074, PValue: 0, N1: 10, N2: 10},
	})
	for _, want := range []string{
		"[ANALYSIS]",
		"Source: log.csv",
		"Cutoff: 2024-01-31",
		"Records: 13 (analyzed 10)",
		"[SIGNIFICANT CORRELATIONS]",
		"| weight    | coffee    |   -0.433 |    0.000 |   10 |",
		"[NOTES]",
	} {
		assert.Contains(t, md, want)
	}
	assert.NotContains(t, md, "No significant correlations")
}

func TestMarkdownEmptyResultIsDistinct(t *testing.T) {
	md := Markdown(meta(), nil)
	assert.Contains(t, md, "(none)")
	assert.Contains(t, md, "No significant correlations among 10 analyzed records.")

	m := meta()
	m.Analyzed = 0
	assert.Contains(t, Markdown(m, nil), "No records dated on or before 2024-01-31.")

	m = meta()
	m.Variables = 1
	assert.Contains(t, Markdown(m, nil), "At least two active variables")
}

func TestMarkdownNotesMinSamples(t *testing.T) {
	assert.Contains(t, Markdown(meta(), nil), "Variables with fewer than 3 numeric values are skipped.")

	m := meta()
	m.MinSamples = 5
	md := Markdown(m, nil)
	assert.Contains(t, md, "Variables with fewer than 5 numeric values are skipped.")
	assert.NotContains(t, md, "fewer than 3")

	m.MinSamples = 0
	assert.Contains(t, Markdown(m, nil), "fewer than 3 numeric values")
}

func TestMarkdownAllMarksSignificance(t *testing.T) {
	m := meta()
	m.All = true
	md := Markdown(m, []analysis.Result{
		{Variable1: "a", Variable2: "b", Correlation: 0.9, PValue: 1.8, N1: 5, N2: 5},
		{Variable1: "a", Variable2: "c", Correlation: -0.5, PValue: 0, N1: 5, N2: 5},
		{Variable1: "b", Variable2: "c", Correlation: 1, PValue: math.NaN(), N1: 5, N2: 5},
	})
	assert.Contains(t, md, "[EVALUATED PAIRS]")
	lines := strings.Split(md, "\n")
	var rows []string
	for _, l := range lines {
		if strings.HasPrefix(l, "| a ") || strings.HasPrefix(l, "| b ") {
			rows = append(rows, l)
		}
	}
	require.Len(t, rows, 3)
	assert.True(t, strings.HasSuffix(rows[0], "|     |"), rows[0])
	assert.True(t, strings.HasSuffix(rows[1], "|  *  |"), rows[1])
	assert.Contains(t, rows[2], "n/a")
}

func TestJSONNullsNonFinitePValue(t *testing.T) {
	out, err := JSON(meta(), []analysis.Result{
		{Variable1: "a", Variable2: "b", Correlation: 1, PValue: math.NaN(), N1: 3, N2: 3},
		{Variable1: "a", Variable2: "c", Correlation: -0.2, PValue: 0, N1: 3, N2: 4},
	})
	require.NoError(t, err)

	var doc struct {
		Cutoff   string `json:"cutoff"`
		Filtered bool   `json:"filtered"`
		Results  []struct {
			Variable2   string   `json:"variable2"`
			PValue      *float64 `json:"pValue"`
			N2          int      `json:"n2"`
			Significant bool     `json:"significant"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, "2024-01-31", doc.Cutoff)
	assert.True(t, doc.Filtered)
	require.Len(t, doc.Results, 2)
	assert.Nil(t, doc.Results[0].PValue)
	assert.False(t, doc.Results[0].Significant)
	require.NotNil(t, doc.Results[1].PValue)
	assert.Equal(t, 0.0, *doc.Results[1].PValue)
	assert.Equal(t, 4, doc.Results[1].N2)
	assert.True(t, doc.Results[1].Significant)
}

func TestJSONNullsNonFiniteCorrelation(t *testing.T) {
	out, err := JSON(meta(), []analysis.Result{
		{Variable1: "a", Variable2: "b", Correlation: math.NaN(), PValue: math.NaN(), N1: 3, N2: 6},
	})
	require.NoError(t, err)

	var doc struct {
		MinSamples int `json:"minSamples"`
		Results    []struct {
			Correlation *float64 `json:"correlation"`
			Significant bool     `json:"significant"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(out, &doc))
	assert.Equal(t, 3, doc.MinSamples)
	require.Len(t, doc.Results, 1)
	assert.Nil(t, doc.Results[0].Correlation)
	assert.False(t, doc.Results[0].Significant)
}

func TestJSONEmptyResultsIsArray(t *testing.T) {
	out, err := JSON(meta(), nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"results": []`)
}
