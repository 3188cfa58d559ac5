package record_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/KaramelBytes/healthloom-cli/internal/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInfersNumberAndText(t *testing.T) {
	recs, err := record.Parse("a,b\n1,x")
	require.NoError(t, err)
	require.Len(t, recs, 1)

	a := recs[0].Get("a")
	f, ok := a.Float()
	assert.True(t, ok)
	assert.Equal(t, 1.0, f)
	assert.Equal(t, record.KindText, recs[0].Get("b").Kind())
	assert.Equal(t, "x", recs[0].Get("b").String())
}

func TestParseSkipsBlankLines(t *testing.T) {
	recs, err := record.Parse("date,w\n2024-01-01,70\n   \n2024-01-02,71\n")
	require.NoError(t, err)
	assert.Len(t, recs, 2)
}

func TestParseEmptyInputIsFormatError(t *testing.T) {
	for _, in := range []string{"", "  \n \n"} {
		_, err := record.Parse(in)
		require.Error(t, err)
		var fe *record.FormatError
		assert.True(t, errors.As(err, &fe), "input %q", in)
		assert.True(t, errors.Is(err, record.ErrNoHeader))
	}
}

func TestParseDateNeverNumeric(t *testing.T) {
	recs, err := record.Parse("date,v\n20240101,3")
	require.NoError(t, err)
	d := recs[0].Get(record.DateField)
	assert.Equal(t, record.KindText, d.Kind())
	assert.Equal(t, "20240101", d.String())
}

func TestParseEmptyCellIsEmptyText(t *testing.T) {
	recs, err := record.Parse("date,a,b\n2024-01-01,,2")
	require.NoError(t, err)
	a := recs[0].Get("a")
	assert.Equal(t, record.KindText, a.Kind())
	assert.Equal(t, "", a.String())
	_, ok := a.Numeric()
	assert.False(t, ok)
}

func TestParseShortRowLeavesFieldsAbsent(t *testing.T) {
	recs, err := record.Parse("date,a,b,c\n2024-01-01,1")
	require.NoError(t, err)
	rec := recs[0]
	assert.Len(t, rec, 2)
	_, present := rec["b"]
	assert.False(t, present)
	assert.True(t, rec.Get("c").IsMissing())
}

func TestParseDuplicateHeadersLaterWins(t *testing.T) {
	recs, err := record.Parse("x,x\n1,2")
	require.NoError(t, err)
	f, _ := recs[0].Get("x").Float()
	assert.Equal(t, 2.0, f)
}

func TestParseCommaInsideValueIsDelimiter(t *testing.T) {
	recs, err := record.Parse("note,v\n\"a,b\",3")
	require.NoError(t, err)
	assert.Equal(t, `"a`, recs[0].Get("note").String())
	assert.Equal(t, `b"`, recs[0].Get("v").String())
}

func TestParseTolerantEdgeCases(t *testing.T) {
	cases := map[string]string{
		"trailing blank header column": "date,a,\n2024-01-01,1,\n",
		"single field lines":           "date\n2024-01-01\n2024-01-02",
		"no trailing newline":          "date,a\n2024-01-01,1",
		"crlf line endings":            "date,a\r\n2024-01-01,1\r\n",
		"header only":                  "date,a",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := record.Parse(in)
			assert.NoError(t, err)
		})
	}
}

func TestParseCRLFValuesAreTrimmed(t *testing.T) {
	recs, err := record.Parse("date,a\r\n2024-01-01,1.5\r\n")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	f, ok := recs[0].Get("a").Float()
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)
	d, _ := recs[0].Date()
	assert.Equal(t, "2024-01-01", d)
}

func TestParsePreservesRowOrderAndDuplicateDates(t *testing.T) {
	recs, err := record.Parse("date,a\n2024-01-02,1\n2024-01-01,2\n2024-01-02,3")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	var got []string
	for _, r := range recs {
		got = append(got, r.Get("a").String())
	}
	assert.Equal(t, []string{"1", "2", "3"}, got)
}

func TestParseReader(t *testing.T) {
	recs, err := record.ParseReader(strings.NewReader("date,a\n2024-01-01,4"))
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
