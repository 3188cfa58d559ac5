package analysis

import (
	"testing"

	"github.com/KaramelBytes/healthloom-cli/internal/record"
)

func TestParseDateStrict(t *testing.T) {
	d, err := ParseDate(" 2024-01-05 ")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if d.Format(DateLayout) != "2024-01-05" || d.Hour() != 0 {
		t.Fatalf("unexpected date %v", d)
	}
	for _, bad := range []string{"", "2024-1-5", "05/01/2024", "2024-02-30"} {
		if _, err := ParseDate(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestFilterByCutoffInclusiveAndDateOnly(t *testing.T) {
	recs := []record.Record{
		{"date": record.Text("2024-01-05"), "i": record.Number(1)},
		{"date": record.Text("2024-01-05T23:59:00Z"), "i": record.Number(2)},
		{"date": record.Text("2024-01-05 18:30"), "i": record.Number(3)},
		{"date": record.Text("2024/01/04"), "i": record.Number(4)},
		{"date": record.Text("2024-01-06"), "i": record.Number(5)},
		{"date": record.Text("yesterday"), "i": record.Number(6)},
		{"i": record.Number(7)},
	}
	got := FilterByCutoff(recs, mustDate(t, "2024-01-05"))
	var ids []string
	for _, r := range got {
		ids = append(ids, r.Get("i").String())
	}
	if !equalStrings(ids, []string{"1", "2", "3", "4"}) {
		t.Fatalf("kept %v", ids)
	}
}

func TestDateSpan(t *testing.T) {
	recs := mustParse(t, "date,v\n2024-03-02,1\nbad,2\n2024-01-09,3\n2024-02-11,4\n")
	first, last, ok := DateSpan(recs)
	if !ok {
		t.Fatalf("expected a span")
	}
	if first.Format(DateLayout) != "2024-01-09" || last.Format(DateLayout) != "2024-03-02" {
		t.Fatalf("span = %v..%v", first, last)
	}
	if _, _, ok := DateSpan(mustParse(t, "date,v\nbad,1\n")); ok {
		t.Fatalf("expected no span")
	}
}
