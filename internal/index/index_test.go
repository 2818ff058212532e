package index

import (
	"errors"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/hyperifyio/goindex/internal/extract"
)

func loadOverview(t *testing.T) string {
	t.Helper()
	b, err := os.ReadFile("testdata/overview.html")
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	return string(b)
}

func TestParseListings(t *testing.T) {
	got, err := ParseListings(loadOverview(t))
	if err != nil {
		t.Fatalf("ParseListings: %v", err)
	}
	want := []Listing{
		{Code: "GX50", Name: "Global Tech 50"},
		{Code: "EUDIV", Name: "Europe Dividend & Value"},
		{Code: "USSC", Name: "US Small Caps"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("listings mismatch (-want +got):\n%s", diff)
	}
}

func TestParseListings_MissingCode(t *testing.T) {
	page := `<select name="index"><option value="A">a</option><option>b</option></select>`
	_, err := ParseListings(page)
	if !errors.Is(err, ErrMissingCode) {
		t.Fatalf("expected ErrMissingCode, got %v", err)
	}
}

func TestParseListings_NoSelector(t *testing.T) {
	_, err := ParseListings(`<select name="region"><option value="EU">Europe</option></select>`)
	if !errors.Is(err, extract.ErrElementNotFound) {
		t.Fatalf("expected ErrElementNotFound, got %v", err)
	}
}

func TestParsePerformance(t *testing.T) {
	got, err := ParsePerformance(loadOverview(t))
	if err != nil {
		t.Fatalf("ParsePerformance: %v", err)
	}
	want := []Performance{
		{Index: "Global Tech 50", Last: 4512.30, ChangePct: 1.25, YTDPct: 18.40},
		{Index: "Europe Dividend & Value", Last: 1087.02, ChangePct: -0.42, YTDPct: 3.10},
		{Index: "US Small Caps", Last: 902.55, ChangePct: -0.08, YTDPct: -2.75},
	}
	if diff := cmp.Diff(want, got, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("performance mismatch (-want +got):\n%s", diff)
	}
}

func TestParseConstituents(t *testing.T) {
	got, err := ParseConstituents(loadOverview(t))
	if err != nil {
		t.Fatalf("ParseConstituents: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 constituents, got %d", len(got))
	}
	want := Constituent{Symbol: "BRK.B", Name: "Berkshire Holdings", Sector: "Financials", WeightPct: 30.25, Shares: 880500}
	if diff := cmp.Diff(want, got[1]); diff != "" {
		t.Fatalf("constituent mismatch (-want +got):\n%s", diff)
	}
	if w := TotalWeight(got); math.Abs(w-100) > 1e-9 {
		t.Fatalf("total weight = %v, want 100", w)
	}
}

func TestParseConstituents_BadShareCountFailsWholeTable(t *testing.T) {
	page := strings.Replace(loadOverview(t), "<td>95,000</td>", "<td>n/a</td>", 1)
	got, err := ParseConstituents(page)
	if !errors.Is(err, extract.ErrInvalidCellValue) {
		t.Fatalf("expected ErrInvalidCellValue, got %v", err)
	}
	if got != nil {
		t.Fatalf("expected no records, got %d", len(got))
	}
}

func TestParseConstituents_RenamedColumn(t *testing.T) {
	page := strings.Replace(loadOverview(t), "<th>Weight %</th>", "<th>Weight</th>", 1)
	if _, err := ParseConstituents(page); !errors.Is(err, extract.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
	// the performance table on the same page is unaffected
	if _, err := ParsePerformance(page); err != nil {
		t.Fatalf("ParsePerformance: %v", err)
	}
}

func TestHeaviest(t *testing.T) {
	cs, err := ParseConstituents(loadOverview(t))
	if err != nil {
		t.Fatalf("ParseConstituents: %v", err)
	}
	top := Heaviest(cs, 2)
	got := []string{top[0].Symbol, top[1].Symbol}
	if diff := cmp.Diff([]string{"BRK.B", "NVX"}, got); diff != "" {
		t.Fatalf("heaviest mismatch (-want +got):\n%s", diff)
	}
	if cs[0].Symbol != "ACME" {
		t.Fatalf("input reordered: %q", cs[0].Symbol)
	}
	if all := Heaviest(cs, -1); len(all) != len(cs) {
		t.Fatalf("n<0 should keep all, got %d", len(all))
	}
}

func TestParseDecimal(t *testing.T) {
	ok := map[string]float64{
		"4,512.30": 4512.30,
		"+1.25%":   1.25,
		"-0.42":    -0.42,
		"−0.08%":   -0.08,
		" 12 ":     12,
		"0.5":      0.5,
	}
	for in, want := range ok {
		got, err := ParseDecimal(in)
		if err != nil || math.Abs(got-want) > 1e-12 {
			t.Fatalf("ParseDecimal(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	for _, in := range []string{"", "-", "%", "1.2.3", ",100", "1,,000", "1e5", "NaN", "inf", "12abc", "1.000,5"} {
		if IsDecimal(in) {
			t.Fatalf("IsDecimal(%q) = true", in)
		}
	}
}

func TestParseInteger(t *testing.T) {
	if v, err := ParseInteger("1,204,000"); err != nil || v != 1204000 {
		t.Fatalf("ParseInteger = %v, %v", v, err)
	}
	for _, in := range []string{"1.5", "", "abc", "1,"} {
		if IsInteger(in) {
			t.Fatalf("IsInteger(%q) = true", in)
		}
	}
}

func TestIsSymbol(t *testing.T) {
	for _, s := range []string{"ACME", "BRK.B", "Q1", "RDS-A"} {
		if !IsSymbol(s) {
			t.Fatalf("IsSymbol(%q) = false", s)
		}
	}
	for _, s := range []string{"", "acme", ".A", "TOO-LONG-SYMBOL", "A B"} {
		if IsSymbol(s) {
			t.Fatalf("IsSymbol(%q) = true", s)
		}
	}
}
