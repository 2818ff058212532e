// Package index turns the index provider's pages into typed records: the
// list of published indices, index performance figures and index
// constituents. All markup handling goes through internal/extract.
package index

import (
	"errors"
	"fmt"
	"sort"

	"github.com/hyperifyio/goindex/internal/extract"
)

const (
	// ListingSelectName is the name of the <select> holding the index list.
	ListingSelectName = "index"
	// PerformanceTableID is the id of the index performance table.
	PerformanceTableID = "performance"
	// ConstituentsTableID is the id of the constituents table.
	ConstituentsTableID = "constituents"
)

// ErrMissingCode is returned when an index list entry has no value attribute.
var ErrMissingCode = errors.New("index option without code")

// Listing is one entry of the index selector.
type Listing struct {
	Code string
	Name string
}

// ParseListings reads every option of the index selector in page order.
func ParseListings(page string) ([]Listing, error) {
	l := extract.NewLocator(page)
	sel, err := l.Find(extract.Select, extract.WithAttribute(extract.Name, ListingSelectName))
	if err != nil {
		return nil, fmt.Errorf("index selector: %w", err)
	}
	opts, err := l.FindAll(extract.Option, extract.Within(sel.Data))
	if err != nil {
		return nil, fmt.Errorf("index options: %w", err)
	}
	out := make([]Listing, 0, len(opts))
	for i, o := range opts {
		code, ok := l.Attr(o, extract.Value)
		if !ok || !NonEmpty(code) {
			return nil, fmt.Errorf("option %d: %w", i, ErrMissingCode)
		}
		out = append(out, Listing{Code: code, Name: cellText(l.Text(o.Data))})
	}
	return out, nil
}

// Performance is one row of the performance table.
type Performance struct {
	Index     string
	Last      float64
	ChangePct float64
	YTDPct    float64
}

// PerformanceSchema maps the performance table columns onto Performance.
var PerformanceSchema = extract.Schema[Performance]{
	{Header: "Index", Valid: NonEmpty, Set: func(r *Performance, s string) { r.Index = cellText(s) }},
	{Header: "Last", Valid: IsDecimal, Set: func(r *Performance, s string) { r.Last = decimalOf(s) }},
	{Header: "Change %", Valid: IsDecimal, Set: func(r *Performance, s string) { r.ChangePct = decimalOf(s) }},
	{Header: "YTD %", Valid: IsDecimal, Set: func(r *Performance, s string) { r.YTDPct = decimalOf(s) }},
}

// ParsePerformance extracts the performance table of page.
func ParsePerformance(page string) ([]Performance, error) {
	rows, err := extract.ExtractTable(page, PerformanceSchema, extract.WithAttribute(extract.ID, PerformanceTableID))
	if err != nil {
		return nil, fmt.Errorf("performance table: %w", err)
	}
	return rows, nil
}

// Constituent is one row of the constituents table.
type Constituent struct {
	Symbol    string
	Name      string
	Sector    string
	WeightPct float64
	Shares    int64
}

// ConstituentSchema maps the constituents table columns onto Constituent.
var ConstituentSchema = extract.Schema[Constituent]{
	{Header: "Symbol", Valid: IsSymbol, Set: func(r *Constituent, s string) { r.Symbol = cellText(s) }},
	{Header: "Name", Valid: NonEmpty, Set: func(r *Constituent, s string) { r.Name = cellText(s) }},
	{Header: "Sector", Valid: NonEmpty, Set: func(r *Constituent, s string) { r.Sector = cellText(s) }},
	{Header: "Weight %", Valid: IsDecimal, Set: func(r *Constituent, s string) { r.WeightPct = decimalOf(s) }},
	{Header: "Shares", Valid: IsInteger, Set: func(r *Constituent, s string) { r.Shares = integerOf(s) }},
}

// ParseConstituents extracts the constituents table of page.
func ParseConstituents(page string) ([]Constituent, error) {
	rows, err := extract.ExtractTable(page, ConstituentSchema, extract.WithAttribute(extract.ID, ConstituentsTableID))
	if err != nil {
		return nil, fmt.Errorf("constituents table: %w", err)
	}
	return rows, nil
}

// TotalWeight sums the constituent weights. A complete index adds up to
// roughly 100.
func TotalWeight(cs []Constituent) float64 {
	total := 0.0
	for _, c := range cs {
		total += c.WeightPct
	}
	return total
}

// Heaviest returns up to n constituents ordered by descending weight. Ties
// keep page order. cs is not modified.
func Heaviest(cs []Constituent, n int) []Constituent {
	out := append([]Constituent(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].WeightPct > out[j].WeightPct })
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Setters only see text their validator accepted.
func decimalOf(s string) float64 {
	v, _ := ParseDecimal(s)
	return v
}

func integerOf(s string) int64 {
	v, _ := ParseInteger(s)
	return v
}
