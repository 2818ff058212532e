// Package report renders extracted index records as console tables, a
// Markdown document and an optional PDF.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/hyperifyio/goindex/internal/index"
)

// Table is a titled grid of already formatted cells.
type Table struct {
	Title  string
	Header []string
	Rows   [][]string
	// Footer is an optional summary line shown under the rows.
	Footer string
}

var printer = message.NewPrinter(language.English)

func decimal(v float64) string { return printer.Sprintf("%.2f", v) }

func percent(v float64) string { return printer.Sprintf("%+.2f%%", v) }

func integer(v int64) string { return printer.Sprintf("%d", v) }

// Listings builds the index list table.
func Listings(ls []index.Listing) Table {
	t := Table{Title: "Indices", Header: []string{"Code", "Name"}}
	for _, l := range ls {
		t.Rows = append(t.Rows, []string{l.Code, l.Name})
	}
	return t
}

// Performance builds the performance table.
func Performance(ps []index.Performance) Table {
	t := Table{Title: "Performance", Header: index.PerformanceSchema.Headers()}
	for _, p := range ps {
		t.Rows = append(t.Rows, []string{p.Index, decimal(p.Last), percent(p.ChangePct), percent(p.YTDPct)})
	}
	return t
}

// Constituents builds the constituents table with the total weight as
// footer.
func Constituents(cs []index.Constituent) Table {
	t := Table{Title: "Constituents", Header: index.ConstituentSchema.Headers()}
	for _, c := range cs {
		t.Rows = append(t.Rows, []string{c.Symbol, c.Name, c.Sector, decimal(c.WeightPct), integer(c.Shares)})
	}
	t.Footer = fmt.Sprintf("%d constituents, total weight %s%%", len(cs), decimal(index.TotalWeight(cs)))
	return t
}

func toRow(cells []string) table.Row {
	row := make(table.Row, len(cells))
	for i, c := range cells {
		row[i] = c
	}
	return row
}

// RenderConsole writes each table to w in a rounded box style.
func RenderConsole(w io.Writer, tables ...Table) {
	for _, t := range tables {
		tw := table.NewWriter()
		tw.SetOutputMirror(w)
		tw.SetTitle(t.Title)
		tw.AppendHeader(toRow(t.Header))
		for _, r := range t.Rows {
			tw.AppendRow(toRow(r))
		}
		if t.Footer != "" {
			tw.SetCaption(t.Footer)
		}
		tw.SetStyle(table.StyleRounded)
		tw.Render()
	}
}

// Markdown renders the tables as a Markdown document.
func Markdown(title string, tables ...Table) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	for _, t := range tables {
		fmt.Fprintf(&b, "\n## %s\n\n", t.Title)
		b.WriteString("| " + strings.Join(escapeCells(t.Header), " | ") + " |\n")
		b.WriteString("|" + strings.Repeat(" --- |", len(t.Header)) + "\n")
		for _, r := range t.Rows {
			b.WriteString("| " + strings.Join(escapeCells(r), " | ") + " |\n")
		}
		if t.Footer != "" {
			fmt.Fprintf(&b, "\n%s\n", t.Footer)
		}
	}
	return b.String()
}

func escapeCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ReplaceAll(c, "|", `\|`)
	}
	return out
}
