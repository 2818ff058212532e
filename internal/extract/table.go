package extract

import (
	"errors"
	"fmt"
)

// Column binds one table column to a field of R. Header must equal the
// column's header cell text exactly; Valid is run on each raw cell text and
// Set is only called with text Valid accepted.
type Column[R any] struct {
	Header string
	Valid  func(text string) bool
	Set    func(rec *R, text string)
}

// Schema is the ordered column contract of a table. Position i of the schema
// maps to cell i of every row.
type Schema[R any] []Column[R]

// Headers returns the expected header texts in column order.
func (s Schema[R]) Headers() []string {
	out := make([]string, len(s))
	for i, c := range s {
		out[i] = c.Header
	}
	return out
}

// ExtractTable locates a table in doc, checks its header row against schema
// and converts every body row into an R, in document order. The options
// select the table, e.g. WithAttribute(ID, "constituents").
//
// Extraction is all-or-nothing: the first bad header or cell aborts it and
// no records are returned.
func ExtractTable[R any](doc string, schema Schema[R], opts ...LookupOption) ([]R, error) {
	l := NewLocator(doc)
	table, err := l.Find(Table, opts...)
	if err != nil {
		return nil, fmt.Errorf("locate table: %w", err)
	}
	if err := checkHeader(l, table, schema); err != nil {
		return nil, err
	}

	body, err := findIn(l, table, Tbody)
	if err != nil {
		return nil, fmt.Errorf("locate body: %w", err)
	}
	rows, err := findAllIn(l, body, Tr)
	if err != nil {
		return nil, fmt.Errorf("locate body rows: %w", err)
	}

	records := make([]R, 0, len(rows))
	for i, row := range rows {
		cells, err := cellsOf(l, row, Td)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		if len(cells) != len(schema) {
			return nil, fmt.Errorf("row %d has %d cells, want %d: %w", i, len(cells), len(schema), ErrUnexpectedShape)
		}
		var rec R
		for j, cell := range cells {
			text := l.Text(cell.Data)
			col := schema[j]
			if !col.Valid(text) {
				return nil, fmt.Errorf("row %d column %q: %q: %w", i, col.Header, text, ErrInvalidCellValue)
			}
			col.Set(&rec, text)
		}
		records = append(records, rec)
	}
	return records, nil
}

func checkHeader[R any](l Locator, table Location, schema Schema[R]) error {
	head, err := findIn(l, table, Thead)
	if err != nil {
		return fmt.Errorf("locate header: %w", err)
	}
	row, err := findIn(l, head, Tr)
	if err != nil {
		return fmt.Errorf("locate header row: %w", err)
	}
	cells, err := cellsOf(l, row, Th)
	if err != nil {
		return fmt.Errorf("header: %w", err)
	}
	if len(cells) != len(schema) {
		return fmt.Errorf("header has %d cells, want %d: %w", len(cells), len(schema), ErrUnexpectedShape)
	}
	for i, cell := range cells {
		if got := l.Text(cell.Data); got != schema[i].Header {
			return fmt.Errorf("header column %d is %q, want %q: %w", i, got, schema[i].Header, ErrSchemaMismatch)
		}
	}
	return nil
}

// findIn looks for tag inside parent's content. An element with no content,
// like "<tbody></tbody>", holds nothing rather than being a bad window.
func findIn(l Locator, parent Location, tag Tag) (Location, error) {
	if parent.Data.Empty() {
		return Location{}, fmt.Errorf("%s in empty element at offset %d: %w", tag, parent.BeginTag.Lower, ErrElementNotFound)
	}
	return l.Find(tag, Within(parent.Data))
}

func findAllIn(l Locator, parent Location, tag Tag) ([]Location, error) {
	if parent.Data.Empty() {
		return nil, fmt.Errorf("%s in empty element at offset %d: %w", tag, parent.BeginTag.Lower, ErrElementNotFound)
	}
	return l.FindAll(tag, Within(parent.Data))
}

// cellsOf returns the cells of row. A row without cells is a shape error
// rather than a lookup failure.
func cellsOf(l Locator, row Location, cell Tag) ([]Location, error) {
	if row.Data.Empty() {
		return nil, fmt.Errorf("row at offset %d has no %s cells: %w", row.BeginTag.Lower, cell, ErrUnexpectedShape)
	}
	cells, err := l.FindAll(cell, Within(row.Data))
	if errors.Is(err, ErrElementNotFound) {
		return nil, fmt.Errorf("row at offset %d has no %s cells: %w", row.BeginTag.Lower, cell, ErrUnexpectedShape)
	}
	return cells, err
}
