package extract

import "errors"

var (
	// ErrInvalidRange is returned when the search window is empty once resolved.
	ErrInvalidRange = errors.New("invalid range")
	// ErrUnsupportedTag is returned for a Tag the locator has no markers for.
	ErrUnsupportedTag = errors.New("unsupported tag")
	// ErrUnsupportedAttribute is returned for an Attribute without a keyword.
	ErrUnsupportedAttribute = errors.New("unsupported attribute")
	// ErrElementNotFound is returned when no candidate satisfies the filter.
	ErrElementNotFound = errors.New("element not found")
	// ErrIncompleteElement is returned when a begin marker has no matching
	// '>' or end marker.
	ErrIncompleteElement = errors.New("incomplete element")
	// ErrInvalidElement is returned when the open marker is only a prefix of
	// a longer tag name.
	ErrInvalidElement = errors.New("invalid element")

	// ErrUnexpectedShape is returned when a header or body row does not have
	// one cell per column.
	ErrUnexpectedShape = errors.New("unexpected table shape")
	// ErrSchemaMismatch is returned when a header cell differs from the
	// column's expected header text.
	ErrSchemaMismatch = errors.New("table schema mismatch")
	// ErrInvalidCellValue is returned when a cell fails its column validator.
	ErrInvalidCellValue = errors.New("invalid cell value")
)
