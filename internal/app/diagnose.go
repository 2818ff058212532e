package app

import (
	"errors"

	"github.com/hyperifyio/goindex/internal/extract"
	"github.com/hyperifyio/goindex/internal/index"
)

const (
	ExitOK         = 0
	ExitFailure    = 1
	ExitExtraction = 2
)

var diagnoses = []struct {
	err  error
	msg  string
	code int
}{
	{extract.ErrInvalidRange, "internal error: search window is empty or outside the page", ExitFailure},
	{extract.ErrUnsupportedTag, "internal error: unsupported tag", ExitFailure},
	{extract.ErrUnsupportedAttribute, "internal error: unsupported attribute", ExitFailure},
	{extract.ErrElementNotFound, "page layout changed: an expected element is missing", ExitExtraction},
	{extract.ErrIncompleteElement, "page is truncated or malformed: an element is never closed", ExitExtraction},
	{extract.ErrInvalidElement, "page markup is ambiguous: tag name is followed by unexpected text", ExitExtraction},
	{extract.ErrUnexpectedShape, "table layout changed: column count differs from the expected columns", ExitExtraction},
	{extract.ErrSchemaMismatch, "table layout changed: a column header differs from the expected name", ExitExtraction},
	{extract.ErrInvalidCellValue, "table contains a value that cannot be read", ExitExtraction},
	{index.ErrMissingCode, "index list entry has no code", ExitExtraction},
	{ErrDisallowed, "the site's robots.txt disallows this page (use -http.ignoreRobots to override)", ExitFailure},
	{ErrNoSources, "nothing to do: configure at least one page source", ExitFailure},
}

// Diagnose maps err to a user-facing message and process exit code.
func Diagnose(err error) (string, int) {
	if err == nil {
		return "", ExitOK
	}
	for _, d := range diagnoses {
		if errors.Is(err, d.err) {
			return d.msg, d.code
		}
	}
	return "run failed", ExitFailure
}
