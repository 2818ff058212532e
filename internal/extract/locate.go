package extract

import (
	"errors"
	"fmt"
	"strings"
)

// Location describes one matched element by offsets into the document.
// BeginTag spans from '<' through the closing '>' of the begin tag, Data is
// the content strictly between the tags (empty for "<td></td>") and EndTag
// covers the whole end marker.
type Location struct {
	BeginTag Range
	Data     Range
	EndTag   Range
}

// Locator finds elements in one immutable document by literal marker
// scanning. It keeps no position between calls; every lookup starts from the
// window passed through its options.
type Locator struct {
	doc string
}

// NewLocator returns a Locator over doc.
func NewLocator(doc string) Locator {
	return Locator{doc: doc}
}

// Len returns the document length in bytes.
func (l Locator) Len() int { return len(l.doc) }

// LookupOption narrows a lookup.
type LookupOption func(*query)

type query struct {
	within Range
	attr   Attribute
	value  string
}

// Within restricts the lookup to r. The default is Whole().
func Within(r Range) LookupOption {
	return func(q *query) { q.within = r }
}

// WithAttribute only accepts elements whose begin tag contains
// attr="value".
func WithAttribute(attr Attribute, value string) LookupOption {
	return func(q *query) {
		q.attr = attr
		q.value = value
	}
}

// search is a validated lookup: resolved window plus the literal markers.
type search struct {
	tag     Tag
	within  Range
	markers tagMarkers
	attr    string
}

func (l Locator) prepare(tag Tag, opts []LookupOption) (search, error) {
	q := query{within: Whole()}
	for _, opt := range opts {
		opt(&q)
	}
	within := q.within.resolve(len(l.doc))
	if within.Empty() || within.Upper >= len(l.doc) {
		return search{}, fmt.Errorf("find %s in [%d, %d] of %d bytes: %w", tag, within.Lower, within.Upper, len(l.doc), ErrInvalidRange)
	}
	s := search{tag: tag, within: within}
	if q.attr != NoAttribute {
		marker, err := attributeMarker(q.attr, q.value)
		if err != nil {
			return search{}, err
		}
		s.attr = marker
	}
	m, err := markersFor(tag)
	if err != nil {
		return search{}, err
	}
	s.markers = m
	return s, nil
}

// Find returns the first element matching tag and the options.
func (l Locator) Find(tag Tag, opts ...LookupOption) (Location, error) {
	s, err := l.prepare(tag, opts)
	if err != nil {
		return Location{}, err
	}
	loc, _, err := l.next(s, s.within)
	return loc, err
}

// FindAll returns every element matching tag and the options, in document
// order. Not finding any element is an error; running out of elements after
// at least one match is not.
//
// The scan resumes right after each match's begin tag, so an element nested
// inside another element of the same tag is reported with the outer
// element's end marker resolved to the inner one.
func (l Locator) FindAll(tag Tag, opts ...LookupOption) ([]Location, error) {
	s, err := l.prepare(tag, opts)
	if err != nil {
		return nil, err
	}
	var out []Location
	r := s.within
	for {
		loc, rest, err := l.next(s, r)
		if err != nil {
			if errors.Is(err, ErrElementNotFound) && len(out) > 0 {
				return out, nil
			}
			return nil, err
		}
		out = append(out, loc)
		r = rest
	}
}

// next scans r for the next qualifying element. It returns the location and
// the window narrowed to just past the element's begin tag.
func (l Locator) next(s search, r Range) (Location, Range, error) {
	m := s.markers
	for {
		open := l.index(r, m.open)
		if open < 0 {
			if s.attr != "" {
				return Location{}, r, fmt.Errorf("%s with %s: %w", s.tag, s.attr, ErrElementNotFound)
			}
			return Location{}, r, fmt.Errorf("%s: %w", s.tag, ErrElementNotFound)
		}
		afterOpen := open + len(m.open)
		r = r.WithLower(afterOpen)

		stop := l.index(r, m.stop)
		if stop < 0 {
			return Location{}, r, fmt.Errorf("%s at offset %d: no %q: %w", s.tag, open, m.stop, ErrIncompleteElement)
		}
		r = r.WithLower(stop + len(m.stop))

		if afterOpen != stop && l.doc[afterOpen] != ' ' {
			return Location{}, r, fmt.Errorf("%s at offset %d: unexpected %q after %q: %w", s.tag, open, l.doc[afterOpen], m.open, ErrInvalidElement)
		}

		// The filter is a plain substring of the begin tag, so `data-id="x"`
		// satisfies ID "x". Attr is stricter.
		if s.attr != "" && l.index(NewRange(afterOpen, stop-1), s.attr) < 0 {
			continue
		}

		end := l.index(r, m.end)
		if end < 0 {
			return Location{}, r, fmt.Errorf("%s at offset %d: no %q: %w", s.tag, open, m.end, ErrIncompleteElement)
		}

		loc := Location{
			BeginTag: NewRange(open, stop+len(m.stop)-1),
			Data:     NewRange(stop+len(m.stop), end-1),
			EndTag:   NewRange(end, end+len(m.end)-1),
		}
		return loc, r, nil
	}
}

// index returns the absolute offset of the first marker lying entirely
// inside r, or -1.
func (l Locator) index(r Range, marker string) int {
	if r.Empty() || r.Lower >= len(l.doc) {
		return -1
	}
	upper := r.Upper
	if upper >= len(l.doc) {
		upper = len(l.doc) - 1
	}
	i := strings.Index(l.doc[r.Lower:upper+1], marker)
	if i < 0 {
		return -1
	}
	return r.Lower + i
}

// Text returns the document bytes covered by r.
func (l Locator) Text(r Range) string {
	r = r.resolve(len(l.doc))
	if r.Empty() || r.Lower >= len(l.doc) {
		return ""
	}
	upper := r.Upper
	if upper >= len(l.doc) {
		upper = len(l.doc) - 1
	}
	return l.doc[r.Lower : upper+1]
}

// Attr reads the quoted value of attr from loc's begin tag.
func (l Locator) Attr(loc Location, attr Attribute) (string, bool) {
	kw, err := attr.keyword()
	if err != nil {
		return "", false
	}
	prefix := kw + `="`
	// Require a leading space so "data-id" does not satisfy "id".
	start := l.index(loc.BeginTag, " "+prefix)
	if start < 0 {
		return "", false
	}
	valueStart := start + 1 + len(prefix)
	closeQuote := l.index(loc.BeginTag.WithLower(valueStart), `"`)
	if closeQuote < 0 {
		return "", false
	}
	return l.doc[valueStart:closeQuote], true
}
