package extract

import "fmt"

// Tag identifies an element name the locator knows how to scan for.
type Tag int

const (
	Table Tag = iota
	Thead
	Tbody
	Tr
	Th
	Td
	Select
	Option
)

// String returns the lowercase element name.
func (t Tag) String() string {
	name, err := t.name()
	if err != nil {
		return fmt.Sprintf("Tag(%d)", int(t))
	}
	return name
}

func (t Tag) name() (string, error) {
	switch t {
	case Table:
		return "table", nil
	case Thead:
		return "thead", nil
	case Tbody:
		return "tbody", nil
	case Tr:
		return "tr", nil
	case Th:
		return "th", nil
	case Td:
		return "td", nil
	case Select:
		return "select", nil
	case Option:
		return "option", nil
	}
	return "", fmt.Errorf("tag %d: %w", int(t), ErrUnsupportedTag)
}

// tagMarkers holds the three literal strings scanned for one tag.
type tagMarkers struct {
	open string // "<name"
	stop string // ">"
	end  string // "</name>"
}

func markersFor(t Tag) (tagMarkers, error) {
	name, err := t.name()
	if err != nil {
		return tagMarkers{}, err
	}
	return tagMarkers{
		open: "<" + name,
		stop: ">",
		end:  "</" + name + ">",
	}, nil
}

// Attribute identifies an attribute that can filter a lookup.
type Attribute int

const (
	NoAttribute Attribute = iota
	ID
	Name
	Value
	Class
)

// String returns the attribute keyword as written in markup.
func (a Attribute) String() string {
	if a == NoAttribute {
		return "none"
	}
	kw, err := a.keyword()
	if err != nil {
		return fmt.Sprintf("Attribute(%d)", int(a))
	}
	return kw
}

func (a Attribute) keyword() (string, error) {
	switch a {
	case ID:
		return "id", nil
	case Name:
		return "name", nil
	case Value:
		return "value", nil
	case Class:
		return "class", nil
	}
	return "", fmt.Errorf("attribute %d: %w", int(a), ErrUnsupportedAttribute)
}

// attributeMarker builds the literal `keyword="value"` searched for inside a
// begin tag.
func attributeMarker(a Attribute, value string) (string, error) {
	kw, err := a.keyword()
	if err != nil {
		return "", err
	}
	return kw + `="` + value + `"`, nil
}
