package index

import (
	"errors"
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

var errNotNumber = errors.New("not a number")

// cleanNumber normalizes a displayed number: surrounding space, a leading
// '+', the Unicode minus sign and thousands separators are accepted. The
// returned string holds only a sign, digits and at most one '.'.
func cleanNumber(s string, allowFraction bool) (string, error) {
	s = strings.TrimSpace(s)
	s = strings.Replace(s, "−", "-", 1)
	if s == "" {
		return "", errNotNumber
	}
	var b strings.Builder
	digits, dots := 0, 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
			b.WriteByte(c)
		case c == ',':
			// grouping separator must sit between digits
			if digits == 0 || dots > 0 || i+1 >= len(s) || s[i+1] < '0' || s[i+1] > '9' {
				return "", errNotNumber
			}
		case c == '.':
			if !allowFraction || dots > 0 {
				return "", errNotNumber
			}
			dots++
			b.WriteByte(c)
		case (c == '-' || c == '+') && i == 0:
			if c == '-' {
				b.WriteByte(c)
			}
		default:
			return "", errNotNumber
		}
	}
	if digits == 0 {
		return "", errNotNumber
	}
	return b.String(), nil
}

// ParseDecimal parses values such as "4,512.30", "-0.42" or "+1.25%".
func ParseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "%")
	n, err := cleanNumber(s, true)
	if err != nil {
		return 0, err
	}
	return strconv.ParseFloat(n, 64)
}

// IsDecimal reports whether ParseDecimal accepts s.
func IsDecimal(s string) bool {
	_, err := ParseDecimal(s)
	return err == nil
}

// ParseInteger parses whole numbers such as "1,204,000".
func ParseInteger(s string) (int64, error) {
	n, err := cleanNumber(s, false)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(n, 10, 64)
}

// IsInteger reports whether ParseInteger accepts s.
func IsInteger(s string) bool {
	_, err := ParseInteger(s)
	return err == nil
}

// IsSymbol accepts ticker symbols: 1 to 12 upper-case letters, digits, '.'
// or '-', starting with a letter or digit.
func IsSymbol(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) == 0 || len(s) > 12 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		case (c == '.' || c == '-') && i > 0:
		default:
			return false
		}
	}
	return true
}

// NonEmpty accepts any text with at least one non-space character.
func NonEmpty(s string) bool {
	return strings.TrimSpace(s) != ""
}

// cellText trims and unescapes character references in a text cell.
func cellText(s string) string {
	return html.UnescapeString(strings.TrimSpace(s))
}
