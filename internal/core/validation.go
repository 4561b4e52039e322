package core

import (
	"strings"
	"time"
	"unicode/utf8"
)

// DateLayout is the only date format accepted in uploads.
const DateLayout = "2006-01-02"

// IsBlank reports whether s is empty or only whitespace.
func IsBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// TooLong reports whether s has more than max characters.
func TooLong(s string, max int) bool {
	return utf8.RuneCountInString(s) > max
}

// ParseDate parses a yyyy-MM-dd date. A blank value returns nil with ok true.
func ParseDate(s string) (t *time.Time, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, true
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, false
	}
	return &d, true
}

// SplitList splits a delimited cell into trimmed, non-blank items.
func SplitList(s, sep string) []string {
	if IsBlank(s) {
		return nil
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitFields splits a list item into its sub-fields. Trailing empty
// sub-fields are dropped, so "Java:" has one field.
func SplitFields(item, sep string) []string {
	parts := strings.Split(item, sep)
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}
