package prompt

import "strings"

// NullSentinel is what the web front end writes for a setting it has no
// value for ("- null" in the rendered system message).
const NullSentinel = listMarker + "null"

// AbsentFunc reports whether a parsed value should be treated as missing.
type AbsentFunc func(value string) bool

// IsNullSentinel matches the front end's null sentinel, either raw or with
// the list marker already removed by Parse.
func IsNullSentinel(value string) bool {
	return value == NullSentinel || listMarker+value == NullSentinel
}

// IsBlank matches empty and whitespace-only values.
func IsBlank(value string) bool {
	return strings.TrimSpace(value) == ""
}

// Without returns a copy of f with every setting for which absent reports
// true cleared. Message is user text and is left untouched. A nil absent
// returns f unchanged.
func (f Fields) Without(absent AbsentFunc) Fields {
	if absent == nil {
		return f
	}
	for _, s := range settings {
		if v := s.field(&f); absent(*v) {
			*v = ""
		}
	}
	return f
}
