package raw

import "strconv"

// parseNumber attempts to interpret s as a HOCON number literal. Per
// spec.md §4.3, only strings starting with '-' or a digit are even
// attempted; anything else is left to the caller to keep as a string.
func parseNumber(s string) (Number, bool) {
	if s == "" {
		return Number{}, false
	}

	first := s[0]
	if first != '-' && (first < '0' || first > '9') {
		return Number{}, false
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return Number{IsInt: true, Int: i, Literal: s}, true
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return Number{Float: f, Literal: s}, true
	}

	return Number{}, false
}
