package raw

import "strings"

// scanPathExpression reads a dot-separated sequence of segments per
// spec.md §4.4: each segment is an unquoted, quoted, or triple-quoted
// string; horizontal whitespace before or after a segment or a dot is
// skipped. Returns an error on an empty path or a stray dot.
func scanPathExpression(r Reader) ([]string, error) {
	var segments []string

	for {
		if _, err := dropHorizontalWhitespace(r); err != nil {
			return nil, err
		}

		seg, err := scanPathSegment(r)
		if err != nil {
			return nil, err
		}

		segments = append(segments, seg)

		if _, err := dropHorizontalWhitespace(r); err != nil {
			return nil, err
		}

		b, err := r.Peek()
		if err != nil || b != '.' {
			break
		}

		if _, err := r.Next(); err != nil {
			return nil, err
		}

		if _, err := dropHorizontalWhitespace(r); err != nil {
			return nil, err
		}

		nb, err := r.Peek()
		if err != nil || nb == '.' {
			return nil, &posError{r.Position(), "path segment", "end of path"}
		}
	}

	if len(segments) == 0 {
		return nil, &posError{r.Position(), "path segment", "nothing"}
	}

	return segments, nil
}

// scanPathSegment reads one path-expression segment.
func scanPathSegment(r Reader) (string, error) {
	b, err := r.Peek()
	if err != nil {
		return "", &posError{r.Position(), "path segment", "end of input"}
	}

	if b == '"' {
		if three, err := r.PeekN(3); err == nil && three[1] == '"' && three[2] == '"' {
			for range 3 {
				if _, err := r.Next(); err != nil {
					return "", err
				}
			}

			return scanTripleQuoted(r)
		}

		if _, err := r.Next(); err != nil {
			return "", err
		}

		return scanQuoted(r)
	}

	return scanUnquotedPathSegment(r)
}

// scanUnquotedPathSegment reads an unquoted path segment, which stops at
// '.' in addition to the usual unquoted-string stop set.
func scanUnquotedPathSegment(r Reader) (string, error) {
	var sb strings.Builder

	for {
		b, err := r.Peek()
		if err != nil {
			break
		}

		if b == '.' || isForbiddenUnquotedByte(b) {
			break
		}

		ru, _, err := peekRune(r)
		if err != nil {
			break
		}

		if isWhitespace(ru) {
			break
		}

		if _, err := nextRune(r); err != nil {
			break
		}

		sb.WriteRune(ru)
	}

	if sb.Len() == 0 {
		return "", &posError{r.Position(), "path segment", "empty segment"}
	}

	return sb.String(), nil
}
