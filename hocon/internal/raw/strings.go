package raw

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// forbiddenUnquoted is the byte set spec.md §4.3 excludes from an
// unquoted string, beyond whitespace.
const forbiddenUnquoted = "$\"{}[]:=,+#`^?!@*&\\"

func isForbiddenUnquotedByte(b byte) bool {
	return strings.IndexByte(forbiddenUnquoted, b) >= 0
}

// scanQuoted reads a `"..."` string, the opening quote already consumed
// by the caller. Supports the JSON escapes spec.md §4.3 names, including
// surrogate-pair combination for codepoints above U+FFFF.
func scanQuoted(r Reader) (string, error) {
	var sb strings.Builder

	for {
		b, err := r.Peek()
		if err != nil {
			return "", &posError{r.Position(), "closing quote", "end of input"}
		}

		if b == '"' {
			_, _ = r.Next()

			return sb.String(), nil
		}

		if b == '\\' {
			_, _ = r.Next()

			ru, err := scanEscape(r)
			if err != nil {
				return "", err
			}

			sb.WriteRune(ru)

			continue
		}

		ru, err := nextRune(r)
		if err != nil {
			return "", err
		}

		sb.WriteRune(ru)
	}
}

// scanEscape reads one escape sequence, the leading backslash already
// consumed.
func scanEscape(r Reader) (rune, error) {
	b, err := r.Next()
	if err != nil {
		return 0, &posError{r.Position(), "escape sequence", "end of input"}
	}

	switch b {
	case '"':
		return '"', nil
	case '\\':
		return '\\', nil
	case '/':
		return '/', nil
	case 'b':
		return '\b', nil
	case 'f':
		return '\f', nil
	case 'n':
		return '\n', nil
	case 'r':
		return '\r', nil
	case 't':
		return '\t', nil
	case 'u':
		first, err := scanHex4(r)
		if err != nil {
			return 0, err
		}

		if utf16.IsSurrogate(rune(first)) {
			two, err := r.PeekN(2)
			if err == nil && two[0] == '\\' && two[1] == 'u' {
				_, _ = r.Next()
				_, _ = r.Next()

				second, err := scanHex4(r)
				if err != nil {
					return 0, err
				}

				combined := utf16.DecodeRune(rune(first), rune(second))
				if combined != utf8.RuneError {
					return combined, nil
				}
			}
		}

		return rune(first), nil
	default:
		return 0, &posError{r.Position(), "valid escape character", string(b)}
	}
}

func scanHex4(r Reader) (uint32, error) {
	buf, err := r.PeekN(4)
	if err != nil {
		return 0, &posError{r.Position(), "4 hex digits", "end of input"}
	}

	n, err := strconv.ParseUint(string(buf), 16, 32)
	if err != nil {
		return 0, &posError{r.Position(), "4 hex digits", string(buf)}
	}

	for range 4 {
		_, _ = r.Next()
	}

	return uint32(n), nil
}

// scanTripleQuoted reads a `"""..."""` string, the three opening quotes
// already consumed. Content is verbatim; a run of 4 or 5 quotes before
// the terminator leaves 1 or 2 literal quotes inside the string (the
// canonical HOCON closing-quote rule: the *last* three quotes terminate).
func scanTripleQuoted(r Reader) (string, error) {
	var sb strings.Builder

	for {
		three, err := r.PeekN(3)
		if err != nil {
			return "", &posError{r.Position(), `closing """`, "end of input"}
		}

		if three[0] == '"' && three[1] == '"' && three[2] == '"' {
			// Consume the triple quote, then greedily consume any
			// further quotes beyond the third as literal content,
			// leaving the true terminator as the final three.
			extra := 0

			for {
				buf, err := r.PeekN(4 + extra)
				if err != nil {
					break
				}

				if buf[3+extra] != '"' {
					break
				}

				extra++
			}

			for range extra {
				sb.WriteByte('"')
			}

			for range 3 + extra {
				_, _ = r.Next()
			}

			return sb.String(), nil
		}

		ru, err := nextRune(r)
		if err != nil {
			return "", err
		}

		sb.WriteRune(ru)
	}
}

// scanUnquoted reads a run of unquoted characters, stopping before
// whitespace, a forbidden byte, or a `//` comment start. Returns an error
// if nothing could be scanned.
func scanUnquoted(r Reader) (string, error) {
	var sb strings.Builder

	for {
		b, err := r.Peek()
		if err != nil {
			break
		}

		if b == '/' {
			if two, err := r.PeekN(2); err == nil && two[1] == '/' {
				break
			}
		} else if isForbiddenUnquotedByte(b) {
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
		return "", &posError{r.Position(), "value", "nothing"}
	}

	return sb.String(), nil
}

// promoteUnquoted classifies a scanned unquoted run per spec.md §4.3:
// "true"/"false" -> bool, "null" -> null, else attempt number, else keep
// as an unquoted string.
func promoteUnquoted(pos Position, s string) *Value {
	switch s {
	case "true":
		return NewBool(pos, true)
	case "false":
		return NewBool(pos, false)
	case "null":
		return NewNull(pos)
	}

	if n, ok := parseNumber(s); ok {
		return NewNumber(pos, n)
	}

	return NewString(pos, s, StringUnquoted)
}

// posError is the internal syntax-error carrier; the raw package keeps it
// unexported and lets the parser translate it into the public
// hocon.SyntaxError shape, so raw has no import dependency on its parent.
type posError struct {
	Pos      Position
	Expected string
	Found    string
}

func (e *posError) Error() string {
	return fmt.Sprintf("expected %s found %s at line %d col %d",
		e.Expected, e.Found, e.Pos.Line, e.Pos.Column)
}

// Details implements SyntaxErr, letting callers outside this package
// extract structured fields from an unexported error value.
func (e *posError) Details() (Position, string, string) {
	return e.Pos, e.Expected, e.Found
}

// SyntaxErr is implemented by every error this package returns for a
// malformed document, exposing its position and expected/found text
// without requiring callers to know the concrete (unexported) type.
type SyntaxErr interface {
	error
	Details() (Position, string, string)
}
