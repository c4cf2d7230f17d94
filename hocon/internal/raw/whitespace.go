package raw

import "unicode/utf8"

// peekRune decodes the rune at the current read position without
// consuming it, returning its byte width. Returns ErrEOF if no bytes
// remain.
func peekRune(r Reader) (rune, int, error) {
	b, err := r.Peek()
	if err != nil {
		return 0, 0, err
	}

	if b < utf8.RuneSelf {
		return rune(b), 1, nil
	}

	// Try progressively larger lookaheads; a multi-byte UTF-8 sequence
	// is at most 4 bytes.
	for n := 2; n <= utf8.UTFMax; n++ {
		buf, err := r.PeekN(n)
		if err != nil {
			break
		}

		ru, size := utf8.DecodeRune(buf)
		if ru != utf8.RuneError || size > 1 {
			return ru, size, nil
		}
	}

	return utf8.RuneError, 1, nil
}

// nextRune consumes and returns the rune at the current position.
func nextRune(r Reader) (rune, error) {
	ru, size, err := peekRune(r)
	if err != nil {
		return 0, err
	}

	for range size {
		if _, err := r.Next(); err != nil {
			return 0, err
		}
	}

	return ru, nil
}

// isWhitespace reports whether ru is HOCON whitespace: ASCII whitespace
// extended with U+001C..U+001F and the Unicode whitespace set named in
// spec.md §4.2.
func isWhitespace(ru rune) bool {
	switch ru {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	case 0x1C, 0x1D, 0x1E, 0x1F:
		return true
	case 0x0085, 0x00A0, 0x1680, 0x2028, 0x2029, 0x202F, 0x205F, 0x3000:
		return true
	}

	if ru >= 0x2000 && ru <= 0x200A {
		return true
	}

	return false
}

// isHorizontalWhitespace reports whether ru is whitespace other than '\n'.
func isHorizontalWhitespace(ru rune) bool {
	return ru != '\n' && isWhitespace(ru)
}

// dropWhitespace consumes runs of any whitespace (including newlines).
func dropWhitespace(r Reader) error {
	for {
		ru, _, err := peekRune(r)
		if err != nil || !isWhitespace(ru) {
			return nil
		}

		if _, err := nextRune(r); err != nil {
			return err
		}
	}
}

// dropHorizontalWhitespace consumes a run of horizontal whitespace only,
// stopping before a newline.
func dropHorizontalWhitespace(r Reader) (consumed bool, err error) {
	for {
		ru, _, err := peekRune(r)
		if err != nil || !isHorizontalWhitespace(ru) {
			return consumed, nil
		}

		if _, err := nextRune(r); err != nil {
			return consumed, err
		}

		consumed = true
	}
}

// dropWhitespaceAndComments consumes whitespace and `#`/`//` comments
// (running to end of line), repeating until neither applies.
func dropWhitespaceAndComments(r Reader) error {
	for {
		if err := dropWhitespace(r); err != nil {
			return err
		}

		b, err := r.Peek()
		if err != nil {
			return nil
		}

		isComment := false

		switch b {
		case '#':
			isComment = true
		case '/':
			if two, err := r.PeekN(2); err == nil && two[1] == '/' {
				isComment = true
			}
		}

		if !isComment {
			return nil
		}

		if err := skipLine(r); err != nil {
			return err
		}
	}
}

// skipLine consumes bytes up to and including the next '\n', or to EOF.
func skipLine(r Reader) error {
	for {
		b, err := r.Peek()
		if err != nil {
			return nil
		}

		if _, err := r.Next(); err != nil {
			return err
		}

		if b == '\n' {
			return nil
		}
	}
}
