package raw

// Parser drives the stack-driven raw-tree builder of spec.md §4.5.
// Object and array frames are realized as the Go call stack (parseObject
// / parseArray / parseConcatValue recurse into each other), with an
// explicit depth counter enforcing the configured nesting limit — the
// same frame structure spec.md describes (accumulated fields/elements
// plus a partial "next entry"/"next element"), just carried on the call
// stack instead of a hand-rolled slice of frames.
type Parser struct {
	r        Reader
	maxDepth int
	depth    int
}

// Parse lexes and parses src into a raw [Value] tree (a document root
// Object), performing no substitution/merge resolution. maxDepth bounds
// object/array nesting; pass 0 to use the default of 500.
func Parse(r Reader, maxDepth int) (*Value, error) {
	if maxDepth <= 0 {
		maxDepth = 500
	}

	p := &Parser{r: r, maxDepth: maxDepth}

	if err := dropWhitespaceAndComments(p.r); err != nil {
		return nil, err
	}

	pos := p.r.Position()

	b, err := p.r.Peek()
	if err != nil {
		// Empty document yields an empty object (spec.md §4.5).
		return NewObject(pos, nil), nil
	}

	if b == '[' {
		return nil, &posError{pos, "object", "array at document root"}
	}

	if b == '{' {
		return p.parseObject(true)
	}

	return p.parseObject(false)
}

func (p *Parser) enterFrame() error {
	p.depth++
	if p.depth > p.maxDepth {
		return &posError{p.r.Position(), "nesting within configured depth limit", "deeper nesting"}
	}

	return nil
}

func (p *Parser) exitFrame() {
	p.depth--
}

// parseObject parses an object frame. explicit is false for the
// synthetic document root when the source's first token is not '{'; an
// implicit root has no closing brace and ends at EOF.
func (p *Parser) parseObject(explicit bool) (*Value, error) {
	pos := p.r.Position()

	if explicit {
		if _, err := p.r.Next(); err != nil {
			return nil, err
		}
	}

	if err := p.enterFrame(); err != nil {
		return nil, err
	}
	defer p.exitFrame()

	var fields []ObjectField

	for {
		if err := dropEntrySeparators(p.r); err != nil {
			return nil, err
		}

		b, err := p.r.Peek()
		if err != nil {
			if explicit {
				return nil, &posError{p.r.Position(), "}", "end of input"}
			}

			break
		}

		if b == '}' {
			if !explicit {
				return nil, &posError{p.r.Position(), "field", "}"}
			}

			_, _ = p.r.Next()

			break
		}

		field, err := p.parseObjectField()
		if err != nil {
			return nil, err
		}

		fields = append(fields, field)
	}

	return NewObject(pos, fields), nil
}

func (p *Parser) parseArray() (*Value, error) {
	pos := p.r.Position()

	if _, err := p.r.Next(); err != nil {
		return nil, err
	}

	if err := p.enterFrame(); err != nil {
		return nil, err
	}
	defer p.exitFrame()

	var elems []*Value

	for {
		if err := dropEntrySeparators(p.r); err != nil {
			return nil, err
		}

		b, err := p.r.Peek()
		if err != nil {
			return nil, &posError{p.r.Position(), "]", "end of input"}
		}

		if b == ']' {
			_, _ = p.r.Next()

			break
		}

		v, err := p.parseConcatValue()
		if err != nil {
			return nil, err
		}

		elems = append(elems, v)
	}

	return NewArray(pos, elems), nil
}

// parseObjectField parses one entry of an object frame: either a bare
// `include` clause or a `key <sep> value` pair, where sep is one of
// `:`, `=`, `+=`, or juxtaposition before `{`.
func (p *Parser) parseObjectField() (ObjectField, error) {
	if p.atIncludeKeyword() {
		inc, err := p.parseInclusion()
		if err != nil {
			return ObjectField{}, err
		}

		return ObjectField{Inclusion: inc}, nil
	}

	keySegments, err := scanPathExpression(p.r)
	if err != nil {
		return ObjectField{}, err
	}

	if _, err := dropHorizontalWhitespace(p.r); err != nil {
		return ObjectField{}, err
	}

	addAssign, err := p.consumeSeparator()
	if err != nil {
		return ObjectField{}, err
	}

	if _, err := dropHorizontalWhitespace(p.r); err != nil {
		return ObjectField{}, err
	}

	value, err := p.parseConcatValue()
	if err != nil {
		return ObjectField{}, err
	}

	if addAssign {
		value = NewAddAssign(value.Pos, value)
	}

	return ObjectField{Key: keySegments, Value: value}, nil
}

// consumeSeparator consumes the field separator token (`:`, `=`, `+=`, or
// nothing before an implicit `{`) and reports whether it was `+=`.
func (p *Parser) consumeSeparator() (addAssign bool, err error) {
	b, err := p.r.Peek()
	if err != nil {
		return false, &posError{p.r.Position(), "':', '=', '+=', or '{'", "end of input"}
	}

	switch {
	case b == '{':
		return false, nil
	case b == ':' || b == '=':
		_, _ = p.r.Next()

		return false, nil
	case b == '+':
		two, err := p.r.PeekN(2)
		if err != nil || two[1] != '=' {
			return false, &posError{p.r.Position(), "'+='", "'+'"}
		}

		_, _ = p.r.Next()
		_, _ = p.r.Next()

		return true, nil
	default:
		return false, &posError{p.r.Position(), "':', '=', '+=', or '{'", string(b)}
	}
}

// parseConcatValue parses a value-concatenation run: one or more values
// juxtaposed on the same line, separated only by horizontal whitespace.
// One value collapses to that value; two or more become a Concat node
// recording whether whitespace separated each pair (the whitespace text
// itself is not kept).
func (p *Parser) parseConcatValue() (*Value, error) {
	pos := p.r.Position()

	var (
		values   []*Value
		hasSpace []bool
	)

	for {
		hadSpace, err := dropHorizontalWhitespace(p.r)
		if err != nil {
			return nil, err
		}

		b, err := p.r.Peek()
		if err != nil {
			break
		}

		if isValueTerminator(p.r, b) {
			break
		}

		if len(values) > 0 {
			hasSpace = append(hasSpace, hadSpace)
		}

		v, err := p.parseSingleValue()
		if err != nil {
			if len(values) == 0 {
				return nil, err
			}

			break
		}

		values = append(values, v)
	}

	switch len(values) {
	case 0:
		return nil, &posError{pos, "value", "nothing"}
	case 1:
		return values[0], nil
	default:
		return NewConcat(pos, values, hasSpace), nil
	}
}

// isValueTerminator reports whether b ends a value-concatenation run:
// a field/element separator, a closing bracket, or a comment.
func isValueTerminator(r Reader, b byte) bool {
	switch b {
	case ',', '\n', '}', ']', '#':
		return true
	case '/':
		if two, err := r.PeekN(2); err == nil && two[1] == '/' {
			return true
		}
	}

	return false
}

func (p *Parser) parseSingleValue() (*Value, error) {
	pos := p.r.Position()

	b, err := p.r.Peek()
	if err != nil {
		return nil, &posError{pos, "value", "end of input"}
	}

	switch b {
	case '{':
		return p.parseObject(true)
	case '[':
		return p.parseArray()
	case '"':
		return p.parseQuotedValue()
	case '$':
		return p.parseSubstitution()
	default:
		s, err := scanUnquoted(p.r)
		if err != nil {
			return nil, err
		}

		return promoteUnquoted(pos, s), nil
	}
}

func (p *Parser) parseQuotedValue() (*Value, error) {
	pos := p.r.Position()

	if three, err := p.r.PeekN(3); err == nil && three[1] == '"' && three[2] == '"' {
		for range 3 {
			if _, err := p.r.Next(); err != nil {
				return nil, err
			}
		}

		s, err := scanTripleQuoted(p.r)
		if err != nil {
			return nil, err
		}

		return NewString(pos, s, StringMultiline), nil
	}

	if _, err := p.r.Next(); err != nil {
		return nil, err
	}

	s, err := scanQuoted(p.r)
	if err != nil {
		return nil, err
	}

	return NewString(pos, s, StringQuoted), nil
}

func (p *Parser) parseSubstitution() (*Value, error) {
	pos := p.r.Position()

	if _, err := p.r.Next(); err != nil { // '$'
		return nil, err
	}

	b, err := p.r.Peek()
	if err != nil || b != '{' {
		return nil, &posError{p.r.Position(), "'{' after '$'", "other"}
	}

	_, _ = p.r.Next()

	optional := false

	if qb, err := p.r.Peek(); err == nil && qb == '?' {
		optional = true

		_, _ = p.r.Next()
	}

	segments, err := scanPathExpression(p.r)
	if err != nil {
		return nil, err
	}

	if _, err := dropHorizontalWhitespace(p.r); err != nil {
		return nil, err
	}

	cb, err := p.r.Peek()
	if err != nil || cb != '}' {
		return nil, &posError{p.r.Position(), "'}' closing substitution", "other"}
	}

	_, _ = p.r.Next()

	return NewSubstitution(pos, segments, optional), nil
}

// dropEntrySeparators consumes whitespace, comments, and commas, in any
// combination and any order, tolerating consecutive separators
// (spec.md §4.5: "consecutive separators are tolerated").
func dropEntrySeparators(r Reader) error {
	for {
		if err := dropWhitespaceAndComments(r); err != nil {
			return err
		}

		b, err := r.Peek()
		if err != nil || b != ',' {
			return nil
		}

		if _, err := r.Next(); err != nil {
			return err
		}
	}
}

// atIncludeKeyword reports whether the reader is positioned at the
// literal 7-byte word "include" at a word boundary (spec.md §4.5:
// "exactly the seven-byte word at word position").
func (p *Parser) atIncludeKeyword() bool {
	return matchesKeyword(p.r, "include")
}

// matchesKeyword reports whether the reader is positioned at word,
// followed by a word boundary (whitespace, EOF, or a forbidden-unquoted
// byte), without consuming anything.
func matchesKeyword(r Reader, word string) bool {
	buf, err := r.PeekN(len(word))
	if err != nil || string(buf) != word {
		return false
	}

	next, err := r.PeekN(len(word) + 1)
	if err != nil {
		return true // word runs to EOF
	}

	return isWordBoundaryByte(next[len(word)])
}

func isWordBoundaryByte(b byte) bool {
	if isForbiddenUnquotedByte(b) {
		return true
	}

	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	default:
		return false
	}
}

// parseInclusion parses an `include` clause: `include` then one of
// `"path"`, `file("...")`, `url("...")`, `classpath("...")`, optionally
// wrapped in `required(...)` (spec.md §6).
func (p *Parser) parseInclusion() (*Inclusion, error) {
	pos := p.r.Position()

	for range len("include") {
		if _, err := p.r.Next(); err != nil {
			return nil, err
		}
	}

	if err := dropWhitespace(p.r); err != nil {
		return nil, err
	}

	required := false

	if matchesKeyword(p.r, "required") {
		for range len("required") {
			if _, err := p.r.Next(); err != nil {
				return nil, err
			}
		}

		if err := dropWhitespace(p.r); err != nil {
			return nil, err
		}

		if err := p.expectByte('('); err != nil {
			return nil, err
		}

		if err := dropWhitespace(p.r); err != nil {
			return nil, err
		}

		required = true
	}

	loc, rawPath, err := p.parseInclusionTarget()
	if err != nil {
		return nil, err
	}

	if required {
		if err := dropWhitespace(p.r); err != nil {
			return nil, err
		}

		if err := p.expectByte(')'); err != nil {
			return nil, err
		}
	}

	return &Inclusion{Pos: pos, RawPath: rawPath, Required: required, Location: loc}, nil
}

func (p *Parser) parseInclusionTarget() (Location, string, error) {
	for _, kw := range []struct {
		word string
		loc  Location
	}{
		{"file", LocFile},
		{"url", LocURL},
		{"classpath", LocClasspath},
	} {
		if matchesKeyword(p.r, kw.word) {
			for range len(kw.word) {
				if _, err := p.r.Next(); err != nil {
					return 0, "", err
				}
			}

			if err := dropWhitespace(p.r); err != nil {
				return 0, "", err
			}

			if err := p.expectByte('('); err != nil {
				return 0, "", err
			}

			if err := dropWhitespace(p.r); err != nil {
				return 0, "", err
			}

			path, err := p.parseInclusionQuotedPath()
			if err != nil {
				return 0, "", err
			}

			if err := dropWhitespace(p.r); err != nil {
				return 0, "", err
			}

			if err := p.expectByte(')'); err != nil {
				return 0, "", err
			}

			return kw.loc, path, nil
		}
	}

	path, err := p.parseInclusionQuotedPath()

	return LocAuto, path, err
}

func (p *Parser) parseInclusionQuotedPath() (string, error) {
	b, err := p.r.Peek()
	if err != nil || b != '"' {
		return "", &posError{p.r.Position(), "quoted include path", "other"}
	}

	v, err := p.parseQuotedValue()
	if err != nil {
		return "", err
	}

	return v.Str, nil
}

func (p *Parser) expectByte(want byte) error {
	b, err := p.r.Peek()
	if err != nil || b != want {
		return &posError{p.r.Position(), "'" + string(want) + "'", "other"}
	}

	_, _ = p.r.Next()

	return nil
}
