package hocon

import (
	"errors"
	"fmt"
	"io"
	"os"

	"go.jacobcolvin.com/hocon/internal/include"
	"go.jacobcolvin.com/hocon/internal/merge"
	"go.jacobcolvin.com/hocon/internal/raw"
)

// Parse reads r as HOCON and returns the lossless raw syntax tree,
// performing no substitution, merge, or include resolution (spec.md
// §4.5). Most callers want [Load] or [ParseString] instead.
func Parse(r io.Reader, opts *Options) (*raw.Value, error) {
	if opts == nil {
		opts = NewOptions()
	}

	root, err := raw.Parse(raw.NewStreamReader(r), opts.MaxParseDepth)
	if err != nil {
		return nil, toSyntaxError(err)
	}

	return root, nil
}

// ParseString runs the full resolving pipeline over an in-memory HOCON
// document: parse, resolve includes, merge, resolve substitutions, and
// project to a plain [Value] tree.
func ParseString(s string, opts ...Option) (*Value, error) {
	return parseAndResolve(raw.NewSliceReader([]byte(s)), "", NewOptions(opts...))
}

// Load reads and resolves the HOCON document at path, with includes
// resolved relative to its containing directory.
func Load(filePath string, opts ...Option) (*Value, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInclusionRead, err)
	}

	return parseAndResolve(raw.NewSliceReader(data), dirOf(filePath), NewOptions(opts...))
}

// FromMap builds an already-resolved [Value] tree directly from a Go
// map/slice/scalar structure, skipping parsing entirely. Supported types
// are nil, bool, string, int, int64, float64, []any, and map[string]any;
// any other type (including other integer and float widths) is an error.
func FromMap(v any) (*Value, error) {
	return fromAny(v)
}

func parseAndResolve(r raw.Reader, baseDir string, opts *Options) (*Value, error) {
	root, err := raw.Parse(r, opts.MaxParseDepth)
	if err != nil {
		return nil, toSyntaxError(err)
	}

	loader := include.New(include.Options{
		MaxIncludeDepth: opts.MaxIncludeDepth,
		MaxParseDepth:   opts.MaxParseDepth,
		Classpath:       opts.Classpath,
		SyntaxOrder:     toIncludeSyntaxOrder(opts.preferredSyntaxOrder()),
		AllowOverride:   opts.AllowOverride,
		BaseDir:         baseDir,
	})

	lowered, err := merge.Lower(root, loader.Resolve)
	if err != nil {
		return nil, toMergeError(err)
	}

	var env merge.EnvLookup
	if opts.UseSystemEnvironment {
		env = opts.lookupEnv
	}

	resolved, err := merge.Resolve(lowered, env)
	if err != nil {
		return nil, toMergeError(err)
	}

	if err := merge.Finalize(resolved); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResolveIncomplete, err)
	}

	return project(resolved), nil
}

// project converts a fully-resolved merge.Value into the public,
// back-reference-free [Value] tree.
func project(v *merge.Value) *Value {
	switch v.Kind {
	case merge.KindNull:
		return typeNull()
	case merge.KindBool:
		return NewBool(v.Bool)
	case merge.KindNumber:
		if v.Num.IsInt {
			return NewInt(v.Num.Int)
		}

		return NewFloat(v.Num.Float)
	case merge.KindString:
		return NewString(v.Str)
	case merge.KindArray:
		elems := make([]*Value, len(v.Elems))
		for i, e := range v.Elems {
			elems[i] = project(e)
		}

		return NewArray(elems)
	case merge.KindObject:
		fields := NewFields()
		for _, k := range v.Fields.Keys() {
			fv, _ := v.Fields.Get(k)
			fields.Set(k, project(fv))
		}

		return NewObject(fields)
	default:
		return typeNull()
	}
}

func fromAny(v any) (*Value, error) {
	switch val := v.(type) {
	case nil:
		return typeNull(), nil
	case bool:
		return NewBool(val), nil
	case string:
		return NewString(val), nil
	case int:
		return NewInt(int64(val)), nil
	case int64:
		return NewInt(val), nil
	case float64:
		return NewFloat(val), nil
	case []any:
		elems := make([]*Value, len(val))

		for i, e := range val {
			ev, err := fromAny(e)
			if err != nil {
				return nil, err
			}

			elems[i] = ev
		}

		return NewArray(elems), nil
	case map[string]any:
		fields := NewFields()

		for k, fv := range val {
			pv, err := fromAny(fv)
			if err != nil {
				return nil, err
			}

			fields.Set(k, pv)
		}

		return NewObject(fields), nil
	default:
		return nil, fmt.Errorf("%w: unsupported Go type %T", ErrType, v)
	}
}

func dirOf(filePath string) string {
	for i := len(filePath) - 1; i >= 0; i-- {
		if filePath[i] == '/' {
			return filePath[:i]
		}
	}

	return "."
}

func toIncludeSyntaxOrder(order []Syntax) []include.Syntax {
	out := make([]include.Syntax, len(order))
	for i, s := range order {
		out[i] = include.Syntax(s)
	}

	return out
}

func toSyntaxError(err error) error {
	if se, ok := err.(raw.SyntaxErr); ok {
		pos, expected, found := se.Details()

		return &SyntaxError{
			Pos:      Position{Line: pos.Line, Column: pos.Column},
			Expected: expected,
			Found:    found,
			Err:      err,
		}
	}

	return fmt.Errorf("%w: %w", ErrSyntax, err)
}

func toMergeError(err error) error {
	switch {
	case errors.Is(err, include.ErrCycle):
		return &IncludeError{Err: fmt.Errorf("%w: %w", ErrInclusionCycle, err)}
	case errors.Is(err, include.ErrDepthExceed):
		return &IncludeError{Err: fmt.Errorf("%w: %w", ErrInclusionDepthExceeded, err)}
	case errors.Is(err, include.ErrNotFound):
		return &IncludeError{Err: fmt.Errorf("%w: %w", ErrInclusionNotFound, err)}
	case errors.Is(err, include.ErrRead):
		return &IncludeError{Err: fmt.Errorf("%w: %w", ErrInclusionRead, err)}
	}

	var re *merge.ResolveError
	if errors.As(err, &re) {
		wrapped := ErrResolveIncomplete

		switch {
		case errors.Is(re.Err, merge.ErrSubstitutionNotFound):
			wrapped = ErrSubstitutionNotFound
		case errors.Is(re.Err, merge.ErrCycle):
			wrapped = ErrCycleSubstitution
		}

		return &ResolveError{Path: re.Path, Err: fmt.Errorf("%w: %w", wrapped, re.Err)}
	}

	return fmt.Errorf("%w: %w", ErrTypeMismatch, err)
}
