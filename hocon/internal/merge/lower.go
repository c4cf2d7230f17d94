package merge

import (
	"fmt"

	"go.jacobcolvin.com/hocon/internal/path"
	"go.jacobcolvin.com/hocon/internal/raw"
)

// IncludeResolver is invoked once per Inclusion encountered while
// lowering, synchronously, before the enclosing object field is
// committed (spec.md §4.6). It returns the already-parsed raw Object
// tree the include resolved to.
type IncludeResolver func(inc *raw.Inclusion) (*raw.Value, error)

// Lower converts a parsed raw Object into the merge tree, expanding
// dotted keys into nested single-field fragments and merging each field
// into an accumulator in source order (spec.md §4.7: "Each field in
// source order is lowered into a one-field fragment object, then merged
// into the running accumulator via the Replacement operator").
//
// Substitution paths are kept exactly as written: HOCON substitution
// targets are always absolute from the document root, so no path-prefix
// fixup is needed here (see DESIGN.md's note on this Open Question).
func Lower(root *raw.Value, resolveInclude IncludeResolver) (*Value, error) {
	if root.Kind != raw.KindObject {
		return nil, fmt.Errorf("lower: root must be an object, got %s", root.Kind)
	}

	return lowerObject(root, resolveInclude)
}

func lowerObject(v *raw.Value, resolveInclude IncludeResolver) (*Value, error) {
	acc := NewEmptyObject(v.Pos)

	for _, field := range v.Fields {
		var fragment *Value

		switch {
		case field.Inclusion != nil:
			resolved := field.Inclusion.Resolved
			if resolved == nil {
				var err error

				resolved, err = resolveInclude(field.Inclusion)
				if err != nil {
					if field.Inclusion.Required {
						return nil, err
					}

					resolved = raw.NewObject(field.Inclusion.Pos, nil)
				}
			}

			lowered, err := lowerObject(resolved, resolveInclude)
			if err != nil {
				return nil, err
			}

			fragment = lowered
		default:
			lv, err := lowerValue(field.Value, resolveInclude)
			if err != nil {
				return nil, err
			}

			fragment = wrapDottedKey(field.Key, lv)
		}

		merged, err := Replace(acc, fragment)
		if err != nil {
			return nil, err
		}

		acc = merged
	}

	return acc, nil
}

// wrapDottedKey builds a chain of single-field objects for a dotted key
// (spec.md §4.7: "a.b.c = v" lowers as {a: {b: {c: v}}}), innermost first.
func wrapDottedKey(keys []string, v *Value) *Value {
	cur := v
	for i := len(keys) - 1; i >= 0; i-- {
		f := NewFields()
		f.Set(keys[i], cur)
		cur = NewObject(v.Pos, f)
	}

	return cur
}

func lowerValue(v *raw.Value, resolveInclude IncludeResolver) (*Value, error) {
	switch v.Kind {
	case raw.KindNull:
		return NewNull(v.Pos), nil
	case raw.KindBool:
		return NewBool(v.Pos, v.Bool), nil
	case raw.KindNumber:
		return NewNumber(v.Pos, v.Num), nil
	case raw.KindString:
		return NewString(v.Pos, v.Str), nil
	case raw.KindArray:
		elems := make([]*Value, len(v.Elems))

		for i, e := range v.Elems {
			lv, err := lowerValue(e, resolveInclude)
			if err != nil {
				return nil, err
			}

			elems[i] = lv
		}

		return NewArray(v.Pos, elems), nil
	case raw.KindObject:
		return lowerObject(v, resolveInclude)
	case raw.KindSubstitution:
		return NewSubstitution(v.Pos, path.New(v.SubPath...), v.SubOptional), nil
	case raw.KindConcat:
		elems := make([]*Value, len(v.Elems))

		for i, e := range v.Elems {
			lv, err := lowerValue(e, resolveInclude)
			if err != nil {
				return nil, err
			}

			elems[i] = lv
		}

		return NewConcat(v.Pos, elems, v.HasSpace), nil
	case raw.KindAddAssign:
		inner, err := lowerValue(v.Elems[0], resolveInclude)
		if err != nil {
			return nil, err
		}

		return NewAddAssign(v.Pos, inner), nil
	default:
		return nil, fmt.Errorf("lower: unexpected value kind %s", v.Kind)
	}
}
