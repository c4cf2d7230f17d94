package merge

import (
	"errors"
	"fmt"

	"go.jacobcolvin.com/hocon/internal/path"
)

// Sentinel errors returned by Resolve, wrapped in a [ResolveError] naming
// the path being resolved. The public hocon package maps these onto its
// own exported sentinels in facade.go, keeping this package free of a
// dependency on its importer.
var (
	ErrSubstitutionNotFound = errors.New("substitution not found")
	ErrCycle                = errors.New("substitution cycle")
)

// ResolveError names the absolute path being resolved when Err occurred.
type ResolveError struct {
	Path string
	Err  error
}

func (e *ResolveError) Error() string { return fmt.Sprintf("resolving %q: %v", e.Path, e.Err) }
func (e *ResolveError) Unwrap() error { return e.Err }

// EnvLookup resolves an environment variable for substitution fallback
// (spec.md §4.9.4).
type EnvLookup func(name string) (string, bool)

type resolver struct {
	root *Value
	env  EnvLookup
	// selfOverrides maps a dotted path to the partially-combined value
	// visible to a substitution referencing that same path from within
	// its own DelayReplacement/Concat chain (spec.md's self-referential
	// append pattern: `p = [1]; p = ${p} [2]`).
	selfOverrides map[string]*Value
	// inProgress guards against a true cross-key cycle (a = ${b}, b =
	// ${a}) distinct from the self-reference case handled above.
	inProgress map[string]bool
}

// Resolve walks root, evaluating every Substitution, Concat, AddAssign,
// and DelayReplacement node to a concrete value, in place (mutating
// nodes via becomes so sibling references stay valid). env provides
// fallback lookups for substitutions with no matching tree path.
func Resolve(root *Value, env EnvLookup) (*Value, error) {
	r := &resolver{
		root:          root,
		env:           env,
		selfOverrides: make(map[string]*Value),
		inProgress:    make(map[string]bool),
	}

	return r.resolveNode(root, path.Path{})
}

func (r *resolver) resolveNode(v *Value, at path.Path) (*Value, error) {
	switch v.Kind {
	case KindNull, KindBool, KindNumber, KindString, KindNone:
		return v, nil
	case KindArray:
		return r.resolveArray(v, at)
	case KindObject:
		return r.resolveObject(v, at)
	case KindSubstitution:
		return r.resolveSubstitution(v, at, false)
	case KindConcat:
		return r.resolveConcatChain(v, at)
	case KindAddAssign:
		inner, err := r.resolveNode(v.Elems[0], at)
		if err != nil {
			return nil, err
		}

		return NewArray(v.Pos, []*Value{inner}), nil
	case KindDelayReplacement:
		return r.resolveDelayReplacement(v, at)
	default:
		return v, nil
	}
}

func (r *resolver) resolveArray(v *Value, at path.Path) (*Value, error) {
	out := make([]*Value, 0, len(v.Elems))

	for i, e := range v.Elems {
		resolved, err := r.resolveNode(e, at.Child(path.IndexKey(i)))
		if err != nil {
			return nil, err
		}

		if resolved.Kind == KindNone {
			continue
		}

		out = append(out, resolved)
	}

	result := NewArray(v.Pos, out)
	result.Merged = true

	return result, nil
}

func (r *resolver) resolveObject(v *Value, at path.Path) (*Value, error) {
	out := NewFields()

	for _, k := range v.Fields.Keys() {
		fv, _ := v.Fields.Get(k)

		resolved, err := r.resolveNode(fv, at.ChildString(k))
		if err != nil {
			return nil, err
		}

		if resolved.Kind == KindNone {
			continue
		}

		out.Set(k, resolved)
	}

	result := NewObject(v.Pos, out)
	result.Merged = true

	return result, nil
}

// resolveSubstitution resolves v to a concrete value. asOperand reports
// whether v is being resolved as a participant of a Concat/DelayReplacement
// chain rather than as a standalone field/element value: a missing
// optional substitution contributes [KindNone] (silently dropped by
// [Concat]/[Replace]) in the former case, versus a user-visible
// [KindNull] in the latter (spec.md §8 scenario 5: `${?MISSING}fallback`
// renders as "fallback", while a lone `x = ${?MISSING}` projects `null`).
func (r *resolver) resolveSubstitution(v *Value, at path.Path, asOperand bool) (*Value, error) {
	key := v.SubPath.String()

	if override, ok := r.selfOverrides[key]; ok {
		return override, nil
	}

	missingOptional := func() *Value {
		if asOperand {
			return NewNone(v.Pos)
		}

		return NewNull(v.Pos)
	}

	if v.SubPath.Equal(at) {
		if v.SubOptional {
			return missingOptional(), nil
		}

		return nil, &ResolveError{Path: at.String(), Err: ErrCycle}
	}

	if r.inProgress[key] {
		if v.SubOptional {
			return missingOptional(), nil
		}

		return nil, &ResolveError{Path: key, Err: ErrCycle}
	}

	target, found := lookup(r.root, v.SubPath)
	if !found {
		if r.env != nil {
			if s, ok := r.env(envKeyFor(v.SubPath)); ok {
				return NewString(v.Pos, s), nil
			}
		}

		if v.SubOptional {
			return missingOptional(), nil
		}

		return nil, &ResolveError{Path: v.SubPath.String(), Err: ErrSubstitutionNotFound}
	}

	r.inProgress[key] = true
	resolved, err := r.resolveNode(target, v.SubPath)
	delete(r.inProgress, key)

	if err != nil {
		return nil, err
	}

	target.becomes(resolved)

	return target.clone(), nil
}

// resolveOperand resolves v as a participant of a Concat/DelayReplacement
// chain rather than a standalone field/element value, so a Substitution
// leaf that turns out to be a missing optional contributes [KindNone]
// (dropped by [Concat]/[Replace]) instead of a literal [KindNull].
func (r *resolver) resolveOperand(v *Value, at path.Path) (*Value, error) {
	if v.Kind == KindSubstitution {
		return r.resolveSubstitution(v, at, true)
	}

	return r.resolveNode(v, at)
}

// resolveConcatChain evaluates a Concat's operands left-to-right per
// spec.md §4.9.6, tracking a self-reference override at at so an operand
// that substitutes at's own path sees the chain's running value instead
// of recursing into this same node.
func (r *resolver) resolveConcatChain(v *Value, at path.Path) (*Value, error) {
	restore := r.pushSelfOverride(at)
	defer restore()

	acc, err := r.resolveOperand(v.Elems[0], at)
	if err != nil {
		return nil, err
	}

	r.selfOverrides[at.String()] = acc

	for i := 1; i < len(v.Elems); i++ {
		resolved, err := r.resolveOperand(v.Elems[i], at)
		if err != nil {
			return nil, err
		}

		combined, err := Concat(acc, v.HasSpace[i-1], resolved)
		if err != nil {
			return nil, &ResolveError{Path: at.String(), Err: err}
		}

		acc = combined
		r.selfOverrides[at.String()] = acc
	}

	return acc, nil
}

// resolveDelayReplacement implements the identical chain algorithm using
// the Replacement operator (spec.md §4.9.8).
func (r *resolver) resolveDelayReplacement(v *Value, at path.Path) (*Value, error) {
	restore := r.pushSelfOverride(at)
	defer restore()

	acc, err := r.resolveOperand(v.Elems[0], at)
	if err != nil {
		return nil, err
	}

	r.selfOverrides[at.String()] = acc

	for i := 1; i < len(v.Elems); i++ {
		resolved, err := r.resolveOperand(v.Elems[i], at)
		if err != nil {
			return nil, err
		}

		combined, err := Replace(acc, resolved)
		if err != nil {
			return nil, &ResolveError{Path: at.String(), Err: err}
		}

		acc = combined
		r.selfOverrides[at.String()] = acc
	}

	return acc, nil
}

func (r *resolver) pushSelfOverride(at path.Path) func() {
	key := at.String()
	prev, had := r.selfOverrides[key]

	return func() {
		if had {
			r.selfOverrides[key] = prev
		} else {
			delete(r.selfOverrides, key)
		}
	}
}

// lookup walks root (an Object) by p's components, returning the node at
// that path if every intermediate segment is itself an Object (or Array,
// for an index component).
func lookup(root *Value, p path.Path) (*Value, bool) {
	cur := root

	for _, k := range p {
		switch {
		case k.IsIndex:
			if cur.Kind != KindArray || k.Index < 0 || k.Index >= len(cur.Elems) {
				return nil, false
			}

			cur = cur.Elems[k.Index]
		default:
			if cur.Kind != KindObject {
				return nil, false
			}

			next, ok := cur.Fields.Get(k.Str)
			if !ok {
				return nil, false
			}

			cur = next
		}
	}

	return cur, true
}

// envKeyFor renders a substitution path the way an environment variable
// fallback is looked up: joined with "." per spec.md §4.9.4 (HOCON itself
// only ever falls back for single-segment paths, but joining is harmless
// for longer ones since they will simply never match).
func envKeyFor(p path.Path) string {
	return p.String()
}
