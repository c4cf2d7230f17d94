// Package merge implements the second phase of spec.md's pipeline: it
// lowers a raw.Value tree into a MergeValue tree (dotted-key expansion;
// substitution paths are kept as written), evaluates the merge engine's
// replacement and concatenation operators, resolves substitutions, and
// checks that the result holds only Object/Array/Bool/Null/String/Number
// nodes. Projection to the public value type is done by the hocon package.
package merge

import (
	"go.jacobcolvin.com/hocon/internal/path"
	"go.jacobcolvin.com/hocon/internal/raw"
)

// Kind discriminates the variants of a MergeValue (spec.md §3's
// "MergeValue extends RawValue semantically").
type Kind int

const (
	KindNull Kind = iota
	// KindNone represents "absent left side" during AddAssign expansion,
	// distinct from KindNull (spec.md §3, §9: "Do NOT conflate None with
	// Null — Null is a user-visible value").
	KindNone
	KindBool
	KindNumber
	KindString
	KindArray
	KindObject
	KindSubstitution
	KindConcat
	KindAddAssign
	// KindDelayReplacement is an ordered deque of participants whose
	// final merge depends on at least one unresolved substitution.
	KindDelayReplacement
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindNone:
		return "none"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindSubstitution:
		return "substitution"
	case KindConcat:
		return "concat"
	case KindAddAssign:
		return "add-assign"
	case KindDelayReplacement:
		return "delay-replacement"
	default:
		return "unknown"
	}
}

// Value is one node of the merge tree. Every node is a fresh allocation;
// in-place rewriting during resolution (spec.md §9's "interior-mutable
// graph") is done by overwriting the fields of an existing *Value (see
// becomes), which keeps pointer identity stable for whatever slice or
// Fields entry refers to it without requiring parent back-pointers.
type Value struct {
	Kind Kind
	Pos  raw.Position

	Bool bool
	Num  raw.Number
	Str  string

	// KindArray: elements. KindConcat: operands (HasSpace[i] true if
	// source whitespace separated operand i and i+1). KindAddAssign:
	// Elems[0] is the wrapped value. KindDelayReplacement: the ordered,
	// flattened deque of participants.
	Elems    []*Value
	HasSpace []bool

	// KindArray / KindObject merge tag: true once every descendant is
	// itself fully resolved (spec.md §4.8's monotone "Merged" flag).
	Merged bool

	// KindObject
	Fields *Fields

	// KindSubstitution
	SubPath     path.Path
	SubOptional bool
}

// becomes overwrites v's content with other's, preserving v's pointer
// identity. other is assumed to be an otherwise-unreferenced scratch
// value built by the caller.
func (v *Value) becomes(other *Value) {
	*v = *other
}

// clone makes a shallow structural copy of v, used when a substitution
// target's resolved value is copied into the substitution site (spec.md
// §4.9.5: "clone its current value into v").
func (v *Value) clone() *Value {
	cp := *v
	cp.Elems = append([]*Value(nil), v.Elems...)
	cp.HasSpace = append([]bool(nil), v.HasSpace...)

	if v.Fields != nil {
		cp.Fields = v.Fields.clone()
	}

	return &cp
}

// isScalar reports whether v is a leaf value for concatenation purposes:
// Null, Bool, Number, or String.
func (v *Value) isScalar() bool {
	switch v.Kind {
	case KindNull, KindBool, KindNumber, KindString:
		return true
	default:
		return false
	}
}

// isFullyResolved reports whether v (recursively) contains no
// Substitution, Concat, AddAssign, or DelayReplacement node — the
// condition finalization requires of the whole tree (spec.md §4.10).
func (v *Value) isFullyResolved() bool {
	switch v.Kind {
	case KindSubstitution, KindConcat, KindAddAssign, KindDelayReplacement, KindNone:
		return false
	case KindArray:
		for _, e := range v.Elems {
			if !e.isFullyResolved() {
				return false
			}
		}

		return true
	case KindObject:
		for _, k := range v.Fields.Keys() {
			f, _ := v.Fields.Get(k)
			if !f.isFullyResolved() {
				return false
			}
		}

		return true
	default:
		return true
	}
}

// Fields is an insertion-ordered object used by the merge tree.
type Fields struct {
	keys  []string
	index map[string]*Value
}

// NewFields builds an empty, insertion-ordered [Fields].
func NewFields() *Fields {
	return &Fields{index: make(map[string]*Value)}
}

// Set assigns key to v, appending to iteration order on first
// assignment. Overwriting an existing key does not move its position
// (spec.md §5: "field insertion order in the source is the canonical
// order for object iteration").
func (f *Fields) Set(key string, v *Value) {
	if _, ok := f.index[key]; !ok {
		f.keys = append(f.keys, key)
	}

	f.index[key] = v
}

func (f *Fields) Get(key string) (*Value, bool) {
	v, ok := f.index[key]

	return v, ok
}

func (f *Fields) Keys() []string {
	return f.keys
}

func (f *Fields) Len() int {
	return len(f.keys)
}

func (f *Fields) clone() *Fields {
	cp := NewFields()
	for _, k := range f.keys {
		v, _ := f.Get(k)
		cp.Set(k, v.clone())
	}

	return cp
}

// Constructors for scratch values built by the engine and lowering pass.

func NewNull(pos raw.Position) *Value { return &Value{Kind: KindNull, Pos: pos} }

func NewNone(pos raw.Position) *Value { return &Value{Kind: KindNone, Pos: pos} }

func NewBool(pos raw.Position, b bool) *Value { return &Value{Kind: KindBool, Pos: pos, Bool: b} }

func NewNumber(pos raw.Position, n raw.Number) *Value {
	return &Value{Kind: KindNumber, Pos: pos, Num: n}
}

func NewString(pos raw.Position, s string) *Value {
	return &Value{Kind: KindString, Pos: pos, Str: s}
}

func NewArray(pos raw.Position, elems []*Value) *Value {
	return &Value{Kind: KindArray, Pos: pos, Elems: elems, Merged: allMerged(elems)}
}

func NewObject(pos raw.Position, fields *Fields) *Value {
	return &Value{Kind: KindObject, Pos: pos, Fields: fields, Merged: fieldsMerged(fields)}
}

func NewEmptyObject(pos raw.Position) *Value {
	return NewObject(pos, NewFields())
}

func NewConcat(pos raw.Position, elems []*Value, hasSpace []bool) *Value {
	return &Value{Kind: KindConcat, Pos: pos, Elems: elems, HasSpace: hasSpace}
}

func NewAddAssign(pos raw.Position, v *Value) *Value {
	return &Value{Kind: KindAddAssign, Pos: pos, Elems: []*Value{v}}
}

func NewSubstitution(pos raw.Position, p path.Path, optional bool) *Value {
	return &Value{Kind: KindSubstitution, Pos: pos, SubPath: p, SubOptional: optional}
}

func allMerged(elems []*Value) bool {
	for _, e := range elems {
		if !e.isFullyResolved() || (e.Kind == KindObject && !e.Merged) || (e.Kind == KindArray && !e.Merged) {
			return false
		}
	}

	return true
}

func fieldsMerged(f *Fields) bool {
	for _, k := range f.Keys() {
		v, _ := f.Get(k)
		if !v.isFullyResolved() || (v.Kind == KindObject && !v.Merged) || (v.Kind == KindArray && !v.Merged) {
			return false
		}
	}

	return true
}
