// Package hocon implements a HOCON (Human-Optimized Configuration Object
// Notation) parser and resolver: Parse produces a lossless raw tree,
// ParseString and Load run the full pipeline
// (substitutions, concatenation, merges, includes) and project the result
// to a plain [Value] tree.
package hocon

import "fmt"

// Type identifies the runtime kind of a resolved [Value].
type Type int

// Possible resolved value kinds. A fully resolved HOCON document contains
// only these; Substitution, Concat, AddAssign, and DelayReplacement never
// survive to a [Value].
const (
	Null Type = iota
	Bool
	Number
	String
	Array
	Object
	numTypes
)

var typeStrings = [numTypes]string{
	"null", "bool", "number", "string", "array", "object",
}

func (t Type) String() string {
	if t < 0 || t >= numTypes {
		return "<unknown>"
	}

	return typeStrings[t]
}

// Value is a resolved, plain configuration value: Object, Array, Bool,
// Null, String, or Number. It owns its contents outright and carries no
// back-references into the merge tree it was projected from.
type Value struct {
	typ      Type
	boolVal  bool
	numVal   NumberValue
	strVal   string
	arrVal   []*Value
	objVal   *Fields
}

// NumberValue is a HOCON number, discriminated between integer and
// floating-point representations the way the parser recognized them.
type NumberValue struct {
	IsInt bool
	Int   int64
	Float float64
}

// Float64 returns the number widened to a float64 regardless of kind.
func (n NumberValue) Float64() float64 {
	if n.IsInt {
		return float64(n.Int)
	}

	return n.Float
}

func (n NumberValue) String() string {
	if n.IsInt {
		return fmt.Sprintf("%d", n.Int)
	}

	return fmt.Sprintf("%g", n.Float)
}

// Fields is an insertion-ordered object: iteration order matches the order
// keys were first assigned during merge, and Get is a map lookup.
type Fields struct {
	keys  []string
	index map[string]*Value
}

// NewFields builds an empty, insertion-ordered [Fields].
func NewFields() *Fields {
	return &Fields{index: make(map[string]*Value)}
}

// Set assigns key to v, appending key to the iteration order on first
// assignment and leaving existing order unchanged on overwrite.
func (f *Fields) Set(key string, v *Value) {
	if _, ok := f.index[key]; !ok {
		f.keys = append(f.keys, key)
	}

	f.index[key] = v
}

// Get looks up key, reporting whether it was present.
func (f *Fields) Get(key string) (*Value, bool) {
	v, ok := f.index[key]

	return v, ok
}

// Keys returns field names in insertion order. The returned slice must not
// be mutated.
func (f *Fields) Keys() []string {
	return f.keys
}

// Len returns the number of fields.
func (f *Fields) Len() int {
	return len(f.keys)
}

func typeNull() *Value { return &Value{typ: Null} }

// NewBool wraps a bool as a [Value].
func NewBool(b bool) *Value { return &Value{typ: Bool, boolVal: b} }

// NewString wraps a string as a [Value].
func NewString(s string) *Value { return &Value{typ: String, strVal: s} }

// NewInt wraps an int64 as an integer-typed [Value].
func NewInt(i int64) *Value { return &Value{typ: Number, numVal: NumberValue{IsInt: true, Int: i}} }

// NewFloat wraps a float64 as a floating-point-typed [Value].
func NewFloat(f float64) *Value { return &Value{typ: Number, numVal: NumberValue{Float: f}} }

// NewArray wraps a slice of values as an array-typed [Value]. elems is
// retained, not copied.
func NewArray(elems []*Value) *Value { return &Value{typ: Array, arrVal: elems} }

// NewObject wraps [Fields] as an object-typed [Value]. fields is retained,
// not copied.
func NewObject(fields *Fields) *Value { return &Value{typ: Object, objVal: fields} }

// Type reports v's runtime kind.
func (v *Value) Type() Type {
	if v == nil {
		return Null
	}

	return v.typ
}

// AsBool extracts a bool. Returns ErrType if v is not a Bool.
func (v *Value) AsBool() (bool, error) {
	if v.Type() != Bool {
		return false, fmt.Errorf("%w: expected bool, got %s", ErrType, v.Type())
	}

	return v.boolVal, nil
}

// AsString extracts a string. Returns ErrType if v is not a String.
func (v *Value) AsString() (string, error) {
	if v.Type() != String {
		return "", fmt.Errorf("%w: expected string, got %s", ErrType, v.Type())
	}

	return v.strVal, nil
}

// AsNumber extracts a [NumberValue]. Returns ErrType if v is not a Number.
func (v *Value) AsNumber() (NumberValue, error) {
	if v.Type() != Number {
		return NumberValue{}, fmt.Errorf("%w: expected number, got %s", ErrType, v.Type())
	}

	return v.numVal, nil
}

// AsArray extracts the element slice. Returns ErrType if v is not an Array.
func (v *Value) AsArray() ([]*Value, error) {
	if v.Type() != Array {
		return nil, fmt.Errorf("%w: expected array, got %s", ErrType, v.Type())
	}

	return v.arrVal, nil
}

// AsObject extracts the [Fields]. Returns ErrType if v is not an Object.
func (v *Value) AsObject() (*Fields, error) {
	if v.Type() != Object {
		return nil, fmt.Errorf("%w: expected object, got %s", ErrType, v.Type())
	}

	return v.objVal, nil
}

// ToAny converts v into a plain Go value (nil, bool, string, float64/int64,
// []any, or map[string]any) suitable for encoding/json or further
// programmatic inspection.
func (v *Value) ToAny() any {
	switch v.Type() {
	case Null:
		return nil
	case Bool:
		b, _ := v.AsBool()

		return b
	case Number:
		n, _ := v.AsNumber()
		if n.IsInt {
			return n.Int
		}

		return n.Float
	case String:
		s, _ := v.AsString()

		return s
	case Array:
		elems, _ := v.AsArray()
		out := make([]any, len(elems))

		for i, e := range elems {
			out[i] = e.ToAny()
		}

		return out
	case Object:
		fields, _ := v.AsObject()
		out := make(map[string]any, fields.Len())

		for _, k := range fields.Keys() {
			fv, _ := fields.Get(k)
			out[k] = fv.ToAny()
		}

		return out
	default:
		return nil
	}
}

// GetPath looks up a dotted path of literal (non-path-expression) key
// segments starting from v, which must be an Object at each intermediate
// step. Returns (nil, false) if any segment is absent or an intermediate
// value is not an Object.
func (v *Value) GetPath(segments ...string) (*Value, bool) {
	cur := v

	for _, seg := range segments {
		obj, err := cur.AsObject()
		if err != nil {
			return nil, false
		}

		next, ok := obj.Get(seg)
		if !ok {
			return nil, false
		}

		cur = next
	}

	return cur, true
}
