// Package path implements the dotted key paths used throughout the HOCON
// pipeline: an owning [Path] built during lowering and substitution
// parsing, and a borrowing [Ref] (a parent link plus one key). The
// resolver traverses with [Path] values, allocating a new one per
// recursion step; it does not use [Ref].
package path

import "strings"

// Key is one component of a [Path]: either a literal string key (the
// common case) or an integer array index, produced only during resolved
// path expansion (spec.md §3).
type Key struct {
	Str     string
	Index   int
	IsIndex bool
}

// String formats a single key the way it appears in a dotted path.
func (k Key) String() string {
	if k.IsIndex {
		return "[" + itoa(k.Index) + "]"
	}

	return k.Str
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}

	neg := n < 0
	if neg {
		n = -n
	}

	var buf [20]byte

	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}

	if neg {
		i--
		buf[i] = '-'
	}

	return string(buf[i:])
}

// StringKey builds a single-component string [Key].
func StringKey(s string) Key { return Key{Str: s} }

// IndexKey builds a single-component integer [Key].
func IndexKey(i int) Key { return Key{Index: i, IsIndex: true} }

// Path is an owning, ordered sequence of [Key] components, the canonical
// absolute address of a value in the merge tree.
type Path []Key

// New builds a Path from literal string components.
func New(components ...string) Path {
	p := make(Path, len(components))
	for i, c := range components {
		p[i] = StringKey(c)
	}

	return p
}

// Child returns a new Path with key appended. p is not mutated.
func (p Path) Child(key Key) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = key

	return out
}

// ChildString is a convenience for Child(StringKey(s)).
func (p Path) ChildString(s string) Path {
	return p.Child(StringKey(s))
}

// Equal reports whether p and other name the same path.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}

	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}

	return true
}

// String renders p as a dot-joined path for error messages.
func (p Path) String() string {
	parts := make([]string, len(p))
	for i, k := range p {
		parts[i] = k.String()
	}

	return strings.Join(parts, ".")
}

// Ref is a borrowing view of an absolute path: a parent Ref plus one
// extra key, avoiding an allocation per recursion step during traversal.
// A nil *Ref denotes the root (empty path).
type Ref struct {
	parent *Ref
	key    Key
}

// RootRef returns the empty root reference.
func RootRef() *Ref { return nil }

// Child returns a new Ref extending r with key. r is not mutated.
func (r *Ref) Child(key Key) *Ref {
	return &Ref{parent: r, key: key}
}

// ChildString is a convenience for Child(StringKey(s)).
func (r *Ref) ChildString(s string) *Ref {
	return r.Child(StringKey(s))
}

// Path materializes r into an owning [Path], allocating once.
func (r *Ref) Path() Path {
	n := 0
	for c := r; c != nil; c = c.parent {
		n++
	}

	out := make(Path, n)

	i := n
	for c := r; c != nil; c = c.parent {
		i--
		out[i] = c.key
	}

	return out
}

// String renders r the same way Path.String does.
func (r *Ref) String() string {
	return r.Path().String()
}
