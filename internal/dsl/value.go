package dsl

import (
	"fmt"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Kind is the structural type of a parsed value.
type Kind int

const (
	KindRecords Kind = iota
	KindFlags
	KindInt
	KindString
	KindPath
	KindBytes
)

func (k Kind) String() string {
	switch k {
	case KindRecords:
		return "record"
	case KindFlags:
		return "flags"
	case KindInt:
		return "integer literal"
	case KindString:
		return "string literal"
	case KindPath:
		return "path"
	case KindBytes:
		return "byte list"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Path is a symbolic reference such as `handlers.ReadTemp` or `consts::TEMP_LEN`.
type Path struct {
	Segments []string
	Text     string // as written
}

func (p Path) String() string {
	return p.Text
}

// GoExpr renders the path as a Go selector expression.
func (p Path) GoExpr() string {
	return strings.Join(p.Segments, ".")
}

// IsSingle reports whether the path is a bare identifier.
func (p Path) IsSingle() bool {
	return len(p.Segments) == 1
}

// Flags is a de-duplicated, declaration-ordered set of identifiers.
type Flags []string

func (f Flags) String() string {
	return "[" + strings.Join(f, ", ") + "]"
}

// Contains reports whether name is in the set.
func (f Flags) Contains(name string) bool {
	for _, n := range f {
		if n == name {
			return true
		}
	}
	return false
}

// Value is one parsed right-hand side. Only the field matching Kind is set.
type Value struct {
	Pos     Pos
	Kind    Kind
	Records *Records
	Flags   Flags
	Int     uint64
	Str     string
	Path    Path
	Bytes   []byte
	Raw     string // literal text for integers
}

// Describe returns a short human-readable form used in error messages.
func (v Value) Describe() string {
	switch v.Kind {
	case KindInt:
		return v.Raw
	case KindString:
		return fmt.Sprintf("%q", v.Str)
	case KindPath:
		return v.Path.Text
	case KindFlags:
		return v.Flags.String()
	case KindBytes:
		return fmt.Sprintf("% x", v.Bytes)
	default:
		return v.Kind.String()
	}
}

// Field is a `key: value` pair inside a record.
type Field struct {
	Key    string
	KeyPos Pos
	Value  Value
}

// Records is a brace-delimited, insertion-ordered set of fields.
type Records struct {
	Pos    Pos
	fields *orderedmap.OrderedMap[string, *Field]
}

// NewRecords returns an empty record set anchored at pos.
func NewRecords(pos Pos) *Records {
	return &Records{Pos: pos, fields: orderedmap.New[string, *Field]()}
}

// Add inserts a field. Duplicate keys are rejected.
func (r *Records) Add(f *Field) error {
	if prev, ok := r.fields.Get(f.Key); ok {
		return Errorf(f.KeyPos, ErrSyntax, "duplicate key `%s` (first defined at %s)", f.Key, prev.KeyPos)
	}
	r.fields.Set(f.Key, f)
	return nil
}

// Get returns the field stored under key.
func (r *Records) Get(key string) (*Field, bool) {
	return r.fields.Get(key)
}

// Len returns the number of fields.
func (r *Records) Len() int {
	return r.fields.Len()
}

// Fields returns the fields in declaration order.
func (r *Records) Fields() []*Field {
	out := make([]*Field, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Value)
	}
	return out
}

// Keys returns the field keys in declaration order.
func (r *Records) Keys() []string {
	out := make([]string, 0, r.fields.Len())
	for pair := r.fields.Oldest(); pair != nil; pair = pair.Next() {
		out = append(out, pair.Key)
	}
	return out
}
