// Package document implements the typed-value tree that represents one
// dossier record, and the path codec used to read and write nodes inside it.
package document

import (
	"strconv"
)

// =============================================================================
// Value Kinds
// =============================================================================

// Kind identifies the single type a Value carries. Every node in a tree
// carries exactly one kind; the zero Kind marks an uninitialized Value.
type Kind int

const (
	// KindInvalid is the kind of the zero Value.
	KindInvalid Kind = iota

	// KindString is a UTF-8 string scalar.
	KindString

	// KindInteger is a 64-bit signed integer scalar.
	KindInteger

	// KindDouble is a 64-bit float scalar.
	KindDouble

	// KindBoolean is a boolean scalar.
	KindBoolean

	// KindMap is an unordered field-name to value mapping.
	KindMap

	// KindList is an ordered sequence of values.
	KindList
)

var kindNames = map[Kind]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindInteger: "integer",
	KindDouble:  "double",
	KindBoolean: "boolean",
	KindMap:     "map",
	KindList:    "list",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// =============================================================================
// Value
// =============================================================================

// Value is a tagged union over the six kinds. Values are cheap to copy;
// map and list payloads are shared by reference, so callers that need an
// independent tree must use Clone.
type Value struct {
	kind   Kind
	str    string
	num    int64
	dbl    float64
	truth  bool
	fields map[string]Value
	items  []Value
}

// String wraps a string scalar.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Integer wraps an int64 scalar.
func Integer(n int64) Value {
	return Value{kind: KindInteger, num: n}
}

// Double wraps a float64 scalar.
func Double(f float64) Value {
	return Value{kind: KindDouble, dbl: f}
}

// Boolean wraps a bool scalar.
func Boolean(b bool) Value {
	return Value{kind: KindBoolean, truth: b}
}

// Map wraps a field mapping. A nil argument produces an empty map value.
func Map(fields map[string]Value) Value {
	if fields == nil {
		fields = make(map[string]Value)
	}
	return Value{kind: KindMap, fields: fields}
}

// List wraps an ordered sequence. A nil argument produces an empty list value.
func List(items []Value) Value {
	if items == nil {
		items = []Value{}
	}
	return Value{kind: KindList, items: items}
}

// Kind returns the value's kind tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether the value carries a kind at all.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

// AsString returns the string payload when the kind is KindString.
func (v Value) AsString() (string, bool) {
	return v.str, v.kind == KindString
}

// AsInteger returns the integer payload when the kind is KindInteger.
func (v Value) AsInteger() (int64, bool) {
	return v.num, v.kind == KindInteger
}

// AsDouble returns the float payload when the kind is KindDouble.
func (v Value) AsDouble() (float64, bool) {
	return v.dbl, v.kind == KindDouble
}

// AsBoolean returns the bool payload when the kind is KindBoolean.
func (v Value) AsBoolean() (bool, bool) {
	return v.truth, v.kind == KindBoolean
}

// AsMap returns the field mapping when the kind is KindMap. The returned
// map is the live payload, not a copy.
func (v Value) AsMap() (map[string]Value, bool) {
	if v.kind != KindMap {
		return nil, false
	}
	return v.fields, true
}

// AsList returns the item slice when the kind is KindList. The returned
// slice is the live payload, not a copy.
func (v Value) AsList() ([]Value, bool) {
	if v.kind != KindList {
		return nil, false
	}
	return v.items, true
}

// Display renders any scalar as text for presentation. Containers and
// invalid values render as the empty string.
func (v Value) Display() string {
	switch v.kind {
	case KindString:
		return v.str
	case KindInteger:
		return strconv.FormatInt(v.num, 10)
	case KindDouble:
		return strconv.FormatFloat(v.dbl, 'f', -1, 64)
	case KindBoolean:
		return strconv.FormatBool(v.truth)
	default:
		return ""
	}
}

// Equal reports deep equality of two values, including kind tags.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindString:
		return a.str == b.str
	case KindInteger:
		return a.num == b.num
	case KindDouble:
		return a.dbl == b.dbl
	case KindBoolean:
		return a.truth == b.truth
	case KindMap:
		if len(a.fields) != len(b.fields) {
			return false
		}
		for name, av := range a.fields {
			bv, ok := b.fields[name]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	case KindList:
		if len(a.items) != len(b.items) {
			return false
		}
		for i := range a.items {
			if !Equal(a.items[i], b.items[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// Clone returns a deep copy of the value. Scalars copy by value;
// containers are rebuilt recursively.
func Clone(v Value) Value {
	switch v.kind {
	case KindMap:
		fields := make(map[string]Value, len(v.fields))
		for name, child := range v.fields {
			fields[name] = Clone(child)
		}
		return Value{kind: KindMap, fields: fields}
	case KindList:
		items := make([]Value, len(v.items))
		for i, child := range v.items {
			items[i] = Clone(child)
		}
		return Value{kind: KindList, items: items}
	default:
		return v
	}
}

// =============================================================================
// Document
// =============================================================================

// Document is the map value at the root of one record's tree.
type Document map[string]Value

// NewDocument returns an empty document.
func NewDocument() Document {
	return make(Document)
}

// Root returns the document as a map value.
func (d Document) Root() Value {
	return Value{kind: KindMap, fields: d}
}

// CloneDocument returns a deep copy of the document.
func CloneDocument(d Document) Document {
	out := make(Document, len(d))
	for name, v := range d {
		out[name] = Clone(v)
	}
	return out
}
