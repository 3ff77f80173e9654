package document

import (
	"errors"
	"fmt"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrEmptyPath indicates an operation was given a path with no segments.
	ErrEmptyPath = errors.New("path has no segments")

	// ErrTypeMismatch indicates a traversal hit a non-map node where a map
	// was required. This is a caller contract violation, not a data error.
	ErrTypeMismatch = errors.New("path traversal hit a non-map node")

	// ErrIndexOutOfRange indicates a list mutation with an index outside
	// the list's current bounds.
	ErrIndexOutOfRange = errors.New("list index out of range")
)

// =============================================================================
// Reads
// =============================================================================

// Get descends the path one segment at a time and returns the addressed
// value. A missing or non-map intermediate yields (zero, false) rather
// than an error; callers supply their own domain default.
func Get(doc Document, path Path) (Value, bool) {
	if path.IsEmpty() {
		return Value{}, false
	}

	fields := map[string]Value(doc)
	for i, segment := range path {
		v, ok := fields[segment]
		if !ok {
			return Value{}, false
		}
		if i == len(path)-1 {
			return v, true
		}
		fields, ok = v.AsMap()
		if !ok {
			return Value{}, false
		}
	}
	return Value{}, false
}

// GetString reads a scalar and coerces it to display text. Containers at
// the path count as absent.
func GetString(doc Document, path Path) (string, bool) {
	v, ok := Get(doc, path)
	if !ok {
		return "", false
	}
	switch v.Kind() {
	case KindMap, KindList, KindInvalid:
		return "", false
	}
	return v.Display(), true
}

// =============================================================================
// Writes
// =============================================================================

// Set descends the path, creating intermediate map nodes for missing
// segments, and assigns the leaf. An existing non-map node along the way
// fails with ErrTypeMismatch.
func Set(doc Document, path Path, v Value) error {
	fields, err := descendForWrite(doc, path)
	if err != nil {
		return err
	}
	fields[path[len(path)-1]] = v
	return nil
}

// Delete removes the leaf addressed by the path. It reports whether a
// value was present; missing intermediates are a no-op.
func Delete(doc Document, path Path) bool {
	if path.IsEmpty() {
		return false
	}

	fields := map[string]Value(doc)
	for _, segment := range path[:len(path)-1] {
		child, ok := fields[segment]
		if !ok {
			return false
		}
		fields, ok = child.AsMap()
		if !ok {
			return false
		}
	}

	leaf := path[len(path)-1]
	if _, ok := fields[leaf]; !ok {
		return false
	}
	delete(fields, leaf)
	return true
}

// descendForWrite walks to the map that owns the final path segment,
// creating intermediate maps as needed.
func descendForWrite(doc Document, path Path) (map[string]Value, error) {
	if path.IsEmpty() {
		return nil, ErrEmptyPath
	}

	fields := map[string]Value(doc)
	for i, segment := range path[:len(path)-1] {
		child, ok := fields[segment]
		if !ok {
			child = Map(nil)
			fields[segment] = child
		}
		childFields, ok := child.AsMap()
		if !ok {
			return nil, fmt.Errorf("%w: %q is %s at %q",
				ErrTypeMismatch, segment, child.Kind(), path[:i+1].String())
		}
		fields = childFields
	}
	return fields, nil
}
