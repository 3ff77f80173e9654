package document

import (
	"fmt"
)

// =============================================================================
// List Operations
// =============================================================================
//
// Lists have no element-level addressing: every mutation here rewrites the
// list value in its parent map, and the caller re-sends the whole list to
// the remote store afterwards. Indices captured before any of these calls
// are invalidated by the call.

// GetList returns the items at the path, or an empty slice when the path
// is absent or not a list.
func GetList(doc Document, path Path) []Value {
	v, ok := Get(doc, path)
	if !ok {
		return []Value{}
	}
	items, ok := v.AsList()
	if !ok {
		return []Value{}
	}
	return items
}

// Append adds an item to the end of the list at the path, creating the
// list (and intermediate maps) when absent. A non-list node at the path
// fails with ErrTypeMismatch.
func Append(doc Document, path Path, item Value) error {
	fields, err := descendForWrite(doc, path)
	if err != nil {
		return err
	}

	leaf := path[len(path)-1]
	existing, ok := fields[leaf]
	if !ok {
		fields[leaf] = List([]Value{item})
		return nil
	}

	items, ok := existing.AsList()
	if !ok {
		return fmt.Errorf("%w: %q is %s, expected list",
			ErrTypeMismatch, path.String(), existing.Kind())
	}
	fields[leaf] = List(append(items, item))
	return nil
}

// RemoveAt deletes the item at index. An index outside [0, len) fails
// with ErrIndexOutOfRange and leaves the list untouched.
func RemoveAt(doc Document, path Path, index int) error {
	items, fields, leaf, err := resolveList(doc, path)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %d of %d at %q",
			ErrIndexOutOfRange, index, len(items), path.String())
	}

	next := make([]Value, 0, len(items)-1)
	next = append(next, items[:index]...)
	next = append(next, items[index+1:]...)
	fields[leaf] = List(next)
	return nil
}

// Move splices the item at from out of the list and reinserts it at to.
// Either index outside [0, len) fails with ErrIndexOutOfRange and leaves
// the list untouched.
func Move(doc Document, path Path, from, to int) error {
	items, fields, leaf, err := resolveList(doc, path)
	if err != nil {
		return err
	}
	if from < 0 || from >= len(items) {
		return fmt.Errorf("%w: from %d of %d at %q",
			ErrIndexOutOfRange, from, len(items), path.String())
	}
	if to < 0 || to >= len(items) {
		return fmt.Errorf("%w: to %d of %d at %q",
			ErrIndexOutOfRange, to, len(items), path.String())
	}
	if from == to {
		return nil
	}

	next := make([]Value, 0, len(items))
	next = append(next, items[:from]...)
	next = append(next, items[from+1:]...)
	moved := items[from]

	tail := make([]Value, 0, len(items))
	tail = append(tail, next[:to]...)
	tail = append(tail, moved)
	tail = append(tail, next[to:]...)
	fields[leaf] = List(tail)
	return nil
}

// SetItemField assigns one field on the map item at index. Used for
// in-place edits of a list item; the caller still re-syncs the whole
// list afterwards.
func SetItemField(doc Document, path Path, index int, field string, v Value) error {
	items, _, _, err := resolveList(doc, path)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(items) {
		return fmt.Errorf("%w: %d of %d at %q",
			ErrIndexOutOfRange, index, len(items), path.String())
	}

	fields, ok := items[index].AsMap()
	if !ok {
		return fmt.Errorf("%w: item %d at %q is %s, expected map",
			ErrTypeMismatch, index, path.String(), items[index].Kind())
	}
	fields[field] = v
	return nil
}

// resolveList locates an existing list value and the parent map that owns
// it. A missing path yields an empty list anchored in the (created)
// parent so that bounds checks still apply.
func resolveList(doc Document, path Path) ([]Value, map[string]Value, string, error) {
	fields, err := descendForWrite(doc, path)
	if err != nil {
		return nil, nil, "", err
	}

	leaf := path[len(path)-1]
	existing, ok := fields[leaf]
	if !ok {
		return []Value{}, fields, leaf, nil
	}
	items, ok := existing.AsList()
	if !ok {
		return nil, nil, "", fmt.Errorf("%w: %q is %s, expected list",
			ErrTypeMismatch, path.String(), existing.Kind())
	}
	return items, fields, leaf, nil
}
