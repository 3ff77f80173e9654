// Package fieldmask builds the partial documents and mask entry lists
// that scope a remote write to exactly the paths that changed.
package fieldmask

import (
	"fmt"
	"sort"

	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// Partial Update Builder
// =============================================================================

// Update pairs a partial document with the mask entries that authorize
// the store to overwrite it. Mask entries are domain paths; the gateway
// owns any mapping to wire-level mask syntax.
type Update struct {
	Partial document.Document
	Mask    []string
}

// Build inserts each changed value into a fresh document and records its
// path as a mask entry. The mask is exactly the key set of changes,
// sorted for deterministic output.
func Build(changes map[string]document.Value) (Update, error) {
	partial := document.NewDocument()
	mask := make([]string, 0, len(changes))

	for raw := range changes {
		mask = append(mask, raw)
	}
	sort.Strings(mask)

	for _, raw := range mask {
		path := document.ParsePath(raw)
		if path.IsEmpty() {
			return Update{}, fmt.Errorf("build update: %w", document.ErrEmptyPath)
		}
		if err := document.Set(partial, path, document.Clone(changes[raw])); err != nil {
			return Update{}, fmt.Errorf("build update at %q: %w", raw, err)
		}
	}

	return Update{Partial: partial, Mask: mask}, nil
}

// SyncList produces a whole-list rewrite under a single mask entry. The
// remote protocol has no element-level patch, so this runs after every
// list mutation, not only on explicit save. An absent list syncs as
// empty, which clears the remote field.
func SyncList(doc document.Document, listPath document.Path) (Update, error) {
	if listPath.IsEmpty() {
		return Update{}, fmt.Errorf("sync list: %w", document.ErrEmptyPath)
	}

	items := document.GetList(doc, listPath)
	cloned := make([]document.Value, len(items))
	for i, it := range items {
		cloned[i] = document.Clone(it)
	}

	partial := document.NewDocument()
	if err := document.Set(partial, listPath, document.List(cloned)); err != nil {
		return Update{}, fmt.Errorf("sync list at %q: %w", listPath.String(), err)
	}

	return Update{Partial: partial, Mask: []string{listPath.String()}}, nil
}

// Apply merges an update into dst honoring its mask: each masked path is
// overwritten with the partial's value, or deleted when the partial has
// no value there. Unmasked fields are never touched.
func Apply(dst document.Document, update Update) error {
	for _, raw := range update.Mask {
		path := document.ParsePath(raw)
		if path.IsEmpty() {
			return fmt.Errorf("apply update: %w", document.ErrEmptyPath)
		}

		v, ok := document.Get(update.Partial, path)
		if !ok {
			document.Delete(dst, path)
			continue
		}
		if err := document.Set(dst, path, document.Clone(v)); err != nil {
			return fmt.Errorf("apply update at %q: %w", raw, err)
		}
	}
	return nil
}
