package fieldmask

import (
	"sync"

	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// Change Set
// =============================================================================

// ChangeSet accumulates touched paths across a debounce window so that a
// burst of edits flushes as one partial update. It keeps the mask minimal:
// a recorded ancestor absorbs later descendants, and a recorded descendant
// set is collapsed when its ancestor is recorded whole.
type ChangeSet struct {
	mu      sync.Mutex
	changes map[string]document.Value
}

// NewChangeSet returns an empty change set.
func NewChangeSet() *ChangeSet {
	return &ChangeSet{changes: make(map[string]document.Value)}
}

// Record notes that path now holds v. Values are cloned on entry so the
// caller's working copy can keep mutating.
func (c *ChangeSet) Record(path document.Path, v document.Value) {
	if path.IsEmpty() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// An already-recorded ancestor owns this subtree: fold the new leaf
	// into the ancestor's snapshot instead of widening the mask.
	for raw, existing := range c.changes {
		ancestor := document.ParsePath(raw)
		if !ancestor.IsAncestorOf(path) {
			continue
		}
		rel, _ := path.RelativeTo(ancestor)
		if fields, ok := existing.AsMap(); ok {
			if document.Set(document.Document(fields), rel, document.Clone(v)) == nil {
				return
			}
		}
		// Non-map ancestor snapshot: the deeper write supersedes it.
		delete(c.changes, raw)
		break
	}

	// Recording an ancestor whole drops any finer-grained entries below it.
	for raw := range c.changes {
		if path.IsAncestorOf(document.ParsePath(raw)) {
			delete(c.changes, raw)
		}
	}

	c.changes[path.String()] = document.Clone(v)
}

// Len returns the number of pending mask entries.
func (c *ChangeSet) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.changes)
}

// Drain removes and returns all pending changes. The change set is empty
// afterwards and may keep accumulating.
func (c *ChangeSet) Drain() map[string]document.Value {
	c.mu.Lock()
	defer c.mu.Unlock()

	drained := c.changes
	c.changes = make(map[string]document.Value)
	return drained
}
