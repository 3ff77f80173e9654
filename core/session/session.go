// Package session keeps short-lived, surface-keyed working copies of
// documents alive across a sequence of UI interactions. Sessions are
// view-layer scaffolding, not the document of record: they are never
// persisted and evaporate on restart.
package session

import (
	"sync"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/gateway"
)

// =============================================================================
// Cursor
// =============================================================================

// Cursor is the per-surface view position: which section is shown and
// whether delete mode is armed.
type Cursor struct {
	Section    string
	DeleteMode bool
}

// =============================================================================
// Session
// =============================================================================

// Session binds one UI surface to a private working copy of a document.
// All access to the working copy goes through the session's lock, which
// serializes interactions for the same surface; different surfaces never
// share a session even when they show the same document id.
type Session struct {
	SurfaceID  string
	DocumentID string

	// Namespace is the partition that satisfied the original fetch. It is
	// sticky: every later write or delete of this document targets it.
	Namespace gateway.Namespace

	mu       sync.Mutex
	working  document.Document
	cursor   Cursor
	editKind string
}

func newSession(surfaceID, documentID string, ns gateway.Namespace, doc document.Document) *Session {
	return &Session{
		SurfaceID:  surfaceID,
		DocumentID: documentID,
		Namespace:  ns,
		working:    document.CloneDocument(doc),
	}
}

// Mutate applies fn to the working copy under the session lock and
// returns a deep-cloned snapshot of the result. Renderers only ever see
// snapshots, so a partial mutation failure cannot expose a half-updated
// tree.
func (s *Session) Mutate(fn func(doc document.Document) error) (document.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fn(s.working); err != nil {
		return document.CloneDocument(s.working), err
	}
	return document.CloneDocument(s.working), nil
}

// Snapshot returns a deep clone of the working copy.
func (s *Session) Snapshot() document.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return document.CloneDocument(s.working)
}

// Replace swaps in a fresh working copy, typically after a re-fetch.
func (s *Session) Replace(doc document.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.working = document.CloneDocument(doc)
}

// Cursor returns the current view position.
func (s *Session) Cursor() Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// SetSection moves the cursor to a section and drops delete mode, which
// is scoped to the section it was armed in.
func (s *Session) SetSection(section string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.Section = section
	s.cursor.DeleteMode = false
}

// ToggleDeleteMode flips delete mode and returns the new state.
func (s *Session) ToggleDeleteMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cursor.DeleteMode = !s.cursor.DeleteMode
	return s.cursor.DeleteMode
}

// BeginEdit records that a modal of the given kind is awaiting submit.
func (s *Session) BeginEdit(kind string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.editKind = kind
}

// EndEdit clears the pending modal and returns its kind.
func (s *Session) EndEdit() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	kind := s.editKind
	s.editKind = ""
	return kind
}

// EditKind returns the pending modal kind, empty when none.
func (s *Session) EditKind() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.editKind
}
