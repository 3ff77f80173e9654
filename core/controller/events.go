// Package controller drives the interactive editing loop: it consumes
// UI events for a surface, mutates that surface's session working copy,
// pushes mask-scoped updates to the document store, and hands back a
// view snapshot for the surface to render.
package controller

import (
	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/gateway"
)

// =============================================================================
// Events
// =============================================================================

// Event is one UI interaction against a surface.
type Event interface {
	eventName() string
}

// SwitchSection moves the surface to another tab. Depending on the
// refresh policy this re-fetches the document so the tab shows the
// latest remote state.
type SwitchSection struct {
	Section string
}

// ToggleDeleteMode arms or disarms item deletion on the current tab.
type ToggleDeleteMode struct{}

// OpenEditor opens a modal form of the given kind, pre-filled from the
// working copy.
type OpenEditor struct {
	Kind string
}

// SubmitEdit closes the pending modal and applies its values. A nil
// ListPath edits scalar fields by domain path; a non-nil ListPath edits
// the fields of the list item at Index, which re-syncs the whole list.
type SubmitEdit struct {
	Fields   map[string]document.Value
	ListPath document.Path
	Index    int
}

// AddItem appends an item to an ordered list.
type AddItem struct {
	ListPath document.Path
	Item     document.Value
}

// RemoveItem deletes the item at Index. Indices captured before any
// earlier list mutation are stale; out-of-range indices no-op with a
// warning.
type RemoveItem struct {
	ListPath document.Path
	Index    int
}

// ReorderItem splices the item at From out and reinserts it at To.
type ReorderItem struct {
	ListPath document.Path
	From     int
	To       int
}

// Inspect renders the detail of one list item. Read-only: no session
// mutation and no store call.
type Inspect struct {
	ListPath document.Path
	Index    int
}

func (SwitchSection) eventName() string    { return "switch_section" }
func (ToggleDeleteMode) eventName() string { return "toggle_delete_mode" }
func (OpenEditor) eventName() string       { return "open_editor" }
func (SubmitEdit) eventName() string       { return "submit_edit" }
func (AddItem) eventName() string          { return "add_item" }
func (RemoveItem) eventName() string       { return "remove_item" }
func (ReorderItem) eventName() string      { return "reorder_item" }
func (Inspect) eventName() string          { return "inspect" }

// =============================================================================
// Outcomes
// =============================================================================

// View is the render input handed back to the surface after every
// interaction. Document is a private snapshot; mutating it never
// touches the session.
type View struct {
	SurfaceID  string
	DocumentID string
	Namespace  gateway.Namespace
	Section    string
	DeleteMode bool
	Editing    string
	Document   document.Document
	Detail     document.Value
}

// Outcome pairs the view with whatever went wrong. Err carries failures
// the user must see (not found, session expired, remote write failure);
// Warning carries non-fatal notices such as a stale-index no-op or a
// failed background flush.
type Outcome struct {
	View    View
	Err     error
	Warning string
}
