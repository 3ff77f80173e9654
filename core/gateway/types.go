// Package gateway talks to the remote document store over its typed-value
// REST protocol. Wire-format concerns (value wrappers, mask syntax, URL
// layout) live here and never leak past this package: callers use domain
// paths and document values only.
package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/fieldmask"
)

// =============================================================================
// Errors
// =============================================================================

var (
	// ErrNotFound indicates the id is absent from both namespaces.
	ErrNotFound = errors.New("document not found in any namespace")

	// ErrWireDecode indicates a response used a value kind the tree does
	// not model.
	ErrWireDecode = errors.New("cannot decode wire value")
)

// RemoteWriteError carries the store's status and body for a failed
// patch or delete. The caller's working copy keeps the attempted change;
// the error is surfaced, never retried here.
type RemoteWriteError struct {
	Status int
	Body   string
}

func (e *RemoteWriteError) Error() string {
	return fmt.Sprintf("remote write failed: status %d: %s", e.Status, e.Body)
}

// =============================================================================
// Namespaces
// =============================================================================

// Namespace names one of the two document partitions an id may live in.
// Which partition satisfied a fetch is sticky for all later writes and
// deletes of that id; documents never migrate between partitions here.
type Namespace string

const (
	NamespacePrimary   Namespace = "primary"
	NamespaceSecondary Namespace = "secondary"
)

// Summary is one row of a namespace listing.
type Summary struct {
	ID   string
	Name string
	Rank string
}

// =============================================================================
// Store
// =============================================================================

// Store is the document store contract the controller depends on. Client
// implements it against the remote store; LocalStore implements it
// against an on-disk database for offline use.
type Store interface {
	// Fetch tries the primary namespace, then the secondary, and returns
	// the document tagged with the namespace that satisfied it.
	Fetch(ctx context.Context, id string) (document.Document, Namespace, error)

	// Patch applies a mask-scoped partial update to the document in the
	// given namespace.
	Patch(ctx context.Context, id string, ns Namespace, update fieldmask.Update) error

	// Delete removes the document. Fire-and-forget once acknowledged.
	Delete(ctx context.Context, id string, ns Namespace) error

	// Create writes a complete new document into the given namespace.
	Create(ctx context.Context, id string, ns Namespace, doc document.Document) error

	// List returns a summary row per document in the namespace.
	List(ctx context.Context, ns Namespace) ([]Summary, error)
}
