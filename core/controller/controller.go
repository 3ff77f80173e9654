package controller

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/dossier"
	"github.com/ordo-continuum/dossier/core/fieldmask"
	"github.com/ordo-continuum/dossier/core/gateway"
	"github.com/ordo-continuum/dossier/core/session"
)

// =============================================================================
// Configuration
// =============================================================================

// RefreshPolicy decides what a section switch does to unflushed local
// edits.
type RefreshPolicy string

const (
	// RefreshAlways re-fetches on every section switch; unflushed local
	// edits are overwritten by remote truth.
	RefreshAlways RefreshPolicy = "refresh-always"

	// RefreshClean re-fetches only when no debounced write is pending,
	// so local edits survive a quick tab switch.
	RefreshClean RefreshPolicy = "refresh-clean"
)

// DefaultDebounceWindow is the quiescence window for batched scalar
// writes when debouncing is enabled.
const DefaultDebounceWindow = 500 * time.Millisecond

// Config tunes the controller. A zero DebounceWindow patches scalar
// edits immediately, which is how the chat surface runs; the web
// surface enables debouncing.
type Config struct {
	RefreshPolicy  RefreshPolicy
	DebounceWindow time.Duration
	Logger         *slog.Logger
}

func normalizeConfig(cfg Config) Config {
	if cfg.RefreshPolicy == "" {
		cfg.RefreshPolicy = RefreshClean
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return cfg
}

// =============================================================================
// Controller
// =============================================================================

// Controller is the per-process interaction state machine. It is safe
// for concurrent use: per-surface serialization comes from the session
// registry, and surfaces never block each other.
type Controller struct {
	config   Config
	store    gateway.Store
	sessions *session.Registry
	logger   *slog.Logger

	mu       sync.Mutex
	flushers map[string]*flusher
}

// New creates a controller over a store and a session registry.
func New(cfg Config, store gateway.Store, sessions *session.Registry) *Controller {
	cfg = normalizeConfig(cfg)
	return &Controller{
		config:   cfg,
		store:    store,
		sessions: sessions,
		logger:   cfg.Logger,
		flushers: make(map[string]*flusher),
	}
}

// Open fetches the document and binds it to the surface, replacing any
// session the surface already had. The namespace that satisfied the
// fetch is recorded on the session and targeted by every later write.
func (c *Controller) Open(ctx context.Context, surfaceID, documentID string) Outcome {
	doc, ns, err := c.store.Fetch(ctx, documentID)
	if err != nil {
		if errors.Is(err, gateway.ErrNotFound) {
			return Outcome{Err: err}
		}
		return Outcome{Err: fmt.Errorf("open %q: %w", documentID, err)}
	}

	// A reopen supersedes any earlier binding; flush what the old one
	// still owed before the new session takes over.
	c.mu.Lock()
	old := c.flushers[surfaceID]
	delete(c.flushers, surfaceID)
	c.mu.Unlock()
	if old != nil {
		old.stop(true)
	}

	s := c.sessions.Open(surfaceID, documentID, ns, doc)
	s.SetSection(dossier.DefaultSection)
	c.logger.Info("surface opened", "surface_id", surfaceID, "document_id", documentID, "namespace", string(ns))
	return c.render(s, document.Value{}, "", nil)
}

// CloseSurface evicts the surface's session, flushing any pending
// debounced write first.
func (c *Controller) CloseSurface(surfaceID string) {
	c.mu.Lock()
	f := c.flushers[surfaceID]
	delete(c.flushers, surfaceID)
	c.mu.Unlock()

	if f != nil {
		f.stop(true)
	}
	c.sessions.Close(surfaceID)
}

// Handle processes one UI event against a surface. An unknown surface
// yields a SessionExpired outcome and performs no further work.
func (c *Controller) Handle(ctx context.Context, surfaceID string, ev Event) Outcome {
	s, err := c.sessions.Get(surfaceID)
	if err != nil {
		return Outcome{Err: err}
	}

	warning := c.takeFlushWarning(surfaceID)

	var outcome Outcome
	switch ev := ev.(type) {
	case SwitchSection:
		outcome = c.switchSection(ctx, s, ev)
	case ToggleDeleteMode:
		s.ToggleDeleteMode()
		outcome = c.render(s, document.Value{}, "", nil)
	case OpenEditor:
		outcome = c.openEditor(s, ev)
	case SubmitEdit:
		outcome = c.submitEdit(ctx, s, ev)
	case AddItem:
		outcome = c.addItem(ctx, s, ev)
	case RemoveItem:
		outcome = c.removeItem(ctx, s, ev)
	case ReorderItem:
		outcome = c.reorderItem(ctx, s, ev)
	case Inspect:
		outcome = c.inspect(s, ev)
	default:
		outcome = c.render(s, document.Value{}, fmt.Sprintf("unsupported event %T", ev), nil)
	}

	if outcome.Warning == "" {
		outcome.Warning = warning
	}
	return outcome
}

// =============================================================================
// Transitions
// =============================================================================

func (c *Controller) switchSection(ctx context.Context, s *session.Session, ev SwitchSection) Outcome {
	if _, ok := dossier.SectionByName(ev.Section); !ok {
		return c.render(s, document.Value{}, fmt.Sprintf("unknown section %q", ev.Section), nil)
	}

	var refreshErr error
	if c.shouldRefresh(s.SurfaceID) {
		doc, _, err := c.store.Fetch(ctx, s.DocumentID)
		if err != nil {
			// Keep showing the working copy; the fetch failure is surfaced.
			refreshErr = fmt.Errorf("refresh %q: %w", s.DocumentID, err)
		} else {
			s.Replace(doc)
		}
	}

	s.SetSection(ev.Section)
	return c.render(s, document.Value{}, "", refreshErr)
}

func (c *Controller) shouldRefresh(surfaceID string) bool {
	if c.config.RefreshPolicy == RefreshAlways {
		return true
	}

	c.mu.Lock()
	f := c.flushers[surfaceID]
	c.mu.Unlock()
	return f == nil || f.pending() == 0
}

func (c *Controller) openEditor(s *session.Session, ev OpenEditor) Outcome {
	if _, ok := dossier.EditKind(ev.Kind); !ok {
		return c.render(s, document.Value{}, fmt.Sprintf("unknown editor kind %q", ev.Kind), nil)
	}
	s.BeginEdit(ev.Kind)
	return c.render(s, document.Value{}, "", nil)
}

func (c *Controller) submitEdit(ctx context.Context, s *session.Session, ev SubmitEdit) Outcome {
	// A submit always closes whatever modal was open; the chat surface
	// also submits directly with no modal at all.
	s.EndEdit()

	if ev.ListPath != nil {
		return c.submitItemEdit(ctx, s, ev)
	}
	return c.submitScalarEdit(ctx, s, ev)
}

func (c *Controller) submitScalarEdit(ctx context.Context, s *session.Session, ev SubmitEdit) Outcome {
	_, err := s.Mutate(func(doc document.Document) error {
		for raw, v := range ev.Fields {
			if err := document.Set(doc, document.ParsePath(raw), v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return c.render(s, document.Value{}, "", err)
	}

	if c.config.DebounceWindow > 0 {
		f := c.flusherFor(s)
		for raw, v := range ev.Fields {
			f.record(document.ParsePath(raw), v)
		}
		return c.render(s, document.Value{}, "", nil)
	}

	changes := make(map[string]document.Value, len(ev.Fields))
	for raw, v := range ev.Fields {
		changes[raw] = v
	}
	update, err := fieldmask.Build(changes)
	if err == nil {
		err = c.store.Patch(ctx, s.DocumentID, s.Namespace, update)
	}
	return c.render(s, document.Value{}, "", err)
}

func (c *Controller) submitItemEdit(ctx context.Context, s *session.Session, ev SubmitEdit) Outcome {
	snapshot, err := s.Mutate(func(doc document.Document) error {
		for field, v := range ev.Fields {
			if err := document.SetItemField(doc, ev.ListPath, ev.Index, field, v); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, document.ErrIndexOutOfRange) {
			return c.render(s, document.Value{}, staleIndexWarning(err), nil)
		}
		return c.render(s, document.Value{}, "", err)
	}

	return c.render(s, document.Value{}, "", c.syncList(ctx, s, snapshot, ev.ListPath))
}

func (c *Controller) addItem(ctx context.Context, s *session.Session, ev AddItem) Outcome {
	snapshot, err := s.Mutate(func(doc document.Document) error {
		return document.Append(doc, ev.ListPath, ev.Item)
	})
	if err != nil {
		return c.render(s, document.Value{}, "", err)
	}
	return c.render(s, document.Value{}, "", c.syncList(ctx, s, snapshot, ev.ListPath))
}

func (c *Controller) removeItem(ctx context.Context, s *session.Session, ev RemoveItem) Outcome {
	snapshot, err := s.Mutate(func(doc document.Document) error {
		return document.RemoveAt(doc, ev.ListPath, ev.Index)
	})
	if err != nil {
		if errors.Is(err, document.ErrIndexOutOfRange) {
			return c.render(s, document.Value{}, staleIndexWarning(err), nil)
		}
		return c.render(s, document.Value{}, "", err)
	}
	return c.render(s, document.Value{}, "", c.syncList(ctx, s, snapshot, ev.ListPath))
}

func (c *Controller) reorderItem(ctx context.Context, s *session.Session, ev ReorderItem) Outcome {
	snapshot, err := s.Mutate(func(doc document.Document) error {
		return document.Move(doc, ev.ListPath, ev.From, ev.To)
	})
	if err != nil {
		if errors.Is(err, document.ErrIndexOutOfRange) {
			return c.render(s, document.Value{}, staleIndexWarning(err), nil)
		}
		return c.render(s, document.Value{}, "", err)
	}
	return c.render(s, document.Value{}, "", c.syncList(ctx, s, snapshot, ev.ListPath))
}

func (c *Controller) inspect(s *session.Session, ev Inspect) Outcome {
	items := document.GetList(s.Snapshot(), ev.ListPath)
	if ev.Index < 0 || ev.Index >= len(items) {
		return c.render(s, document.Value{},
			fmt.Sprintf("no item %d in %q", ev.Index, ev.ListPath.String()), nil)
	}
	return c.render(s, items[ev.Index], "", nil)
}

// =============================================================================
// Synchronization
// =============================================================================

// syncList rewrites the entire list under one mask entry. The remote
// protocol has no element-level patch, so this follows every list
// mutation.
func (c *Controller) syncList(ctx context.Context, s *session.Session, snapshot document.Document, listPath document.Path) error {
	update, err := fieldmask.SyncList(snapshot, listPath)
	if err != nil {
		return err
	}
	return c.store.Patch(ctx, s.DocumentID, s.Namespace, update)
}

func (c *Controller) flusherFor(s *session.Session) *flusher {
	c.mu.Lock()
	defer c.mu.Unlock()

	if f, ok := c.flushers[s.SurfaceID]; ok {
		return f
	}

	documentID, ns := s.DocumentID, s.Namespace
	f := newFlusher(c.config.DebounceWindow, func(update fieldmask.Update) error {
		// Timer-driven: deliberately not tied to the request context, and
		// never cancelled by newer edits.
		if err := c.store.Patch(context.Background(), documentID, ns, update); err != nil {
			c.logger.Warn("debounced flush failed", "document_id", documentID, "error", err)
			return err
		}
		return nil
	})
	c.flushers[s.SurfaceID] = f
	return f
}

func (c *Controller) takeFlushWarning(surfaceID string) string {
	c.mu.Lock()
	f := c.flushers[surfaceID]
	c.mu.Unlock()

	if f == nil {
		return ""
	}
	if err := f.takeError(); err != nil {
		return fmt.Sprintf("background sync failed: %v", err)
	}
	return ""
}

func staleIndexWarning(err error) string {
	return fmt.Sprintf("item index no longer valid: %v", err)
}

func (c *Controller) render(s *session.Session, detail document.Value, warning string, err error) Outcome {
	cursor := s.Cursor()
	return Outcome{
		View: View{
			SurfaceID:  s.SurfaceID,
			DocumentID: s.DocumentID,
			Namespace:  s.Namespace,
			Section:    cursor.Section,
			DeleteMode: cursor.DeleteMode,
			Editing:    s.EditKind(),
			Document:   s.Snapshot(),
			Detail:     detail,
		},
		Err:     err,
		Warning: warning,
	}
}
