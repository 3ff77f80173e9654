package session

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/gateway"
)

func testDoc(t *testing.T, name string) document.Document {
	t.Helper()
	doc := document.NewDocument()
	require.NoError(t, document.Set(doc, document.ParsePath("meta.name"), document.String(name)))
	require.NoError(t, document.Set(doc, document.ParsePath("stats.hp_curr"), document.Integer(10)))
	return doc
}

func TestRegistry_OpenAndGet(t *testing.T) {
	r := NewRegistry(Config{})

	opened := r.Open("surface-1", "kael_7821", gateway.NamespaceSecondary, testDoc(t, "Kael"))
	assert.Equal(t, gateway.NamespaceSecondary, opened.Namespace)

	got, err := r.Get("surface-1")
	require.NoError(t, err)
	assert.Equal(t, "kael_7821", got.DocumentID)
	assert.Equal(t, 1, r.Len())
}

func TestRegistry_GetUnknownSurfaceIsExpired(t *testing.T) {
	r := NewRegistry(Config{})

	_, err := r.Get("never-opened")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = r.Mutate("never-opened", func(document.Document) error { return nil })
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRegistry_ReopenReplacesWorkingCopy(t *testing.T) {
	r := NewRegistry(Config{})

	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))
	_, err := r.Mutate("surface-1", func(doc document.Document) error {
		return document.Set(doc, document.ParsePath("meta.name"), document.String("scratch"))
	})
	require.NoError(t, err)

	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	s, err := r.Get("surface-1")
	require.NoError(t, err)
	name, _ := document.GetString(s.Snapshot(), document.ParsePath("meta.name"))
	assert.Equal(t, "Kael", name)
	assert.Equal(t, 1, r.Len())
}

// Two surfaces showing the same document id still own independent
// working copies.
func TestRegistry_SurfaceIsolation(t *testing.T) {
	r := NewRegistry(Config{})
	doc := testDoc(t, "Kael")

	r.Open("surface-a", "kael_7821", gateway.NamespacePrimary, doc)
	r.Open("surface-b", "kael_7821", gateway.NamespacePrimary, doc)

	_, err := r.Mutate("surface-a", func(d document.Document) error {
		return document.Set(d, document.ParsePath("stats.hp_curr"), document.Integer(1))
	})
	require.NoError(t, err)

	b, err := r.Get("surface-b")
	require.NoError(t, err)
	hp, _ := document.Get(b.Snapshot(), document.ParsePath("stats.hp_curr"))
	assert.True(t, document.Equal(document.Integer(10), hp))
}

func TestRegistry_OpenClonesInitialDocument(t *testing.T) {
	r := NewRegistry(Config{})
	doc := testDoc(t, "Kael")

	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, doc)
	require.NoError(t, document.Set(doc, document.ParsePath("meta.name"), document.String("mutated")))

	s, err := r.Get("surface-1")
	require.NoError(t, err)
	name, _ := document.GetString(s.Snapshot(), document.ParsePath("meta.name"))
	assert.Equal(t, "Kael", name)
}

func TestRegistry_MutateSerializesPerSurface(t *testing.T) {
	r := NewRegistry(Config{})
	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Mutate("surface-1", func(doc document.Document) error {
				v, _ := document.Get(doc, document.ParsePath("stats.hp_curr"))
				n, _ := v.AsInteger()
				return document.Set(doc, document.ParsePath("stats.hp_curr"), document.Integer(n+1))
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := r.Get("surface-1")
	require.NoError(t, err)
	hp, _ := document.Get(s.Snapshot(), document.ParsePath("stats.hp_curr"))
	assert.True(t, document.Equal(document.Integer(10+workers), hp))
}

func TestRegistry_MutateFailureStillReturnsSnapshot(t *testing.T) {
	r := NewRegistry(Config{})
	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	snapshot, err := r.Mutate("surface-1", func(doc document.Document) error {
		return document.RemoveAt(doc, document.ParsePath("combat.weapons"), 5)
	})
	assert.ErrorIs(t, err, document.ErrIndexOutOfRange)
	require.NotNil(t, snapshot)

	name, _ := document.GetString(snapshot, document.ParsePath("meta.name"))
	assert.Equal(t, "Kael", name)
}

func TestRegistry_SnapshotDoesNotAliasWorkingCopy(t *testing.T) {
	r := NewRegistry(Config{})
	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	s, err := r.Get("surface-1")
	require.NoError(t, err)

	snap := s.Snapshot()
	require.NoError(t, document.Set(snap, document.ParsePath("meta.name"), document.String("mutated")))

	name, _ := document.GetString(s.Snapshot(), document.ParsePath("meta.name"))
	assert.Equal(t, "Kael", name)
}

func TestRegistry_CloseEvicts(t *testing.T) {
	r := NewRegistry(Config{})
	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	assert.True(t, r.Close("surface-1"))
	assert.False(t, r.Close("surface-1"))

	_, err := r.Get("surface-1")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestRegistry_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	r := NewRegistry(Config{MaxSessions: 2})

	r.Open("surface-1", "a", gateway.NamespacePrimary, testDoc(t, "A"))
	r.Open("surface-2", "b", gateway.NamespacePrimary, testDoc(t, "B"))
	r.Open("surface-3", "c", gateway.NamespacePrimary, testDoc(t, "C"))

	_, err := r.Get("surface-1")
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = r.Get("surface-3")
	assert.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRegistry_IdleTTLExpiry(t *testing.T) {
	r := NewRegistry(Config{IdleTTL: 20 * time.Millisecond})
	r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	time.Sleep(60 * time.Millisecond)

	_, err := r.Get("surface-1")
	assert.ErrorIs(t, err, ErrSessionExpired)
}

func TestSession_CursorLifecycle(t *testing.T) {
	r := NewRegistry(Config{})
	s := r.Open("surface-1", "kael_7821", gateway.NamespacePrimary, testDoc(t, "Kael"))

	s.SetSection("equipment")
	assert.Equal(t, Cursor{Section: "equipment"}, s.Cursor())

	assert.True(t, s.ToggleDeleteMode())
	assert.False(t, s.ToggleDeleteMode())

	// Delete mode is scoped to its section: switching drops it.
	s.ToggleDeleteMode()
	s.SetSection("skills")
	assert.Equal(t, Cursor{Section: "skills", DeleteMode: false}, s.Cursor())

	s.BeginEdit("identity")
	assert.Equal(t, "identity", s.EditKind())
	assert.Equal(t, "identity", s.EndEdit())
	assert.Empty(t, s.EditKind())
}
