package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_SetRoundTrip(t *testing.T) {
	doc := NewDocument()

	paths := map[string]Value{
		"meta.name":     String("Kael"),
		"stats.hp_curr": Integer(12),
		"stats.speed":   Double(7.5),
		"locks.skills":  Boolean(true),
	}

	for raw, v := range paths {
		require.NoError(t, Set(doc, ParsePath(raw), v))
	}

	for raw, want := range paths {
		got, ok := Get(doc, ParsePath(raw))
		require.True(t, ok, "path %s", raw)
		assert.True(t, Equal(want, got), "path %s", raw)
	}
}

func TestGet_AbsentIntermediate(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("meta.name"), String("Kael")))

	_, ok := Get(doc, ParsePath("stats.hp_curr"))
	assert.False(t, ok)

	// Descending through a scalar is absent, not an error.
	_, ok = Get(doc, ParsePath("meta.name.deeper"))
	assert.False(t, ok)

	_, ok = Get(doc, nil)
	assert.False(t, ok)
}

func TestSet_CreatesIntermediateMaps(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("a.b.c.d"), Integer(1)))

	v, ok := Get(doc, ParsePath("a.b.c"))
	require.True(t, ok)
	assert.Equal(t, KindMap, v.Kind())
}

func TestSet_TypeMismatchOnScalarIntermediate(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("meta.name"), String("Kael")))

	err := Set(doc, ParsePath("meta.name.first"), String("K"))
	assert.ErrorIs(t, err, ErrTypeMismatch)

	// The failed write left the original leaf intact.
	got, ok := GetString(doc, ParsePath("meta.name"))
	require.True(t, ok)
	assert.Equal(t, "Kael", got)
}

func TestSet_EmptyPath(t *testing.T) {
	err := Set(NewDocument(), nil, String("x"))
	assert.ErrorIs(t, err, ErrEmptyPath)
}

func TestSet_DoesNotTouchUnrelatedPaths(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("stats.hp_curr"), Integer(10)))
	require.NoError(t, Set(doc, ParsePath("stats.hp_max"), Integer(20)))
	require.NoError(t, Set(doc, ParsePath("meta.name"), String("Kael")))

	require.NoError(t, Set(doc, ParsePath("stats.hp_curr"), Integer(7)))

	hpMax, ok := Get(doc, ParsePath("stats.hp_max"))
	require.True(t, ok)
	assert.True(t, Equal(Integer(20), hpMax))

	name, ok := Get(doc, ParsePath("meta.name"))
	require.True(t, ok)
	assert.True(t, Equal(String("Kael"), name))
}

func TestGetString_Coercion(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("stats.hp_curr"), Integer(12)))
	require.NoError(t, Set(doc, ParsePath("stats.speed"), Double(7.5)))
	require.NoError(t, Set(doc, ParsePath("saves.prof_str"), Boolean(true)))
	require.NoError(t, Set(doc, ParsePath("meta.name"), String("Kael")))

	cases := map[string]string{
		"stats.hp_curr":  "12",
		"stats.speed":    "7.5",
		"saves.prof_str": "true",
		"meta.name":      "Kael",
	}
	for raw, want := range cases {
		got, ok := GetString(doc, ParsePath(raw))
		require.True(t, ok, "path %s", raw)
		assert.Equal(t, want, got, "path %s", raw)
	}

	// Containers do not coerce.
	_, ok := GetString(doc, ParsePath("stats"))
	assert.False(t, ok)
}

func TestDelete(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("locks.skills"), Boolean(true)))

	assert.True(t, Delete(doc, ParsePath("locks.skills")))
	_, ok := Get(doc, ParsePath("locks.skills"))
	assert.False(t, ok)

	assert.False(t, Delete(doc, ParsePath("locks.skills")))
	assert.False(t, Delete(doc, ParsePath("missing.branch")))
}

func TestCloneDocument_Independent(t *testing.T) {
	doc := NewDocument()
	require.NoError(t, Set(doc, ParsePath("stats.hp_curr"), Integer(10)))
	require.NoError(t, Append(doc, ParsePath("combat.weapons"),
		Map(map[string]Value{"name": String("Rail Carbine")})))

	snapshot := CloneDocument(doc)

	require.NoError(t, Set(doc, ParsePath("stats.hp_curr"), Integer(1)))
	require.NoError(t, RemoveAt(doc, ParsePath("combat.weapons"), 0))

	hp, ok := Get(snapshot, ParsePath("stats.hp_curr"))
	require.True(t, ok)
	assert.True(t, Equal(Integer(10), hp))
	assert.Len(t, GetList(snapshot, ParsePath("combat.weapons")), 1)
}

func TestPath_Relations(t *testing.T) {
	stats := ParsePath("stats")
	hp := ParsePath("stats.hp_curr")

	assert.True(t, stats.IsAncestorOf(hp))
	assert.False(t, hp.IsAncestorOf(stats))
	assert.False(t, stats.IsAncestorOf(stats))

	rel, ok := hp.RelativeTo(stats)
	require.True(t, ok)
	assert.Equal(t, "hp_curr", rel.String())

	assert.Equal(t, "stats.hp_curr", stats.Child("hp_curr").String())
	assert.True(t, ParsePath("a.b").Equal(NewPath("a", "b")))
	assert.Nil(t, ParsePath(""))
}

func TestValue_Display(t *testing.T) {
	assert.Equal(t, "12", Integer(12).Display())
	assert.Equal(t, "7.5", Double(7.5).Display())
	assert.Equal(t, "false", Boolean(false).Display())
	assert.Equal(t, "x", String("x").Display())
	assert.Equal(t, "", Map(nil).Display())
	assert.Equal(t, "", Value{}.Display())
}
