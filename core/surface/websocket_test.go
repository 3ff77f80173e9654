package surface

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordo-continuum/dossier/core/controller"
	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/dossier"
	"github.com/ordo-continuum/dossier/core/fieldmask"
	"github.com/ordo-continuum/dossier/core/gateway"
	"github.com/ordo-continuum/dossier/core/session"
)

// =============================================================================
// Codec
// =============================================================================

func TestDecodeValue_Kinds(t *testing.T) {
	v, err := DecodeValue("hello")
	require.NoError(t, err)
	assert.Equal(t, document.KindString, v.Kind())

	v, err = DecodeValue(float64(7))
	require.NoError(t, err)
	n, _ := v.AsInteger()
	assert.Equal(t, int64(7), n)

	v, err = DecodeValue(2.5)
	require.NoError(t, err)
	assert.Equal(t, document.KindDouble, v.Kind())

	v, err = DecodeValue(map[string]any{"name": "Knife", "uses": float64(3)})
	require.NoError(t, err)
	fields, ok := v.AsMap()
	require.True(t, ok)
	assert.Len(t, fields, 2)

	_, err = DecodeValue(nil)
	assert.Error(t, err)
}

func TestEncodeValue_RoundTrip(t *testing.T) {
	original := document.Map(map[string]document.Value{
		"name":  document.String("Kael"),
		"level": document.Integer(3),
		"tags":  document.List([]document.Value{document.String("psi")}),
	})

	decoded, err := DecodeValue(EncodeValue(original))
	require.NoError(t, err)
	assert.True(t, document.Equal(original, decoded))
}

// =============================================================================
// Websocket Surface
// =============================================================================

type memStore struct {
	mu      sync.Mutex
	doc     document.Document
	patches []fieldmask.Update
}

func (s *memStore) Fetch(_ context.Context, id string) (document.Document, gateway.Namespace, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.doc == nil {
		return nil, "", gateway.ErrNotFound
	}
	return document.CloneDocument(s.doc), gateway.NamespacePrimary, nil
}

func (s *memStore) Patch(_ context.Context, _ string, _ gateway.Namespace, update fieldmask.Update) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, update)
	return nil
}

func (s *memStore) Delete(context.Context, string, gateway.Namespace) error { return nil }

func (s *memStore) Create(context.Context, string, gateway.Namespace, document.Document) error {
	return nil
}

func (s *memStore) List(context.Context, gateway.Namespace) ([]gateway.Summary, error) {
	return nil, nil
}

func dialTestSurface(t *testing.T, store gateway.Store) *websocket.Conn {
	t.Helper()

	ctrl := controller.New(controller.Config{}, store, session.NewRegistry(session.Config{}))
	srv := httptest.NewServer(NewHandler(ctrl, nil))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, frame Frame) ResponseFrame {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))
	var response ResponseFrame
	require.NoError(t, conn.ReadJSON(&response))
	return response
}

func TestWebsocket_OpenAndEdit(t *testing.T) {
	store := &memStore{doc: dossier.NewDocument("Kael")}
	conn := dialTestSurface(t, store)

	response := roundTrip(t, conn, Frame{Type: "open", DocumentID: "kael_7821"})
	require.True(t, response.OK, "open failed: %s", response.Error)
	require.NotNil(t, response.View)
	assert.Equal(t, dossier.DefaultSection, response.View.Section)
	assert.Equal(t, "primary", response.View.Namespace)
	assert.True(t, strings.HasPrefix(response.View.SurfaceID, "web-"))

	response = roundTrip(t, conn, Frame{
		Type:   "submit_edit",
		Fields: map[string]any{"stats.hp_curr": float64(6)},
	})
	require.True(t, response.OK, "edit failed: %s", response.Error)

	hp, ok := response.View.Document["stats"].(map[string]any)["hp_curr"]
	require.True(t, ok)
	assert.EqualValues(t, 6, hp)

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.patches, 1)
	assert.Equal(t, []string{"stats.hp_curr"}, store.patches[0].Mask)
}

func TestWebsocket_ListFlow(t *testing.T) {
	store := &memStore{doc: dossier.NewDocument("Kael")}
	conn := dialTestSurface(t, store)

	response := roundTrip(t, conn, Frame{Type: "open", DocumentID: "kael_7821"})
	require.True(t, response.OK)

	response = roundTrip(t, conn, Frame{
		Type:     "add_item",
		ListPath: "combat.weapons",
		Item:     map[string]any{"name": "Vibro-blade"},
	})
	require.True(t, response.OK, response.Error)

	response = roundTrip(t, conn, Frame{Type: "inspect", ListPath: "combat.weapons", Index: 0})
	require.True(t, response.OK)
	detail, ok := response.View.Detail.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Vibro-blade", detail["name"])
}

func TestWebsocket_BadFrames(t *testing.T) {
	store := &memStore{doc: dossier.NewDocument("Kael")}
	conn := dialTestSurface(t, store)

	response := roundTrip(t, conn, Frame{Type: "open"})
	assert.False(t, response.OK)

	response = roundTrip(t, conn, Frame{Type: "warp"})
	assert.False(t, response.OK)
	assert.Contains(t, response.Error, "unknown frame type")

	// Events before open surface a session error rather than a crash.
	response = roundTrip(t, conn, Frame{Type: "toggle_delete_mode"})
	assert.False(t, response.OK)
}
