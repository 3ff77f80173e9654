package gateway

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ordo-continuum/dossier/core/document"
)

func wireFixture(t *testing.T) document.Document {
	t.Helper()
	doc := document.NewDocument()
	require.NoError(t, document.Set(doc, document.ParsePath("meta.name"), document.String("Kael")))
	require.NoError(t, document.Set(doc, document.ParsePath("meta.level"), document.Integer(5)))
	require.NoError(t, document.Set(doc, document.ParsePath("stats.speed"), document.Double(7.5)))
	require.NoError(t, document.Set(doc, document.ParsePath("saves.prof_str"), document.Boolean(true)))
	require.NoError(t, document.Append(doc, document.ParsePath("combat.weapons"),
		document.Map(map[string]document.Value{
			"name": document.String("Rail Carbine"),
			"type": document.String("ranged"),
		})))
	return doc
}

func TestWire_EncodeDecodeIdentity(t *testing.T) {
	doc := wireFixture(t)

	body, err := EncodeDocument(doc)
	require.NoError(t, err)

	decoded, err := DecodeDocument(body)
	require.NoError(t, err)

	assert.True(t, document.Equal(doc.Root(), decoded.Root()))
}

func TestWire_IntegerEncodesAsDecimalString(t *testing.T) {
	doc := document.NewDocument()
	require.NoError(t, document.Set(doc, document.ParsePath("level"), document.Integer(12)))

	body, err := EncodeDocument(doc)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"integerValue":"12"`)
}

func TestWire_DecodeIntegerVariants(t *testing.T) {
	// Canonical decimal string.
	doc, err := DecodeDocument([]byte(`{"fields":{"level":{"integerValue":"7"}}}`))
	require.NoError(t, err)
	v, ok := document.Get(doc, document.ParsePath("level"))
	require.True(t, ok)
	assert.True(t, document.Equal(document.Integer(7), v))

	// Bare JSON number, seen from lenient emitters.
	doc, err = DecodeDocument([]byte(`{"fields":{"level":{"integerValue":7}}}`))
	require.NoError(t, err)
	v, _ = document.Get(doc, document.ParsePath("level"))
	assert.True(t, document.Equal(document.Integer(7), v))

	_, err = DecodeDocument([]byte(`{"fields":{"level":{"integerValue":"seven"}}}`))
	assert.ErrorIs(t, err, ErrWireDecode)
}

func TestWire_NullValueDecodesAsAbsent(t *testing.T) {
	doc, err := DecodeDocument([]byte(`{"fields":{"gone":{"nullValue":null},"kept":{"stringValue":"x"}}}`))
	require.NoError(t, err)

	_, ok := document.Get(doc, document.ParsePath("gone"))
	assert.False(t, ok)

	v, ok := document.Get(doc, document.ParsePath("kept"))
	require.True(t, ok)
	assert.True(t, document.Equal(document.String("x"), v))
}

func TestWire_UnknownWrapperFails(t *testing.T) {
	_, err := DecodeDocument([]byte(`{"fields":{"when":{"timestampValue":"2024-01-01T00:00:00Z"}}}`))
	assert.ErrorIs(t, err, ErrWireDecode)
}

func TestWire_DecodeListPage(t *testing.T) {
	body := []byte(`{
		"documents": [
			{
				"name": "projects/p/databases/(default)/documents/artifacts/app/public/data/protocols/kael_7821",
				"fields": {
					"meta": {"mapValue": {"fields": {
						"name": {"stringValue": "Kael"},
						"rank": {"stringValue": "Captain"}
					}}}
				}
			}
		],
		"nextPageToken": "tok-2"
	}`)

	summaries, next, err := decodeListPage(body)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", next)
	require.Len(t, summaries, 1)
	assert.Equal(t, Summary{ID: "kael_7821", Name: "Kael", Rank: "Captain"}, summaries[0])
}
