package gateway

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// Wire Codec
// =============================================================================
//
// The store speaks single-key wrapper objects per value: stringValue,
// integerValue (decimal string), doubleValue, booleanValue,
// mapValue.fields, arrayValue.values. A document body is {"fields": {...}}.
// nullValue decodes as field-absent, matching the codec's absent
// semantics; no tree node carries null.

type wireDocument struct {
	Name   string                     `json:"name,omitempty"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type wireList struct {
	Documents     []json.RawMessage `json:"documents"`
	NextPageToken string            `json:"nextPageToken"`
}

// EncodeDocument renders a document as a wire body.
func EncodeDocument(doc document.Document) ([]byte, error) {
	fields, err := encodeFields(map[string]document.Value(doc))
	if err != nil {
		return nil, err
	}
	return json.Marshal(map[string]any{"fields": fields})
}

func encodeFields(fields map[string]document.Value) (map[string]any, error) {
	out := make(map[string]any, len(fields))
	for name, v := range fields {
		encoded, err := encodeValue(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		out[name] = encoded
	}
	return out, nil
}

func encodeValue(v document.Value) (map[string]any, error) {
	switch v.Kind() {
	case document.KindString:
		s, _ := v.AsString()
		return map[string]any{"stringValue": s}, nil
	case document.KindInteger:
		n, _ := v.AsInteger()
		return map[string]any{"integerValue": strconv.FormatInt(n, 10)}, nil
	case document.KindDouble:
		f, _ := v.AsDouble()
		return map[string]any{"doubleValue": f}, nil
	case document.KindBoolean:
		b, _ := v.AsBoolean()
		return map[string]any{"booleanValue": b}, nil
	case document.KindMap:
		fields, _ := v.AsMap()
		encoded, err := encodeFields(fields)
		if err != nil {
			return nil, err
		}
		return map[string]any{"mapValue": map[string]any{"fields": encoded}}, nil
	case document.KindList:
		items, _ := v.AsList()
		values := make([]any, 0, len(items))
		for i, item := range items {
			encoded, err := encodeValue(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			values = append(values, encoded)
		}
		return map[string]any{"arrayValue": map[string]any{"values": values}}, nil
	default:
		return nil, fmt.Errorf("%w: cannot encode kind %s", ErrWireDecode, v.Kind())
	}
}

// DecodeDocument parses a wire body into a document.
func DecodeDocument(data []byte) (document.Document, error) {
	var wire wireDocument
	if err := json.Unmarshal(data, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWireDecode, err)
	}
	return decodeFields(wire.Fields)
}

func decodeFields(fields map[string]json.RawMessage) (document.Document, error) {
	doc := document.NewDocument()
	for name, raw := range fields {
		v, present, err := decodeValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		if present {
			doc[name] = v
		}
	}
	return doc, nil
}

func decodeValue(raw json.RawMessage) (document.Value, bool, error) {
	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return document.Value{}, false, fmt.Errorf("%w: %v", ErrWireDecode, err)
	}

	for key, inner := range wrapper {
		switch key {
		case "stringValue":
			var s string
			if err := json.Unmarshal(inner, &s); err != nil {
				return document.Value{}, false, fmt.Errorf("%w: stringValue: %v", ErrWireDecode, err)
			}
			return document.String(s), true, nil

		case "integerValue":
			n, err := decodeWireInteger(inner)
			if err != nil {
				return document.Value{}, false, err
			}
			return document.Integer(n), true, nil

		case "doubleValue":
			var f float64
			if err := json.Unmarshal(inner, &f); err != nil {
				return document.Value{}, false, fmt.Errorf("%w: doubleValue: %v", ErrWireDecode, err)
			}
			return document.Double(f), true, nil

		case "booleanValue":
			var b bool
			if err := json.Unmarshal(inner, &b); err != nil {
				return document.Value{}, false, fmt.Errorf("%w: booleanValue: %v", ErrWireDecode, err)
			}
			return document.Boolean(b), true, nil

		case "mapValue":
			var mv struct {
				Fields map[string]json.RawMessage `json:"fields"`
			}
			if err := json.Unmarshal(inner, &mv); err != nil {
				return document.Value{}, false, fmt.Errorf("%w: mapValue: %v", ErrWireDecode, err)
			}
			doc, err := decodeFields(mv.Fields)
			if err != nil {
				return document.Value{}, false, err
			}
			return document.Map(doc), true, nil

		case "arrayValue":
			var av struct {
				Values []json.RawMessage `json:"values"`
			}
			if err := json.Unmarshal(inner, &av); err != nil {
				return document.Value{}, false, fmt.Errorf("%w: arrayValue: %v", ErrWireDecode, err)
			}
			items := make([]document.Value, 0, len(av.Values))
			for i, rawItem := range av.Values {
				item, present, err := decodeValue(rawItem)
				if err != nil {
					return document.Value{}, false, fmt.Errorf("index %d: %w", i, err)
				}
				if present {
					items = append(items, item)
				}
			}
			return document.List(items), true, nil

		case "nullValue":
			return document.Value{}, false, nil
		}
	}

	return document.Value{}, false, fmt.Errorf("%w: no recognized value wrapper in %s", ErrWireDecode, string(raw))
}

// decodeListPage parses one page of a collection listing into summary
// rows plus the next page token.
func decodeListPage(data []byte) ([]Summary, string, error) {
	var page wireList
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrWireDecode, err)
	}

	summaries := make([]Summary, 0, len(page.Documents))
	for i, raw := range page.Documents {
		var wire wireDocument
		if err := json.Unmarshal(raw, &wire); err != nil {
			return nil, "", fmt.Errorf("%w: document %d: %v", ErrWireDecode, i, err)
		}
		doc, err := decodeFields(wire.Fields)
		if err != nil {
			return nil, "", fmt.Errorf("document %d: %w", i, err)
		}

		name, _ := document.GetString(doc, document.ParsePath("meta.name"))
		rank, _ := document.GetString(doc, document.ParsePath("meta.rank"))
		summaries = append(summaries, Summary{
			ID:   resourceID(wire.Name),
			Name: name,
			Rank: rank,
		})
	}
	return summaries, page.NextPageToken, nil
}

// resourceID extracts the document id from a full wire resource path.
func resourceID(resource string) string {
	for i := len(resource) - 1; i >= 0; i-- {
		if resource[i] == '/' {
			return resource[i+1:]
		}
	}
	return resource
}

// decodeWireInteger accepts both the canonical decimal-string encoding
// and a bare JSON number.
func decodeWireInteger(inner json.RawMessage) (int64, error) {
	var s string
	if err := json.Unmarshal(inner, &s); err == nil {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: integerValue %q: %v", ErrWireDecode, s, err)
		}
		return n, nil
	}

	var f float64
	if err := json.Unmarshal(inner, &f); err != nil {
		return 0, fmt.Errorf("%w: integerValue: %v", ErrWireDecode, err)
	}
	return int64(f), nil
}
