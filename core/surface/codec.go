// Package surface adapts transports to the controller: it translates
// wire frames into controller events and views back into frames. The
// controller never sees transport types; surfaces never see store types.
package surface

import (
	"fmt"
	"math"

	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// JSON <-> Value
// =============================================================================

// DecodeValue converts a decoded JSON value into a tree value. JSON
// numbers arrive as float64; integral ones become integers, the rest
// doubles. null has no tree representation and is rejected.
func DecodeValue(raw any) (document.Value, error) {
	switch v := raw.(type) {
	case string:
		return document.String(v), nil
	case bool:
		return document.Boolean(v), nil
	case float64:
		if v == math.Trunc(v) && !math.IsInf(v, 0) {
			return document.Integer(int64(v)), nil
		}
		return document.Double(v), nil
	case map[string]any:
		fields := make(map[string]document.Value, len(v))
		for key, item := range v {
			decoded, err := DecodeValue(item)
			if err != nil {
				return document.Value{}, fmt.Errorf("field %q: %w", key, err)
			}
			fields[key] = decoded
		}
		return document.Map(fields), nil
	case []any:
		items := make([]document.Value, 0, len(v))
		for i, item := range v {
			decoded, err := DecodeValue(item)
			if err != nil {
				return document.Value{}, fmt.Errorf("index %d: %w", i, err)
			}
			items = append(items, decoded)
		}
		return document.List(items), nil
	default:
		return document.Value{}, fmt.Errorf("unsupported value %T", raw)
	}
}

// DecodeFields converts a frame's field map, keyed by dotted domain
// path, into tree values.
func DecodeFields(raw map[string]any) (map[string]document.Value, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	fields := make(map[string]document.Value, len(raw))
	for path, item := range raw {
		decoded, err := DecodeValue(item)
		if err != nil {
			return nil, fmt.Errorf("path %q: %w", path, err)
		}
		fields[path] = decoded
	}
	return fields, nil
}

// EncodeValue converts a tree value into its plain JSON shape.
func EncodeValue(v document.Value) any {
	switch v.Kind() {
	case document.KindString:
		s, _ := v.AsString()
		return s
	case document.KindInteger:
		n, _ := v.AsInteger()
		return n
	case document.KindDouble:
		d, _ := v.AsDouble()
		return d
	case document.KindBoolean:
		b, _ := v.AsBoolean()
		return b
	case document.KindMap:
		fields, _ := v.AsMap()
		out := make(map[string]any, len(fields))
		for key, item := range fields {
			out[key] = EncodeValue(item)
		}
		return out
	case document.KindList:
		items, _ := v.AsList()
		out := make([]any, len(items))
		for i, item := range items {
			out[i] = EncodeValue(item)
		}
		return out
	default:
		return nil
	}
}

// EncodeDocument converts a whole document into its plain JSON shape.
func EncodeDocument(doc document.Document) map[string]any {
	out := make(map[string]any, len(doc))
	for key, v := range doc {
		out[key] = EncodeValue(v)
	}
	return out
}
