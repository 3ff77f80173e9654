// Package dossier carries the domain shape of a character record: the
// default document a new record starts from, the section and list
// catalogs the editor exposes, and the plain-text summary used by the
// chat surface.
package dossier

import (
	"strings"

	"github.com/google/uuid"

	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// New Document Template
// =============================================================================

// NewDocument returns the default character record for a freshly created
// dossier.
func NewDocument(name string) document.Document {
	doc := document.NewDocument()

	doc["meta"] = document.Map(map[string]document.Value{
		"name":       document.String(name),
		"rank":       document.String("Recruit"),
		"image":      document.String(""),
		"class":      document.String(""),
		"archetype":  document.String(""),
		"race":       document.String(""),
		"background": document.String(""),
		"level":      document.Integer(1),
		"origin":     document.String(""),
		"age":        document.String(""),
		"job":        document.String(""),
		"clearance":  document.String(""),
		"comm":       document.String(""),
	})

	doc["stats"] = document.Map(map[string]document.Value{
		"str": document.Integer(10), "dex": document.Integer(10),
		"con": document.Integer(10), "int": document.Integer(10),
		"wis": document.Integer(10), "cha": document.Integer(10),
		"hp_curr": document.Integer(0), "hp_max": document.Integer(0),
		"hp_temp": document.Integer(0), "ac": document.Integer(10),
		"speed": document.Integer(9), "speed_mod": document.Integer(0),
		"passive_perception_mod": document.Integer(0),
		"shield_curr":            document.Integer(0),
		"shield_max":             document.Integer(0),
	})

	saves := map[string]document.Value{}
	for _, attr := range []string{"str", "dex", "con", "int", "wis", "cha"} {
		saves["prof_"+attr] = document.Boolean(false)
	}
	doc["saves"] = document.Map(saves)

	doc["skills"] = document.Map(map[string]document.Value{
		"data":    document.Map(nil),
		"bonuses": document.Map(nil),
	})

	doc["combat"] = document.Map(map[string]document.Value{
		"weapons":   document.List(nil),
		"inventory": document.List(nil),
	})

	doc["abilities"] = document.List(nil)
	doc["traits"] = document.List(nil)
	doc["features"] = document.List(nil)

	doc["profs"] = document.Map(map[string]document.Value{
		"langs":  document.List(nil),
		"tools":  document.List(nil),
		"armory": document.List(nil),
	})

	doc["money"] = document.Map(map[string]document.Value{
		"u": document.Integer(0), "k": document.Integer(0),
		"m": document.Integer(0), "g": document.Integer(0),
	})

	doc["psych"] = document.Map(map[string]document.Value{
		"size": document.String("Medium"), "age": document.String(""),
		"height": document.String(""), "weight": document.String(""),
		"trait": document.String(""), "ideal": document.String(""),
		"bond": document.String(""), "flaw": document.String(""),
		"analysis": document.String(""),
	})

	doc["psionics"] = document.Map(map[string]document.Value{
		"base_attr":   document.String("int"),
		"caster_type": document.String("1"),
		"class_lvl":   document.Integer(1),
		"mod_points":  document.Integer(0),
		"points_curr": document.Integer(0),
		"spells":      document.List(nil),
	})

	doc["universalis"] = document.Map(map[string]document.Value{
		"save_base":    document.Integer(8),
		"save_attr":    document.String("int"),
		"custom_table": document.List(nil),
		"counters":     document.List(nil),
	})

	locks := map[string]document.Value{}
	for _, section := range sectionOrder {
		locks[section] = document.Boolean(false)
	}
	doc["locks"] = document.Map(locks)

	return doc
}

// =============================================================================
// Identifiers
// =============================================================================

// MintID derives a document id from a display name: a lowercased slug
// plus a random suffix to keep ids unique across same-named records.
func MintID(name string) string {
	slug := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '_'
		}
	}, strings.TrimSpace(name))
	slug = strings.Trim(slug, "_")
	if slug == "" {
		slug = "protocol"
	}
	return slug + "_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
