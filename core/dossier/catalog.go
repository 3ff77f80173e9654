package dossier

import (
	"github.com/ordo-continuum/dossier/core/document"
)

// =============================================================================
// Section Catalog
// =============================================================================

// Section is one tab of the editor: a name plus the ordered-list fields
// the tab owns. List mutations on a tab always re-sync the whole list.
type Section struct {
	Name  string
	Lists []document.Path
}

// DefaultSection is where a freshly opened surface lands.
const DefaultSection = "identity"

var sectionOrder = []string{
	"identity", "biometrics", "skills", "equipment",
	"psych", "psionics", "universalis",
}

var sections = map[string]Section{
	"identity":   {Name: "identity"},
	"biometrics": {Name: "biometrics"},
	"skills": {Name: "skills", Lists: paths(
		"abilities", "traits", "features",
	)},
	"equipment": {Name: "equipment", Lists: paths(
		"combat.weapons", "combat.inventory",
		"profs.langs", "profs.tools", "profs.armory",
	)},
	"psych":    {Name: "psych"},
	"psionics": {Name: "psionics", Lists: paths("psionics.spells")},
	"universalis": {Name: "universalis", Lists: paths(
		"universalis.custom_table", "universalis.counters",
	)},
}

func paths(raw ...string) []document.Path {
	out := make([]document.Path, len(raw))
	for i, r := range raw {
		out[i] = document.ParsePath(r)
	}
	return out
}

// Sections returns the tabs in display order.
func Sections() []Section {
	out := make([]Section, 0, len(sectionOrder))
	for _, name := range sectionOrder {
		out = append(out, sections[name])
	}
	return out
}

// SectionByName looks a tab up by name.
func SectionByName(name string) (Section, bool) {
	s, ok := sections[name]
	return s, ok
}

// IsListPath reports whether the path is one of the catalog's ordered
// lists.
func IsListPath(path document.Path) bool {
	for _, s := range sections {
		for _, lp := range s.Lists {
			if lp.Equal(path) {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// Edit Kinds
// =============================================================================

// editKinds maps a modal kind to the scalar paths its form edits.
var editKinds = map[string][]document.Path{
	"identity": paths(
		"meta.name", "meta.rank", "meta.class", "meta.archetype",
		"meta.race", "meta.background", "meta.origin",
	),
	"status": paths(
		"stats.hp_curr", "stats.hp_max", "stats.hp_temp",
		"stats.ac", "stats.shield_curr", "stats.shield_max",
	),
	"psych": paths(
		"psych.trait", "psych.ideal", "psych.bond", "psych.flaw",
		"psych.analysis",
	),
	"psionics": paths(
		"psionics.points_curr", "psionics.mod_points",
	),
}

// EditKind returns the scalar paths a modal kind may touch.
func EditKind(kind string) ([]document.Path, bool) {
	ps, ok := editKinds[kind]
	return ps, ok
}
