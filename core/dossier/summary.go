package dossier

import (
	"fmt"
	"strings"

	"github.com/ordo-continuum/dossier/core/document"
	"github.com/ordo-continuum/dossier/core/gateway"
)

const analysisPreviewLimit = 200

// Summary renders the chat-surface digest of a record: identity line,
// combat metrics, and a truncated analysis excerpt. All field access
// goes through GetString so missing data degrades to placeholders
// instead of failing.
func Summary(id string, ns gateway.Namespace, doc document.Document) string {
	field := func(raw string) string {
		if v, ok := document.GetString(doc, document.ParsePath(raw)); ok && v != "" {
			return v
		}
		return "N/A"
	}

	analysis := field("psych.analysis")
	if len(analysis) > analysisPreviewLimit {
		analysis = analysis[:analysisPreviewLimit-3] + "..."
	}
	if analysis == "N/A" {
		analysis = "No data available."
	}

	var b strings.Builder
	header := "PROTOCOL"
	if ns == gateway.NamespaceSecondary {
		header = "SUBJECT"
	}
	fmt.Fprintf(&b, "%s: %s\n", header, strings.ToUpper(field("meta.name")))
	fmt.Fprintf(&b, "ID: %s\n", strings.ToUpper(id))
	fmt.Fprintf(&b, "Rank: %s\n", field("meta.rank"))
	fmt.Fprintf(&b, "Data: %s %s / %s\n", field("meta.race"), field("meta.class"), field("meta.archetype"))
	fmt.Fprintf(&b, "LVL: %s | HP: %s | AC: %s\n", field("meta.level"), field("stats.hp_max"), field("stats.ac"))
	fmt.Fprintf(&b, "Analysis: %s", analysis)
	return b.String()
}
