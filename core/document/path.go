package document

import (
	"strings"
)

// =============================================================================
// Domain Paths
// =============================================================================

// Path addresses a node inside a document by field-name segments. Paths
// descend through map children only; list elements are addressed by a
// (path, index) pair at the call site, never by a path segment.
type Path []string

// ParsePath splits a dotted path like "stats.hp_curr" into segments.
// An empty string yields a nil path.
func ParsePath(s string) Path {
	if s == "" {
		return nil
	}
	return Path(strings.Split(s, "."))
}

// NewPath builds a path from explicit segments.
func NewPath(segments ...string) Path {
	return Path(segments)
}

func (p Path) String() string {
	return strings.Join(p, ".")
}

// IsEmpty reports whether the path has no segments.
func (p Path) IsEmpty() bool {
	return len(p) == 0
}

// Child returns the path extended by one segment.
func (p Path) Child(segment string) Path {
	out := make(Path, len(p)+1)
	copy(out, p)
	out[len(p)] = segment
	return out
}

// Equal reports segment-wise equality.
func (p Path) Equal(other Path) bool {
	if len(p) != len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// IsAncestorOf reports whether p is a strict prefix of other.
func (p Path) IsAncestorOf(other Path) bool {
	if len(p) >= len(other) {
		return false
	}
	for i := range p {
		if p[i] != other[i] {
			return false
		}
	}
	return true
}

// RelativeTo returns the suffix of p below the ancestor path. The second
// return is false when ancestor is not a strict prefix of p.
func (p Path) RelativeTo(ancestor Path) (Path, bool) {
	if !ancestor.IsAncestorOf(p) {
		return nil, false
	}
	return p[len(ancestor):], true
}
