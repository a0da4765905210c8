// Package matcher assigns each tag its longest cataloged pattern.
package matcher

import (
	"tagpatterns/internal/discovery"
)

// MatchResult represents the result of matching a tag against a catalog.
type MatchResult struct {
	Matched bool
	Pattern string
}

// String returns the pattern, or nullValue when nothing matched.
func (r *MatchResult) String(nullValue string) string {
	if r == nil || !r.Matched {
		return nullValue
	}
	return r.Pattern
}

// Match scans the catalog in order and returns the first pattern found at the
// given location of tag. The catalog must already be sorted longest first, so
// the first hit is the longest one.
func Match(tag string, catalog []string, location discovery.Location) *MatchResult {
	for _, pattern := range catalog {
		if location.Matches(tag, pattern) {
			return &MatchResult{
				Matched: true,
				Pattern: pattern,
			}
		}
	}

	return &MatchResult{Matched: false}
}

// MatchAll matches every tag against the catalog, preserving order.
func MatchAll(tags []string, catalog []string, location discovery.Location) []*MatchResult {
	results := make([]*MatchResult, len(tags))
	for i, tag := range tags {
		results[i] = Match(tag, catalog, location)
	}
	return results
}
