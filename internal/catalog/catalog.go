// Package catalog orders discovered patterns for longest-match lookup.
package catalog

import (
	"sort"
	"unicode/utf8"
)

// Build removes duplicate patterns and orders them by descending rune
// length. Patterns of equal length are ordered lexically ascending.
// The empty pattern is kept; it sorts last and matches any tag.
func Build(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	unique := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if seen[p] {
			continue
		}
		seen[p] = true
		unique = append(unique, p)
	}

	sort.Slice(unique, func(i, j int) bool {
		li, lj := utf8.RuneCountInString(unique[i]), utf8.RuneCountInString(unique[j])
		if li != lj {
			return li > lj
		}
		return unique[i] < unique[j]
	})

	return unique
}

// HasSentinel reports whether the catalog contains the empty pattern.
func HasSentinel(catalog []string) bool {
	return len(catalog) > 0 && catalog[len(catalog)-1] == ""
}
