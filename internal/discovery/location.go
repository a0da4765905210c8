// Package discovery finds the prefix and suffix patterns shared by a set of tags.
package discovery

import (
	"fmt"
	"strings"
)

// Location selects which end of a tag patterns are taken from.
type Location int

const (
	// Prefix takes substrings from the start of each tag.
	Prefix Location = iota
	// Suffix takes substrings from the end of each tag.
	Suffix
)

// Location names as written to outputs and the run log.
const (
	PrefixName = "prefix"
	SuffixName = "suffix"
)

// String returns the lowercase name of the location.
func (l Location) String() string {
	switch l {
	case Prefix:
		return PrefixName
	case Suffix:
		return SuffixName
	default:
		return fmt.Sprintf("location(%d)", int(l))
	}
}

// ParseLocation parses "prefix"/"starting" or "suffix"/"ending" (case-insensitive).
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case PrefixName, "starting", "start":
		return Prefix, nil
	case SuffixName, "ending", "end":
		return Suffix, nil
	default:
		return Prefix, fmt.Errorf("unknown location %q", s)
	}
}

// Cut returns the discriminating substring of tag at the given depth: the first
// depth runes for Prefix, the last depth runes for Suffix. A tag with fewer than
// depth runes is returned whole.
func (l Location) Cut(tag []rune, depth int) string {
	if depth >= len(tag) {
		return string(tag)
	}
	if depth <= 0 {
		return ""
	}
	if l == Suffix {
		return string(tag[len(tag)-depth:])
	}
	return string(tag[:depth])
}

// Matches reports whether pattern sits at this location of tag.
func (l Location) Matches(tag, pattern string) bool {
	if l == Suffix {
		return strings.HasSuffix(tag, pattern)
	}
	return strings.HasPrefix(tag, pattern)
}
