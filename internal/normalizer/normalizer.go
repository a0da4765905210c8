// Package normalizer cleans raw tag strings before pattern discovery.
package normalizer

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Options controls which normalization steps run.
type Options struct {
	// UnicodeNFC composes characters to NFC so visually equal tags share
	// substrings.
	UnicodeNFC bool
}

// Normalize trims leading and trailing whitespace from tag and, when
// enabled, applies Unicode NFC composition. Applying it twice is the same
// as applying it once.
func Normalize(tag string, opts Options) string {
	if opts.UnicodeNFC {
		tag = norm.NFC.String(tag)
	}
	return strings.TrimSpace(tag)
}

// NormalizeAll returns a new slice with every tag normalized.
func NormalizeAll(tags []string, opts Options) []string {
	out := make([]string, len(tags))
	for i, tag := range tags {
		out[i] = Normalize(tag, opts)
	}
	return out
}
