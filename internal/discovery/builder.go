package discovery

import (
	"log/slog"
	"sort"
)

// PatternList is the sequence of terminal patterns in the order they were
// reported. The same pattern may appear several times.
type PatternList []string

// builder carries the state shared by every level of one build.
type builder struct {
	location  Location
	threshold float64
	patterns  PatternList
}

// Discover partitions tags from the empty pattern at depth 1.
func Discover(tags []string, location Location, threshold float64) (*PartitionNode, PatternList) {
	node, patterns := Build(tags, "", 1, location, threshold)
	slog.Debug("patterns discovered",
		"location", location.String(),
		"threshold", threshold,
		"tags", len(tags),
		"reported", len(patterns))
	return node, patterns
}

// Build partitions tags by their discriminating substring of length depth.
// A group smaller than threshold stops refinement and reports parentPattern;
// a larger group is refined one character further. Tags shorter than depth
// are keyed by the whole tag, and a supported group keyed that way is
// terminal with its own key since it can not be refined.
func Build(tags []string, parentPattern string, depth int, location Location, threshold float64) (*PartitionNode, PatternList) {
	b := &builder{
		location:  location,
		threshold: threshold,
		patterns:  PatternList{},
	}
	runes := make([][]rune, len(tags))
	for i, tag := range tags {
		runes[i] = []rune(tag)
	}
	if depth < 1 {
		depth = 1
	}
	node := b.build(runes, parentPattern, depth)
	return node, b.patterns
}

func (b *builder) build(tags [][]rune, parentPattern string, depth int) *PartitionNode {
	node := newNode(depth)
	if len(tags) == 0 {
		return node
	}

	groups := make(map[string][][]rune)
	for _, tag := range tags {
		key := b.location.Cut(tag, depth)
		groups[key] = append(groups[key], tag)
	}

	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		group := groups[key]
		switch {
		case float64(len(group)) < b.threshold:
			node.Branches[key] = Branch{Pattern: parentPattern}
			b.patterns = append(b.patterns, parentPattern)
		case runeLen(key) < depth:
			// every tag in the group is exactly key
			node.Branches[key] = Branch{Pattern: key}
			b.patterns = append(b.patterns, key)
		default:
			node.Branches[key] = Branch{Child: b.build(group, key, depth+1)}
		}
	}
	return node
}

func runeLen(s string) int {
	n := 0
	for range s {
		n++
	}
	return n
}
