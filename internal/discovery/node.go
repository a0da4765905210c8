package discovery

import (
	"encoding/json"
	"sort"
)

// Branch is one entry of a PartitionNode. It is either terminal, carrying the
// pattern reported for its substring, or it holds a child node that refines
// the substring by one more character.
type Branch struct {
	Pattern string
	Child   *PartitionNode
}

// IsTerminal returns true if the branch ends refinement.
func (b Branch) IsTerminal() bool {
	return b.Child == nil
}

// PartitionNode is one level of the partition tree. Depth is the substring
// length examined at this node and Branches maps each discriminating
// substring of that length to its branch.
type PartitionNode struct {
	Depth    int
	Branches map[string]Branch
}

func newNode(depth int) *PartitionNode {
	return &PartitionNode{
		Depth:    depth,
		Branches: make(map[string]Branch),
	}
}

// Keys returns the node's substrings in ascending order.
func (n *PartitionNode) Keys() []string {
	if n == nil {
		return nil
	}
	keys := make([]string, 0, len(n.Branches))
	for k := range n.Branches {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of branches at this node.
func (n *PartitionNode) Len() int {
	if n == nil {
		return 0
	}
	return len(n.Branches)
}

// Terminals returns every terminal branch in the tree as substring → pattern.
func (n *PartitionNode) Terminals() map[string]string {
	out := make(map[string]string)
	n.Walk(func(key string, depth int, b Branch) {
		if b.IsTerminal() {
			out[key] = b.Pattern
		}
	})
	return out
}

// Walk visits every branch depth-first with keys in ascending order.
func (n *PartitionNode) Walk(fn func(key string, depth int, b Branch)) {
	if n == nil {
		return
	}
	for _, key := range n.Keys() {
		b := n.Branches[key]
		fn(key, n.Depth, b)
		if b.Child != nil {
			b.Child.Walk(fn)
		}
	}
}

// MarshalJSON encodes the tree as nested objects: terminal branches become
// strings and child nodes become objects keyed by substring.
func (n *PartitionNode) MarshalJSON() ([]byte, error) {
	if n == nil {
		return []byte("{}"), nil
	}
	m := make(map[string]any, len(n.Branches))
	for key, b := range n.Branches {
		if b.IsTerminal() {
			m[key] = b.Pattern
		} else {
			m[key] = b.Child
		}
	}
	return json.Marshal(m)
}
