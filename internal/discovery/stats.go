package discovery

// Stats contains aggregate statistics about a partition tree.
type Stats struct {
	NodeCount     int // Nodes in the tree, root included
	BranchCount   int // Branches across all nodes
	TerminalCount int // Branches that end refinement
	MaxDepth      int // Deepest substring length examined
}

// Stats returns aggregate statistics about the tree rooted at n.
func (n *PartitionNode) Stats() Stats {
	var stats Stats
	n.traverseForStats(&stats)
	return stats
}

func (n *PartitionNode) traverseForStats(stats *Stats) {
	if n == nil {
		return
	}

	stats.NodeCount++
	if n.Depth > stats.MaxDepth && len(n.Branches) > 0 {
		stats.MaxDepth = n.Depth
	}

	for _, b := range n.Branches {
		stats.BranchCount++
		if b.IsTerminal() {
			stats.TerminalCount++
			continue
		}
		b.Child.traverseForStats(stats)
	}
}
