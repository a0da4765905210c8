package output

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"tagpatterns/internal/audit"
	"tagpatterns/internal/discovery"
	"tagpatterns/internal/orchestrator"
)

// RenderReport formats a finished run for the terminal: a summary box, both
// catalogs, and one line per row with its patterns.
func RenderReport(summary *orchestrator.RunSummary, result *orchestrator.Result) string {
	var b strings.Builder

	b.WriteString(RenderSummary(summary))
	b.WriteString("\n\n")

	b.WriteString(titleStyle.Render("Starting patterns"))
	b.WriteString("\n")
	b.WriteString(renderCatalog(result.StartCatalog, summary.ByStartingPattern))
	b.WriteString("\n")

	b.WriteString(titleStyle.Render("Ending patterns"))
	b.WriteString("\n")
	b.WriteString(renderCatalog(result.EndCatalog, summary.ByEndingPattern))
	b.WriteString("\n")

	if len(result.Starting) > 0 {
		b.WriteString(titleStyle.Render("Tags"))
		b.WriteString("\n")
		b.WriteString(renderRows(result))
	}

	return b.String()
}

// RenderSummary formats the run statistics in a box.
func RenderSummary(s *orchestrator.RunSummary) string {
	lines := []string{
		titleStyle.Render("Pattern discovery: " + s.Customer),
		fmt.Sprintf("Rows:               %d", s.TotalRows),
		fmt.Sprintf("Starting threshold: %s", formatFloat(s.ThresholdStarting)),
		fmt.Sprintf("Ending threshold:   %s", formatFloat(s.ThresholdEnding)),
		fmt.Sprintf("Starting patterns:  %d", s.StartingPatterns),
		fmt.Sprintf("Ending patterns:    %d", s.EndingPatterns),
		fmt.Sprintf("Duration:           %s", s.Duration.Round(time.Millisecond)),
	}
	if s.UnmatchedStart > 0 || s.UnmatchedEnd > 0 {
		lines = append(lines, warningStyle.Render(
			fmt.Sprintf("Unmatched rows:     %d starting, %d ending", s.UnmatchedStart, s.UnmatchedEnd)))
	}
	return boxStyle.Render(strings.Join(lines, "\n"))
}

func renderCatalog(catalog []string, counts map[string]int) string {
	if len(catalog) == 0 {
		return subtleStyle.Render("  (none)") + "\n"
	}
	var b strings.Builder
	for _, p := range catalog {
		b.WriteString("  ")
		b.WriteString(displayPattern(p))
		if counts != nil {
			b.WriteString(subtleStyle.Render(fmt.Sprintf("  %d rows", counts[p])))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderRows(result *orchestrator.Result) string {
	tagCol := result.Table.Column(result.TagColumn)

	width := len("Tag")
	for _, row := range result.Table.Rows {
		if tagCol >= 0 && lipgloss.Width(row[tagCol]) > width {
			width = lipgloss.Width(row[tagCol])
		}
	}
	tagCell := cellStyle.Width(width + 2)

	var b strings.Builder
	b.WriteString(headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Top,
			tagCell.Render("Tag"),
			cellStyle.Render("Starting"),
			cellStyle.Render("Ending"))))
	b.WriteString("\n")

	for i, row := range result.Table.Rows {
		tag := ""
		if tagCol >= 0 {
			tag = row[tagCol]
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
			tagCell.Render(tag),
			cellStyle.Render(matchCell(result.Starting[i].Matched, result.Starting[i].Pattern)),
			cellStyle.Render(matchCell(result.Ending[i].Matched, result.Ending[i].Pattern))))
		b.WriteString("\n")
	}
	return b.String()
}

func matchCell(matched bool, pattern string) string {
	if !matched {
		return errorStyle.Render("(none)")
	}
	return displayPattern(pattern)
}

// RenderTree draws a partition tree as an indented outline. Terminal
// branches show the pattern they report.
func RenderTree(title string, root *discovery.PartitionNode) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if root.Len() == 0 {
		b.WriteString(subtleStyle.Render("  (empty)"))
		b.WriteString("\n")
		return b.String()
	}
	root.Walk(func(key string, depth int, br discovery.Branch) {
		b.WriteString(strings.Repeat("  ", depth))
		b.WriteString(key)
		if br.IsTerminal() {
			b.WriteString(subtleStyle.Render(" → "))
			b.WriteString(displayPattern(br.Pattern))
		}
		b.WriteString("\n")
	})
	return b.String()
}

// RenderHistory lists runs from the run log, newest first.
func RenderHistory(runs []audit.RunInfo) string {
	if len(runs) == 0 {
		return subtleStyle.Render("No runs recorded.") + "\n"
	}

	sorted := make([]audit.RunInfo, len(runs))
	copy(sorted, runs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].StartTime.After(sorted[j].StartTime)
	})

	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-26s  %-19s  %-11s  %-16s  %6s  %s",
		"Run", "Started", "Status", "Customer", "Rows", "Patterns")))
	b.WriteString("\n")
	for _, run := range sorted {
		status := string(run.Status)
		switch run.Status {
		case audit.RunStatusFailed:
			status = errorStyle.Render(fmt.Sprintf("%-11s", status))
		case audit.RunStatusInProgress:
			status = warningStyle.Render(fmt.Sprintf("%-11s", status))
		default:
			status = fmt.Sprintf("%-11s", status)
		}
		fmt.Fprintf(&b, "%-26s  %-19s  %s  %-16s  %6d  %d/%d\n",
			run.RunID,
			run.StartTime.Local().Format("2006-01-02 15:04:05"),
			status,
			run.Customer,
			run.Summary.TotalRows,
			run.Summary.StartingPatterns,
			run.Summary.EndingPatterns)
	}
	return b.String()
}

// RenderStatus lists the customers in a table with their row counts.
func RenderStatus(status *orchestrator.StatusResult) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-24s  %6s  %6s  %6s", "Customer", "Rows", "Unique", "Empty")))
	b.WriteString("\n")
	for _, c := range status.Customers {
		s := status.ByCustomer[c]
		fmt.Fprintf(&b, "%-24s  %6d  %6d  %6d\n", c, s.Rows, s.UniqueTags, s.EmptyTags)
	}
	b.WriteString(subtleStyle.Render(fmt.Sprintf("%d customers, %d rows", len(status.Customers), status.GrandTotal)))
	b.WriteString("\n")
	return b.String()
}

func formatFloat(f float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", f), "0"), ".")
}

// RenderStats formats aggregate run-log statistics with the most frequently
// discovered patterns.
func RenderStats(stats *audit.RunStats) string {
	if stats.TotalRuns == 0 {
		return subtleStyle.Render("No runs recorded.") + "\n"
	}

	lines := []string{
		titleStyle.Render("Run log statistics"),
		fmt.Sprintf("Runs:       %d (%d completed, %d failed)", stats.TotalRuns, stats.CompletedRuns, stats.FailedRuns),
		fmt.Sprintf("Rows:       %d", stats.TotalRows),
		fmt.Sprintf("Customers:  %d", len(stats.ByCustomer)),
		fmt.Sprintf("First run:  %s", stats.FirstRun.Local().Format("2006-01-02 15:04")),
		fmt.Sprintf("Last run:   %s", stats.LastRun.Local().Format("2006-01-02 15:04")),
	}

	var b strings.Builder
	b.WriteString(boxStyle.Render(strings.Join(lines, "\n")))
	b.WriteString("\n\n")
	b.WriteString(titleStyle.Render("Starting patterns"))
	b.WriteString("\n")
	b.WriteString(renderCounts(stats.StartingPatterns))
	b.WriteString(titleStyle.Render("Ending patterns"))
	b.WriteString("\n")
	b.WriteString(renderCounts(stats.EndingPatterns))
	return b.String()
}

// renderCounts lists patterns by descending count.
func renderCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return subtleStyle.Render("  (none)") + "\n"
	}
	patterns := make([]string, 0, len(counts))
	for p := range counts {
		patterns = append(patterns, p)
	}
	sort.Slice(patterns, func(i, j int) bool {
		if counts[patterns[i]] != counts[patterns[j]] {
			return counts[patterns[i]] > counts[patterns[j]]
		}
		return patterns[i] < patterns[j]
	})

	var b strings.Builder
	for _, p := range patterns {
		fmt.Fprintf(&b, "  %-24s %s\n", displayPattern(p), subtleStyle.Render(fmt.Sprintf("%d runs", counts[p])))
	}
	return b.String()
}
