package main

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"tagpatterns/internal/config"
	"tagpatterns/internal/orchestrator"
	"tagpatterns/internal/output"
)

func (a *app) runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Discover patterns for one customer and annotate their tags",
		Example: `  tagpatterns run -i tags.csv -c acme --threshold-starting 3 --threshold-ending 2
  tagpatterns run -i tags.db -c acme --overwrite-thresholds -f report`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.loadRunConfig()
			if err != nil {
				return err
			}
			return a.runOnce(cmd.Context(), cfg)
		},
	}
	addRunFlags(cmd)
	return cmd
}

// runOnce runs the pipeline and writes every configured output.
func (a *app) runOnce(ctx context.Context, cfg *config.Configuration) error {
	report, err := orchestrator.RunFromConfig(ctx, cfg, orchestrator.RunOptions{
		AppVersion: version,
		Verbose:    a.out.IsVerbose(),
		Progress:   a.out.Progress("Matching tags"),
		Sink: func(ctx context.Context, report *orchestrator.Report) error {
			return a.writeOutputs(ctx, cfg, report)
		},
	})
	if err != nil {
		return err
	}

	a.printSummary(report)
	return nil
}

func (a *app) writeOutputs(ctx context.Context, cfg *config.Configuration, report *orchestrator.Report) error {
	if err := a.writeResult(ctx, cfg, report); err != nil {
		return err
	}

	if cfg.Output.TreePath != "" {
		if err := orchestrator.WriteTrees(cfg.Output.TreePath, report.Result); err != nil {
			return err
		}
		a.out.Verbose("Wrote partition trees to %s", cfg.Output.TreePath)
	}
	return nil
}

func (a *app) writeResult(ctx context.Context, cfg *config.Configuration, report *orchestrator.Report) error {
	if cfg.Output.Format != config.OutputReport {
		return orchestrator.WriteResult(ctx, cfg.Output, report.Result, a.stdout)
	}

	text := output.RenderReport(report.Summary, report.Result)
	if a.out.IsVerbose() {
		text += "\n" + output.RenderTree("Prefix tree", report.Result.StartTree)
		text += "\n" + output.RenderTree("Suffix tree", report.Result.EndTree)
	}

	if cfg.Output.Path == "" {
		a.out.Print(text)
		return nil
	}
	if err := os.WriteFile(cfg.Output.Path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// printSummary writes run statistics to stderr in verbose mode.
func (a *app) printSummary(report *orchestrator.Report) {
	s := report.Summary
	if report.RunID != "" {
		a.out.Verbose("Run %s", report.RunID)
	}
	a.out.Verbose("Customer %q: %d rows, %d starting patterns (threshold %g), %d ending patterns (threshold %g)",
		s.Customer, s.TotalRows, s.StartingPatterns, s.ThresholdStarting, s.EndingPatterns, s.ThresholdEnding)
	if s.UnmatchedStart > 0 || s.UnmatchedEnd > 0 {
		a.out.Verbose("Unmatched rows: %d starting, %d ending", s.UnmatchedStart, s.UnmatchedEnd)
	}
	for _, line := range patternCounts("starting", s.ByStartingPattern) {
		a.out.Verbose("%s", line)
	}
	for _, line := range patternCounts("ending", s.ByEndingPattern) {
		a.out.Verbose("%s", line)
	}
	a.out.Verbose("Completed in %s", s.Duration)
}

func patternCounts(kind string, counts map[string]int) []string {
	patterns := make([]string, 0, len(counts))
	for p := range counts {
		patterns = append(patterns, p)
	}
	sort.Strings(patterns)

	lines := make([]string, len(patterns))
	for i, p := range patterns {
		lines[i] = fmt.Sprintf("  %s %q: %d", kind, p, counts[p])
	}
	return lines
}
