package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tagpatterns/internal/audit"
	"tagpatterns/internal/output"
)

func (a *app) historyCmd() *cobra.Command {
	var limit, top int
	var runID string
	var showStats bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show past runs from the run log",
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bindFlags(cmd)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := a.readConfig()
			if err != nil {
				return err
			}
			reader := audit.NewAuditReader(cfg.RunLog.LogDirectory)

			if showStats {
				stats, err := audit.AggregateStats(reader.GetLogDirectory(), audit.StatsOptions{
					Customer: a.v.GetString("customer"),
					TopN:     top,
				})
				if err != nil {
					return err
				}
				a.out.Print(output.RenderStats(stats))
				return nil
			}

			if runID != "" {
				events, err := reader.GetRun(audit.RunID(runID))
				if err != nil {
					return err
				}
				for _, e := range events {
					a.out.Info("%s", formatEvent(e))
				}
				return nil
			}

			runs, err := reader.ListRuns()
			if err != nil {
				return err
			}
			if limit > 0 && len(runs) > limit {
				runs = runs[len(runs)-limit:]
			}
			a.out.Print(output.RenderHistory(runs))
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "number of most recent runs to list (0 for all)")
	cmd.Flags().StringVar(&runID, "run", "", "show the events of one run")
	cmd.Flags().BoolVar(&showStats, "stats", false, "show statistics across all runs")
	cmd.Flags().IntVar(&top, "top", 10, "patterns to show with --stats (0 for all)")
	cmd.Flags().StringP("customer", "c", "", "limit --stats to one customer")
	cmd.Flags().String("run-log-dir", "", "run log directory")
	return cmd
}

func formatEvent(e audit.AuditEvent) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s  %-19s", e.Timestamp.Local().Format("2006-01-02 15:04:05.000"), e.EventType)
	if e.Location != "" {
		fmt.Fprintf(&b, "  %s", e.Location)
	}
	switch e.EventType {
	case audit.EventPatternsDiscovered:
		quoted := make([]string, len(e.Patterns))
		for i, p := range e.Patterns {
			quoted[i] = fmt.Sprintf("%q", p)
		}
		fmt.Fprintf(&b, "  [%s]", strings.Join(quoted, " "))
	case audit.EventUnmatchedTag:
		fmt.Fprintf(&b, "  row %s %q", e.Metadata["row"], e.Tag)
	case audit.EventError:
		if e.ErrorDetails != nil {
			fmt.Fprintf(&b, "  %s: %s", e.ErrorDetails.Operation, e.ErrorDetails.ErrorMessage)
		}
	case audit.EventRunEnd:
		fmt.Fprintf(&b, "  %s", e.Metadata["status"])
	}
	return b.String()
}
