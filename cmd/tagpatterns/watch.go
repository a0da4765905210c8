package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"tagpatterns/internal/watcher"
)

func (a *app) watchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-run the analysis whenever the input table changes",
		Long: `watch runs the analysis once, then again each time the input file is
written. Rapid successive writes are collapsed into a single run.`,
		Args: cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.bindFlags(cmd)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg, err := a.loadRunConfig()
			if err != nil {
				return err
			}

			if err := a.runOnce(ctx, cfg); err != nil {
				a.out.Error("Run failed: %v", err)
			}

			w := watcher.New(&watcher.WatchConfig{
				Debounce: time.Duration(cfg.Watch.DebounceMs) * time.Millisecond,
			}, func(path string) error {
				slog.Info("input changed", "path", path)
				return a.runOnce(ctx, cfg)
			})
			if err := w.Start([]string{cfg.Input.Path}); err != nil {
				return err
			}
			a.out.Error("Watching %s, debounce %s (Ctrl+C to stop)", cfg.Input.Path, w.GetConfig().Debounce)

			<-ctx.Done()

			summary := w.Stop()
			a.out.Error("Stopped after %s: %d runs, %d failed",
				summary.Duration.Round(time.Second), summary.Runs, summary.Failures)
			return nil
		},
	}
	addRunFlags(cmd)
	cmd.Flags().Int("debounce-ms", 0, "quiet period before a change triggers a run (default 500)")
	return cmd
}
