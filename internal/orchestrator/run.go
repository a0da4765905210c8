package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"tagpatterns/internal/audit"
	"tagpatterns/internal/config"
	"tagpatterns/internal/discovery"
	"tagpatterns/internal/table"
)

// RunOptions controls RunFromConfig beyond what the configuration holds.
type RunOptions struct {
	AppVersion string
	Verbose    bool // Populate per-pattern counts in the summary
	Progress   ProgressFunc

	// Sink writes the run's outputs. It is called before the run is ended
	// in the run log, so a failed write ends the run as FAILED.
	Sink func(ctx context.Context, report *Report) error
}

// Report is the outcome of RunFromConfig.
type Report struct {
	RunID   audit.RunID // Empty when the run log is disabled
	Result  *Result
	Summary *RunSummary
}

// RunFromConfig loads the configured input table, runs the pipeline for the
// configured customer and records the run in the run log.
func RunFromConfig(ctx context.Context, cfg *config.Configuration, opts RunOptions) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()

	var writer *audit.AuditWriter
	if cfg.RunLog != nil && !cfg.RunLog.Disabled {
		w, err := audit.NewAuditWriter(*cfg.RunLog)
		if err != nil {
			return nil, fmt.Errorf("failed to open run log: %w", err)
		}
		defer w.Close()
		writer = w
	}

	report := &Report{}
	if writer != nil {
		runID, err := writer.StartRun(opts.AppVersion, cfg.Customer, map[string]string{
			"input":               cfg.Input.Path,
			"overwriteThresholds": strconv.FormatBool(cfg.OverwriteThresholds),
		})
		if err != nil {
			return nil, err
		}
		report.RunID = runID
	}

	fail := func(operation string, err error) (*Report, error) {
		if writer != nil {
			if logErr := writer.RecordError(report.RunID, operation, err); logErr != nil {
				slog.Warn("failed to record run error", "error", logErr)
			}
			if logErr := writer.EndRun(report.RunID, audit.RunStatusFailed, audit.RunSummary{}); logErr != nil {
				slog.Warn("failed to end run", "error", logErr)
			}
		}
		return nil, err
	}

	tbl, err := table.Load(ctx, cfg.InputLocation())
	if err != nil {
		return fail("load", err)
	}

	runOpts := OptionsFromConfig(cfg)
	runOpts.Progress = opts.Progress
	result, err := Run(ctx, tbl, cfg.Customer, runOpts)
	if err != nil {
		return fail("run", err)
	}
	report.Result = result
	report.Summary = GenerateSummary(result, time.Since(start), opts.Verbose)

	if opts.Sink != nil {
		if err := opts.Sink(ctx, report); err != nil {
			return fail("write", err)
		}
	}

	if writer != nil {
		if err := recordResult(writer, report.RunID, result); err != nil {
			return nil, err
		}
		if err := writer.EndRun(report.RunID, audit.RunStatusCompleted, report.Summary.AuditSummary()); err != nil {
			return nil, err
		}
	}

	slog.Debug("run complete",
		"run_id", report.RunID,
		"rows", report.Summary.TotalRows,
		"duration", report.Summary.Duration)

	return report, nil
}

func recordResult(w *audit.AuditWriter, runID audit.RunID, result *Result) error {
	if err := w.RecordPatterns(runID, discovery.Prefix.String(), result.ThresholdStarting, result.StartCatalog); err != nil {
		return err
	}
	if err := w.RecordPatterns(runID, discovery.Suffix.String(), result.ThresholdEnding, result.EndCatalog); err != nil {
		return err
	}

	tagCol := result.Table.Column(result.TagColumn)
	for i := range result.Starting {
		tag := ""
		if tagCol >= 0 {
			tag = result.Table.Rows[i][tagCol]
		}
		if !result.Starting[i].Matched {
			if err := w.RecordUnmatched(runID, discovery.Prefix.String(), i, tag); err != nil {
				return err
			}
		}
		if !result.Ending[i].Matched {
			if err := w.RecordUnmatched(runID, discovery.Suffix.String(), i, tag); err != nil {
				return err
			}
		}
	}
	return nil
}
