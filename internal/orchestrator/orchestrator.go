// Package orchestrator runs the tag pattern pipeline for one customer:
// select rows, normalize tags, discover prefix and suffix patterns, and
// annotate every row with its longest matching pattern of each kind.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"tagpatterns/internal/catalog"
	"tagpatterns/internal/config"
	"tagpatterns/internal/discovery"
	"tagpatterns/internal/matcher"
	"tagpatterns/internal/normalizer"
	"tagpatterns/internal/table"
)

// Columns added to the annotated table.
const (
	StartingPatternColumn = "Starting_Pattern"
	EndingPatternColumn   = "Ending_Pattern"
)

// ProgressFunc is called after each row is matched.
type ProgressFunc func(matched, total int)

// Options controls a single pipeline run.
type Options struct {
	ThresholdStarting   float64
	ThresholdEnding     float64
	OverwriteThresholds bool // Derive thresholds from the row count instead
	CustomerColumn      string
	TagColumn           string
	Normalize           normalizer.Options
	NullValue           string // Written into pattern columns for unmatched rows
	Progress            ProgressFunc
}

// OptionsFromConfig builds run options from a configuration.
func OptionsFromConfig(cfg *config.Configuration) Options {
	return Options{
		ThresholdStarting:   cfg.ThresholdStarting,
		ThresholdEnding:     cfg.ThresholdEnding,
		OverwriteThresholds: cfg.OverwriteThresholds,
		CustomerColumn:      cfg.Columns.Customer,
		TagColumn:           cfg.Columns.Tag,
		Normalize:           normalizer.Options{UnicodeNFC: cfg.Normalize.UnicodeNFC},
		NullValue:           cfg.Output.NullValue,
	}
}

func (o *Options) applyDefaults() {
	if o.CustomerColumn == "" {
		o.CustomerColumn = table.DefaultCustomerColumn
	}
	if o.TagColumn == "" {
		o.TagColumn = table.DefaultTagColumn
	}
}

// Result is the outcome of one pipeline run.
type Result struct {
	Customer  string
	TagColumn string

	// Table holds the customer's rows with normalized tags and the two
	// pattern columns appended.
	Table *table.Table

	Starting []*matcher.MatchResult // Per row, aligned with Table.Rows
	Ending   []*matcher.MatchResult

	StartTree     *discovery.PartitionNode
	EndTree       *discovery.PartitionNode
	StartPatterns discovery.PatternList
	EndPatterns   discovery.PatternList
	StartCatalog  []string
	EndCatalog    []string

	// Thresholds actually used, after any overwrite.
	ThresholdStarting float64
	ThresholdEnding   float64
}

// Run executes the pipeline on tbl for the given customer.
//
// Explicit thresholds are validated before any work is done. A customer with
// no rows yields an empty result rather than an error. With
// OverwriteThresholds the starting threshold becomes rows/5 and the ending
// threshold rows/2.
func Run(ctx context.Context, tbl *table.Table, customer string, opts Options) (*Result, error) {
	opts.applyDefaults()

	if !opts.OverwriteThresholds {
		if err := config.ValidateThreshold("threshold_starting", opts.ThresholdStarting); err != nil {
			return nil, err
		}
		if err := config.ValidateThreshold("threshold_ending", opts.ThresholdEnding); err != nil {
			return nil, err
		}
	}

	if tbl.Column(opts.TagColumn) < 0 {
		return nil, fmt.Errorf("%w: %s", table.ErrNoTagColumn, opts.TagColumn)
	}

	selected, err := table.SelectCustomer(tbl, opts.CustomerColumn, customer)
	if err != nil {
		return nil, err
	}

	raw, err := selected.Values(opts.TagColumn)
	if err != nil {
		return nil, err
	}
	tags := normalizer.NormalizeAll(raw, opts.Normalize)
	if err := selected.SetColumn(opts.TagColumn, tags); err != nil {
		return nil, err
	}

	result := &Result{
		Customer:          customer,
		TagColumn:         opts.TagColumn,
		Table:             selected,
		ThresholdStarting: opts.ThresholdStarting,
		ThresholdEnding:   opts.ThresholdEnding,
	}

	if len(tags) > 0 && opts.OverwriteThresholds {
		result.ThresholdStarting = float64(len(tags)) / 5
		result.ThresholdEnding = float64(len(tags)) / 2
	}

	slog.Debug("running pattern discovery",
		"customer", customer,
		"rows", len(tags),
		"threshold_starting", result.ThresholdStarting,
		"threshold_ending", result.ThresholdEnding)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := discover(ctx, result, tags); err != nil {
		return nil, err
	}

	result.StartCatalog = catalog.Build(result.StartPatterns)
	result.EndCatalog = catalog.Build(result.EndPatterns)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Starting = make([]*matcher.MatchResult, len(tags))
	result.Ending = make([]*matcher.MatchResult, len(tags))
	for i, tag := range tags {
		result.Starting[i] = matcher.Match(tag, result.StartCatalog, discovery.Prefix)
		result.Ending[i] = matcher.Match(tag, result.EndCatalog, discovery.Suffix)
		if opts.Progress != nil {
			opts.Progress(i+1, len(tags))
		}
	}

	if err := annotate(selected, result, opts.NullValue); err != nil {
		return nil, err
	}

	return result, nil
}

// discover builds the prefix and suffix trees concurrently. The two builds
// share no state.
func discover(ctx context.Context, result *Result, tags []string) error {
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		result.StartTree, result.StartPatterns = discovery.Discover(tags, discovery.Prefix, result.ThresholdStarting)
		return nil
	})
	g.Go(func() error {
		result.EndTree, result.EndPatterns = discovery.Discover(tags, discovery.Suffix, result.ThresholdEnding)
		return nil
	})

	return g.Wait()
}

func annotate(t *table.Table, result *Result, nullValue string) error {
	starting := make([]string, len(result.Starting))
	ending := make([]string, len(result.Ending))
	for i := range result.Starting {
		starting[i] = result.Starting[i].String(nullValue)
		ending[i] = result.Ending[i].String(nullValue)
	}
	if err := t.SetColumn(StartingPatternColumn, starting); err != nil {
		return err
	}
	return t.SetColumn(EndingPatternColumn, ending)
}

// Records returns the annotated rows as column → value maps. Pattern
// columns of unmatched rows are nil so they encode as JSON null.
func (r *Result) Records() []map[string]any {
	records := make([]map[string]any, len(r.Table.Rows))
	startCol := r.Table.Column(StartingPatternColumn)
	endCol := r.Table.Column(EndingPatternColumn)
	for i, row := range r.Table.Rows {
		rec := make(map[string]any, len(r.Table.Header))
		for j, name := range r.Table.Header {
			rec[name] = row[j]
		}
		if startCol >= 0 && !r.Starting[i].Matched {
			rec[StartingPatternColumn] = nil
		}
		if endCol >= 0 && !r.Ending[i].Matched {
			rec[EndingPatternColumn] = nil
		}
		records[i] = rec
	}
	return records
}

// Unmatched returns the number of rows without a starting and ending pattern.
func (r *Result) Unmatched() (starting, ending int) {
	for i := range r.Starting {
		if !r.Starting[i].Matched {
			starting++
		}
		if !r.Ending[i].Matched {
			ending++
		}
	}
	return starting, ending
}
