package orchestrator

import (
	"context"
	"errors"
	"math"
	"slices"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagpatterns/internal/config"
	"tagpatterns/internal/matcher"
	"tagpatterns/internal/table"
)

func customerTable(rows ...[2]string) *table.Table {
	t := table.New([]string{"Customer", "Customer_Tag", "Region"})
	for _, r := range rows {
		t.Append([]string{r[0], r[1], "eu"})
	}
	return t
}

func defaultOptions() Options {
	return Options{ThresholdStarting: 2, ThresholdEnding: 2}
}

func TestRun_AnnotatesCustomerRows(t *testing.T) {
	tbl := customerTable(
		[2]string{"acme", "abc123"},
		[2]string{"other", "zzz"},
		[2]string{"acme", "abc456"},
		[2]string{"acme", "abd789"},
	)

	result, err := Run(context.Background(), tbl, "acme", defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{"abc", "ab"}, result.StartCatalog)
	assert.Equal(t, []string{""}, result.EndCatalog)

	assert.Equal(t,
		[]string{"Customer", "Customer_Tag", "Region", StartingPatternColumn, EndingPatternColumn},
		result.Table.Header)
	require.Equal(t, 3, result.Table.Len())

	starting, err := result.Table.Values(StartingPatternColumn)
	require.NoError(t, err)
	assert.Equal(t, []string{"abc", "abc", "ab"}, starting)

	for _, m := range result.Ending {
		assert.Equal(t, &matcher.MatchResult{Matched: true, Pattern: ""}, m)
	}

	// input is left untouched
	assert.Len(t, tbl.Header, 3)
	assert.Equal(t, 4, tbl.Len())
}

func TestRun_TrimsWhitespace(t *testing.T) {
	tbl := customerTable(
		[2]string{"acme", "  abc123"},
		[2]string{"acme", "abc456 \t"},
	)

	result, err := Run(context.Background(), tbl, "acme", defaultOptions())
	require.NoError(t, err)

	tags, err := result.Table.Values("Customer_Tag")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123", "abc456"}, tags)
	assert.Equal(t, []string{"abc"}, result.StartCatalog)
}

func TestRun_SingleTagBelowThreshold(t *testing.T) {
	result, err := Run(context.Background(), customerTable([2]string{"acme", "x"}), "acme", defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, []string{""}, result.StartCatalog)
	assert.Equal(t, []string{""}, result.EndCatalog)
	assert.Equal(t, &matcher.MatchResult{Matched: true, Pattern: ""}, result.Starting[0])
}

func TestRun_UnknownCustomerIsEmpty(t *testing.T) {
	tbl := customerTable([2]string{"acme", "abc"})

	result, err := Run(context.Background(), tbl, "nobody", defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 0, result.Table.Len())
	assert.Empty(t, result.StartCatalog)
	assert.Empty(t, result.EndCatalog)
	assert.Equal(t, 0, result.StartTree.Len())
	assert.Equal(t, 0, result.EndTree.Len())
	assert.Contains(t, result.Table.Header, StartingPatternColumn)
	assert.Contains(t, result.Table.Header, EndingPatternColumn)
}

func TestRun_InvalidThresholds(t *testing.T) {
	tbl := customerTable([2]string{"acme", "abc"})

	for _, th := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		opts := Options{ThresholdStarting: 2, ThresholdEnding: th}
		_, err := Run(context.Background(), tbl, "acme", opts)

		var cfgErr *config.ConfigError
		require.ErrorAs(t, err, &cfgErr, "threshold %v", th)
		assert.Equal(t, config.ValidationError, cfgErr.Type)
	}
}

func TestRun_OverwriteThresholds(t *testing.T) {
	tbl := customerTable()
	for _, tag := range []string{"a1", "a2", "a3", "a4", "a5", "b1", "b2", "b3", "b4", "b5"} {
		tbl.Append([]string{"acme", tag, "eu"})
	}
	tbl.Append([]string{"other", "c1", "eu"})

	// explicit thresholds are ignored and never validated
	opts := Options{ThresholdStarting: 0, ThresholdEnding: -4, OverwriteThresholds: true}
	result, err := Run(context.Background(), tbl, "acme", opts)
	require.NoError(t, err)

	assert.Equal(t, 2.0, result.ThresholdStarting)
	assert.Equal(t, 5.0, result.ThresholdEnding)
}

func TestRun_MissingTagColumn(t *testing.T) {
	tbl := table.New([]string{"Customer", "Label"})
	tbl.Append([]string{"acme", "abc"})

	_, err := Run(context.Background(), tbl, "acme", defaultOptions())
	assert.ErrorIs(t, err, table.ErrNoTagColumn)
}

func TestRun_CustomColumns(t *testing.T) {
	tbl := table.New([]string{"client", "label"})
	tbl.Append([]string{"acme", "abc1"})
	tbl.Append([]string{"acme", "abc2"})

	opts := defaultOptions()
	opts.CustomerColumn = "client"
	opts.TagColumn = "label"
	result, err := Run(context.Background(), tbl, "acme", opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"abc"}, result.StartCatalog)
	assert.Equal(t, "label", result.TagColumn)
}

func TestRun_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, customerTable([2]string{"acme", "abc"}), "acme", defaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReportsProgress(t *testing.T) {
	tbl := customerTable(
		[2]string{"acme", "abc1"},
		[2]string{"acme", "abc2"},
		[2]string{"acme", "xyz"},
	)

	var calls []int
	opts := defaultOptions()
	opts.Progress = func(matched, total int) {
		assert.Equal(t, 3, total)
		calls = append(calls, matched)
	}
	_, err := Run(context.Background(), tbl, "acme", opts)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 2, 3}, calls)
}

func TestResult_RecordsUseNullForUnmatched(t *testing.T) {
	tbl := table.New([]string{"Customer", "Customer_Tag", StartingPatternColumn, EndingPatternColumn})
	tbl.Append([]string{"acme", "abc", "ab", ""})
	result := &Result{
		Table:    tbl,
		Starting: []*matcher.MatchResult{{Matched: true, Pattern: "ab"}},
		Ending:   []*matcher.MatchResult{{Matched: false}},
	}

	records := result.Records()
	require.Len(t, records, 1)
	assert.Equal(t, "ab", records[0][StartingPatternColumn])
	assert.Nil(t, records[0][EndingPatternColumn])
	assert.Equal(t, "abc", records[0]["Customer_Tag"])

	start, end := result.Unmatched()
	assert.Equal(t, 0, start)
	assert.Equal(t, 1, end)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.ThresholdEnding = 3.5
	cfg.Normalize.UnicodeNFC = true
	cfg.Output.NullValue = "NULL"

	opts := OptionsFromConfig(cfg)
	assert.Equal(t, 2.0, opts.ThresholdStarting)
	assert.Equal(t, 3.5, opts.ThresholdEnding)
	assert.Equal(t, "Customer_Tag", opts.TagColumn)
	assert.True(t, opts.Normalize.UnicodeNFC)
	assert.Equal(t, "NULL", opts.NullValue)
}

func genTagRows() gopter.Gen {
	tag := gen.SliceOf(gen.RuneRange('a', 'c')).Map(func(rs []rune) string {
		return string(rs)
	})
	return gen.SliceOf(tag)
}

func tableOf(tags []string) *table.Table {
	tbl := customerTable()
	for _, tag := range tags {
		tbl.Append([]string{"acme", tag, "eu"})
	}
	return tbl
}

// Property 1: Determinism
// Running the pipeline twice on the same rows gives identical output, and
// reordering the rows does not change either catalog.
func TestRunDeterminism(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 10

	properties := gopter.NewProperties(parameters)

	properties.Property("catalogs and annotations are reproducible", prop.ForAll(
		func(tags []string, threshold int) bool {
			opts := Options{ThresholdStarting: float64(threshold), ThresholdEnding: float64(threshold)}

			first, err := Run(context.Background(), tableOf(tags), "acme", opts)
			if err != nil {
				return false
			}
			second, err := Run(context.Background(), tableOf(tags), "acme", opts)
			if err != nil {
				return false
			}
			if !slices.Equal(first.StartCatalog, second.StartCatalog) ||
				!slices.Equal(first.EndCatalog, second.EndCatalog) {
				return false
			}
			for i := range first.Table.Rows {
				if !slices.Equal(first.Table.Rows[i], second.Table.Rows[i]) {
					return false
				}
			}

			reversed := slices.Clone(tags)
			slices.Reverse(reversed)
			third, err := Run(context.Background(), tableOf(reversed), "acme", opts)
			if err != nil {
				return false
			}
			return slices.Equal(first.StartCatalog, third.StartCatalog) &&
				slices.Equal(first.EndCatalog, third.EndCatalog)
		},
		genTagRows(),
		gen.IntRange(1, 4),
	))

	properties.TestingRun(t)
}

// Property 2: Every row is matched
// The catalogs always cover every selected tag, so no row is left without
// a starting or ending pattern.
func TestRunMatchesEveryRow(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.MaxSize = 10

	properties := gopter.NewProperties(parameters)

	properties.Property("no unmatched rows", prop.ForAll(
		func(tags []string, overwrite bool) bool {
			opts := Options{ThresholdStarting: 2, ThresholdEnding: 3, OverwriteThresholds: overwrite}
			result, err := Run(context.Background(), tableOf(tags), "acme", opts)
			if err != nil {
				return false
			}
			start, end := result.Unmatched()
			return start == 0 && end == 0
		},
		genTagRows(),
		gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestRun_ErrorsAreTyped(t *testing.T) {
	_, err := Run(context.Background(), customerTable(), "acme", Options{})
	var cfgErr *config.ConfigError
	assert.True(t, errors.As(err, &cfgErr))
}
