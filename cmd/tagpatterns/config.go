package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"tagpatterns/internal/config"
)

// flagKeys maps command-line flags to configuration keys. The same keys
// are read from TAGPATTERNS_* environment variables, dots becoming
// underscores (TAGPATTERNS_INPUT_PATH).
var flagKeys = map[string]string{
	"customer":             "customer",
	"threshold-starting":   "threshold_starting",
	"threshold-ending":     "threshold_ending",
	"overwrite-thresholds": "overwrite_thresholds",
	"input":                "input.path",
	"input-format":         "input.format",
	"sqlite-table":         "input.sqlite_table",
	"output":               "output.path",
	"format":               "output.format",
	"null-value":           "output.null_value",
	"tree":                 "output.tree_path",
	"nfc":                  "normalize.unicode_nfc",
	"run-log-dir":          "run_log.log_directory",
	"no-run-log":           "run_log.disabled",
	"debounce-ms":          "watch.debounce_ms",
}

// addInputFlags registers the flags every table-reading command accepts.
func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringP("input", "i", "", "input table (CSV file or SQLite database)")
	f.String("input-format", "", "input format: csv or sqlite (default: from extension)")
	f.String("sqlite-table", "", "table to read from a SQLite input")
	f.String("run-log-dir", "", "run log directory")
}

// addRunFlags registers the analysis flags shared by run and watch.
func addRunFlags(cmd *cobra.Command) {
	addInputFlags(cmd)
	f := cmd.Flags()
	f.StringP("customer", "c", "", "customer whose tags are analysed")
	f.Float64("threshold-starting", 0, "minimum tags sharing a prefix pattern")
	f.Float64("threshold-ending", 0, "minimum tags sharing a suffix pattern")
	f.Bool("overwrite-thresholds", false, "derive thresholds from the row count (rows/5 and rows/2)")
	f.StringP("output", "o", "", "output path (default: stdout)")
	f.StringP("format", "f", "", "output format: csv, json, sqlite or report")
	f.String("null-value", "", "value written for rows without a pattern")
	f.String("tree", "", "write both partition trees as JSON to this path")
	f.Bool("nfc", false, "apply Unicode NFC normalization to tags")
	f.Bool("no-run-log", false, "do not record the run in the run log")
}

// bindFlags binds the executing command's flags. Binding happens in PreRunE
// so commands sharing flag names do not shadow each other.
func (a *app) bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := a.v.BindPFlag(key, flag); err != nil {
				return err
			}
		}
	}
	return nil
}

// readConfig loads the config file, or the defaults when none is given,
// and layers explicitly set flags and environment variables on top.
func (a *app) readConfig() (*config.Configuration, error) {
	cfg := config.Default()
	if a.cfgFile != "" {
		var err error
		cfg, err = config.Read(a.cfgFile)
		if err != nil {
			return nil, err
		}
	}

	v := a.v
	setString := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	setString("customer", &cfg.Customer)
	setString("input.path", &cfg.Input.Path)
	setString("input.format", &cfg.Input.Format)
	setString("input.sqlite_table", &cfg.Input.SQLiteTable)
	setString("output.path", &cfg.Output.Path)
	setString("output.format", &cfg.Output.Format)
	setString("output.null_value", &cfg.Output.NullValue)
	setString("output.tree_path", &cfg.Output.TreePath)
	setString("run_log.log_directory", &cfg.RunLog.LogDirectory)

	if v.IsSet("threshold_starting") {
		cfg.ThresholdStarting = v.GetFloat64("threshold_starting")
	}
	if v.IsSet("threshold_ending") {
		cfg.ThresholdEnding = v.GetFloat64("threshold_ending")
	}
	if v.IsSet("overwrite_thresholds") {
		cfg.OverwriteThresholds = v.GetBool("overwrite_thresholds")
	}
	if v.IsSet("normalize.unicode_nfc") {
		cfg.Normalize.UnicodeNFC = v.GetBool("normalize.unicode_nfc")
	}
	if v.IsSet("run_log.disabled") {
		cfg.RunLog.Disabled = v.GetBool("run_log.disabled")
	}
	if v.IsSet("watch.debounce_ms") {
		cfg.Watch.DebounceMs = v.GetInt("watch.debounce_ms")
	}

	// Overwrite derives both thresholds, so drop built-in ones the user never set.
	if a.cfgFile == "" && cfg.OverwriteThresholds {
		if !v.IsSet("threshold_starting") {
			cfg.ThresholdStarting = 0
		}
		if !v.IsSet("threshold_ending") {
			cfg.ThresholdEnding = 0
		}
	}

	cfg.ApplyDefaults()
	return cfg, nil
}

// loadRunConfig reads the configuration and validates it for an analysis run.
// Warnings are logged; the first error is returned.
func (a *app) loadRunConfig() (*config.Configuration, error) {
	cfg, err := a.readConfig()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	result := config.ValidateConfig(cfg)
	for _, w := range result.Warnings {
		slog.Warn("configuration warning", "field", w.Field, "message", w.Message)
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return cfg, nil
}
