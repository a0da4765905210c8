package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tagpatterns/internal/table"
)

// ValidationSeverity represents the severity of a validation issue.
type ValidationSeverity string

const (
	SeverityError   ValidationSeverity = "error"
	SeverityWarning ValidationSeverity = "warning"
)

// ConfigValidationError represents a single validation issue.
type ConfigValidationError struct {
	Field    string             // Config field with issue (e.g., "input.path")
	Message  string             // Human-readable description
	Severity ValidationSeverity // "error" or "warning"
}

// ValidationResult contains all validation findings.
type ValidationResult struct {
	Errors   []ConfigValidationError
	Warnings []ConfigValidationError
	Valid    bool // True if no errors (warnings OK)
}

// Err returns the first error as a *ConfigError, or nil when valid.
func (r *ValidationResult) Err() error {
	if r.Valid || len(r.Errors) == 0 {
		return nil
	}
	first := r.Errors[0]
	return &ConfigError{
		Type:    ValidationError,
		Message: first.Field + ": " + first.Message,
	}
}

// ValidateConfig checks the configuration for errors and returns all findings.
func ValidateConfig(cfg *Configuration) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ConfigValidationError{},
		Warnings: []ConfigValidationError{},
		Valid:    true,
	}

	checks := [][]ConfigValidationError{
		ValidateThresholds(cfg),
		ValidateSelection(cfg),
		ValidateInput(cfg),
		ValidateOutput(cfg),
	}
	for _, findings := range checks {
		for _, err := range findings {
			if err.Severity == SeverityError {
				result.Errors = append(result.Errors, err)
			} else {
				result.Warnings = append(result.Warnings, err)
			}
		}
	}

	result.Valid = len(result.Errors) == 0

	return result
}

// ValidateThresholds checks the support thresholds. When thresholds are
// derived from the row count, explicit values only produce a warning.
func ValidateThresholds(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	fields := []struct {
		name  string
		value float64
	}{
		{"threshold_starting", cfg.ThresholdStarting},
		{"threshold_ending", cfg.ThresholdEnding},
	}

	for _, f := range fields {
		if cfg.OverwriteThresholds {
			if f.value != 0 {
				errors = append(errors, ConfigValidationError{
					Field:    f.name,
					Message:  "ignored because overwrite_thresholds is set",
					Severity: SeverityWarning,
				})
			}
			continue
		}

		if err := ValidateThreshold(f.name, f.value); err != nil {
			errors = append(errors, ConfigValidationError{
				Field:    f.name,
				Message:  err.(*ConfigError).Message,
				Severity: SeverityError,
			})
			continue
		}

		if f.value <= 1 {
			errors = append(errors, ConfigValidationError{
				Field:    f.name,
				Message:  fmt.Sprintf("%v never stops refinement; every tag becomes its own pattern", f.value),
				Severity: SeverityWarning,
			})
		}
	}

	return errors
}

// ValidateSelection checks the customer and column settings.
func ValidateSelection(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if strings.TrimSpace(cfg.Customer) == "" {
		errors = append(errors, ConfigValidationError{
			Field:    "customer",
			Message:  "customer cannot be empty",
			Severity: SeverityError,
		})
	}

	if cfg.Columns.Customer == "" {
		errors = append(errors, ConfigValidationError{
			Field:    "columns.customer",
			Message:  "column name cannot be empty",
			Severity: SeverityError,
		})
	}
	if cfg.Columns.Tag == "" {
		errors = append(errors, ConfigValidationError{
			Field:    "columns.tag",
			Message:  "column name cannot be empty",
			Severity: SeverityError,
		})
	}
	if cfg.Columns.Customer != "" && cfg.Columns.Customer == cfg.Columns.Tag {
		errors = append(errors, ConfigValidationError{
			Field:    "columns.tag",
			Message:  "tag column must differ from the customer column",
			Severity: SeverityError,
		})
	}

	return errors
}

// ValidateInput checks that the input table exists and its format is known.
func ValidateInput(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	if cfg.Input.Path == "" {
		return append(errors, ConfigValidationError{
			Field:    "input.path",
			Message:  "input path cannot be empty",
			Severity: SeverityError,
		})
	}

	info, err := os.Stat(cfg.Input.Path)
	switch {
	case os.IsNotExist(err):
		errors = append(errors, ConfigValidationError{
			Field:    "input.path",
			Message:  "file does not exist: " + cfg.Input.Path,
			Severity: SeverityError,
		})
	case os.IsPermission(err):
		errors = append(errors, ConfigValidationError{
			Field:    "input.path",
			Message:  "file is not accessible: " + cfg.Input.Path,
			Severity: SeverityError,
		})
	case err != nil:
		errors = append(errors, ConfigValidationError{
			Field:    "input.path",
			Message:  "error accessing file: " + err.Error(),
			Severity: SeverityError,
		})
	case info.IsDir():
		errors = append(errors, ConfigValidationError{
			Field:    "input.path",
			Message:  "path is a directory: " + cfg.Input.Path,
			Severity: SeverityError,
		})
	}

	switch cfg.InputLocation().ResolveFormat() {
	case table.FormatCSV, table.FormatSQLite:
	default:
		errors = append(errors, ConfigValidationError{
			Field:    "input.format",
			Message:  "invalid input format: \"" + cfg.Input.Format + "\". Must be \"csv\" or \"sqlite\"",
			Severity: SeverityError,
		})
	}

	return errors
}

// ValidateOutput checks the output format and that output paths are writable.
func ValidateOutput(cfg *Configuration) []ConfigValidationError {
	var errors []ConfigValidationError

	switch cfg.Output.Format {
	case OutputCSV, OutputJSON, OutputReport:
	case OutputSQLite:
		if cfg.Output.Path == "" {
			errors = append(errors, ConfigValidationError{
				Field:    "output.path",
				Message:  "sqlite output requires a path",
				Severity: SeverityError,
			})
		}
	default:
		errors = append(errors, ConfigValidationError{
			Field:    "output.format",
			Message:  "invalid output format: \"" + cfg.Output.Format + "\". Must be \"csv\", \"json\", \"sqlite\", or \"report\"",
			Severity: SeverityError,
		})
	}

	for _, f := range []struct{ field, path string }{
		{"output.path", cfg.Output.Path},
		{"output.tree_path", cfg.Output.TreePath},
	} {
		field, path := f.field, f.path
		if path == "" {
			continue
		}
		parent := filepath.Dir(path)
		info, err := os.Stat(parent)
		if err != nil || !info.IsDir() {
			errors = append(errors, ConfigValidationError{
				Field:    field,
				Message:  "parent directory does not exist: " + parent,
				Severity: SeverityError,
			})
		}
	}

	if cfg.Output.Path != "" && cfg.Output.Path == cfg.Input.Path {
		errors = append(errors, ConfigValidationError{
			Field:    "output.path",
			Message:  "output would overwrite the input table",
			Severity: SeverityWarning,
		})
	}

	return errors
}
