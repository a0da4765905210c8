// Package config handles configuration loading and validation for tagpatterns.
package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"

	"tagpatterns/internal/audit"
	"tagpatterns/internal/table"
)

// ConfigErrorType represents the type of configuration error.
type ConfigErrorType string

const (
	FileNotFound    ConfigErrorType = "FILE_NOT_FOUND"
	InvalidSyntax   ConfigErrorType = "INVALID_SYNTAX"
	ValidationError ConfigErrorType = "VALIDATION_ERROR"
)

// ConfigError represents an error that occurred during configuration loading.
type ConfigError struct {
	Type    ConfigErrorType
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	switch e.Type {
	case FileNotFound:
		return fmt.Sprintf("configuration file not found: %s", e.Path)
	case InvalidSyntax:
		return fmt.Sprintf("invalid configuration file: %s", e.Message)
	case ValidationError:
		return fmt.Sprintf("configuration validation error: %s", e.Message)
	default:
		return fmt.Sprintf("configuration error: %s", e.Message)
	}
}

// Output format names.
const (
	OutputCSV    = "csv"
	OutputJSON   = "json"
	OutputSQLite = "sqlite"
	OutputReport = "report"
)

// Columns names the table columns the pipeline reads.
type Columns struct {
	Customer string `yaml:"customer" json:"customer"`
	Tag      string `yaml:"tag" json:"tag"`
}

// InputConfig describes the table to analyse.
type InputConfig struct {
	Path        string `yaml:"path" json:"path"`
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	SQLiteTable string `yaml:"sqlite_table,omitempty" json:"sqlite_table,omitempty"`
}

// OutputConfig describes where the annotated table goes.
type OutputConfig struct {
	Path        string `yaml:"path,omitempty" json:"path,omitempty"` // Empty writes to stdout
	Format      string `yaml:"format,omitempty" json:"format,omitempty"`
	NullValue   string `yaml:"null_value,omitempty" json:"null_value,omitempty"`
	SQLiteTable string `yaml:"sqlite_table,omitempty" json:"sqlite_table,omitempty"`
	TreePath    string `yaml:"tree_path,omitempty" json:"tree_path,omitempty"` // Partition trees as JSON
}

// NormalizeConfig toggles optional normalization steps.
type NormalizeConfig struct {
	UnicodeNFC bool `yaml:"unicode_nfc" json:"unicode_nfc"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" json:"debounce_ms"`
}

// Configuration holds all settings for tagpatterns.
type Configuration struct {
	Customer            string             `yaml:"customer" json:"customer"`
	ThresholdStarting   float64            `yaml:"threshold_starting" json:"threshold_starting"`
	ThresholdEnding     float64            `yaml:"threshold_ending" json:"threshold_ending"`
	OverwriteThresholds bool               `yaml:"overwrite_thresholds" json:"overwrite_thresholds"`
	Columns             Columns            `yaml:"columns" json:"columns"`
	Input               InputConfig        `yaml:"input" json:"input"`
	Output              OutputConfig       `yaml:"output" json:"output"`
	Normalize           NormalizeConfig    `yaml:"normalize" json:"normalize"`
	RunLog              *audit.AuditConfig `yaml:"run_log,omitempty" json:"run_log,omitempty"`
	Watch               WatchConfig        `yaml:"watch" json:"watch"`
}

// Default returns a Configuration with every default applied.
func Default() *Configuration {
	cfg := &Configuration{
		ThresholdStarting: 2,
		ThresholdEnding:   2,
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-valued fields with their defaults.
// Thresholds are left alone; zero is reported by validation.
func (c *Configuration) ApplyDefaults() {
	if c.Columns.Customer == "" {
		c.Columns.Customer = table.DefaultCustomerColumn
	}
	if c.Columns.Tag == "" {
		c.Columns.Tag = table.DefaultTagColumn
	}
	if c.Output.Format == "" {
		c.Output.Format = OutputCSV
	}
	if c.Watch.DebounceMs == 0 {
		c.Watch.DebounceMs = 500
	}
	c.ApplyRunLogDefaults()
}

// ApplyRunLogDefaults ensures the RunLog configuration has sensible defaults.
// If RunLog is nil, it is created with defaults.
func (c *Configuration) ApplyRunLogDefaults() {
	defaults := audit.DefaultAuditConfig()

	if c.RunLog == nil {
		c.RunLog = &defaults
		return
	}

	if c.RunLog.LogDirectory == "" {
		c.RunLog.LogDirectory = defaults.LogDirectory
	}
}

// Validate checks the fields that must hold for any use of the configuration.
func (c *Configuration) Validate() error {
	if !c.OverwriteThresholds {
		if err := ValidateThreshold("threshold_starting", c.ThresholdStarting); err != nil {
			return err
		}
		if err := ValidateThreshold("threshold_ending", c.ThresholdEnding); err != nil {
			return err
		}
	}

	if c.Columns.Customer == "" || c.Columns.Tag == "" {
		return &ConfigError{
			Type:    ValidationError,
			Message: "columns.customer and columns.tag cannot be empty",
		}
	}

	if c.Columns.Customer == c.Columns.Tag {
		return &ConfigError{
			Type:    ValidationError,
			Message: "columns.customer and columns.tag must differ",
		}
	}

	return nil
}

// ValidateThreshold rejects support thresholds that are zero, negative or
// not finite.
func ValidateThreshold(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("%s must be a finite number, got %v", field, v),
		}
	}
	if v <= 0 {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("%s must be greater than zero, got %v", field, v),
		}
	}
	return nil
}

// Load reads, parses and validates a YAML or JSON configuration file.
func Load(filePath string) (*Configuration, error) {
	cfg, err := Read(filePath)
	if err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Read reads and parses a configuration file without validating it, so
// callers can layer overrides on top first.
func Read(filePath string) (*Configuration, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{
				Type: FileNotFound,
				Path: filePath,
			}
		}
		return nil, &ConfigError{
			Type:    FileNotFound,
			Path:    filePath,
			Message: err.Error(),
		}
	}

	return Parse(data)
}

// Parse decodes configuration bytes and applies defaults without validating.
// JSON documents are accepted since YAML is a superset of JSON.
func Parse(data []byte) (*Configuration, error) {
	var config Configuration
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, &ConfigError{
			Type:    InvalidSyntax,
			Message: err.Error(),
		}
	}

	config.ApplyDefaults()
	return &config, nil
}

// Save serializes and writes a configuration to the given path as YAML.
func Save(config *Configuration, filePath string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return &ConfigError{
			Type:    InvalidSyntax,
			Message: err.Error(),
		}
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil {
		return &ConfigError{
			Type:    ValidationError,
			Message: fmt.Sprintf("failed to write configuration file: %s", err.Error()),
		}
	}

	return nil
}

// InputLocation returns the table location for the configured input.
func (c *Configuration) InputLocation() table.Location {
	return table.Location{
		Path:        c.Input.Path,
		Format:      table.Format(c.Input.Format),
		SQLiteTable: c.Input.SQLiteTable,
	}
}
