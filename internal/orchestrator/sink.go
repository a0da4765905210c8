package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"tagpatterns/internal/config"
	"tagpatterns/internal/discovery"
	"tagpatterns/internal/table"
)

// WriteResult writes the annotated table in the configured format. CSV and
// JSON go to stdout when no path is set; SQLite always needs a path.
// The report format is rendered by the caller and is rejected here.
func WriteResult(ctx context.Context, out config.OutputConfig, result *Result, stdout io.Writer) error {
	switch out.Format {
	case config.OutputCSV, "":
		if out.Path == "" {
			return table.WriteCSV(stdout, result.Table)
		}
		return table.SaveCSV(out.Path, result.Table)

	case config.OutputJSON:
		if out.Path == "" {
			return writeJSON(stdout, result.Records())
		}
		f, err := os.Create(out.Path)
		if err != nil {
			return &table.TableError{Type: table.WriteFailed, Path: out.Path, Err: err}
		}
		if err := writeJSON(f, result.Records()); err != nil {
			f.Close()
			return err
		}
		return f.Close()

	case config.OutputSQLite:
		if out.Path == "" {
			return fmt.Errorf("output.path is required for %s output", config.OutputSQLite)
		}
		return table.Save(ctx, table.Location{
			Path:        out.Path,
			Format:      table.FormatSQLite,
			SQLiteTable: out.SQLiteTable,
		}, result.Table)

	default:
		return fmt.Errorf("unsupported output format %q", out.Format)
	}
}

// treeDocument is the JSON layout of an exported pair of partition trees.
type treeDocument struct {
	Customer          string                   `json:"customer"`
	ThresholdStarting float64                  `json:"threshold_starting"`
	ThresholdEnding   float64                  `json:"threshold_ending"`
	Starting          *discovery.PartitionNode `json:"starting"`
	Ending            *discovery.PartitionNode `json:"ending"`
	StartCatalog      []string                 `json:"starting_catalog"`
	EndCatalog        []string                 `json:"ending_catalog"`
}

// WriteTrees writes both partition trees and their catalogs as JSON.
func WriteTrees(path string, result *Result) error {
	doc := treeDocument{
		Customer:          result.Customer,
		ThresholdStarting: result.ThresholdStarting,
		ThresholdEnding:   result.ThresholdEnding,
		Starting:          result.StartTree,
		Ending:            result.EndTree,
		StartCatalog:      nonNil(result.StartCatalog),
		EndCatalog:        nonNil(result.EndCatalog),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode trees: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return &table.TableError{Type: table.WriteFailed, Path: path, Err: err}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
