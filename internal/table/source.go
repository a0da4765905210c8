package table

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names a table encoding.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// DefaultSQLiteTable is the table name used when none is configured.
const DefaultSQLiteTable = "customer_tags"

// Location describes where a table is read from or written to.
type Location struct {
	Path        string
	Format      Format // Empty means infer from the file extension
	SQLiteTable string
}

// ResolveFormat returns the explicit format or infers it from the path.
func (l Location) ResolveFormat() Format {
	if l.Format != "" {
		return Format(strings.ToLower(string(l.Format)))
	}
	switch strings.ToLower(filepath.Ext(l.Path)) {
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatCSV
	}
}

func (l Location) sqliteTable() string {
	if l.SQLiteTable == "" {
		return DefaultSQLiteTable
	}
	return l.SQLiteTable
}

// Load reads a table from the location.
func Load(ctx context.Context, loc Location) (*Table, error) {
	switch loc.ResolveFormat() {
	case FormatCSV:
		return LoadCSV(loc.Path)
	case FormatSQLite:
		return LoadSQLite(ctx, loc.Path, loc.sqliteTable())
	default:
		return nil, &TableError{
			Type: InvalidFormat,
			Path: loc.Path,
			Err:  fmt.Errorf("unsupported format %q", loc.Format),
		}
	}
}

// Save writes a table to the location.
func Save(ctx context.Context, loc Location, t *Table) error {
	switch loc.ResolveFormat() {
	case FormatCSV:
		return SaveCSV(loc.Path, t)
	case FormatSQLite:
		return SaveSQLite(ctx, loc.Path, loc.sqliteTable(), t)
	default:
		return &TableError{
			Type: WriteFailed,
			Path: loc.Path,
			Err:  fmt.Errorf("unsupported format %q", loc.Format),
		}
	}
}
