package table

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"
)

// LoadSQLite reads every row of a table in the SQLite database at path.
// Non-text values are formatted with fmt and NULL becomes the empty string.
func LoadSQLite(ctx context.Context, path string, tableName string) (*Table, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &TableError{Type: SourceNotFound, Path: path, Err: err}
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SELECT * FROM "+quoteIdent(tableName))
	if err != nil {
		return nil, &TableError{Type: InvalidFormat, Path: path, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &TableError{Type: InvalidFormat, Path: path, Err: err}
	}

	t := New(columns)
	values := make([]any, len(columns))
	scanArgs := make([]any, len(columns))
	for i := range values {
		scanArgs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, &TableError{Type: InvalidFormat, Path: path, Err: err}
		}
		row := make([]string, len(columns))
		for i, v := range values {
			row[i] = cellString(v)
		}
		t.Append(row)
	}
	if err := rows.Err(); err != nil {
		return nil, &TableError{Type: InvalidFormat, Path: path, Err: err}
	}
	return t, nil
}

// SaveSQLite replaces tableName in the database at path with the table's
// rows. All columns are stored as TEXT.
func SaveSQLite(ctx context.Context, path string, tableName string, t *Table) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return &TableError{Type: WriteFailed, Path: path, Err: err}
	}
	defer db.Close()

	if err := saveSQLite(ctx, db, tableName, t); err != nil {
		return &TableError{Type: WriteFailed, Path: path, Err: err}
	}
	return nil
}

func saveSQLite(ctx context.Context, db *sql.DB, tableName string, t *Table) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck

	name := quoteIdent(tableName)
	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+name); err != nil {
		return fmt.Errorf("drop table: %w", err)
	}

	cols := make([]string, len(t.Header))
	marks := make([]string, len(t.Header))
	for i, h := range t.Header {
		cols[i] = quoteIdent(h) + " TEXT"
		marks[i] = "?"
	}
	create := fmt.Sprintf("CREATE TABLE %s (%s)", name, strings.Join(cols, ", "))
	if _, err := tx.ExecContext(ctx, create); err != nil {
		return fmt.Errorf("create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		fmt.Sprintf("INSERT INTO %s VALUES (%s)", name, strings.Join(marks, ", ")))
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	args := make([]any, len(t.Header))
	for _, row := range t.Rows {
		for i := range args {
			args[i] = row[i]
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("insert row: %w", err)
		}
	}

	return tx.Commit()
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}
