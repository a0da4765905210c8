package table

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	t := New([]string{"Customer", "Customer_Tag", "Site"})
	t.Append([]string{"acme", "abc123", "north"})
	t.Append([]string{"globex", "zz-01", "south"})
	t.Append([]string{"acme", "abd789", "east"})
	return t
}

func TestSelectCustomer(t *testing.T) {
	selected, err := SelectCustomer(sampleTable(), "Customer", "acme")
	require.NoError(t, err)

	tags, err := selected.Values("Customer_Tag")
	require.NoError(t, err)
	assert.Equal(t, []string{"abc123", "abd789"}, tags)
}

func TestSelectCustomer_NoRows(t *testing.T) {
	selected, err := SelectCustomer(sampleTable(), "Customer", "initech")
	require.NoError(t, err)

	assert.Equal(t, 0, selected.Len())
	assert.Equal(t, []string{"Customer", "Customer_Tag", "Site"}, selected.Header)
}

func TestSelectCustomer_MissingColumn(t *testing.T) {
	_, err := SelectCustomer(sampleTable(), "Client", "acme")
	assert.True(t, errors.Is(err, ErrNoCustomerColumn))
}

func TestCustomers(t *testing.T) {
	customers, err := Customers(sampleTable(), "Customer")
	require.NoError(t, err)
	assert.Equal(t, []string{"acme", "globex"}, customers)
}

func TestValues_MissingColumn(t *testing.T) {
	_, err := sampleTable().Values("Nope")
	assert.True(t, errors.Is(err, ErrNoColumn))
}

func TestSetColumn(t *testing.T) {
	tbl := sampleTable()

	require.NoError(t, tbl.SetColumn("Starting_Pattern", []string{"ab", "", "ab"}))
	assert.Equal(t, 3, tbl.Column("Starting_Pattern"))
	assert.Equal(t, []string{"acme", "abc123", "north", "ab"}, tbl.Rows[0])

	require.NoError(t, tbl.SetColumn("Site", []string{"n", "s", "e"}))
	assert.Equal(t, "s", tbl.Rows[1][2])

	assert.Error(t, tbl.SetColumn("Short", []string{"x"}))
}

func TestClone(t *testing.T) {
	orig := sampleTable()
	c := orig.Clone()
	c.Rows[0][1] = "changed"

	assert.Equal(t, "abc123", orig.Rows[0][1])
}

func TestAppend_PadsShortRows(t *testing.T) {
	tbl := New([]string{"a", "b"})
	tbl.Append([]string{"1"})

	assert.Equal(t, []string{"1", ""}, tbl.Rows[0])
}

func TestCSVRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleTable()))

	back, err := ReadCSV(strings.NewReader(buf.String()))
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), back)
}

func TestReadCSV_Empty(t *testing.T) {
	tbl, err := ReadCSV(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, 0, tbl.Len())
}

func TestLoadCSV_NotFound(t *testing.T) {
	_, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"))

	var tableErr *TableError
	require.True(t, errors.As(err, &tableErr))
	assert.Equal(t, SourceNotFound, tableErr.Type)
}

func TestSaveLoad_CSVFile(t *testing.T) {
	ctx := context.Background()
	loc := Location{Path: filepath.Join(t.TempDir(), "tags.csv")}

	require.NoError(t, Save(ctx, loc, sampleTable()))
	back, err := Load(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), back)
}

func TestSaveLoad_SQLite(t *testing.T) {
	ctx := context.Background()
	loc := Location{Path: filepath.Join(t.TempDir(), "tags.db"), SQLiteTable: "tags"}

	require.Equal(t, FormatSQLite, loc.ResolveFormat())
	require.NoError(t, Save(ctx, loc, sampleTable()))
	// saving twice replaces the table
	require.NoError(t, Save(ctx, loc, sampleTable()))

	back, err := Load(ctx, loc)
	require.NoError(t, err)
	assert.Equal(t, sampleTable(), back)
}

func TestLoadSQLite_MissingTable(t *testing.T) {
	_, err := LoadSQLite(context.Background(), filepath.Join(t.TempDir(), "empty.db"), "nope")

	var tableErr *TableError
	require.True(t, errors.As(err, &tableErr))
	assert.Equal(t, InvalidFormat, tableErr.Type)
}

func TestResolveFormat(t *testing.T) {
	assert.Equal(t, FormatCSV, Location{Path: "a.csv"}.ResolveFormat())
	assert.Equal(t, FormatSQLite, Location{Path: "a.sqlite3"}.ResolveFormat())
	assert.Equal(t, FormatSQLite, Location{Path: "a.csv", Format: "SQLite"}.ResolveFormat())
}

func TestCellString(t *testing.T) {
	assert.Equal(t, "", cellString(nil))
	assert.Equal(t, "x", cellString([]byte("x")))
	assert.Equal(t, "42", cellString(int64(42)))
}
