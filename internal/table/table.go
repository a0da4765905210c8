// Package table holds the row/column data the pattern pipeline reads and writes.
package table

import (
	"errors"
	"fmt"
)

// Default column names used by customer tag exports.
const (
	DefaultCustomerColumn = "Customer"
	DefaultTagColumn      = "Customer_Tag"
)

var (
	// ErrNoColumn is returned when a named column is missing.
	ErrNoColumn = errors.New("column not found")
	// ErrNoCustomerColumn is returned when the customer column is missing.
	ErrNoCustomerColumn = errors.New("customer column not found")
	// ErrNoTagColumn is returned when the tag column is missing.
	ErrNoTagColumn = errors.New("tag column not found")
)

// Table is a header plus string rows. Every row has one cell per header column.
type Table struct {
	Header []string
	Rows   [][]string
}

// New creates an empty table with the given header.
func New(header []string) *Table {
	h := make([]string, len(header))
	copy(h, header)
	return &Table{
		Header: h,
		Rows:   [][]string{},
	}
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Append adds a row, padding or truncating it to the header width.
func (t *Table) Append(row []string) {
	r := make([]string, len(t.Header))
	copy(r, row)
	t.Rows = append(t.Rows, r)
}

// Values returns a copy of the named column.
func (t *Table) Values(name string) ([]string, error) {
	col := t.Column(name)
	if col < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoColumn, name)
	}
	out := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		out[i] = row[col]
	}
	return out, nil
}

// SetColumn replaces the values of a column, adding it when absent.
func (t *Table) SetColumn(name string, values []string) error {
	if len(values) != len(t.Rows) {
		return fmt.Errorf("column %s has %d values for %d rows", name, len(values), len(t.Rows))
	}
	col := t.Column(name)
	if col < 0 {
		t.Header = append(t.Header, name)
		for i := range t.Rows {
			t.Rows[i] = append(t.Rows[i], values[i])
		}
		return nil
	}
	for i := range t.Rows {
		t.Rows[i][col] = values[i]
	}
	return nil
}

// Clone returns a deep copy of the table.
func (t *Table) Clone() *Table {
	c := New(t.Header)
	for _, row := range t.Rows {
		c.Append(row)
	}
	return c
}

// SelectCustomer returns the rows whose customer column equals customer,
// in their original order.
func SelectCustomer(t *Table, customerColumn string, customer string) (*Table, error) {
	col := t.Column(customerColumn)
	if col < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCustomerColumn, customerColumn)
	}
	out := New(t.Header)
	for _, row := range t.Rows {
		if row[col] == customer {
			out.Append(row)
		}
	}
	return out, nil
}

// Customers returns the distinct customer values in first-seen order.
func Customers(t *Table, customerColumn string) ([]string, error) {
	col := t.Column(customerColumn)
	if col < 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCustomerColumn, customerColumn)
	}
	seen := make(map[string]bool)
	var out []string
	for _, row := range t.Rows {
		if !seen[row[col]] {
			seen[row[col]] = true
			out = append(out, row[col])
		}
	}
	return out, nil
}
