package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagpatterns/internal/table"
)

func TestStatus_GroupsByCustomer(t *testing.T) {
	tbl := customerTable(
		[2]string{"acme", "abc"},
		[2]string{"beta", "x1"},
		[2]string{"acme", " abc "},
		[2]string{"acme", "   "},
	)

	status, err := Status(tbl, Options{})
	require.NoError(t, err)

	assert.Equal(t, []string{"acme", "beta"}, status.Customers)
	assert.Equal(t, 4, status.GrandTotal)

	acme := status.ByCustomer["acme"]
	assert.Equal(t, 3, acme.Rows)
	assert.Equal(t, 2, acme.UniqueTags)
	assert.Equal(t, 1, acme.EmptyTags)

	assert.Equal(t, 1, status.ByCustomer["beta"].Rows)
}

func TestStatus_GrandTotalIsSumOfCustomers(t *testing.T) {
	tbl := customerTable(
		[2]string{"a", "1"},
		[2]string{"b", "2"},
		[2]string{"c", "3"},
		[2]string{"a", "4"},
	)

	status, err := Status(tbl, Options{})
	require.NoError(t, err)

	sum := 0
	for _, c := range status.ByCustomer {
		sum += c.Rows
	}
	assert.Equal(t, status.GrandTotal, sum)
}

func TestStatus_MissingColumns(t *testing.T) {
	_, err := Status(table.New([]string{"Customer_Tag"}), Options{})
	assert.ErrorIs(t, err, table.ErrNoCustomerColumn)

	_, err = Status(table.New([]string{"Customer"}), Options{})
	assert.ErrorIs(t, err, table.ErrNoTagColumn)
}
