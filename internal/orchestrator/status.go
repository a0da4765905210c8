package orchestrator

import (
	"fmt"

	"tagpatterns/internal/normalizer"
	"tagpatterns/internal/table"
)

// StatusResult describes what a table holds before any analysis runs.
type StatusResult struct {
	ByCustomer map[string]*CustomerStatus
	Customers  []string // First-seen order
	GrandTotal int      // Total rows across all customers
}

// CustomerStatus contains row statistics for one customer.
type CustomerStatus struct {
	Customer   string
	Rows       int
	UniqueTags int
	EmptyTags  int // Tags that are blank once trimmed
}

// Status groups the table's rows by customer without running discovery.
// Tags are normalized the same way Run normalizes them.
func Status(tbl *table.Table, opts Options) (*StatusResult, error) {
	opts.applyDefaults()

	customers, err := table.Customers(tbl, opts.CustomerColumn)
	if err != nil {
		return nil, err
	}
	custCol := tbl.Column(opts.CustomerColumn)
	tagCol := tbl.Column(opts.TagColumn)
	if tagCol < 0 {
		return nil, fmt.Errorf("%w: %s", table.ErrNoTagColumn, opts.TagColumn)
	}

	result := &StatusResult{
		ByCustomer: make(map[string]*CustomerStatus, len(customers)),
		Customers:  customers,
	}
	seen := make(map[string]map[string]bool, len(customers))
	for _, c := range customers {
		result.ByCustomer[c] = &CustomerStatus{Customer: c}
		seen[c] = make(map[string]bool)
	}

	for _, row := range tbl.Rows {
		c := row[custCol]
		tag := normalizer.Normalize(row[tagCol], opts.Normalize)
		status := result.ByCustomer[c]
		status.Rows++
		if tag == "" {
			status.EmptyTags++
		}
		if !seen[c][tag] {
			seen[c][tag] = true
			status.UniqueTags++
		}
		result.GrandTotal++
	}

	return result, nil
}
