package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Canonical column names of a transactions table
const (
	ColumnCustomerID      = "customer_id"
	ColumnChargeTimestamp = "charge_timestamp"
	ColumnAmount          = "amount"
)

// RequiredColumns lists the columns every canonical table must carry
var RequiredColumns = []string{ColumnCustomerID, ColumnChargeTimestamp, ColumnAmount}

// Transaction represents a single charge in canonical form. The ingest
// reader rejects rows with a blank customer or an unparsable date, so both
// are always set.
type Transaction struct {
	CustomerID      string          `json:"customer_id"`
	ChargeTimestamp time.Time       `json:"charge_timestamp"`
	Amount          decimal.Decimal `json:"amount"` // major currency units
}

// Table is an ordered collection of transactions together with the set of
// canonical columns the source provided. Record order carries no meaning.
type Table struct {
	columns map[string]struct{}
	records []Transaction
}

// NewTable builds a table with an explicit column set.
func NewTable(columns []string, records []Transaction) *Table {
	set := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		set[c] = struct{}{}
	}
	return &Table{columns: set, records: records}
}

// NewCanonicalTable builds a table that carries every required column.
func NewCanonicalTable(records []Transaction) *Table {
	return NewTable(RequiredColumns, records)
}

// Len returns the number of records
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.records)
}

// Records returns the records. Callers must not modify the returned slice.
func (t *Table) Records() []Transaction {
	if t == nil {
		return nil
	}
	return t.records
}

// HasColumn reports whether the named column is present
func (t *Table) HasColumn(name string) bool {
	if t == nil {
		return false
	}
	_, ok := t.columns[name]
	return ok
}

// MissingColumns returns the required columns absent from the table, sorted.
func (t *Table) MissingColumns() []string {
	var missing []string
	for _, c := range RequiredColumns {
		if !t.HasColumn(c) {
			missing = append(missing, c)
		}
	}
	sort.Strings(missing)
	return missing
}

// Columns returns the present columns, sorted.
func (t *Table) Columns() []string {
	if t == nil {
		return nil
	}
	cols := make([]string, 0, len(t.columns))
	for c := range t.columns {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// MaxTimestamp returns the latest charge timestamp. ok is false for an empty table.
func (t *Table) MaxTimestamp() (max time.Time, ok bool) {
	for _, r := range t.Records() {
		if !ok || r.ChargeTimestamp.After(max) {
			max = r.ChargeTimestamp
			ok = true
		}
	}
	return max, ok
}
