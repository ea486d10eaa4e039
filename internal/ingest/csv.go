// Package ingest reads transaction exports into the canonical table.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"saaspulse/pkg/contracts/domain"
)

// DateLayout is the only accepted charge date format
const DateLayout = "2006-01-02"

// Source column names
const (
	sourceCustomerID = "customer_id"
	sourceChargeDate = "charge_date"
	sourceAmount     = "amount"
)

// dateAliases lists accepted names for the charge date column, in priority order.
// Stripe exports call it "created".
var dateAliases = []string{sourceChargeDate, "created", "date"}

// minorUnits is the fixed number of minor units per major unit
var minorUnits = decimal.NewFromInt(100)

var errEmptyValue = errors.New("empty value")

// columnIndex maps canonical fields to their position in a record
type columnIndex struct {
	customerID int
	chargeDate int
	amount     int
	dateName   string
}

// ReadFile opens path and reads it with Read
func ReadFile(ctx context.Context, path string) (*domain.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open CSV file: %w", err)
	}
	defer f.Close()

	return Read(ctx, f)
}

// Read parses CSV text with a header row into a canonical table. Dates are
// parsed as YYYY-MM-DD in UTC and amounts are converted from minor to major
// units. A header without data rows yields an empty table.
func Read(ctx context.Context, r io.Reader) (*domain.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: no header row", ErrMalformedCSV)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
	}

	idx, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var records []domain.Transaction
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrMalformedCSV, err)
		}

		line, _ := reader.FieldPos(0)
		tx, err := parseRecord(row, idx, line)
		if err != nil {
			return nil, err
		}
		records = append(records, tx)
	}

	slog.DebugContext(ctx, "transactions ingested",
		"rows", len(records),
		"date_column", idx.dateName,
	)

	return domain.NewCanonicalTable(records), nil
}

// normalizeHeader lower-cases a header cell and replaces spaces with
// underscores, so "Customer ID" matches customer_id.
func normalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.ToLower(strings.TrimSpace(h))
	return strings.Join(strings.Fields(h), "_")
}

func resolveColumns(header []string) (columnIndex, error) {
	positions := make(map[string]int, len(header))
	for i, h := range header {
		name := normalizeHeader(h)
		if _, dup := positions[name]; !dup {
			positions[name] = i
		}
	}

	idx := columnIndex{customerID: -1, chargeDate: -1, amount: -1}
	var missing []string

	if i, ok := positions[sourceCustomerID]; ok {
		idx.customerID = i
	} else {
		missing = append(missing, sourceCustomerID)
	}

	for _, alias := range dateAliases {
		if i, ok := positions[alias]; ok {
			idx.chargeDate = i
			idx.dateName = alias
			break
		}
	}
	if idx.chargeDate < 0 {
		missing = append(missing, sourceChargeDate)
	}

	if i, ok := positions[sourceAmount]; ok {
		idx.amount = i
	} else {
		missing = append(missing, sourceAmount)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return idx, &SchemaError{Missing: missing}
	}
	return idx, nil
}

func parseRecord(row []string, idx columnIndex, line int) (domain.Transaction, error) {
	customerID := strings.TrimSpace(row[idx.customerID])
	if customerID == "" {
		return domain.Transaction{}, &ParseError{Line: line, Column: sourceCustomerID, Err: errEmptyValue}
	}

	dateValue := strings.TrimSpace(row[idx.chargeDate])
	ts, err := parseDate(dateValue)
	if err != nil {
		return domain.Transaction{}, &ParseError{Line: line, Column: idx.dateName, Value: dateValue, Err: err}
	}

	amountValue := strings.TrimSpace(row[idx.amount])
	amount, err := parseAmount(amountValue)
	if err != nil {
		return domain.Transaction{}, &ParseError{Line: line, Column: sourceAmount, Value: amountValue, Err: err}
	}

	return domain.Transaction{
		CustomerID:      customerID,
		ChargeTimestamp: ts,
		Amount:          amount,
	}, nil
}

// parseDate parses a charge date as midnight UTC
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, errEmptyValue
	}
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

// parseAmount converts a minor-unit amount to major units
func parseAmount(s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, errEmptyValue
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, err
	}
	return d.Div(minorUnits), nil
}
