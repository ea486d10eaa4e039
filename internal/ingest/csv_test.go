package ingest

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saaspulse/pkg/contracts/domain"
)

func TestRead(t *testing.T) {
	input := "customer_id,charge_date,amount\n" +
		"cus_1,2025-12-01,1000\n" +
		"cus_2,2026-01-11,1250\n"

	table, err := Read(context.Background(), strings.NewReader(input))
	require.NoError(t, err)
	require.Equal(t, 2, table.Len())
	assert.Empty(t, table.MissingColumns())

	first := table.Records()[0]
	assert.Equal(t, "cus_1", first.CustomerID)
	assert.Equal(t, time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC), first.ChargeTimestamp)
	assert.Equal(t, time.UTC, first.ChargeTimestamp.Location())
	assert.Equal(t, "10.00", first.Amount.StringFixed(2))
	assert.Equal(t, "12.50", table.Records()[1].Amount.StringFixed(2))
}

func TestRead_HeaderVariants(t *testing.T) {
	tests := []struct {
		name   string
		header string
	}{
		{"stripe created column", "customer_id,created,amount"},
		{"date column", "customer_id,date,amount"},
		{"spaced and capitalised", "Customer ID, Charge Date ,AMOUNT"},
		{"byte order mark", "\ufeffcustomer_id,charge_date,amount"},
		{"extra columns", "id,customer_id,currency,charge_date,amount,status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cols := strings.Split(tt.header, ",")
			row := make([]string, len(cols))
			for i, c := range cols {
				switch normalizeHeader(c) {
				case "customer_id":
					row[i] = "42"
				case "charge_date", "created", "date":
					row[i] = "2025-12-20"
				case "amount":
					row[i] = "999"
				default:
					row[i] = "x"
				}
			}
			input := tt.header + "\n" + strings.Join(row, ",") + "\n"

			table, err := Read(context.Background(), strings.NewReader(input))
			require.NoError(t, err)
			require.Equal(t, 1, table.Len())
			assert.Equal(t, "42", table.Records()[0].CustomerID)
			assert.Equal(t, "9.99", table.Records()[0].Amount.String())
		})
	}
}

func TestRead_HeaderOnlyYieldsEmptyTable(t *testing.T) {
	table, err := Read(context.Background(), strings.NewReader("customer_id,charge_date,amount\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
	assert.True(t, table.HasColumn(domain.ColumnAmount))
}

func TestRead_Errors(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		wantSchema []string
		wantParse  string
		wantLine   int
		malformed  bool
	}{
		{
			name:      "empty input",
			input:     "",
			malformed: true,
		},
		{
			name:      "ragged rows",
			input:     "customer_id,charge_date,amount\n1,2025-12-01\n",
			malformed: true,
		},
		{
			name:      "unterminated quote",
			input:     "customer_id,charge_date,amount\n\"1,2025-12-01,100\n",
			malformed: true,
		},
		{
			name:       "missing amount",
			input:      "customer_id,charge_date\n1,2025-12-01\n",
			wantSchema: []string{"amount"},
		},
		{
			name:       "missing everything",
			input:      "foo,bar\n1,2\n",
			wantSchema: []string{"amount", "charge_date", "customer_id"},
		},
		{
			name:      "bad date format",
			input:     "customer_id,charge_date,amount\n1,2025-12-01,100\n2,12/01/2025,100\n",
			wantParse: "charge_date",
			wantLine:  3,
		},
		{
			name:      "timestamp instead of date",
			input:     "customer_id,created,amount\n1,1733011200,100\n",
			wantParse: "created",
			wantLine:  2,
		},
		{
			name:      "non numeric amount",
			input:     "customer_id,charge_date,amount\n1,2025-12-01,ten\n",
			wantParse: "amount",
			wantLine:  2,
		},
		{
			name:      "empty customer",
			input:     "customer_id,charge_date,amount\n ,2025-12-01,100\n",
			wantParse: "customer_id",
			wantLine:  2,
		},
		{
			name:      "quoted blank customer",
			input:     "customer_id,charge_date,amount\n1,2025-12-01,100\n\"\t\",2025-12-02,100\n",
			wantParse: "customer_id",
			wantLine:  3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tt.input))
			require.Error(t, err)

			switch {
			case tt.malformed:
				assert.ErrorIs(t, err, ErrMalformedCSV)
			case tt.wantSchema != nil:
				var se *SchemaError
				require.True(t, errors.As(err, &se), "expected *SchemaError, got %v", err)
				assert.Equal(t, tt.wantSchema, se.Missing)
			default:
				var pe *ParseError
				require.True(t, errors.As(err, &pe), "expected *ParseError, got %v", err)
				assert.Equal(t, tt.wantParse, pe.Column)
				assert.Equal(t, tt.wantLine, pe.Line)
			}
		})
	}
}

func TestRead_NegativeAmountIsKept(t *testing.T) {
	table, err := Read(context.Background(), strings.NewReader("customer_id,charge_date,amount\n1,2025-12-01,-500\n"))
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.True(t, table.Records()[0].Amount.IsNegative())
}

func TestRead_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, strings.NewReader("customer_id,charge_date,amount\n1,2025-12-01,100\n"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "charges.csv")
	require.NoError(t, os.WriteFile(path, []byte("customer_id,charge_date,amount\n1,2025-12-01,100\n"), 0644))

	table, err := ReadFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())

	_, err = ReadFile(context.Background(), filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}
