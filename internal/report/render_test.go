package report

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"saaspulse/pkg/contracts/domain"
)

func validatedPayload(t *testing.T, table *domain.Table, summaryText string) *Payload {
	t.Helper()
	s := new(MockSummarizer)
	s.On("Summarize", mock.Anything, mock.Anything).Return(summaryText, nil)
	return newTestAssembler(s, nil).Assemble(context.Background(), table, analysisDate)
}

func TestHTMLRenderer_Validated(t *testing.T) {
	p := validatedPayload(t, scenarioTable(), "Revenue <rose> & churn held.")

	var buf bytes.Buffer
	require.NoError(t, MustHTMLRenderer().Render(context.Background(), &buf, p))
	html := buf.String()

	assert.Contains(t, html, "$250.00")
	assert.Contains(t, html, "$200.00")
	// html/template escapes the plus sign
	assert.Contains(t, html, "&#43;25.00%")
	assert.Equal(t, "+25.00%", fields(p)["revenue_change_percent"])
	assert.Contains(t, html, "$3,000.00")
	assert.Contains(t, html, "50.00%")
	assert.Contains(t, html, "2025-12-23 09:30 UTC")
	assert.Contains(t, html, "Revenue &lt;rose&gt; &amp; churn held.")
	assert.NotContains(t, html, `class="notice"`)
}

func TestCurrency_KeepsCentsOnLargeAmounts(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"5.5", "$5.50"},
		{"999.999", "$1,000.00"},
		{"12000", "$12,000.00"},
		{"100000", "$100,000.00"},
		{"123456789012345.67", "$123,456,789,012,345.67"},
		{"90000000000000.01", "$90,000,000,000,000.01"},
		{"-1234.5", "-$1,234.50"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, currency(decimal.RequireFromString(tt.in)))
		})
	}
}

func TestHTMLRenderer_NullRatios(t *testing.T) {
	table := domain.NewCanonicalTable([]domain.Transaction{tx("1", "2025-12-20", "100")})
	p := validatedPayload(t, table, "ok")

	f := fields(p)
	assert.Equal(t, NullDisplay, f["new_customers"])
	assert.Equal(t, NullDisplay, f["churn_rate"])
	assert.Equal(t, NullDisplay, f["revenue_change_percent"])
	assert.Equal(t, "$1,200.00", f["annualized_run_rate"])
	assert.Equal(t, "1", f["active_customers"])
}

func TestHTMLRenderer_Degraded(t *testing.T) {
	p := newTestAssembler(new(MockSummarizer), nil).Assemble(context.Background(), domain.NewCanonicalTable(nil), analysisDate)

	f := fields(p)
	assert.Equal(t, Placeholder, f["total_revenue"])
	assert.Equal(t, Placeholder, f["active_customers"])
	assert.Equal(t, NullDisplay, f["churn_rate"])
	assert.Equal(t, "The uploaded file contains no transactions.", f["notice"])

	var buf bytes.Buffer
	require.NoError(t, MustHTMLRenderer().Render(context.Background(), &buf, p))
	assert.Contains(t, buf.String(), `class="notice"`)
	assert.Contains(t, buf.String(), FallbackSummary)
}

func TestHTMLRenderer_MissingFieldFails(t *testing.T) {
	p := validatedPayload(t, scenarioTable(), "ok")
	data := fields(p)
	delete(data, "churn_rate")

	err := MustHTMLRenderer().execute(&bytes.Buffer{}, data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "churn_rate")
}

func TestFields_AlwaysSameKeys(t *testing.T) {
	validated := fields(validatedPayload(t, scenarioTable(), "ok"))
	degraded := fields(newTestAssembler(new(MockSummarizer), nil).Assemble(context.Background(), domain.NewCanonicalTable(nil), analysisDate))

	require.Len(t, degraded, len(validated))
	for k := range validated {
		assert.Contains(t, degraded, k)
	}
}

func TestJSONRenderer(t *testing.T) {
	tests := []struct {
		name  string
		build func(t *testing.T) *Payload
		check func(t *testing.T, doc map[string]interface{})
	}{
		{
			name: "validated",
			build: func(t *testing.T) *Payload {
				return validatedPayload(t, scenarioTable(), "Generated text.")
			},
			check: func(t *testing.T, doc map[string]interface{}) {
				assert.Equal(t, "validated", doc["outcome"])
				assert.NotContains(t, doc, "reason")
				revenue := doc["revenue_metrics"].(map[string]interface{})
				assert.EqualValues(t, 250, revenue["total_revenue"])
				assert.EqualValues(t, 25, revenue["revenue_change_percent"])
				assert.Equal(t, "generated", doc["summary_state"])
			},
		},
		{
			name: "degraded",
			build: func(t *testing.T) *Payload {
				return newTestAssembler(new(MockSummarizer), nil).Assemble(context.Background(), domain.NewCanonicalTable(nil), analysisDate)
			},
			check: func(t *testing.T, doc map[string]interface{}) {
				assert.Equal(t, "degraded", doc["outcome"])
				assert.Equal(t, map[string]interface{}{"reason": "no rows"}, doc["reason"])
				revenue := doc["revenue_metrics"].(map[string]interface{})
				assert.Equal(t, "N/A", revenue["total_revenue"])
				assert.Equal(t, "N/A", revenue["annualized_run_rate"])
				assert.Nil(t, revenue["revenue_change_percent"])
				customers := doc["customer_metrics"].(map[string]interface{})
				assert.Equal(t, "N/A", customers["active_customers"])
				assert.Nil(t, customers["customer_churn_rate"])
				assert.Equal(t, FallbackSummary, doc["summary_text"])
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, JSONRenderer{}.Render(context.Background(), &buf, tt.build(t)))

			var doc map[string]interface{}
			require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
			assert.Equal(t, "2025-12-23 09:30 UTC", doc["generated_at"])
			tt.check(t, doc)
		})
	}
}
