package recon

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrecon/internal/domain"
)

func TestNormalize_CompleteRecord(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"source_id":      "invoice_001.pdf",
		"invoice_number": "inv-001",
		"invoice_date":   "15/07/2025",
		"supplier_gstin": "29abcde1234f1z5",
		"taxable_amount": 1000.0,
		"tax_amount":     180.0,
		"total_amount":   1180.0,
	})

	assert.Equal(t, domain.QualityComplete, rec.Quality)
	assert.Equal(t, "INV001", rec.InvoiceNumber)
	assert.Equal(t, "2025-07-15", rec.InvoiceDate)
	assert.Equal(t, "29ABCDE1234F1Z5", rec.SupplierGSTIN)
	require.True(t, rec.TotalAmount.Valid)
	assert.Equal(t, "1180.00", rec.TotalAmount.Decimal.StringFixed(2))
}

func TestNormalize_PartialWhenTotalMissing(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "INV-002",
		"supplier_gstin": "29ABCDE1234F1Z5",
	})

	assert.Equal(t, domain.QualityPartial, rec.Quality)
	assert.False(t, rec.TotalAmount.Valid)
}

func TestNormalize_PartialWhenGSTINUnknown(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "INV-003",
		"supplier_gstin": "unknown",
		"total_amount":   500.0,
	})

	assert.Equal(t, domain.QualityPartial, rec.Quality)
	assert.Equal(t, "", rec.SupplierGSTIN)
}

func TestNormalize_UnparseableWhenNoUsableKey(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "n/a",
		"supplier_gstin": "",
		"total_amount":   500.0,
	})

	assert.Equal(t, domain.QualityUnparseable, rec.Quality)
}

func TestNormalize_UnparseableOnExtractError(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "INV-004",
		"supplier_gstin": "29ABCDE1234F1Z5",
		"total_amount":   500.0,
		"error":          "page 2 could not be read",
	})

	assert.Equal(t, domain.QualityUnparseable, rec.Quality)
	assert.Equal(t, "page 2 could not be read", rec.ExtractError)
}

func TestNormalizeGSTIN(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"29ABCDE1234F1Z5", "29ABCDE1234F1Z5"},
		{"29abcde1234f1z5", "29ABCDE1234F1Z5"},
		{" 29ABCDE 1234F1Z5 ", "29ABCDE1234F1Z5"},
		{"29ABCDE1234F1Z", ""},   // 14 chars
		{"29ABCDE1234F1Z55", ""}, // 16 chars
		{"XXABCDE1234F1Z5", ""},  // state code not numeric
		{"unknown", ""},
		{"", ""},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeGSTIN(tc.in), "input %q", tc.in)
	}
}

func TestNormalizeInvoiceNumber_CollapsesPunctuationVariants(t *testing.T) {
	want := NormalizeInvoiceNumber("INV-001")
	assert.Equal(t, want, NormalizeInvoiceNumber("inv-001"))
	assert.Equal(t, want, NormalizeInvoiceNumber("INV 001"))
	assert.Equal(t, want, NormalizeInvoiceNumber("INV/001"))
	assert.Equal(t, "", NormalizeInvoiceNumber("null"))
	assert.Equal(t, "", NormalizeInvoiceNumber("  "))
}

func TestNormalize_ParsesStringAmounts(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "INV-005",
		"supplier_gstin": "29ABCDE1234F1Z5",
		"total_amount":   "₹1,18,000.50",
	})

	require.True(t, rec.TotalAmount.Valid)
	assert.Equal(t, "118000.50", rec.TotalAmount.Decimal.StringFixed(2))
}

func TestNormalize_RejectsGarbageAmounts(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "INV-006",
		"supplier_gstin": "29ABCDE1234F1Z5",
		"total_amount":   "not a number",
	})

	assert.False(t, rec.TotalAmount.Valid)
	assert.Equal(t, domain.QualityPartial, rec.Quality)
}

func TestNormalize_DateFormats(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2025-07-15", "2025-07-15"},
		{"15-07-2025", "2025-07-15"},
		{"15/07/2025", "2025-07-15"},
		{"15 Jul 2025", "2025-07-15"},
		{"garbage", ""},
		{"", ""},
	}
	for _, tc := range cases {
		rec := Normalize(domain.RawRecord{
			"invoice_number": "INV-007",
			"supplier_gstin": "29ABCDE1234F1Z5",
			"total_amount":   100.0,
			"invoice_date":   tc.in,
		})
		assert.Equal(t, tc.want, rec.InvoiceDate, "input %q", tc.in)
	}
}

func TestNormalize_LineItems(t *testing.T) {
	rec := Normalize(domain.RawRecord{
		"invoice_number": "INV-008",
		"supplier_gstin": "29ABCDE1234F1Z5",
		"total_amount":   200.0,
		"line_items": []any{
			map[string]any{"description": "widget", "quantity": 2.0, "rate": 50.0, "amount": 100.0},
			"malformed entry",
			map[string]any{"description": "gadget", "amount": 100.0},
		},
	})

	require.Len(t, rec.LineItems, 2)
	assert.Equal(t, "widget", rec.LineItems[0].Description)
	assert.Equal(t, "100", rec.LineItems[1].Amount.String())
}

func TestNormalizeAll_PreservesInputOrder(t *testing.T) {
	raws := make([]domain.RawRecord, 50)
	for i := range raws {
		raws[i] = domain.RawRecord{
			"invoice_number": fmt.Sprintf("INV-%03d", i),
			"supplier_gstin": "29ABCDE1234F1Z5",
			"total_amount":   float64(i),
		}
	}

	out := NormalizeAll(raws, 8, nil)

	require.Len(t, out, 50)
	for i, rec := range out {
		assert.Equal(t, fmt.Sprintf("INV%03d", i), rec.InvoiceNumber)
	}
}

func TestNormalizeAll_ProgressIsMonotonicAndComplete(t *testing.T) {
	raws := make([]domain.RawRecord, 40)
	for i := range raws {
		raws[i] = domain.RawRecord{"invoice_number": fmt.Sprintf("INV-%d", i), "supplier_gstin": "29ABCDE1234F1Z5"}
	}

	var mu sync.Mutex
	var seen []int
	NormalizeAll(raws, 4, func(processed, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 40, total)
		seen = append(seen, processed)
	})

	require.Len(t, seen, 40)
	for i := 1; i < len(seen); i++ {
		assert.Greater(t, seen[i], seen[i-1])
	}
	assert.Equal(t, 40, seen[len(seen)-1])
}

func TestNormalizeAll_NilProgressSameOutput(t *testing.T) {
	raws := []domain.RawRecord{
		{"invoice_number": "A-1", "supplier_gstin": "29ABCDE1234F1Z5", "total_amount": 10.0},
		{"invoice_number": "A-2", "supplier_gstin": "29ABCDE1234F1Z5", "total_amount": 20.0},
	}

	withNil := NormalizeAll(raws, 2, nil)
	withCb := NormalizeAll(raws, 2, func(int, int) {})

	assert.Equal(t, withNil, withCb)
}
