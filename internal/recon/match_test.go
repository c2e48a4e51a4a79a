package recon

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrecon/internal/domain"
)

func extRecord(number, gstin string, total float64) domain.InvoiceRecord {
	return domain.InvoiceRecord{
		InvoiceNumber: NormalizeInvoiceNumber(number),
		SupplierGSTIN: gstin,
		TotalAmount:   decimal.NullDecimal{Decimal: decimal.NewFromFloat(total), Valid: true},
		Quality:       domain.QualityComplete,
	}
}

func TestMatch_ExactPrimaryKey(t *testing.T) {
	idx := BuildIndex([]domain.InvoiceRecord{stmtRecord("INV-001", "29ABCDE1234F1Z5", 1180)})
	ext := []domain.InvoiceRecord{extRecord("inv-001", "29ABCDE1234F1Z5", 1180)}

	pairings := Match(ext, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 1)
	assert.Equal(t, domain.MatchExact, pairings[0].Method)
	require.NotNil(t, pairings[0].Statement)
	assert.Equal(t, "INV001", pairings[0].Statement.InvoiceNumber)
}

func TestMatch_InvoiceNumberFallbackSingleCandidate(t *testing.T) {
	// Statement GSTIN differs, so the primary lookup misses.
	idx := BuildIndex([]domain.InvoiceRecord{stmtRecord("INV-001", "27FGHIJ5678K1Z3", 1180)})
	ext := []domain.InvoiceRecord{extRecord("INV-001", "29ABCDE1234F1Z5", 1180)}

	pairings := Match(ext, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 1)
	assert.Equal(t, domain.MatchInvoiceNumber, pairings[0].Method)
	assert.NotNil(t, pairings[0].Statement)
	assert.Contains(t, pairings[0].Note, "invoice number only")
}

func TestMatch_InvoiceNumberFallbackAmbiguous(t *testing.T) {
	idx := BuildIndex([]domain.InvoiceRecord{
		stmtRecord("INV-001", "27FGHIJ5678K1Z3", 1180),
		stmtRecord("INV-001", "24PQRST9012U1Z7", 590),
	})
	ext := []domain.InvoiceRecord{extRecord("INV-001", "29ABCDE1234F1Z5", 1180)}

	pairings := Match(ext, idx, "072025", DefaultConfig())

	// One extraction-only pairing with candidates, plus two statement leftovers.
	require.Len(t, pairings, 3)
	p := pairings[0]
	assert.Equal(t, domain.MatchNone, p.Method)
	assert.Nil(t, p.Statement)
	assert.Len(t, p.Candidates, 2)

	// Neither candidate was consumed.
	assert.Nil(t, pairings[1].Extraction)
	assert.Nil(t, pairings[2].Extraction)
}

func TestMatch_AmountDateHeuristic(t *testing.T) {
	stmt := stmtRecord("INV-999", "27FGHIJ5678K1Z3", 1180)
	stmt.InvoiceDate = "2025-07-10"
	idx := BuildIndex([]domain.InvoiceRecord{stmt})

	// Garbled invoice number on the extraction side.
	ext := extRecord("XX-???", "29ABCDE1234F1Z5", 1180.3)
	pairings := Match([]domain.InvoiceRecord{ext}, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 1)
	assert.Equal(t, domain.MatchAmountDate, pairings[0].Method)
	assert.Contains(t, pairings[0].Note, "low confidence")
}

func TestMatch_AmountDateHeuristicRejectsOutOfWindow(t *testing.T) {
	stmt := stmtRecord("INV-999", "27FGHIJ5678K1Z3", 1180)
	stmt.InvoiceDate = "2025-01-10" // months outside the filing period
	idx := BuildIndex([]domain.InvoiceRecord{stmt})

	ext := extRecord("XX-???", "29ABCDE1234F1Z5", 1180)
	pairings := Match([]domain.InvoiceRecord{ext}, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 2)
	assert.Nil(t, pairings[0].Statement)
	assert.Equal(t, domain.MatchNone, pairings[0].Method)
}

func TestMatch_FirstComeFirstServed(t *testing.T) {
	idx := BuildIndex([]domain.InvoiceRecord{stmtRecord("INV-001", "29ABCDE1234F1Z5", 1180)})
	ext := []domain.InvoiceRecord{
		extRecord("INV-001", "29ABCDE1234F1Z5", 1180),
		extRecord("INV-001", "29ABCDE1234F1Z5", 1180), // same key again
	}

	pairings := Match(ext, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 2)
	assert.Equal(t, domain.MatchExact, pairings[0].Method)
	assert.Nil(t, pairings[1].Statement, "second extraction record must not steal the consumed statement record")
}

func TestMatch_UnparseableNeverMatches(t *testing.T) {
	idx := BuildIndex([]domain.InvoiceRecord{stmtRecord("INV-001", "29ABCDE1234F1Z5", 1180)})
	ext := []domain.InvoiceRecord{{Quality: domain.QualityUnparseable, ExtractError: "unreadable scan"}}

	pairings := Match(ext, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 2)
	assert.Nil(t, pairings[0].Statement)
	assert.NotNil(t, pairings[1].Statement)
}

func TestMatch_DuplicatesEmittedAsStatementOnly(t *testing.T) {
	idx := BuildIndex([]domain.InvoiceRecord{
		stmtRecord("INV-001", "29ABCDE1234F1Z5", 1180),
		stmtRecord("INV-001", "29ABCDE1234F1Z5", 1180),
	})

	pairings := Match(nil, idx, "072025", DefaultConfig())

	require.Len(t, pairings, 2)
	for _, p := range pairings {
		assert.Nil(t, p.Extraction)
		assert.True(t, p.Duplicate)
	}
}

func TestParsePeriod_Spellings(t *testing.T) {
	for _, period := range []string{"072025", "2025-07", "07-2025", "Jul 2025", "July 2025"} {
		month, ok := parsePeriod(period)
		require.True(t, ok, "period %q", period)
		assert.Equal(t, 2025, month.Year())
		assert.Equal(t, 7, int(month.Month()))
	}
	_, ok := parsePeriod("not a period")
	assert.False(t, ok)
}

func TestWithinPeriodWindow(t *testing.T) {
	cases := []struct {
		date string
		want bool
	}{
		{"2025-07-15", true},
		{"2025-06-20", true},  // inside the 15-day lead window
		{"2025-08-10", true},  // inside the 15-day tail window
		{"2025-06-10", false}, // too early
		{"2025-08-20", false}, // too late
		{"", false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, withinPeriodWindow(tc.date, "072025", 15), "date %q", tc.date)
	}
}
