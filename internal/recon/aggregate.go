package recon

import (
	"github.com/shopspring/decimal"

	"gstrecon/internal/domain"
)

// Aggregate reduces a discrepancy list into a ReportCard. Pure and
// idempotent: the same list always yields the same card, and no state
// survives between calls.
func Aggregate(discrepancies []domain.Discrepancy) domain.ReportCard {
	card := domain.ReportCard{
		CountsByKind:     make(map[domain.DiscrepancyKind]int),
		TotalAmountDelta: decimal.Zero,
	}

	for i := range discrepancies {
		d := &discrepancies[i]
		card.CountsByKind[d.Kind]++
		if d.Extraction != nil {
			card.TotalExtractionRecords++
		}
		if d.Statement != nil {
			card.TotalStatementRecords++
		}
		if d.Kind == domain.KindMatched {
			card.MatchedCount++
			continue
		}
		card.TotalAmountDelta = card.TotalAmountDelta.Add(amountDelta(d))
	}

	// Nothing to reconcile counts as fully compliant by convention.
	card.ComplianceScore = 100
	if len(discrepancies) > 0 {
		card.ComplianceScore = 100 * float64(card.MatchedCount) / float64(len(discrepancies))
	}

	return card
}

// amountDelta is the absolute total-amount gap a discrepancy represents.
// A missing counterpart contributes the full total of the present side.
func amountDelta(d *domain.Discrepancy) decimal.Decimal {
	ext, stmt := decimal.Zero, decimal.Zero
	if d.Extraction != nil && d.Extraction.TotalAmount.Valid {
		ext = d.Extraction.TotalAmount.Decimal
	}
	if d.Statement != nil && d.Statement.TotalAmount.Valid {
		stmt = d.Statement.TotalAmount.Decimal
	}
	return ext.Sub(stmt).Abs()
}
