package recon

import (
	"github.com/shopspring/decimal"

	"gstrecon/internal/domain"
)

// amountFields are the currency fields compared between paired records.
var amountFields = []struct {
	name    string
	get     func(*domain.InvoiceRecord) decimal.NullDecimal
}{
	{"taxable_amount", func(r *domain.InvoiceRecord) decimal.NullDecimal { return r.TaxableAmount }},
	{"tax_amount", func(r *domain.InvoiceRecord) decimal.NullDecimal { return r.TaxAmount }},
	{"total_amount", func(r *domain.InvoiceRecord) decimal.NullDecimal { return r.TotalAmount }},
}

// Classify assigns exactly one Discrepancy to a pairing. It is total over
// its input domain: every pairing, including clean matches, yields one.
func Classify(p domain.Pairing, period string, cfg Config) domain.Discrepancy {
	d := domain.Discrepancy{
		Extraction: p.Extraction,
		Statement:  p.Statement,
		Method:     p.Method,
		Note:       p.Note,
		Candidates: p.Candidates,
	}

	switch {
	// Unreadable sources are always reported, even when a statement record
	// with a plausible key exists.
	case p.Extraction != nil && p.Extraction.Quality == domain.QualityUnparseable:
		d.Kind = domain.KindUnreadableSource
		d.Severity = domain.SeverityHigh
		if p.Extraction.ExtractError != "" {
			d.Note = p.Extraction.ExtractError
		}

	case p.Extraction != nil && p.Statement == nil && len(p.Candidates) > 0:
		d.Kind = domain.KindAmbiguous
		d.Severity = domain.SeverityMedium

	case p.Extraction != nil && p.Statement != nil:
		classifyPaired(&d, p, period, cfg)

	case p.Extraction != nil:
		// Input tax credit at risk: the supplier never reported this invoice.
		d.Kind = domain.KindMissingInStatement
		d.Severity = domain.SeverityHigh

	case p.Duplicate:
		d.Kind = domain.KindDuplicateInStatement
		d.Severity = domain.SeverityHigh
		d.Note = "statement reports this (supplier GSTIN, invoice number) more than once"

	default:
		// Possible unrecorded purchase on our side.
		d.Kind = domain.KindMissingInExtraction
		d.Severity = domain.SeverityMedium
	}

	return d
}

func classifyPaired(d *domain.Discrepancy, p domain.Pairing, period string, cfg Config) {
	ext, stmt := p.Extraction, p.Statement

	diffs := make(map[string]domain.FieldDiff)
	var maxRatio decimal.Decimal
	for _, f := range amountFields {
		ev, sv := f.get(ext), f.get(stmt)
		if !ev.Valid || !sv.Valid {
			continue
		}
		delta := ev.Decimal.Sub(sv.Decimal).Abs()
		if delta.LessThanOrEqual(cfg.AmountEpsilon) {
			continue
		}
		diffs[f.name] = domain.FieldDiff{
			Expected: sv.Decimal.StringFixed(2),
			Found:    ev.Decimal.StringFixed(2),
		}
		if !sv.Decimal.IsZero() {
			if ratio := delta.Div(sv.Decimal.Abs()); ratio.GreaterThan(maxRatio) {
				maxRatio = ratio
			}
		} else {
			maxRatio = decimal.NewFromInt(1)
		}
	}

	if len(diffs) > 0 {
		d.Kind = domain.KindAmountMismatch
		d.FieldDiffs = diffs
		d.Severity = domain.SeverityMinor
		if maxRatio.GreaterThan(cfg.MajorDeltaRatio) {
			d.Severity = domain.SeverityMajor
		}
		return
	}

	if ext.InvoiceDate != "" && stmt.InvoiceDate != "" && ext.InvoiceDate != stmt.InvoiceDate &&
		!withinPeriodWindow(ext.InvoiceDate, period, cfg.DateWindowDays) {
		d.Kind = domain.KindDateMismatch
		d.Severity = domain.SeverityMedium
		d.FieldDiffs = map[string]domain.FieldDiff{
			"invoice_date": {Expected: stmt.InvoiceDate, Found: ext.InvoiceDate},
		}
		return
	}

	d.Kind = domain.KindMatched
	d.Severity = domain.SeverityNone
}

// ClassifyAll classifies every pairing, preserving order.
func ClassifyAll(pairings []domain.Pairing, period string, cfg Config) []domain.Discrepancy {
	out := make([]domain.Discrepancy, 0, len(pairings))
	for _, p := range pairings {
		out = append(out, Classify(p, period, cfg))
	}
	return out
}
