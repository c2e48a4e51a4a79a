package recon

import (
	"strings"
	"time"

	"gstrecon/internal/domain"
)

// Match pairs extraction records against indexed statement records. Records
// are processed strictly in input order; once a statement record is consumed
// it is never reassigned, even if a later extraction record would have been
// a better fit. That first-come-first-served rule is what makes runs
// reproducible and auditable, so this step must stay sequential.
//
// The returned pairings cover every record on both sides exactly once:
// one pairing per extraction record (two-sided or extraction-only), then one
// statement-only pairing per unconsumed statement record, then one per
// duplicate-key statement record.
func Match(extraction []domain.InvoiceRecord, idx *Index, period string, cfg Config) []domain.Pairing {
	pairings := make([]domain.Pairing, 0, len(extraction)+len(idx.records))

	for i := range extraction {
		pairings = append(pairings, matchOne(&extraction[i], idx, period, cfg))
	}

	for _, i := range idx.leftovers() {
		pairings = append(pairings, domain.Pairing{
			Statement: idx.record(i),
			Method:    domain.MatchNone,
		})
	}
	for _, i := range idx.duplicateRecords() {
		pairings = append(pairings, domain.Pairing{
			Statement: idx.record(i),
			Method:    domain.MatchNone,
			Duplicate: true,
		})
	}

	return pairings
}

func matchOne(rec *domain.InvoiceRecord, idx *Index, period string, cfg Config) domain.Pairing {
	// Unparseable records carry no usable key; they stay unmatched by
	// construction and the classifier reports them as unreadable.
	if rec.Quality == domain.QualityUnparseable {
		return domain.Pairing{Extraction: rec, Method: domain.MatchNone}
	}

	// Step 1: exact (supplier GSTIN, invoice number) lookup.
	if i, ok := idx.lookupPrimary(rec.SupplierGSTIN, rec.InvoiceNumber); ok {
		idx.consume(i)
		return domain.Pairing{
			Extraction: rec,
			Statement:  idx.record(i),
			Method:     domain.MatchExact,
		}
	}

	// Step 2: invoice number alone, for GSTINs miskeyed upstream. With
	// several candidates we refuse to guess and surface them for human
	// resolution instead.
	if candidates := idx.lookupByInvoiceNumber(rec.InvoiceNumber); len(candidates) == 1 {
		i := candidates[0]
		idx.consume(i)
		return domain.Pairing{
			Extraction: rec,
			Statement:  idx.record(i),
			Method:     domain.MatchInvoiceNumber,
			Note:       "matched on invoice number only; verify supplier GSTIN",
		}
	} else if len(candidates) > 1 {
		return domain.Pairing{
			Extraction: rec,
			Method:     domain.MatchNone,
			Candidates: candidateIDs(idx, candidates),
			Note:       "multiple statement records share this invoice number",
		}
	}

	// Step 3: amount bucket plus date proximity, last resort for garbled
	// invoice numbers.
	var inWindow []int
	for _, i := range idx.lookupByAmount(rec.TotalAmount) {
		if withinPeriodWindow(idx.record(i).InvoiceDate, period, cfg.DateWindowDays) {
			inWindow = append(inWindow, i)
		}
	}
	if len(inWindow) == 1 {
		i := inWindow[0]
		idx.consume(i)
		return domain.Pairing{
			Extraction: rec,
			Statement:  idx.record(i),
			Method:     domain.MatchAmountDate,
			Note:       "matched on amount and date heuristic; low confidence",
		}
	}

	return domain.Pairing{Extraction: rec, Method: domain.MatchNone}
}

func candidateIDs(idx *Index, candidates []int) []string {
	ids := make([]string, 0, len(candidates))
	for _, i := range candidates {
		rec := idx.record(i)
		id := rec.SourceID
		if id == "" {
			id = rec.SupplierGSTIN + "/" + rec.InvoiceNumber
		}
		ids = append(ids, id)
	}
	return ids
}

// periodLayouts covers GSTR period spellings ("072025", "2025-07", "Jul 2025").
var periodLayouts = []string{"012006", "2006-01", "01-2006", "Jan 2006", "January 2006"}

// parsePeriod resolves a filing period string to the month it covers.
func parsePeriod(period string) (time.Time, bool) {
	period = strings.TrimSpace(period)
	for _, layout := range periodLayouts {
		if t, err := time.Parse(layout, period); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// withinPeriodWindow reports whether a record date falls inside the filing
// period month, extended by windowDays on both ends. Unknown dates and
// unparseable periods fail the check; the heuristic steps that rely on it
// are low confidence and must not fire blind.
func withinPeriodWindow(dateStr, period string, windowDays int) bool {
	date, ok := parseRecordDate(dateStr)
	if !ok {
		return false
	}
	month, ok := parsePeriod(period)
	if !ok {
		return false
	}
	start := month.AddDate(0, 0, -windowDays)
	end := month.AddDate(0, 1, windowDays)
	return !date.Before(start) && date.Before(end)
}
