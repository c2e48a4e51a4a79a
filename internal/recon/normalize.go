package recon

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"gstrecon/internal/domain"
)

var (
	gstinPattern = regexp.MustCompile(`^\d{2}[A-Z]{5}\d{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)
	nonAlnum     = regexp.MustCompile(`[^A-Z0-9]+`)
	moneyJunk    = regexp.MustCompile(`[^0-9.\-]+`)
)

// Sentinel strings upstream extractors emit for fields they could not read.
var unknownSentinels = map[string]bool{
	"":        true,
	"unknown": true,
	"null":    true,
	"none":    true,
	"n/a":     true,
	"na":      true,
	"-":       true,
}

// Normalize canonicalizes one raw record into an InvoiceRecord. It never
// fails: absent or unusable values become the unknown sentinel and the
// record's quality is downgraded instead.
//
// Quality rules: partial if any of {invoice number, supplier GSTIN, total
// amount} is unknown; unparseable if invoice number AND supplier GSTIN are
// both unknown (no usable key), or the extractor reported a per-record error.
func Normalize(raw domain.RawRecord) domain.InvoiceRecord {
	rec := domain.InvoiceRecord{
		SourceID:      stringField(raw, "source_id", "source_file", "file"),
		InvoiceNumber: NormalizeInvoiceNumber(stringField(raw, "invoice_number", "invoice_no")),
		InvoiceDate:   normalizeDate(stringField(raw, "invoice_date", "date")),
		SupplierGSTIN: NormalizeGSTIN(stringField(raw, "supplier_gstin", "gstin")),
		TaxableAmount: decimalField(raw, "taxable_amount", "invoice_amount"),
		TaxAmount:     decimalField(raw, "tax_amount"),
		TotalAmount:   decimalField(raw, "total_amount", "total", "amount"),
		LineItems:     lineItemsField(raw),
		ExtractError:  stringField(raw, "error"),
	}

	switch {
	case rec.ExtractError != "",
		rec.InvoiceNumber == "" && rec.SupplierGSTIN == "":
		rec.Quality = domain.QualityUnparseable
	case rec.InvoiceNumber == "", rec.SupplierGSTIN == "", !rec.TotalAmount.Valid:
		rec.Quality = domain.QualityPartial
	default:
		rec.Quality = domain.QualityComplete
	}

	return rec
}

// NormalizeAll normalizes records across a bounded worker pool, writing each
// result at its input index so output order is exactly input order. The
// optional progress callback receives strictly increasing processed counts;
// passing nil never changes the output.
func NormalizeAll(raws []domain.RawRecord, workers int, progress ProgressFunc) []domain.InvoiceRecord {
	out := make([]domain.InvoiceRecord, len(raws))
	if len(raws) == 0 {
		return out
	}

	if workers <= 1 || len(raws) < workers*2 {
		for i := range raws {
			out[i] = Normalize(raws[i])
			notify(progress, i+1, len(raws))
		}
		return out
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		processed int
	)
	sem := make(chan struct{}, workers)
	for i := range raws {
		sem <- struct{}{} // acquire
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }() // release

			out[i] = Normalize(raws[i])
			mu.Lock()
			processed++
			notify(progress, processed, len(raws))
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return out
}

// NormalizeGSTIN uppercases and strips whitespace, returning "" unless the
// result passes the 15-character structural pattern. This is a format guard,
// not a full legal validation.
func NormalizeGSTIN(s string) string {
	s = strings.ToUpper(strings.Join(strings.Fields(s), ""))
	if unknownSentinels[strings.ToLower(s)] {
		return ""
	}
	if len(s) != 15 || !gstinPattern.MatchString(s) {
		return ""
	}
	return s
}

// NormalizeInvoiceNumber trims, uppercases, and strips punctuation so that
// "inv-001", "INV 001", and "INV/001" all key identically.
func NormalizeInvoiceNumber(s string) string {
	s = strings.TrimSpace(s)
	if unknownSentinels[strings.ToLower(s)] {
		return ""
	}
	return nonAlnum.ReplaceAllString(strings.ToUpper(s), "")
}

// stringField returns the first present, non-sentinel string value among keys.
func stringField(raw domain.RawRecord, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = fmt.Sprintf("%v", v)
		}
		s = strings.TrimSpace(s)
		if unknownSentinels[strings.ToLower(s)] {
			continue
		}
		return s
	}
	return ""
}

// decimalField parses the first usable numeric value among keys into a
// NullDecimal. Unparseable or absent values yield Valid=false.
func decimalField(raw domain.RawRecord, keys ...string) decimal.NullDecimal {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok || v == nil {
			continue
		}
		if d, ok := parseDecimal(v); ok {
			return decimal.NullDecimal{Decimal: d, Valid: true}
		}
	}
	return decimal.NullDecimal{}
}

func parseDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case string:
		s := moneyJunk.ReplaceAllString(n, "")
		if s == "" || s == "-" || s == "." {
			return decimal.Decimal{}, false
		}
		d, err := decimal.NewFromString(s)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

// lineItemsField parses the optional items array. Malformed entries are
// skipped rather than failing the record.
func lineItemsField(raw domain.RawRecord) []domain.LineItem {
	v, ok := raw["line_items"]
	if !ok {
		v, ok = raw["items"]
	}
	if !ok {
		return nil
	}
	entries, ok := v.([]any)
	if !ok {
		return nil
	}

	items := make([]domain.LineItem, 0, len(entries))
	for _, e := range entries {
		m, ok := e.(map[string]any)
		if !ok {
			continue
		}
		item := domain.LineItem{Description: stringField(m, "description")}
		if d, ok := parseDecimal(m["quantity"]); ok {
			item.Quantity = d
		}
		if d, ok := parseDecimal(m["rate"]); ok {
			item.Rate = d
		}
		if d, ok := parseDecimal(m["amount"]); ok {
			item.Amount = d
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return nil
	}
	return items
}

// dateLayouts covers the formats seen across extractors and statements.
var dateLayouts = []string{
	"2006-01-02",
	"02-01-2006",
	"02/01/2006",
	"2006/01/02",
	"02 Jan 2006",
	"2 Jan 2006",
	"Jan 02, 2006",
	"January 02, 2006",
	"02-01-2006 15:04:05",
	"2006-01-02T15:04:05Z07:00",
}

// normalizeDate canonicalizes to YYYY-MM-DD, "" when unparseable.
func normalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if unknownSentinels[strings.ToLower(s)] {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// parseRecordDate parses an already-normalized record date.
func parseRecordDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", s)
	return t, err == nil
}

func notify(progress ProgressFunc, processed, total int) {
	if progress != nil {
		progress(processed, total)
	}
}
