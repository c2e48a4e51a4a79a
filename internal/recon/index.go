package recon

import (
	"github.com/shopspring/decimal"

	"gstrecon/internal/domain"
)

// primaryKey is (supplier GSTIN, invoice number), both normalized.
type primaryKey struct {
	gstin         string
	invoiceNumber string
}

// Index holds lookup structures over statement-side records. Statement
// records whose primary key collides with another's are excluded from every
// map; duplicate detection is a discrepancy signal, not a crash.
type Index struct {
	records  []domain.InvoiceRecord
	consumed []bool

	primary         map[primaryKey]int
	byInvoiceNumber map[string][]int
	byAmountBucket  map[string][]int
	duplicates      map[int]bool
}

// BuildIndex builds the primary, invoice-number, and amount-bucket lookups
// over the statement records.
func BuildIndex(records []domain.InvoiceRecord) *Index {
	idx := &Index{
		records:         records,
		consumed:        make([]bool, len(records)),
		primary:         make(map[primaryKey]int),
		byInvoiceNumber: make(map[string][]int),
		byAmountBucket:  make(map[string][]int),
		duplicates:      make(map[int]bool),
	}

	// First pass: find primary-key collisions.
	keyCount := make(map[primaryKey]int)
	for i := range records {
		if k, ok := recordKey(&records[i]); ok {
			keyCount[k]++
		}
	}
	for i := range records {
		if k, ok := recordKey(&records[i]); ok && keyCount[k] > 1 {
			idx.duplicates[i] = true
		}
	}

	// Second pass: index the eligible records.
	for i := range records {
		if idx.duplicates[i] {
			continue
		}
		rec := &records[i]
		if k, ok := recordKey(rec); ok {
			idx.primary[k] = i
		}
		if rec.InvoiceNumber != "" {
			idx.byInvoiceNumber[rec.InvoiceNumber] = append(idx.byInvoiceNumber[rec.InvoiceNumber], i)
		}
		if rec.TotalAmount.Valid {
			b := amountBucket(rec.TotalAmount.Decimal)
			idx.byAmountBucket[b] = append(idx.byAmountBucket[b], i)
		}
	}

	return idx
}

func recordKey(rec *domain.InvoiceRecord) (primaryKey, bool) {
	if rec.SupplierGSTIN == "" || rec.InvoiceNumber == "" {
		return primaryKey{}, false
	}
	return primaryKey{gstin: rec.SupplierGSTIN, invoiceNumber: rec.InvoiceNumber}, true
}

// amountBucket keys totals by their nearest whole currency unit.
func amountBucket(d decimal.Decimal) string {
	return d.Round(0).String()
}

// lookupPrimary returns the unconsumed record matching (gstin, number).
func (idx *Index) lookupPrimary(gstin, invoiceNumber string) (int, bool) {
	if gstin == "" || invoiceNumber == "" {
		return 0, false
	}
	i, ok := idx.primary[primaryKey{gstin: gstin, invoiceNumber: invoiceNumber}]
	if !ok || idx.consumed[i] {
		return 0, false
	}
	return i, true
}

// lookupByInvoiceNumber returns all unconsumed candidates sharing the number.
func (idx *Index) lookupByInvoiceNumber(invoiceNumber string) []int {
	if invoiceNumber == "" {
		return nil
	}
	return idx.unconsumed(idx.byInvoiceNumber[invoiceNumber])
}

// lookupByAmount returns all unconsumed candidates in the same amount bucket.
func (idx *Index) lookupByAmount(total decimal.NullDecimal) []int {
	if !total.Valid {
		return nil
	}
	return idx.unconsumed(idx.byAmountBucket[amountBucket(total.Decimal)])
}

func (idx *Index) unconsumed(candidates []int) []int {
	var out []int
	for _, i := range candidates {
		if !idx.consumed[i] {
			out = append(out, i)
		}
	}
	return out
}

// consume permanently removes a statement record from candidacy.
func (idx *Index) consume(i int) { idx.consumed[i] = true }

// record returns a pointer to the i-th statement record.
func (idx *Index) record(i int) *domain.InvoiceRecord { return &idx.records[i] }

// leftovers returns the indexes of unconsumed, non-duplicate records in
// input order.
func (idx *Index) leftovers() []int {
	var out []int
	for i := range idx.records {
		if !idx.consumed[i] && !idx.duplicates[i] {
			out = append(out, i)
		}
	}
	return out
}

// duplicateRecords returns the indexes of primary-key collision records in
// input order.
func (idx *Index) duplicateRecords() []int {
	var out []int
	for i := range idx.records {
		if idx.duplicates[i] {
			out = append(out, i)
		}
	}
	return out
}
