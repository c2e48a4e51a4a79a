package csvexport

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"gstrecon/internal/domain"
)

// UTF-8 BOM bytes for Excel compatibility on Windows.
var BOM = []byte{0xEF, 0xBB, 0xBF}

// columns defines the CSV header row.
var columns = []string{
	"Kind",
	"Severity",
	"Match Method",
	"Source File",
	"Invoice Number (Extracted)",
	"Invoice Date (Extracted)",
	"Supplier GSTIN (Extracted)",
	"Taxable Amount (Extracted)",
	"Tax Amount (Extracted)",
	"Total Amount (Extracted)",
	"Invoice Number (Statement)",
	"Invoice Date (Statement)",
	"Supplier GSTIN (Statement)",
	"Total Amount (Statement)",
	"Field Diffs",
	"Candidates",
	"Note",
}

// Writer wraps csv.Writer for exporting discrepancies as CSV.
type Writer struct {
	csv *csv.Writer
}

// NewWriter creates a Writer that writes CSV to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{csv: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.csv.Write(columns)
}

// WriteDiscrepancies converts a batch of discrepancies to CSV rows and writes them.
func (w *Writer) WriteDiscrepancies(discrepancies []domain.Discrepancy) error {
	for i := range discrepancies {
		if err := w.csv.Write(discrepancyToRow(&discrepancies[i])); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes the underlying csv.Writer buffer.
func (w *Writer) Flush() {
	w.csv.Flush()
}

// Error returns any error from the underlying csv.Writer.
func (w *Writer) Error() error {
	return w.csv.Error()
}

// discrepancyToRow converts a single discrepancy to a string slice matching
// columns. Absent sides leave their columns empty.
func discrepancyToRow(d *domain.Discrepancy) []string {
	row := make([]string, len(columns))
	row[0] = string(d.Kind)
	row[1] = string(d.Severity)
	row[2] = string(d.Method)

	if ext := d.Extraction; ext != nil {
		row[3] = ext.SourceID
		row[4] = ext.InvoiceNumber
		row[5] = ext.InvoiceDate
		row[6] = ext.SupplierGSTIN
		row[7] = formatMoney(ext.TaxableAmount)
		row[8] = formatMoney(ext.TaxAmount)
		row[9] = formatMoney(ext.TotalAmount)
	}
	if stmt := d.Statement; stmt != nil {
		row[10] = stmt.InvoiceNumber
		row[11] = stmt.InvoiceDate
		row[12] = stmt.SupplierGSTIN
		row[13] = formatMoney(stmt.TotalAmount)
	}
	row[14] = formatDiffs(d.FieldDiffs)
	row[15] = strings.Join(d.Candidates, "; ")
	row[16] = d.Note

	return row
}

func formatMoney(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}

// formatDiffs renders field diffs as "field: expected=X found=Y" entries,
// sorted by field name for stable output.
func formatDiffs(diffs map[string]domain.FieldDiff) string {
	if len(diffs) == 0 {
		return ""
	}
	fields := make([]string, 0, len(diffs))
	for f := range diffs {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, fmt.Sprintf("%s: expected=%s found=%s", f, diffs[f].Expected, diffs[f].Found))
	}
	return strings.Join(parts, "; ")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a client name for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns a sanitized filename for Content-Disposition header.
// Format: {sanitized_client_name}_{YYYY-MM-DD}.csv
func BuildFilename(clientName string) string {
	sanitized := SanitizeFilename(clientName)
	date := time.Now().Format("2006-01-02")
	return fmt.Sprintf("%s_%s.csv", sanitized, date)
}
