// Package xlsxreport renders a reconciliation result as an Excel workbook
// with a summary sheet and a color-coded discrepancy sheet.
package xlsxreport

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gstrecon/internal/domain"
)

const (
	summarySheet     = "Summary"
	discrepancySheet = "Discrepancies"
)

// Fill colors per severity, light enough to keep text readable.
var severityFills = map[domain.Severity]string{
	domain.SeverityNone:   "C6EFCE", // green
	domain.SeverityMinor:  "FFF2CC", // pale yellow
	domain.SeverityMedium: "FFE699", // amber
	domain.SeverityMajor:  "F8CBAD", // orange
	domain.SeverityHigh:   "FFC7CE", // red
}

var discrepancyHeader = []string{
	"Kind", "Severity", "Match Method", "Source File",
	"Invoice Number (Extracted)", "Invoice Date (Extracted)", "Supplier GSTIN (Extracted)",
	"Taxable Amount (Extracted)", "Tax Amount (Extracted)", "Total Amount (Extracted)",
	"Invoice Number (Statement)", "Invoice Date (Statement)", "Supplier GSTIN (Statement)",
	"Total Amount (Statement)", "Field Diffs", "Candidates", "Note",
}

// Write renders result as an xlsx workbook into w.
func Write(w io.Writer, clientName, period string, result *domain.ReconResult) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	// excelize names the default sheet "Sheet1"; rename it for the summary.
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}
	if err := writeSummary(f, clientName, period, &result.ReportCard); err != nil {
		return fmt.Errorf("write summary sheet: %w", err)
	}
	if err := writeDiscrepancies(f, result.Discrepancies); err != nil {
		return fmt.Errorf("write discrepancy sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, clientName, period string, card *domain.ReportCard) error {
	rows := [][]interface{}{
		{"Client", clientName},
		{"Period", period},
		{"Extraction Records", card.TotalExtractionRecords},
		{"Statement Records", card.TotalStatementRecords},
		{"Matched", card.MatchedCount},
		{"Total Amount Delta", card.TotalAmountDelta.StringFixed(2)},
		{"Compliance Score", fmt.Sprintf("%.1f", card.ComplianceScore)},
	}

	// Kind counts in a stable order, matched first.
	kinds := make([]string, 0, len(card.CountsByKind))
	for k := range card.CountsByKind {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	for _, k := range kinds {
		rows = append(rows, []interface{}{labelForKind(k), card.CountsByKind[domain.DiscrepancyKind(k)]})
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return err
		}
	}

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastLabel, err := excelize.CoordinatesToCellName(1, len(rows))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(summarySheet, "A1", lastLabel, boldStyle); err != nil {
		return err
	}
	return f.SetColWidth(summarySheet, "A", "A", 28)
}

func writeDiscrepancies(f *excelize.File, discrepancies []domain.Discrepancy) error {
	if _, err := f.NewSheet(discrepancySheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
	})
	if err != nil {
		return err
	}

	header := make([]interface{}, len(discrepancyHeader))
	for i, h := range discrepancyHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(discrepancySheet, "A1", &header); err != nil {
		return err
	}
	lastCol, err := excelize.CoordinatesToCellName(len(discrepancyHeader), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(discrepancySheet, "A1", lastCol, headerStyle); err != nil {
		return err
	}

	// One style per severity, created lazily.
	styles := make(map[domain.Severity]int)

	for i := range discrepancies {
		d := &discrepancies[i]
		rowNum := i + 2
		row := discrepancyRow(d)

		start, err := excelize.CoordinatesToCellName(1, rowNum)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(discrepancySheet, start, &row); err != nil {
			return err
		}

		fill, ok := severityFills[d.Severity]
		if !ok {
			continue
		}
		styleID, ok := styles[d.Severity]
		if !ok {
			styleID, err = f.NewStyle(&excelize.Style{
				Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{fill}},
			})
			if err != nil {
				return err
			}
			styles[d.Severity] = styleID
		}
		end, err := excelize.CoordinatesToCellName(len(discrepancyHeader), rowNum)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(discrepancySheet, start, end, styleID); err != nil {
			return err
		}
	}

	return f.SetColWidth(discrepancySheet, "A", "Q", 20)
}

func discrepancyRow(d *domain.Discrepancy) []interface{} {
	row := make([]interface{}, len(discrepancyHeader))
	for i := range row {
		row[i] = ""
	}
	row[0] = string(d.Kind)
	row[1] = string(d.Severity)
	row[2] = string(d.Method)

	if ext := d.Extraction; ext != nil {
		row[3] = ext.SourceID
		row[4] = ext.InvoiceNumber
		row[5] = ext.InvoiceDate
		row[6] = ext.SupplierGSTIN
		row[7] = moneyCell(ext.TaxableAmount)
		row[8] = moneyCell(ext.TaxAmount)
		row[9] = moneyCell(ext.TotalAmount)
	}
	if stmt := d.Statement; stmt != nil {
		row[10] = stmt.InvoiceNumber
		row[11] = stmt.InvoiceDate
		row[12] = stmt.SupplierGSTIN
		row[13] = moneyCell(stmt.TotalAmount)
	}
	row[14] = diffsCell(d.FieldDiffs)
	row[15] = strings.Join(d.Candidates, "; ")
	row[16] = d.Note
	return row
}

func moneyCell(v decimal.NullDecimal) string {
	if !v.Valid {
		return ""
	}
	return v.Decimal.StringFixed(2)
}

func diffsCell(diffs map[string]domain.FieldDiff) string {
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

// labelForKind turns "missing_in_statement" into "Missing In Statement".
func labelForKind(kind string) string {
	words := strings.Split(kind, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
