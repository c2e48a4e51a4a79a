package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawRecord is the loosely-typed record shape crossing the extraction and
// statement boundaries. Upstream collaborators populate whatever fields they
// managed to recover; the normalizer turns this into a strict InvoiceRecord.
type RawRecord map[string]any

// LineItem is a single line on an invoice.
type LineItem struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

// InvoiceRecord is the canonical invoice shape both sides normalize into.
// String fields use "" as the unknown sentinel; decimal fields use
// NullDecimal with Valid=false. InvoiceDate is YYYY-MM-DD when known.
type InvoiceRecord struct {
	SourceID      string              `json:"source_id,omitempty"`
	InvoiceNumber string              `json:"invoice_number"`
	InvoiceDate   string              `json:"invoice_date"`
	SupplierGSTIN string              `json:"supplier_gstin"`
	TaxableAmount decimal.NullDecimal `json:"taxable_amount"`
	TaxAmount     decimal.NullDecimal `json:"tax_amount"`
	TotalAmount   decimal.NullDecimal `json:"total_amount"`
	LineItems     []LineItem          `json:"line_items,omitempty"`
	Quality       RecordQuality       `json:"quality"`
	ExtractError  string              `json:"extract_error,omitempty"`
}

// StatementPayload is the GSTR-2B style payload from the statement
// collaborator. The three top-level fields are required; everything inside
// Invoices is deferred to normalization.
type StatementPayload struct {
	GSTIN    string      `json:"gstin"`
	Period   string      `json:"period"`
	Invoices []RawRecord `json:"invoices"`
}

// Pairing associates zero-or-one extraction record with zero-or-one
// statement record (at least one side present). A statement record belongs
// to at most one pairing; same for extraction records.
type Pairing struct {
	Extraction *InvoiceRecord `json:"extraction,omitempty"`
	Statement  *InvoiceRecord `json:"statement,omitempty"`
	Method     MatchMethod    `json:"match_method"`
	Note       string         `json:"note,omitempty"`

	// Candidates holds statement source IDs when the matcher found several
	// plausible counterparts and refused to guess.
	Candidates []string `json:"candidates,omitempty"`

	// Duplicate marks statement-only pairings excluded from matching
	// because their primary key collided with another statement record.
	Duplicate bool `json:"duplicate,omitempty"`
}

// FieldDiff is an (expected, found) pair for a single differing field.
// Expected carries the statement-side value, Found the extraction-side.
type FieldDiff struct {
	Expected string `json:"expected"`
	Found    string `json:"found"`
}

// Discrepancy is the classified, immutable outcome of a pairing.
type Discrepancy struct {
	Extraction *InvoiceRecord       `json:"extraction,omitempty"`
	Statement  *InvoiceRecord       `json:"statement,omitempty"`
	Kind       DiscrepancyKind      `json:"kind"`
	Severity   Severity             `json:"severity"`
	Method     MatchMethod          `json:"match_method"`
	FieldDiffs map[string]FieldDiff `json:"field_diffs,omitempty"`
	Note       string               `json:"note,omitempty"`
	Candidates []string             `json:"candidates,omitempty"`
}

// ReportCard summarizes a discrepancy list for decision-making. It is
// derived purely from the list and never mutated independently.
type ReportCard struct {
	TotalExtractionRecords int                     `json:"total_extraction_records"`
	TotalStatementRecords  int                     `json:"total_statement_records"`
	MatchedCount           int                     `json:"matched_count"`
	CountsByKind           map[DiscrepancyKind]int `json:"counts_by_kind"`
	TotalAmountDelta       decimal.Decimal         `json:"total_amount_delta"`
	ComplianceScore        float64                 `json:"compliance_score"`
}

// ReconResult bundles the full output of one reconciliation run.
type ReconResult struct {
	Discrepancies []Discrepancy `json:"discrepancies"`
	ReportCard    ReportCard    `json:"report_card"`
}

// ReconRun is the archived summary of a completed reconciliation run.
type ReconRun struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	SessionID       uuid.UUID       `db:"session_id" json:"session_id"`
	ClientName      string          `db:"client_name" json:"client_name"`
	Period          string          `db:"period" json:"period"`
	ExtractionCount int             `db:"extraction_count" json:"extraction_count"`
	StatementCount  int             `db:"statement_count" json:"statement_count"`
	MatchedCount    int             `db:"matched_count" json:"matched_count"`
	ComplianceScore float64         `db:"compliance_score" json:"compliance_score"`
	ReportCard      json.RawMessage `db:"report_card" json:"report_card"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Session tracks one reconciliation workflow from record upload to report.
type Session struct {
	ID         uuid.UUID         `json:"id"`
	ClientName string            `json:"client_name"`
	Period     string            `json:"period"`
	Status     SessionStatus     `json:"status"`
	Progress   int               `json:"progress"`
	Extraction []RawRecord       `json:"-"`
	Statement  *StatementPayload `json:"-"`
	Result     *ReconResult      `json:"-"`
	Error      string            `json:"error,omitempty"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}
