package domain

// RecordQuality describes how much of a record the upstream extractor
// managed to recover.
type RecordQuality string

const (
	QualityComplete    RecordQuality = "complete"
	QualityPartial     RecordQuality = "partial"
	QualityUnparseable RecordQuality = "unparseable"
)

// DiscrepancyKind classifies the outcome of comparing (or failing to match)
// a pairing. "matched" is a kind too, so every pairing yields exactly one
// discrepancy and callers never need a separate no-discrepancy path.
type DiscrepancyKind string

const (
	KindMatched              DiscrepancyKind = "matched"
	KindAmountMismatch       DiscrepancyKind = "amount_mismatch"
	KindDateMismatch         DiscrepancyKind = "date_mismatch"
	KindMissingInStatement   DiscrepancyKind = "missing_in_statement"
	KindMissingInExtraction  DiscrepancyKind = "missing_in_extraction"
	KindUnreadableSource     DiscrepancyKind = "unreadable_source"
	KindAmbiguous            DiscrepancyKind = "ambiguous"
	KindDuplicateInStatement DiscrepancyKind = "duplicate_in_statement"
)

// Severity grades how urgently a discrepancy needs human attention.
type Severity string

const (
	SeverityNone   Severity = "none"
	SeverityMinor  Severity = "minor"
	SeverityMedium Severity = "medium"
	SeverityMajor  Severity = "major"
	SeverityHigh   Severity = "high"
)

// severityRank orders severities for sorting and report highlighting.
var severityRank = map[Severity]int{
	SeverityNone:   0,
	SeverityMinor:  1,
	SeverityMedium: 2,
	SeverityMajor:  3,
	SeverityHigh:   4,
}

// Rank returns the numeric ordering of a severity (higher is worse).
func (s Severity) Rank() int { return severityRank[s] }

// MatchMethod records which lookup step produced a pairing.
type MatchMethod string

const (
	MatchExact         MatchMethod = "exact"
	MatchInvoiceNumber MatchMethod = "invoice_number"
	MatchAmountDate    MatchMethod = "amount_date"
	MatchNone          MatchMethod = "none"
)

// SessionStatus represents the lifecycle of a reconciliation session.
type SessionStatus string

const (
	SessionStatusCreated           SessionStatus = "created"
	SessionStatusRecordsLoaded     SessionStatus = "records_loaded"
	SessionStatusStatementUploaded SessionStatus = "statement_uploaded"
	SessionStatusReconciling       SessionStatus = "reconciling"
	SessionStatusCompleted         SessionStatus = "completed"
	SessionStatusError             SessionStatus = "error"
)
