package recon

import (
	"log"

	"github.com/shopspring/decimal"

	"gstrecon/internal/domain"
)

// Config holds the reconciliation thresholds. They are deliberately not
// constants: the right values differ per client and filing discipline.
type Config struct {
	// AmountEpsilon is the absolute tolerance under which two currency
	// values count as equal.
	AmountEpsilon decimal.Decimal

	// MajorDeltaRatio is the relative delta above which an amount mismatch
	// is graded major instead of minor.
	MajorDeltaRatio decimal.Decimal

	// DateWindowDays extends the filing period month on both ends for
	// date-proximity checks.
	DateWindowDays int

	// Workers bounds the normalization worker pool.
	Workers int
}

// DefaultConfig returns the stock thresholds.
func DefaultConfig() Config {
	return Config{
		AmountEpsilon:   decimal.NewFromInt(1),
		MajorDeltaRatio: decimal.NewFromFloat(0.05),
		DateWindowDays:  15,
		Workers:         4,
	}
}

// ProgressFunc receives (processed, total) notifications during a run.
// Purely observational: passing nil never changes engine output.
type ProgressFunc func(processed, total int)

// Engine runs the reconciliation pipeline: normalize both sides, index the
// statement side, match, classify, aggregate. It holds no per-run state;
// one Engine may serve concurrent runs.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given thresholds.
func NewEngine(cfg Config) *Engine {
	return &Engine{cfg: cfg}
}

// ValidateStatementPayload checks only the presence of the three required
// top-level fields. Field-level quality issues inside invoices are deferred
// to normalization, where they become discrepancies rather than errors.
func ValidateStatementPayload(p *domain.StatementPayload) error {
	if p == nil || p.GSTIN == "" || p.Period == "" || p.Invoices == nil {
		return domain.ErrInvalidStatementPayload
	}
	return nil
}

// Reconcile runs the full pipeline over immutable input snapshots and
// returns a fresh result. It never mutates its inputs and never fails for
// data-quality reasons; the only error is a structurally invalid payload.
func (e *Engine) Reconcile(extraction []domain.RawRecord, statement *domain.StatementPayload, progress ProgressFunc) (*domain.ReconResult, error) {
	if err := ValidateStatementPayload(statement); err != nil {
		return nil, err
	}

	total := len(extraction) + len(statement.Invoices)

	extRecords := NormalizeAll(extraction, e.cfg.Workers, offsetProgress(progress, 0, total))
	stmtRecords := NormalizeAll(statement.Invoices, e.cfg.Workers, offsetProgress(progress, len(extraction), total))

	idx := BuildIndex(stmtRecords)
	pairings := Match(extRecords, idx, statement.Period, e.cfg)
	discrepancies := ClassifyAll(pairings, statement.Period, e.cfg)
	card := Aggregate(discrepancies)
	notify(progress, total, total)

	log.Printf("recon.Engine: period=%s extraction=%d statement=%d matched=%d score=%.1f",
		statement.Period, card.TotalExtractionRecords, card.TotalStatementRecords,
		card.MatchedCount, card.ComplianceScore)

	return &domain.ReconResult{
		Discrepancies: discrepancies,
		ReportCard:    card,
	}, nil
}

// offsetProgress shifts a phase-local (processed, total) into run-global
// coordinates so the caller sees one strictly increasing sequence.
func offsetProgress(progress ProgressFunc, offset, total int) ProgressFunc {
	if progress == nil {
		return nil
	}
	return func(processed, _ int) {
		progress(offset+processed, total)
	}
}
