package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"gstrecon/internal/domain"
	"gstrecon/internal/port"
)

// RunRepo persists reconciliation run summaries in PostgreSQL.
type RunRepo struct {
	db *sqlx.DB
}

// NewRunRepo creates a RunRepo.
func NewRunRepo(db *sqlx.DB) port.RunRepository {
	return &RunRepo{db: db}
}

func (r *RunRepo) Create(ctx context.Context, run *domain.ReconRun) error {
	query := `
		INSERT INTO recon_runs (
			id, session_id, client_name, period,
			extraction_count, statement_count, matched_count,
			compliance_score, report_card, created_at
		) VALUES (
			:id, :session_id, :client_name, :period,
			:extraction_count, :statement_count, :matched_count,
			:compliance_score, :report_card, :created_at
		)`
	if _, err := r.db.NamedExecContext(ctx, query, run); err != nil {
		return fmt.Errorf("inserting recon run: %w", err)
	}
	return nil
}

func (r *RunRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.ReconRun, error) {
	var run domain.ReconRun
	err := r.db.GetContext(ctx, &run, `SELECT * FROM recon_runs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting recon run: %w", err)
	}
	return &run, nil
}

func (r *RunRepo) ListRecent(ctx context.Context, limit int) ([]domain.ReconRun, error) {
	runs := []domain.ReconRun{}
	err := r.db.SelectContext(ctx, &runs,
		`SELECT * FROM recon_runs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing recon runs: %w", err)
	}
	return runs, nil
}
