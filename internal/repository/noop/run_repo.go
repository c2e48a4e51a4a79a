package noop

import (
	"context"
	"log"

	"github.com/google/uuid"

	"gstrecon/internal/domain"
	"gstrecon/internal/port"
)

type runRepo struct{}

// NewRunRepo creates a no-op RunRepository for running without a database.
// Completed runs are logged and discarded.
func NewRunRepo() port.RunRepository {
	return &runRepo{}
}

func (r *runRepo) Create(_ context.Context, run *domain.ReconRun) error {
	log.Printf("[NOOP ARCHIVE] run %s client=%s period=%s matched=%d score=%.1f",
		run.ID, run.ClientName, run.Period, run.MatchedCount, run.ComplianceScore)
	return nil
}

func (r *runRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.ReconRun, error) {
	return nil, domain.ErrRunNotFound
}

func (r *runRepo) ListRecent(_ context.Context, _ int) ([]domain.ReconRun, error) {
	return []domain.ReconRun{}, nil
}
