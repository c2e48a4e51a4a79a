package port

import (
	"context"

	"github.com/google/uuid"

	"gstrecon/internal/domain"
)

// RunRepository archives completed reconciliation runs.
type RunRepository interface {
	Create(ctx context.Context, run *domain.ReconRun) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ReconRun, error)
	ListRecent(ctx context.Context, limit int) ([]domain.ReconRun, error)
}
