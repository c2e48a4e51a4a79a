package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"gstrecon/internal/domain"
	"gstrecon/internal/port"
	"gstrecon/internal/recon"
	"gstrecon/internal/session"
)

// ReconService orchestrates reconciliation sessions: loading the two record
// sets, running the engine, and archiving completed runs.
type ReconService interface {
	CreateSession(clientName, period string) *domain.Session
	GetSession(id uuid.UUID) (domain.Session, error)
	DeleteSession(id uuid.UUID) error
	LoadExtraction(id uuid.UUID, records []domain.RawRecord) (int, error)
	LoadStatement(id uuid.UUID, payload *domain.StatementPayload) error
	Reconcile(ctx context.Context, id uuid.UUID) (*domain.ReconResult, error)
	Result(id uuid.UUID) (*domain.ReconResult, error)
	ListRuns(ctx context.Context, limit int) ([]domain.ReconRun, error)
}

type reconService struct {
	sessions *session.Store
	engine   *recon.Engine
	runRepo  port.RunRepository
}

// NewReconService creates a ReconService.
func NewReconService(sessions *session.Store, engine *recon.Engine, runRepo port.RunRepository) ReconService {
	return &reconService{
		sessions: sessions,
		engine:   engine,
		runRepo:  runRepo,
	}
}

func (s *reconService) CreateSession(clientName, period string) *domain.Session {
	sess := s.sessions.Create(clientName, period)
	log.Printf("reconService: created session %s (client=%s, period=%s)", sess.ID, clientName, period)
	return sess
}

func (s *reconService) GetSession(id uuid.UUID) (domain.Session, error) {
	return s.sessions.Get(id)
}

func (s *reconService) DeleteSession(id uuid.UUID) error {
	return s.sessions.Delete(id)
}

// LoadExtraction appends extraction-side records to the session and returns
// the total loaded so far. Records are stored raw; normalization happens
// inside the engine at reconcile time.
func (s *reconService) LoadExtraction(id uuid.UUID, records []domain.RawRecord) (int, error) {
	var total int
	err := s.sessions.Update(id, func(sess *domain.Session) {
		sess.Extraction = append(sess.Extraction, records...)
		sess.Status = domain.SessionStatusRecordsLoaded
		total = len(sess.Extraction)
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}

// LoadStatement validates the payload's required top-level fields and
// attaches it to the session. Field-level quality issues are deferred to
// reconciliation, where they surface as discrepancies.
func (s *reconService) LoadStatement(id uuid.UUID, payload *domain.StatementPayload) error {
	if err := recon.ValidateStatementPayload(payload); err != nil {
		return err
	}
	return s.sessions.Update(id, func(sess *domain.Session) {
		sess.Statement = payload
		sess.Status = domain.SessionStatusStatementUploaded
	})
}

// Reconcile runs the engine over the session's two record sets, stores the
// result on the session, and archives a run summary.
func (s *reconService) Reconcile(ctx context.Context, id uuid.UUID) (*domain.ReconResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if len(sess.Extraction) == 0 {
		return nil, domain.ErrNoExtractionRecords
	}
	if sess.Statement == nil {
		return nil, domain.ErrNoStatementPayload
	}

	_ = s.sessions.Update(id, func(sess *domain.Session) {
		sess.Status = domain.SessionStatusReconciling
		sess.Progress = 0
		sess.Error = ""
	})

	result, err := s.engine.Reconcile(sess.Extraction, sess.Statement, func(processed, total int) {
		percent := 100
		if total > 0 {
			percent = processed * 100 / total
		}
		_ = s.sessions.Update(id, func(sess *domain.Session) {
			if percent > sess.Progress {
				sess.Progress = percent
			}
		})
	})
	if err != nil {
		_ = s.sessions.Update(id, func(sess *domain.Session) {
			sess.Status = domain.SessionStatusError
			sess.Error = err.Error()
		})
		return nil, err
	}

	_ = s.sessions.Update(id, func(sess *domain.Session) {
		sess.Result = result
		sess.Status = domain.SessionStatusCompleted
		sess.Progress = 100
	})

	if err := s.archiveRun(ctx, &sess, result); err != nil {
		// The archive is an audit convenience; a failed insert must not
		// fail the reconciliation itself.
		log.Printf("reconService: archiving run for session %s failed: %v", id, err)
	}

	return result, nil
}

// Result returns the stored reconciliation result, if any.
func (s *reconService) Result(id uuid.UUID) (*domain.ReconResult, error) {
	sess, err := s.sessions.Get(id)
	if err != nil {
		return nil, err
	}
	if sess.Result == nil {
		return nil, domain.ErrResultNotReady
	}
	return sess.Result, nil
}

func (s *reconService) ListRuns(ctx context.Context, limit int) ([]domain.ReconRun, error) {
	return s.runRepo.ListRecent(ctx, limit)
}

func (s *reconService) archiveRun(ctx context.Context, sess *domain.Session, result *domain.ReconResult) error {
	card := result.ReportCard
	cardJSON, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("marshaling report card: %w", err)
	}
	run := &domain.ReconRun{
		ID:              uuid.New(),
		SessionID:       sess.ID,
		ClientName:      sess.ClientName,
		Period:          sess.Period,
		ExtractionCount: card.TotalExtractionRecords,
		StatementCount:  card.TotalStatementRecords,
		MatchedCount:    card.MatchedCount,
		ComplianceScore: card.ComplianceScore,
		ReportCard:      cardJSON,
		CreatedAt:       time.Now().UTC(),
	}
	return s.runRepo.Create(ctx, run)
}
