package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gstrecon/internal/domain"
	"gstrecon/internal/recon"
	"gstrecon/internal/service"
	"gstrecon/internal/session"
)

// captureRunRepo records archived runs in memory.
type captureRunRepo struct {
	mu   sync.Mutex
	runs []domain.ReconRun
}

func (r *captureRunRepo) Create(_ context.Context, run *domain.ReconRun) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, *run)
	return nil
}

func (r *captureRunRepo) GetByID(_ context.Context, _ uuid.UUID) (*domain.ReconRun, error) {
	return nil, domain.ErrRunNotFound
}

func (r *captureRunRepo) ListRecent(_ context.Context, limit int) ([]domain.ReconRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.runs) {
		limit = len(r.runs)
	}
	out := make([]domain.ReconRun, limit)
	copy(out, r.runs[:limit])
	return out, nil
}

func newService(repo *captureRunRepo) service.ReconService {
	return service.NewReconService(session.NewStore(), recon.NewEngine(recon.DefaultConfig()), repo)
}

func rawInvoice(number string, total float64) domain.RawRecord {
	return domain.RawRecord{
		"invoice_number": number,
		"invoice_date":   "2025-07-15",
		"supplier_gstin": "29ABCDE1234F1Z5",
		"total_amount":   total,
	}
}

func TestReconService_FullFlowArchivesRun(t *testing.T) {
	repo := &captureRunRepo{}
	svc := newService(repo)

	sess := svc.CreateSession("Acme Traders", "072025")

	total, err := svc.LoadExtraction(sess.ID, []domain.RawRecord{rawInvoice("INV-001", 1180)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	err = svc.LoadStatement(sess.ID, &domain.StatementPayload{
		GSTIN:    "33KLMNO4321P1Z9",
		Period:   "072025",
		Invoices: []domain.RawRecord{rawInvoice("INV-001", 1180)},
	})
	require.NoError(t, err)

	result, err := svc.Reconcile(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, result.ReportCard.ComplianceScore)

	got, err := svc.GetSession(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, got.Status)
	assert.Equal(t, 100, got.Progress)

	require.Len(t, repo.runs, 1)
	run := repo.runs[0]
	assert.Equal(t, sess.ID, run.SessionID)
	assert.Equal(t, "Acme Traders", run.ClientName)
	assert.Equal(t, 1, run.MatchedCount)
	assert.NotEmpty(t, run.ReportCard)
}

func TestReconService_LoadExtractionAccumulates(t *testing.T) {
	svc := newService(&captureRunRepo{})
	sess := svc.CreateSession("Acme Traders", "072025")

	total, err := svc.LoadExtraction(sess.ID, []domain.RawRecord{rawInvoice("INV-001", 100)})
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	total, err = svc.LoadExtraction(sess.ID, []domain.RawRecord{rawInvoice("INV-002", 200), rawInvoice("INV-003", 300)})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func TestReconService_ReconcileRequiresBothSides(t *testing.T) {
	svc := newService(&captureRunRepo{})
	sess := svc.CreateSession("Acme Traders", "072025")

	_, err := svc.Reconcile(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrNoExtractionRecords)

	_, err = svc.LoadExtraction(sess.ID, []domain.RawRecord{rawInvoice("INV-001", 100)})
	require.NoError(t, err)

	_, err = svc.Reconcile(context.Background(), sess.ID)
	assert.ErrorIs(t, err, domain.ErrNoStatementPayload)
}

func TestReconService_LoadStatementValidates(t *testing.T) {
	svc := newService(&captureRunRepo{})
	sess := svc.CreateSession("Acme Traders", "072025")

	err := svc.LoadStatement(sess.ID, &domain.StatementPayload{Period: "072025", Invoices: []domain.RawRecord{}})
	assert.ErrorIs(t, err, domain.ErrInvalidStatementPayload)
}

func TestReconService_ResultBeforeReconcile(t *testing.T) {
	svc := newService(&captureRunRepo{})
	sess := svc.CreateSession("Acme Traders", "072025")

	_, err := svc.Result(sess.ID)
	assert.ErrorIs(t, err, domain.ErrResultNotReady)
}

func TestReconService_UnknownSession(t *testing.T) {
	svc := newService(&captureRunRepo{})

	_, err := svc.GetSession(uuid.New())
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}
