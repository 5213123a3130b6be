package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	"github.com/noah-isme/uems-api/pkg/storage"
)

func newTestExportService(t *testing.T, store *memStore) *ExportService {
	t.Helper()
	local, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("test-secret", time.Hour)
	svc := NewExportService(store, store, nil, local, signer, ExportConfig{
		APIPrefix: "/api/v1",
		ResultTTL: time.Hour,
		Workers:   1,
	}, nil)
	svc.Start(context.Background())
	t.Cleanup(svc.Stop)
	return svc
}

func TestExportTimelineCSV(t *testing.T) {
	store := newMemStore()
	revals := newTestService(store)
	ctx := context.Background()

	app, err := revals.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)
	_, err = revals.VerifyPayment(ctx, app.ID, dto.VerifyPaymentRequest{PaymentRef: "TXN-9"}, coeAdmin())
	require.NoError(t, err)

	exports := newTestExportService(t, store)
	job, err := exports.Request(ctx, app.ID, dto.ExportRequest{Type: "timeline", Format: "csv"}, coeAdmin())
	require.NoError(t, err)
	assert.Equal(t, models.ExportStatusQueued, job.Status)

	require.Eventually(t, func() bool {
		current, err := exports.Job(job.ID)
		return err == nil && current.Status == models.ExportStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	done, err := exports.Job(job.ID)
	require.NoError(t, err)
	require.NotEmpty(t, done.Token)
	assert.Contains(t, done.URL, "/api/v1/exports/download/")

	file, err := exports.Open(done.Token)
	require.NoError(t, err)
	defer file.Close()
	payload, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(payload), models.TimelineSubmitted)
	assert.Contains(t, string(payload), models.TimelinePaymentVerified)
}

func TestExportResultSlipPDF(t *testing.T) {
	store := newMemStore()
	revals := newTestService(store)
	ctx := context.Background()

	app, err := revals.Apply(ctx, applyRequest(), coeAdmin())
	require.NoError(t, err)

	exports := newTestExportService(t, store)
	job, err := exports.Request(ctx, app.ID, dto.ExportRequest{Type: "result_slip", Format: "pdf"}, coeAdmin())
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		current, err := exports.Job(job.ID)
		return err == nil && current.Status == models.ExportStatusCompleted
	}, 5*time.Second, 10*time.Millisecond)

	done, err := exports.Job(job.ID)
	require.NoError(t, err)
	file, err := exports.Open(done.Token)
	require.NoError(t, err)
	defer file.Close()
	header := make([]byte, 4)
	_, err = io.ReadFull(file, header)
	require.NoError(t, err)
	assert.Equal(t, "%PDF", string(header))
}

func TestExportUnknownApplication(t *testing.T) {
	store := newMemStore()
	exports := newTestExportService(t, store)

	_, err := exports.Request(context.Background(), "missing", dto.ExportRequest{Type: "timeline", Format: "csv"}, coeAdmin())
	require.Error(t, err)
}

func TestExportJobUnknownID(t *testing.T) {
	store := newMemStore()
	exports := newTestExportService(t, store)

	_, err := exports.Job("nope")
	require.Error(t, err)
}
