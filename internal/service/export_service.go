package service

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
	"github.com/noah-isme/uems-api/pkg/export"
	"github.com/noah-isme/uems-api/pkg/jobs"
	"github.com/noah-isme/uems-api/pkg/storage"
)

type exportApplicationStore interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
}

type exportTimelineStore interface {
	ListByApplication(ctx context.Context, applicationID string) ([]models.TimelineEvent, error)
}

type exportRoster interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	CleanupOlderThan(ttl time.Duration) ([]string, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportConfig tunes export behaviour.
type ExportConfig struct {
	APIPrefix string
	ResultTTL time.Duration
	Workers   int
	Retries   int
}

// ExportService renders timeline histories and result slips to CSV or PDF,
// asynchronously, and hands out signed download URLs.
type ExportService struct {
	apps     exportApplicationStore
	timeline exportTimelineStore
	roster   exportRoster
	storage  fileStorage
	csv      csvRenderer
	pdf      pdfRenderer
	signer   *storage.SignedURLSigner
	logger   *zap.Logger
	cfg      ExportConfig

	queue *jobs.Queue

	mu      sync.RWMutex
	jobsLog map[string]*models.ExportJob
}

// NewExportService constructs an ExportService. Roster may be nil; student
// details are then omitted from rendered documents.
func NewExportService(apps exportApplicationStore, timeline exportTimelineStore, roster exportRoster, store fileStorage, signer *storage.SignedURLSigner, cfg ExportConfig, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResultTTL <= 0 {
		cfg.ResultTTL = 24 * time.Hour
	}
	svc := &ExportService{
		apps:     apps,
		timeline: timeline,
		roster:   roster,
		storage:  store,
		csv:      export.NewCSVExporter(),
		pdf:      export.NewPDFExporter(),
		signer:   signer,
		logger:   logger,
		cfg:      cfg,
		jobsLog:  make(map[string]*models.ExportJob),
	}
	svc.queue = jobs.NewQueue("exports", svc.handleJob, jobs.QueueConfig{
		Workers:    cfg.Workers,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return svc
}

// Start launches the export workers.
func (s *ExportService) Start(ctx context.Context) { s.queue.Start(ctx) }

// Stop drains the export workers.
func (s *ExportService) Stop() { s.queue.Stop() }

// Request queues an export for one application and returns the tracking job.
func (s *ExportService) Request(ctx context.Context, applicationID string, req dto.ExportRequest, actor *models.JWTClaims) (*models.ExportJob, error) {
	if _, err := s.apps.GetByID(ctx, applicationID); err != nil {
		return nil, mapStoreError(err, "failed to load application")
	}

	job := &models.ExportJob{
		ID:            uuid.NewString(),
		ApplicationID: applicationID,
		Type:          models.ExportType(req.Type),
		Format:        models.ExportFormat(req.Format),
		Status:        models.ExportStatusQueued,
		RequestedBy:   actorID(actor),
		CreatedAt:     time.Now().UTC(),
	}
	s.mu.Lock()
	s.jobsLog[job.ID] = job
	s.mu.Unlock()

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type), Payload: job.ID}); err != nil {
		s.mu.Lock()
		delete(s.jobsLog, job.ID)
		s.mu.Unlock()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to queue export")
	}
	return cloneExportJob(job), nil
}

// Job returns the current state of one export job.
func (s *ExportService) Job(id string) (*models.ExportJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobsLog[id]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "export job not found")
	}
	return cloneExportJob(job), nil
}

// Open resolves a signed download token to the stored file.
func (s *ExportService) Open(token string) (*os.File, error) {
	_, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid download token")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "export file not found")
	}
	return file, nil
}

// Cleanup removes rendered files older than the configured TTL.
func (s *ExportService) Cleanup() ([]string, error) {
	return s.storage.CleanupOlderThan(s.cfg.ResultTTL)
}

func (s *ExportService) handleJob(ctx context.Context, job jobs.Job) error {
	id, _ := job.Payload.(string)
	s.mu.RLock()
	tracked, ok := s.jobsLog[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("export job %s vanished", id)
	}

	token, url, expiresAt, err := s.generate(ctx, tracked)
	now := time.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		tracked.Status = models.ExportStatusFailed
		tracked.Error = err.Error()
		tracked.CompletedAt = &now
		return err
	}
	tracked.Status = models.ExportStatusCompleted
	tracked.Token = token
	tracked.URL = url
	tracked.CompletedAt = &now
	tracked.ExpiresAt = &expiresAt
	return nil
}

func (s *ExportService) generate(ctx context.Context, job *models.ExportJob) (token, url string, expiresAt time.Time, err error) {
	app, err := s.apps.GetByID(ctx, job.ApplicationID)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("load application: %w", err)
	}

	var dataset export.Dataset
	var title string
	switch job.Type {
	case models.ExportTypeTimeline:
		dataset, title, err = s.buildTimelineDataset(ctx, app)
	case models.ExportTypeResultSlip:
		dataset, title, err = s.buildResultSlipDataset(ctx, app)
	default:
		err = fmt.Errorf("unsupported export type %s", job.Type)
	}
	if err != nil {
		return "", "", time.Time{}, err
	}

	var payload []byte
	switch job.Format {
	case models.ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
	case models.ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, title)
	default:
		err = fmt.Errorf("unsupported format %s", job.Format)
	}
	if err != nil {
		return "", "", time.Time{}, err
	}

	filename := fmt.Sprintf("%s_%s_%s.%s", job.Type, app.ID, time.Now().UTC().Format("20060102_150405"), job.Format)
	relPath, err := s.storage.Save(filename, payload)
	if err != nil {
		return "", "", time.Time{}, err
	}

	token, expiresAt, err = s.signer.Generate(job.ID, relPath)
	if err != nil {
		return "", "", time.Time{}, err
	}
	prefix := strings.TrimRight(s.cfg.APIPrefix, "/")
	if prefix == "" {
		prefix = "/api/v1"
	}
	return token, fmt.Sprintf("%s/exports/download/%s", prefix, token), expiresAt, nil
}

func (s *ExportService) buildTimelineDataset(ctx context.Context, app *models.Application) (export.Dataset, string, error) {
	events, err := s.timeline.ListByApplication(ctx, app.ID)
	if err != nil {
		return export.Dataset{}, "", fmt.Errorf("load timeline: %w", err)
	}
	rows := make([]map[string]string, 0, len(events))
	for _, ev := range events {
		rows = append(rows, map[string]string{
			"When":  ev.CreatedAt.UTC().Format(time.RFC3339),
			"Event": ev.Label,
			"Note":  ev.Note,
			"Actor": string(ev.ActorRole),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"When", "Event", "Note", "Actor"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Revaluation Timeline %s", app.ID), nil
}

func (s *ExportService) buildResultSlipDataset(ctx context.Context, app *models.Application) (export.Dataset, string, error) {
	studentName := app.StudentID
	if s.roster != nil {
		if student, err := s.roster.GetStudent(ctx, app.StudentID); err == nil {
			studentName = fmt.Sprintf("%s (%s)", student.FullName, student.RollNumber)
		}
	}
	rows := make([]map[string]string, 0, len(app.Items))
	for _, item := range app.Items {
		revised := ""
		if item.NewMarks != nil {
			revised = fmt.Sprintf("%d", *item.NewMarks)
		}
		rows = append(rows, map[string]string{
			"Student":      studentName,
			"Subject":      item.SubjectID,
			"Original":     fmt.Sprintf("%d", item.OldMarks),
			"Revised":      revised,
			"Remarks":      item.Remarks,
			"Status":       string(app.Status),
			"Fee (Amount)": fmt.Sprintf("%d", app.FeeAmount),
			"Fee (Status)": string(app.PaymentStatus),
		})
	}
	dataset := export.Dataset{
		Headers: []string{"Student", "Subject", "Original", "Revised", "Remarks", "Status", "Fee (Amount)", "Fee (Status)"},
		Rows:    rows,
	}
	return dataset, fmt.Sprintf("Revaluation Result Slip %s", app.ID), nil
}

func cloneExportJob(job *models.ExportJob) *models.ExportJob {
	copied := *job
	return &copied
}
