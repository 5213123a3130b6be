package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/noah-isme/uems-api/internal/models"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
)

type directoryStore interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
	ListStudents(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	GetExam(ctx context.Context, id string) (*models.Exam, error)
}

// DirectoryService exposes read-only roster and exam catalogue lookups used
// by the console when composing applications.
type DirectoryService struct {
	store  directoryStore
	logger *zap.Logger
}

// NewDirectoryService constructs the service.
func NewDirectoryService(store directoryStore, logger *zap.Logger) *DirectoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DirectoryService{store: store, logger: logger}
}

// Student returns one roster entry.
func (s *DirectoryService) Student(ctx context.Context, id string) (*models.Student, error) {
	student, err := s.store.GetStudent(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "failed to load student")
	}
	return student, nil
}

// Students lists roster entries matching the filter.
func (s *DirectoryService) Students(ctx context.Context, filter models.StudentFilter) ([]models.Student, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	students, err := s.store.ListStudents(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}
	return students, nil
}

// Exam returns one catalogue entry with its subjects.
func (s *DirectoryService) Exam(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.store.GetExam(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "failed to load exam")
	}
	return exam, nil
}
