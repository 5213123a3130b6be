package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	"github.com/noah-isme/uems-api/pkg/config"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
)

type assignmentStore interface {
	Create(ctx context.Context, assignment *models.Assignment) error
	List(ctx context.Context, filter models.AssignmentFilter) ([]models.Assignment, error)
}

type assignmentApplicationStore interface {
	GetByID(ctx context.Context, id string) (*models.Application, error)
}

// AssignmentService routes applications to examiners. Assignments are kept as
// a full history; the latest one by AssignedAt is the active routing.
type AssignmentService struct {
	assignments assignmentStore
	apps        assignmentApplicationStore
	timeline    timelineStore
	audit       revalAuditLogger
	validator   *validator.Validate
	logger      *zap.Logger
	cfg         config.RevaluationConfig
}

// AssignmentServiceOption configures optional collaborators.
type AssignmentServiceOption func(*AssignmentService)

// WithAssignmentAudit wires the operator audit log.
func WithAssignmentAudit(audit revalAuditLogger) AssignmentServiceOption {
	return func(s *AssignmentService) { s.audit = audit }
}

// NewAssignmentService constructs the service.
func NewAssignmentService(assignments assignmentStore, apps assignmentApplicationStore, timeline timelineStore, logger *zap.Logger, cfg config.RevaluationConfig, opts ...AssignmentServiceOption) *AssignmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &AssignmentService{
		assignments: assignments,
		apps:        apps,
		timeline:    timeline,
		validator:   validator.New(),
		logger:      logger,
		cfg:         cfg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Assign routes one application to an examiner. The due date comes from the
// request's SLA days when given, otherwise the configured default.
func (s *AssignmentService) Assign(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.Assignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.apps.GetByID(ctx, req.ApplicationID); err != nil {
		return nil, mapStoreError(err, "failed to load application")
	}

	slaDays := req.SLADays
	if slaDays <= 0 {
		slaDays = s.cfg.DefaultSLADays
	}
	now := time.Now().UTC()
	assignment := &models.Assignment{
		ApplicationID: req.ApplicationID,
		ExaminerID:    req.ExaminerID,
		AssignedAt:    now,
		DueAt:         now.AddDate(0, 0, slaDays),
	}
	if err := s.assignments.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}

	event := &models.TimelineEvent{
		ApplicationID: req.ApplicationID,
		Label:         "Examiner Assigned",
		Note:          fmt.Sprintf("examiner %s, due %s", req.ExaminerID, assignment.DueAt.Format("2006-01-02")),
		ActorRole:     actorRole(actor),
	}
	if err := s.timeline.Append(ctx, event); err != nil {
		s.logger.Warn("failed to record assignment timeline event",
			zap.String("application_id", req.ApplicationID), zap.Error(err))
	}

	if s.audit != nil {
		id := assignment.ID
		log := &models.AuditLog{
			Action:     models.AuditActionAssignmentCreate,
			Resource:   "assignment",
			ResourceID: &id,
			NewValues:  []byte(fmt.Sprintf(`{"applicationId":%q,"examinerId":%q}`, req.ApplicationID, req.ExaminerID)),
		}
		if actor != nil {
			uid := actor.UserID
			log.UserID = &uid
		}
		if err := s.audit.CreateAuditLog(ctx, log); err != nil {
			s.logger.Warn("failed to record audit log", zap.Error(err))
		}
	}
	return assignment, nil
}

// List returns assignments matching the query, newest first.
func (s *AssignmentService) List(ctx context.Context, query dto.AssignmentQuery) ([]models.Assignment, error) {
	assignments, err := s.assignments.List(ctx, models.AssignmentFilter{
		ApplicationID: query.ApplicationID,
		ExaminerID:    query.ExaminerID,
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}
	return assignments, nil
}

// Latest returns the active assignment for an application, or nil when it has
// never been assigned.
func (s *AssignmentService) Latest(ctx context.Context, applicationID string) (*models.Assignment, error) {
	assignments, err := s.List(ctx, dto.AssignmentQuery{ApplicationID: applicationID})
	if err != nil {
		return nil, err
	}
	if len(assignments) == 0 {
		return nil, nil
	}
	return &assignments[0], nil
}
