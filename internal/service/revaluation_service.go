package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/lifecycle"
	"github.com/noah-isme/uems-api/internal/models"
	"github.com/noah-isme/uems-api/pkg/config"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
)

type applicationStore interface {
	Create(ctx context.Context, app *models.Application, event *models.TimelineEvent) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.Application, error)
	Mutate(ctx context.Context, id string, fn func(app *models.Application) (*models.TimelineEvent, error)) (*models.Application, *models.TimelineEvent, error)
}

type timelineStore interface {
	Append(ctx context.Context, event *models.TimelineEvent) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.TimelineEvent, error)
}

type feeRuleStore interface {
	Lookup(ctx context.Context, program string, semester int) (*models.FeeRule, error)
	List(ctx context.Context) ([]models.FeeRule, error)
}

type fileStore interface {
	Create(ctx context.Context, ref *models.FileRef) error
	ListByApplication(ctx context.Context, applicationID string) ([]models.FileRef, error)
}

type rosterStore interface {
	GetStudent(ctx context.Context, id string) (*models.Student, error)
}

type revalAuditLogger interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type transitionObserver interface {
	ObserveTransition(operation string, applied bool)
}

type revalCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

type exportQueuer interface {
	Request(ctx context.Context, applicationID string, req dto.ExportRequest, actor *models.JWTClaims) (*models.ExportJob, error)
}

// RevaluationService owns the application lifecycle: creation, payment
// verification, mark entry, approval, publication and rejection. Every
// transition attempt goes through the lifecycle guard and appends exactly one
// timeline event, whether it applied or was blocked.
type RevaluationService struct {
	apps      applicationStore
	timeline  timelineStore
	feeRules  feeRuleStore
	files     fileStore
	roster    rosterStore
	audit     revalAuditLogger
	metrics   transitionObserver
	cache     revalCache
	exports   exportQueuer
	validator *validator.Validate
	logger    *zap.Logger
	cfg       config.RevaluationConfig
}

// RevaluationServiceOption configures optional collaborators.
type RevaluationServiceOption func(*RevaluationService)

// WithFileStore wires attachment reference persistence.
func WithFileStore(files fileStore) RevaluationServiceOption {
	return func(s *RevaluationService) { s.files = files }
}

// WithRosterStore wires the read-only student directory used for fee
// computation.
func WithRosterStore(roster rosterStore) RevaluationServiceOption {
	return func(s *RevaluationService) { s.roster = roster }
}

// WithAuditLogger wires the operator audit log.
func WithAuditLogger(audit revalAuditLogger) RevaluationServiceOption {
	return func(s *RevaluationService) { s.audit = audit }
}

// WithTransitionObserver wires transition metrics.
func WithTransitionObserver(metrics transitionObserver) RevaluationServiceOption {
	return func(s *RevaluationService) { s.metrics = metrics }
}

// WithCache wires redis-backed caching of fee rules and list snapshots.
func WithCache(cache revalCache) RevaluationServiceOption {
	return func(s *RevaluationService) { s.cache = cache }
}

// WithExportQueuer wires automatic result-slip rendering when a result is
// published.
func WithExportQueuer(exports exportQueuer) RevaluationServiceOption {
	return func(s *RevaluationService) { s.exports = exports }
}

// NewRevaluationService constructs the service.
func NewRevaluationService(apps applicationStore, timeline timelineStore, feeRules feeRuleStore, logger *zap.Logger, cfg config.RevaluationConfig, opts ...RevaluationServiceOption) *RevaluationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &RevaluationService{
		apps:      apps,
		timeline:  timeline,
		feeRules:  feeRules,
		validator: validator.New(),
		logger:    logger,
		cfg:       cfg,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc
}

// Apply creates a new application in SUBMITTED with one item per subject,
// computes the fee when the caller did not, and records the creation event.
func (s *RevaluationService) Apply(ctx context.Context, req dto.CreateApplicationRequest, actor *models.JWTClaims) (*models.Application, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid application payload")
	}
	if len(req.SubjectIDs) == 0 {
		return nil, appErrors.ErrEmptySubjects
	}

	seen := make(map[string]struct{}, len(req.SubjectIDs))
	items := make([]models.ApplicationItem, 0, len(req.SubjectIDs))
	for _, subjectID := range req.SubjectIDs {
		if _, dup := seen[subjectID]; dup {
			return nil, appErrors.Clone(appErrors.ErrDuplicateSubject, fmt.Sprintf("subject %s selected twice", subjectID))
		}
		seen[subjectID] = struct{}{}
		oldMarks, ok := req.OldMarks[subjectID]
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("missing old marks for subject %s", subjectID))
		}
		items = append(items, models.ApplicationItem{SubjectID: subjectID, OldMarks: oldMarks})
	}

	fee := req.FeeAmount
	if fee <= 0 {
		fee = s.computeFee(ctx, req.StudentID, len(req.SubjectIDs))
	}

	payment := models.PaymentUnpaid
	if strings.EqualFold(req.PaymentStatus, string(models.PaymentPaid)) {
		payment = models.PaymentPaid
	}

	app := &models.Application{
		StudentID:     req.StudentID,
		ExamID:        req.ExamID,
		SubjectIDs:    append([]string(nil), req.SubjectIDs...),
		Items:         items,
		Status:        models.StatusSubmitted,
		FeeAmount:     fee,
		PaymentStatus: payment,
		PaymentRef:    req.PaymentRef,
		ReasonText:    req.ReasonText,
		SubmittedAt:   time.Now().UTC(),
	}
	event := &models.TimelineEvent{
		Label:     models.TimelineSubmitted,
		Note:      fmt.Sprintf("subjects: %s", strings.Join(req.SubjectIDs, ", ")),
		ActorRole: actorRole(actor),
	}

	if err := s.apps.Create(ctx, app, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create application")
	}

	s.invalidateListCache(ctx, app.StudentID)
	s.observe("create", true)
	s.emitAudit(ctx, actor, models.AuditActionApplicationCreate, app.ID, fmt.Sprintf(`{"status":%q}`, app.Status))
	return app, nil
}

// VerifyPayment marks the fee as paid and, when the application is still in
// SUBMITTED, advances it to PAYMENT_VERIFIED. Verifying twice is harmless:
// the payment stays PAID, the status does not move again, and a fresh event
// is appended for the audit trail.
func (s *RevaluationService) VerifyPayment(ctx context.Context, id string, req dto.VerifyPaymentRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	role := actorRole(actor)
	app, event, err := s.apps.Mutate(ctx, id, func(app *models.Application) (*models.TimelineEvent, error) {
		app.PaymentStatus = models.PaymentPaid
		app.PaymentRef = req.PaymentRef
		if app.Status == models.StatusSubmitted {
			app.Status = models.StatusPaymentVerified
		}
		return &models.TimelineEvent{
			Label:     models.TimelinePaymentVerified,
			Note:      fmt.Sprintf("payment reference %s", req.PaymentRef),
			ActorRole: role,
		}, nil
	})
	if err != nil {
		return nil, mapStoreError(err, "failed to verify payment")
	}

	s.invalidateListCache(ctx, app.StudentID)
	s.observe("verify_payment", true)
	return applied(app, event), nil
}

// UpdateStatus patches the application to an arbitrary target status,
// subject to the payment guard. Used by the admin console, including for
// rejection.
func (s *RevaluationService) UpdateStatus(ctx context.Context, id string, req dto.StatusPatchRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid status payload")
	}
	target := models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(req.Status)))

	role := actorRole(actor)
	var outcome dto.TransitionOutcome
	app, event, err := s.apps.Mutate(ctx, id, func(app *models.Application) (*models.TimelineEvent, error) {
		decision := lifecycle.DecidePatch(target, app.Status, app.PaymentStatus)
		if !decision.Allowed {
			outcome = blockedOutcome(decision.Reason)
			return blockedEvent(decision.Reason, role), nil
		}
		applyStatus(app, decision.Next, req.RejectionReason)
		outcome = appliedOutcome()
		return &models.TimelineEvent{Label: statusLabel(decision.Next), Note: req.Note, ActorRole: role}, nil
	})
	if err != nil {
		return nil, mapStoreError(err, "failed to update status")
	}

	s.invalidateListCache(ctx, app.StudentID)
	s.observe("status_patch", outcome.Applied)
	s.emitAudit(ctx, actor, models.AuditActionStatusChange, app.ID, fmt.Sprintf(`{"target":%q,"applied":%t}`, target, outcome.Applied))
	return result(app, outcome, event), nil
}

// SaveRevisedMarks updates item marks. Draft saves never touch the status.
// Finalize moves to REVALUATED when the payment guard allows it; when it is
// blocked the items are still updated, matching the exam-office workflow
// where an examiner's data entry is kept while the transition waits on
// finance.
func (s *RevaluationService) SaveRevisedMarks(ctx context.Context, id string, req dto.SaveMarksRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid marks payload")
	}

	role := actorRole(actor)
	var outcome dto.TransitionOutcome
	app, event, err := s.apps.Mutate(ctx, id, func(app *models.Application) (*models.TimelineEvent, error) {
		for _, entry := range req.Entries {
			item := app.Item(entry.SubjectID)
			if item == nil {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("subject %s is not part of this application", entry.SubjectID))
			}
			marks := entry.NewMarks
			item.NewMarks = &marks
			item.Remarks = entry.Remarks
		}

		if !req.Finalize {
			outcome = appliedOutcome()
			return &models.TimelineEvent{Label: models.TimelineDraftSaved, Note: fmt.Sprintf("%d entries", len(req.Entries)), ActorRole: role}, nil
		}

		decision := lifecycle.Decide(lifecycle.OpFinalizeMarks, app.Status, app.PaymentStatus)
		if !decision.Allowed {
			outcome = blockedOutcome(decision.Reason)
			return blockedEvent(decision.Reason, role), nil
		}
		app.Status = decision.Next
		outcome = appliedOutcome()
		return &models.TimelineEvent{Label: models.TimelineRevaluated, Note: fmt.Sprintf("%d entries", len(req.Entries)), ActorRole: role}, nil
	})
	if err != nil {
		return nil, mapStoreError(err, "failed to save revised marks")
	}

	s.invalidateListCache(ctx, app.StudentID)
	s.observe("save_marks", outcome.Applied)
	return result(app, outcome, event), nil
}

// Approve moves REVALUATED to RESULT_APPROVED.
func (s *RevaluationService) Approve(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationResult, error) {
	return s.runGuarded(ctx, id, lifecycle.OpApprove, actor, func(app *models.Application, next models.ApplicationStatus) *models.TimelineEvent {
		app.Status = next
		return &models.TimelineEvent{Label: models.TimelineResultApproved, ActorRole: actorRole(actor)}
	})
}

// Publish moves RESULT_APPROVED (or REVALUATED directly) to PUBLISHED and
// stamps the publication time. A successful publish also queues an async
// result-slip render when an export queuer is wired.
func (s *RevaluationService) Publish(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationResult, error) {
	res, err := s.runGuarded(ctx, id, lifecycle.OpPublish, actor, func(app *models.Application, next models.ApplicationStatus) *models.TimelineEvent {
		now := time.Now().UTC()
		app.Status = next
		app.PublishedAt = &now
		return &models.TimelineEvent{Label: models.TimelinePublished, ActorRole: actorRole(actor)}
	})
	if err != nil {
		return nil, err
	}
	if res.Outcome.Applied && s.exports != nil {
		req := dto.ExportRequest{Type: string(models.ExportTypeResultSlip), Format: string(models.ExportFormatPDF)}
		if _, qErr := s.exports.Request(ctx, id, req, actor); qErr != nil {
			s.logger.Warn("failed to queue result slip export", zap.String("application_id", id), zap.Error(qErr))
		}
	}
	return res, nil
}

// Reject terminates the application from any non-terminal state.
func (s *RevaluationService) Reject(ctx context.Context, id string, req dto.RejectRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rejection payload")
	}
	return s.runGuarded(ctx, id, lifecycle.OpReject, actor, func(app *models.Application, next models.ApplicationStatus) *models.TimelineEvent {
		applyStatus(app, next, req.Reason)
		return &models.TimelineEvent{Label: models.TimelineRejected, Note: req.Reason, ActorRole: actorRole(actor)}
	})
}

func (s *RevaluationService) runGuarded(ctx context.Context, id string, op lifecycle.Operation, actor *models.JWTClaims, apply func(app *models.Application, next models.ApplicationStatus) *models.TimelineEvent) (*dto.ApplicationResult, error) {
	role := actorRole(actor)
	var outcome dto.TransitionOutcome
	app, event, err := s.apps.Mutate(ctx, id, func(app *models.Application) (*models.TimelineEvent, error) {
		decision := lifecycle.Decide(op, app.Status, app.PaymentStatus)
		if !decision.Allowed {
			outcome = blockedOutcome(decision.Reason)
			return blockedEvent(decision.Reason, role), nil
		}
		outcome = appliedOutcome()
		return apply(app, decision.Next), nil
	})
	if err != nil {
		return nil, mapStoreError(err, fmt.Sprintf("failed to %s", op))
	}

	s.invalidateListCache(ctx, app.StudentID)
	s.observe(string(op), outcome.Applied)
	return result(app, outcome, event), nil
}

// Get loads one application with its items.
func (s *RevaluationService) Get(ctx context.Context, id string) (*models.Application, error) {
	app, err := s.apps.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "failed to load application")
	}
	return app, nil
}

// List returns applications matching the query. Per-student listings are
// served from cache when available.
func (s *RevaluationService) List(ctx context.Context, query dto.ApplicationQuery) ([]models.Application, error) {
	filter := models.ApplicationFilter{
		StudentID: query.StudentID,
		ExamID:    query.ExamID,
		Status:    models.ApplicationStatus(strings.ToUpper(strings.TrimSpace(query.Status))),
	}

	cacheable := s.cache != nil && query.StudentID != "" && query.ExamID == "" && query.Status == ""
	cacheKey := listCacheKey(query.StudentID)
	if cacheable {
		var cached []models.Application
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	apps, err := s.apps.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list applications")
	}

	if cacheable {
		if err := s.cache.Set(ctx, cacheKey, apps, s.cfg.ListCacheTTL); err != nil {
			s.logger.Warn("failed to cache application list", zap.Error(err))
		}
	}
	return apps, nil
}

// Timeline returns the chronological history for one application.
func (s *RevaluationService) Timeline(ctx context.Context, id string) ([]models.TimelineEvent, error) {
	if _, err := s.apps.GetByID(ctx, id); err != nil {
		return nil, mapStoreError(err, "failed to load application")
	}
	events, err := s.timeline.ListByApplication(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timeline")
	}
	return events, nil
}

// AddTimelineEntry appends a manual audit entry, used by bulk admin actions
// performed outside the guarded operations.
func (s *RevaluationService) AddTimelineEntry(ctx context.Context, id string, req dto.TimelineEntryRequest, actor *models.JWTClaims) (*models.TimelineEvent, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timeline payload")
	}
	if _, err := s.apps.GetByID(ctx, id); err != nil {
		return nil, mapStoreError(err, "failed to load application")
	}
	event := &models.TimelineEvent{
		ApplicationID: id,
		Label:         req.Label,
		Note:          req.Note,
		ActorRole:     actorRole(actor),
	}
	if err := s.timeline.Append(ctx, event); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to append timeline entry")
	}
	return event, nil
}

// AddFile records an attachment reference (receipt, supporting document).
func (s *RevaluationService) AddFile(ctx context.Context, id string, req dto.FileRequest, actor *models.JWTClaims) (*models.FileRef, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid file payload")
	}
	if s.files == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "file store not configured")
	}
	if _, err := s.apps.GetByID(ctx, id); err != nil {
		return nil, mapStoreError(err, "failed to load application")
	}
	ref := &models.FileRef{
		ApplicationID: id,
		Kind:          req.Kind,
		URL:           req.URL,
		UploadedBy:    actorID(actor),
	}
	if err := s.files.Create(ctx, ref); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record file reference")
	}
	return ref, nil
}

// FeeRule returns the configured rule for (program, semester), or nil when
// none exists. Cached.
func (s *RevaluationService) FeeRule(ctx context.Context, program string, semester int) (*models.FeeRule, error) {
	cacheKey := fmt.Sprintf("reval:fee:%s:%d", program, semester)
	if s.cache != nil {
		var cached models.FeeRule
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return &cached, nil
		}
	}
	rule, err := s.feeRules.Lookup(ctx, program, semester)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to look up fee rule")
	}
	if rule != nil && s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, rule, s.cfg.FeeRuleCacheTTL); err != nil {
			s.logger.Warn("failed to cache fee rule", zap.Error(err))
		}
	}
	return rule, nil
}

// FeeRules lists the whole fee table.
func (s *RevaluationService) FeeRules(ctx context.Context) ([]models.FeeRule, error) {
	rules, err := s.feeRules.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fee rules")
	}
	return rules, nil
}

// Files lists attachment references for one application.
func (s *RevaluationService) Files(ctx context.Context, id string) ([]models.FileRef, error) {
	if s.files == nil {
		return nil, nil
	}
	refs, err := s.files.ListByApplication(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list file references")
	}
	return refs, nil
}

func (s *RevaluationService) computeFee(ctx context.Context, studentID string, subjectCount int) int {
	perSubject := s.cfg.DefaultPerSubjectFee
	lateFee := s.cfg.DefaultLateFee

	if s.roster != nil {
		student, err := s.roster.GetStudent(ctx, studentID)
		if err != nil {
			s.logger.Warn("fee computation falling back to defaults", zap.String("student_id", studentID), zap.Error(err))
		} else if rule, err := s.FeeRule(ctx, student.Program, student.Semester); err == nil && rule != nil {
			perSubject = rule.PerSubjectFee
			lateFee = rule.LateFee
		}
	}
	return subjectCount*perSubject + lateFee
}

func mapStoreError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.ErrNotFound
	}
	var typed *appErrors.Error
	if errors.As(err, &typed) {
		return typed
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

func (s *RevaluationService) invalidateListCache(ctx context.Context, studentID string) {
	if s.cache == nil || studentID == "" {
		return
	}
	if err := s.cache.Delete(ctx, listCacheKey(studentID)); err != nil {
		s.logger.Warn("failed to invalidate application list cache", zap.Error(err))
	}
}

func (s *RevaluationService) observe(operation string, appliedOp bool) {
	if s.metrics != nil {
		s.metrics.ObserveTransition(operation, appliedOp)
	}
}

func (s *RevaluationService) emitAudit(ctx context.Context, actor *models.JWTClaims, action, resourceID, payload string) {
	if s.audit == nil {
		return
	}
	log := &models.AuditLog{
		Action:     action,
		Resource:   "revaluation",
		ResourceID: &resourceID,
		NewValues:  []byte(payload),
	}
	if actor != nil {
		id := actor.UserID
		log.UserID = &id
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to record audit log", zap.Error(err))
	}
}

func listCacheKey(studentID string) string {
	return "reval:list:student:" + studentID
}

func actorRole(actor *models.JWTClaims) models.UserRole {
	if actor == nil {
		return ""
	}
	return actor.Role
}

func actorID(actor *models.JWTClaims) string {
	if actor == nil {
		return ""
	}
	return actor.UserID
}

func applyStatus(app *models.Application, next models.ApplicationStatus, rejectionReason string) {
	app.Status = next
	switch next {
	case models.StatusRejected:
		app.RejectionReason = rejectionReason
	case models.StatusPublished:
		if app.PublishedAt == nil {
			now := time.Now().UTC()
			app.PublishedAt = &now
		}
	}
}

func statusLabel(status models.ApplicationStatus) string {
	switch status {
	case models.StatusSubmitted:
		return models.TimelineSubmitted
	case models.StatusPaymentVerified:
		return models.TimelinePaymentVerified
	case models.StatusUnderReview:
		return "Under Review"
	case models.StatusAwaitingExaminer:
		return "Awaiting Examiner"
	case models.StatusRevaluated:
		return models.TimelineRevaluated
	case models.StatusSecondCheck:
		return "Second Check"
	case models.StatusResultApproved:
		return models.TimelineResultApproved
	case models.StatusPublished:
		return models.TimelinePublished
	case models.StatusClosed:
		return models.TimelineClosed
	case models.StatusRejected:
		return models.TimelineRejected
	}
	return string(status)
}

func appliedOutcome() dto.TransitionOutcome {
	return dto.TransitionOutcome{Applied: true}
}

func blockedOutcome(reason string) dto.TransitionOutcome {
	return dto.TransitionOutcome{Blocked: true, Reason: reason}
}

func blockedEvent(reason string, role models.UserRole) *models.TimelineEvent {
	return &models.TimelineEvent{Label: models.TimelineBlocked, Note: reason, ActorRole: role}
}

func applied(app *models.Application, event *models.TimelineEvent) *dto.ApplicationResult {
	return result(app, appliedOutcome(), event)
}

func result(app *models.Application, outcome dto.TransitionOutcome, event *models.TimelineEvent) *dto.ApplicationResult {
	return &dto.ApplicationResult{Application: app, Outcome: outcome, Event: event}
}
