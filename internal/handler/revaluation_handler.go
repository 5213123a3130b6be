package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
	"github.com/noah-isme/uems-api/pkg/response"
)

type revaluationService interface {
	Apply(ctx context.Context, req dto.CreateApplicationRequest, actor *models.JWTClaims) (*models.Application, error)
	VerifyPayment(ctx context.Context, id string, req dto.VerifyPaymentRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error)
	UpdateStatus(ctx context.Context, id string, req dto.StatusPatchRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error)
	SaveRevisedMarks(ctx context.Context, id string, req dto.SaveMarksRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error)
	Approve(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationResult, error)
	Publish(ctx context.Context, id string, actor *models.JWTClaims) (*dto.ApplicationResult, error)
	Reject(ctx context.Context, id string, req dto.RejectRequest, actor *models.JWTClaims) (*dto.ApplicationResult, error)
	Get(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, query dto.ApplicationQuery) ([]models.Application, error)
	Timeline(ctx context.Context, id string) ([]models.TimelineEvent, error)
	AddTimelineEntry(ctx context.Context, id string, req dto.TimelineEntryRequest, actor *models.JWTClaims) (*models.TimelineEvent, error)
	AddFile(ctx context.Context, id string, req dto.FileRequest, actor *models.JWTClaims) (*models.FileRef, error)
	Files(ctx context.Context, id string) ([]models.FileRef, error)
	FeeRule(ctx context.Context, program string, semester int) (*models.FeeRule, error)
	FeeRules(ctx context.Context) ([]models.FeeRule, error)
}

// RevaluationHandler exposes REST endpoints for the application lifecycle.
type RevaluationHandler struct {
	service revaluationService
}

// NewRevaluationHandler constructs the handler.
func NewRevaluationHandler(service revaluationService) *RevaluationHandler {
	return &RevaluationHandler{service: service}
}

// Create godoc
// @Summary Submit a revaluation application
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param payload body dto.CreateApplicationRequest true "Application payload"
// @Success 201 {object} response.Envelope
// @Router /revaluations [post]
func (h *RevaluationHandler) Create(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid application payload"))
		return
	}
	app, err := h.service.Apply(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, app, nil)
}

// List godoc
// @Summary List revaluation applications
// @Tags Revaluations
// @Produce json
// @Param studentId query string false "Student ID"
// @Param examId query string false "Exam ID"
// @Param status query string false "Lifecycle status"
// @Success 200 {object} response.Envelope
// @Router /revaluations [get]
func (h *RevaluationHandler) List(c *gin.Context) {
	query := dto.ApplicationQuery{
		StudentID: strings.TrimSpace(c.Query("studentId")),
		ExamID:    strings.TrimSpace(c.Query("examId")),
		Status:    strings.TrimSpace(c.Query("status")),
	}
	apps, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, nil)
}

// Get godoc
// @Summary Get one application with its items
// @Tags Revaluations
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id} [get]
func (h *RevaluationHandler) Get(c *gin.Context) {
	app, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, app, nil)
}

// VerifyPayment godoc
// @Summary Verify the revaluation fee payment
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.VerifyPaymentRequest true "Payment reference"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/payment [post]
func (h *RevaluationHandler) VerifyPayment(c *gin.Context) {
	var req dto.VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid payment payload"))
		return
	}
	result, err := h.service.VerifyPayment(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateStatus godoc
// @Summary Move the application to a target status
// @Description A blocked transition is a 200 response with outcome.blocked set, not an error.
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.StatusPatchRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/status [patch]
func (h *RevaluationHandler) UpdateStatus(c *gin.Context) {
	var req dto.StatusPatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid status payload"))
		return
	}
	result, err := h.service.UpdateStatus(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SaveMarks godoc
// @Summary Save revised marks, optionally finalizing to REVALUATED
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.SaveMarksRequest true "Mark entries"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/marks [put]
func (h *RevaluationHandler) SaveMarks(c *gin.Context) {
	var req dto.SaveMarksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid marks payload"))
		return
	}
	result, err := h.service.SaveRevisedMarks(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Approve godoc
// @Summary Approve a revaluated application
// @Tags Revaluations
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/approve [post]
func (h *RevaluationHandler) Approve(c *gin.Context) {
	result, err := h.service.Approve(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Publish godoc
// @Summary Publish the approved result
// @Tags Revaluations
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/publish [post]
func (h *RevaluationHandler) Publish(c *gin.Context) {
	result, err := h.service.Publish(c.Request.Context(), c.Param("id"), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reject godoc
// @Summary Reject an application
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.RejectRequest true "Rejection reason"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/reject [post]
func (h *RevaluationHandler) Reject(c *gin.Context) {
	var req dto.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid rejection payload"))
		return
	}
	result, err := h.service.Reject(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Timeline godoc
// @Summary Get the chronological audit history
// @Tags Revaluations
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/timeline [get]
func (h *RevaluationHandler) Timeline(c *gin.Context) {
	events, err := h.service.Timeline(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, events, nil)
}

// AddTimelineEntry godoc
// @Summary Append a manual timeline entry
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.TimelineEntryRequest true "Entry"
// @Success 201 {object} response.Envelope
// @Router /revaluations/{id}/timeline [post]
func (h *RevaluationHandler) AddTimelineEntry(c *gin.Context) {
	var req dto.TimelineEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid timeline payload"))
		return
	}
	event, err := h.service.AddTimelineEntry(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, event, nil)
}

// AddFile godoc
// @Summary Record an attachment reference
// @Tags Revaluations
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.FileRequest true "File reference"
// @Success 201 {object} response.Envelope
// @Router /revaluations/{id}/files [post]
func (h *RevaluationHandler) AddFile(c *gin.Context) {
	var req dto.FileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid file payload"))
		return
	}
	ref, err := h.service.AddFile(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, ref, nil)
}

// Files godoc
// @Summary List attachment references
// @Tags Revaluations
// @Produce json
// @Param id path string true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /revaluations/{id}/files [get]
func (h *RevaluationHandler) Files(c *gin.Context) {
	refs, err := h.service.Files(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, refs, nil)
}

// FeeRules godoc
// @Summary List the fee rule table, or look up one rule
// @Tags Fees
// @Produce json
// @Param program query string false "Program code"
// @Param semester query int false "Semester"
// @Success 200 {object} response.Envelope
// @Router /fees/rules [get]
func (h *RevaluationHandler) FeeRules(c *gin.Context) {
	program := strings.TrimSpace(c.Query("program"))
	if program != "" {
		semester, _ := strconv.Atoi(c.Query("semester"))
		rule, err := h.service.FeeRule(c.Request.Context(), program, semester)
		if err != nil {
			response.Error(c, err)
			return
		}
		if rule == nil {
			response.JSON(c, http.StatusOK, []models.FeeRule{}, nil)
			return
		}
		response.JSON(c, http.StatusOK, []models.FeeRule{*rule}, nil)
		return
	}

	rules, err := h.service.FeeRules(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rules, nil)
}
