package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
	"github.com/noah-isme/uems-api/pkg/response"
)

type assignmentService interface {
	Assign(ctx context.Context, req dto.CreateAssignmentRequest, actor *models.JWTClaims) (*models.Assignment, error)
	List(ctx context.Context, query dto.AssignmentQuery) ([]models.Assignment, error)
}

// AssignmentHandler exposes examiner routing endpoints.
type AssignmentHandler struct {
	service assignmentService
}

// NewAssignmentHandler constructs the handler.
func NewAssignmentHandler(service assignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: service}
}

// Create godoc
// @Summary Assign an application to an examiner
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body dto.CreateAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid assignment payload"))
		return
	}
	assignment, err := h.service.Assign(c.Request.Context(), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusCreated, assignment, nil)
}

// List godoc
// @Summary List assignments
// @Tags Assignments
// @Produce json
// @Param applicationId query string false "Application ID"
// @Param examinerId query string false "Examiner ID"
// @Success 200 {object} response.Envelope
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	query := dto.AssignmentQuery{
		ApplicationID: strings.TrimSpace(c.Query("applicationId")),
		ExaminerID:    strings.TrimSpace(c.Query("examinerId")),
	}
	assignments, err := h.service.List(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, nil)
}
