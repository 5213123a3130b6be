package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uems-api/internal/dto"
	"github.com/noah-isme/uems-api/internal/models"
	appErrors "github.com/noah-isme/uems-api/pkg/errors"
	"github.com/noah-isme/uems-api/pkg/response"
)

type exportService interface {
	Request(ctx context.Context, applicationID string, req dto.ExportRequest, actor *models.JWTClaims) (*models.ExportJob, error)
	Job(id string) (*models.ExportJob, error)
	Open(token string) (*os.File, error)
}

// ExportHandler exposes document export endpoints.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// Request godoc
// @Summary Queue a timeline or result-slip export
// @Tags Exports
// @Accept json
// @Produce json
// @Param id path string true "Application ID"
// @Param payload body dto.ExportRequest true "Export parameters"
// @Success 202 {object} response.Envelope
// @Router /revaluations/{id}/export [post]
func (h *ExportHandler) Request(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid export payload"))
		return
	}
	job, err := h.service.Request(c.Request.Context(), c.Param("id"), req, claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusAccepted, job, nil)
}

// Job godoc
// @Summary Get export job status
// @Tags Exports
// @Produce json
// @Param jobId path string true "Job ID"
// @Success 200 {object} response.Envelope
// @Router /exports/jobs/{jobId} [get]
func (h *ExportHandler) Job(c *gin.Context) {
	job, err := h.service.Job(c.Param("jobId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Download godoc
// @Summary Download a rendered export by signed token
// @Tags Exports
// @Produce octet-stream
// @Param token path string true "Signed download token"
// @Success 200 {file} binary
// @Router /exports/download/{token} [get]
func (h *ExportHandler) Download(c *gin.Context) {
	file, err := h.service.Open(c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close() //nolint:errcheck
	c.FileAttachment(file.Name(), filepath.Base(file.Name()))
}
