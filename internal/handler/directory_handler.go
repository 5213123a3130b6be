package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/uems-api/internal/models"
	"github.com/noah-isme/uems-api/pkg/response"
)

type directoryService interface {
	Student(ctx context.Context, id string) (*models.Student, error)
	Students(ctx context.Context, filter models.StudentFilter) ([]models.Student, error)
	Exam(ctx context.Context, id string) (*models.Exam, error)
}

// DirectoryHandler exposes read-only roster and exam catalogue lookups.
type DirectoryHandler struct {
	service directoryService
}

// NewDirectoryHandler constructs the handler.
func NewDirectoryHandler(service directoryService) *DirectoryHandler {
	return &DirectoryHandler{service: service}
}

// Students godoc
// @Summary List roster entries
// @Tags Directory
// @Produce json
// @Param program query string false "Program code"
// @Param semester query int false "Semester"
// @Param search query string false "Name or roll number fragment"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *DirectoryHandler) Students(c *gin.Context) {
	semester, _ := strconv.Atoi(c.Query("semester"))
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	filter := models.StudentFilter{
		Program:  strings.TrimSpace(c.Query("program")),
		Semester: semester,
		Search:   strings.TrimSpace(c.Query("search")),
		Limit:    limit,
		Offset:   offset,
	}
	students, err := h.service.Students(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, nil)
}

// Student godoc
// @Summary Get one roster entry
// @Tags Directory
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Router /students/{id} [get]
func (h *DirectoryHandler) Student(c *gin.Context) {
	student, err := h.service.Student(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Exam godoc
// @Summary Get one exam with its subjects
// @Tags Directory
// @Produce json
// @Param id path string true "Exam ID"
// @Success 200 {object} response.Envelope
// @Router /exams/{id} [get]
func (h *DirectoryHandler) Exam(c *gin.Context) {
	exam, err := h.service.Exam(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, exam, nil)
}
