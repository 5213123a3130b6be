package models

import "time"

// ExportFormat enumerates supported export renderings.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ExportType enumerates the documents the exam office can generate.
type ExportType string

const (
	// ExportTypeTimeline renders the full audit history of one application.
	ExportTypeTimeline ExportType = "timeline"
	// ExportTypeResultSlip renders the per-subject before/after marks.
	ExportTypeResultSlip ExportType = "result_slip"
)

// ExportJobStatus tracks asynchronous export progress.
type ExportJobStatus string

const (
	ExportStatusQueued    ExportJobStatus = "QUEUED"
	ExportStatusCompleted ExportJobStatus = "COMPLETED"
	ExportStatusFailed    ExportJobStatus = "FAILED"
)

// ExportJob is the in-memory record of one export request. Jobs are
// ephemeral; the rendered files outlive them on disk until cleanup.
type ExportJob struct {
	ID            string          `json:"id"`
	ApplicationID string          `json:"applicationId"`
	Type          ExportType      `json:"type"`
	Format        ExportFormat    `json:"format"`
	Status        ExportJobStatus `json:"status"`
	Token         string          `json:"token,omitempty"`
	URL           string          `json:"url,omitempty"`
	Error         string          `json:"error,omitempty"`
	RequestedBy   string          `json:"requestedBy,omitempty"`
	CreatedAt     time.Time       `json:"createdAt"`
	CompletedAt   *time.Time      `json:"completedAt,omitempty"`
	ExpiresAt     *time.Time      `json:"expiresAt,omitempty"`
}
