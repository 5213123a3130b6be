package models

import "time"

// FileRef records a pointer to an externally stored attachment, typically a
// payment receipt. The file bytes themselves live outside this service.
type FileRef struct {
	ID            string    `db:"id" json:"id"`
	ApplicationID string    `db:"application_id" json:"applicationId"`
	Kind          string    `db:"kind" json:"kind"`
	URL           string    `db:"url" json:"url"`
	UploadedBy    string    `db:"uploaded_by" json:"uploadedBy"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
}
