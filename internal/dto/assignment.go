package dto

// CreateAssignmentRequest routes an application to an examiner. SLADays zero
// falls back to the configured default.
type CreateAssignmentRequest struct {
	ApplicationID string `json:"applicationId" validate:"required"`
	ExaminerID    string `json:"examinerId" validate:"required"`
	SLADays       int    `json:"slaDays" validate:"gte=0"`
}

// AssignmentQuery filters assignment listings.
type AssignmentQuery struct {
	ApplicationID string
	ExaminerID    string
}
