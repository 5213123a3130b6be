package dto

// ExportRequest asks for a rendered document for one application.
type ExportRequest struct {
	Type   string `json:"type" validate:"required,oneof=timeline result_slip"`
	Format string `json:"format" validate:"required,oneof=csv pdf"`
}
