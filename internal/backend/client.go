// Package backend reaches the external validation service that performs
// invoice extraction, checklist validation, and PO comparison. This
// service only consumes the resulting payload; none of that logic lives
// here.
package backend

import (
	"context"

	"github.com/finchat/invoice-validator/internal/models"
)

// UploadRequest carries one upload event to the validation backend
type UploadRequest struct {
	SessionID       string
	ChecklistOption string
	InvoiceName     string
	InvoiceContent  []byte
	PoName          string
	PoContent       []byte
	HasPo           bool
}

// UploadResult is the backend's answer to an upload
type UploadResult struct {
	ResultID string                    `json:"result_id"`
	Payload  *models.ValidationPayload `json:"payload"`
}

// ValidationClient submits documents for validation. Not idempotent:
// duplicate calls create duplicate results.
type ValidationClient interface {
	Validate(ctx context.Context, req UploadRequest) (*UploadResult, error)
}
