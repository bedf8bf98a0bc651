package models

import (
	"time"

	"github.com/google/uuid"
)

// SubmissionStatus estado local de un documento enviado
type SubmissionStatus string

const (
	SubmissionStatusSubmitted SubmissionStatus = "Submitted"
	SubmissionStatusValid     SubmissionStatus = "Valid"
	SubmissionStatusInvalid   SubmissionStatus = "Invalid"
	SubmissionStatusCancelled SubmissionStatus = "Cancelled"
)

// SubmissionRecord registro de auditoría de un documento enviado a MyInvois
type SubmissionRecord struct {
	ID            uuid.UUID `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	InternalID    string    `json:"internal_id" db:"internal_id"`
	InvoiceNumber string    `json:"invoice_number" db:"invoice_number"`
	Status        string    `json:"status" db:"status"`
	CancelReason  *string   `json:"cancel_reason,omitempty" db:"cancel_reason"`
	TotalAmount   float64   `json:"total_amount" db:"total_amount"`
	RawResponse   []byte    `json:"-" db:"raw_response"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}
