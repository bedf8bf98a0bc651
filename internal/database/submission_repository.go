package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrSubmissionNotFound no existe registro para el documento
var ErrSubmissionNotFound = errors.New("submission not found")

// SubmissionRepository maneja el registro de auditoría de documentos enviados
type SubmissionRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewSubmissionRepository crea una nueva instancia del repositorio
func NewSubmissionRepository(db *DB, logger *logrus.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: logger,
	}
}

// Record inserta el registro de un envío aceptado; un reenvío del mismo documento lo actualiza
func (r *SubmissionRepository) Record(ctx context.Context, record *models.SubmissionRecord) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now().UTC()
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now

	query := `
		INSERT INTO einvoice_submissions (
			id, document_id, internal_id, invoice_number, status,
			total_amount, raw_response, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (document_id) DO UPDATE SET
			status = EXCLUDED.status,
			raw_response = EXCLUDED.raw_response,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		record.ID, record.DocumentID, record.InternalID, record.InvoiceNumber, record.Status,
		record.TotalAmount, nullableJSON(record.RawResponse), record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("error recording submission: %w", err)
	}

	r.logger.WithFields(logrus.Fields{
		"document_id":    record.DocumentID,
		"invoice_number": record.InvoiceNumber,
		"status":         record.Status,
	}).Debug("Submission recorded")

	return nil
}

// UpdateStatus actualiza el estado conocido de un documento
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, documentID, status string) error {
	query := `
		UPDATE einvoice_submissions
		SET status = $2, updated_at = $3
		WHERE document_id = $1
	`

	result, err := r.db.ExecContext(ctx, query, documentID, status, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error updating submission status: %w", err)
	}
	return expectOneRow(result)
}

// MarkCancelled marca un documento como cancelado con su motivo
func (r *SubmissionRepository) MarkCancelled(ctx context.Context, documentID, reason string) error {
	query := `
		UPDATE einvoice_submissions
		SET status = $2, cancel_reason = $3, updated_at = $4
		WHERE document_id = $1
	`

	result, err := r.db.ExecContext(ctx, query,
		documentID, string(models.SubmissionStatusCancelled), reason, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("error marking submission cancelled: %w", err)
	}
	return expectOneRow(result)
}

// GetByDocumentID obtiene el registro de un documento
func (r *SubmissionRepository) GetByDocumentID(ctx context.Context, documentID string) (*models.SubmissionRecord, error) {
	query := `
		SELECT id, document_id, internal_id, invoice_number, status, cancel_reason,
			total_amount, raw_response, created_at, updated_at
		FROM einvoice_submissions
		WHERE document_id = $1
	`

	var (
		record models.SubmissionRecord
		reason sql.NullString
		raw    []byte
	)
	err := r.db.QueryRowContext(ctx, query, documentID).Scan(
		&record.ID, &record.DocumentID, &record.InternalID, &record.InvoiceNumber, &record.Status,
		&reason, &record.TotalAmount, &raw, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("error getting submission: %w", err)
	}

	if reason.Valid {
		record.CancelReason = &reason.String
	}
	record.RawResponse = raw
	return &record, nil
}

func expectOneRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error reading affected rows: %w", err)
	}
	if rows == 0 {
		return ErrSubmissionNotFound
	}
	return nil
}

// nullableJSON evita insertar un JSONB vacío
func nullableJSON(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	return string(raw)
}
