package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/sirupsen/logrus"
)

// DocumentStore almacenamiento de objetos donde se archivan los documentos
type DocumentStore interface {
	PutDocument(ctx context.Context, documentID, name string, data []byte) (string, error)
}

// ArchivedSubmission URLs de los archivos guardados para un envío
type ArchivedSubmission struct {
	PayloadURL  string `json:"payload_url"`
	ResponseURL string `json:"response_url,omitempty"`
	ReceiptURL  string `json:"receipt_url,omitempty"`
}

// ArchiveService guarda el documento enviado y la respuesta de MyInvois
type ArchiveService struct {
	store    DocumentStore
	receipts *ReceiptGenerator
	logger   *logrus.Logger
}

// NewArchiveService crea una nueva instancia del servicio; receipts puede ser nil
func NewArchiveService(store DocumentStore, receipts *ReceiptGenerator, logger *logrus.Logger) *ArchiveService {
	return &ArchiveService{
		store:    store,
		receipts: receipts,
		logger:   logger,
	}
}

// ArchiveSubmission sube payload.json, response.json y receipt.pdf bajo el documentID.
// Un fallo del comprobante no invalida el archivo.
func (s *ArchiveService) ArchiveSubmission(ctx context.Context, documentID string, payload models.SubmissionPayload, response []byte) (*ArchivedSubmission, error) {
	payloadData, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error encoding submission payload: %w", err)
	}

	payloadURL, err := s.store.PutDocument(ctx, documentID, "payload.json", payloadData)
	if err != nil {
		return nil, fmt.Errorf("error archiving submission payload: %w", err)
	}

	archived := &ArchivedSubmission{PayloadURL: payloadURL}

	if len(response) > 0 {
		responseURL, err := s.store.PutDocument(ctx, documentID, "response.json", response)
		if err != nil {
			return nil, fmt.Errorf("error archiving MyInvois response: %w", err)
		}
		archived.ResponseURL = responseURL
	}

	if s.receipts != nil && len(payload.Documents) > 0 {
		archived.ReceiptURL = s.archiveReceipt(ctx, documentID, payload.Documents[0])
	}

	s.logger.WithFields(logrus.Fields{
		"document_id":  documentID,
		"payload_url":  archived.PayloadURL,
		"response_url": archived.ResponseURL,
		"receipt_url":  archived.ReceiptURL,
	}).Info("Submission archived successfully")

	return archived, nil
}

func (s *ArchiveService) archiveReceipt(ctx context.Context, documentID string, doc models.ClearanceDocument) string {
	receipt, err := s.receipts.GenerateReceiptPDF(documentID, doc)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", documentID).Warn("Could not generate receipt")
		return ""
	}

	url, err := s.store.PutDocument(ctx, documentID, "receipt.pdf", receipt)
	if err != nil {
		s.logger.WithError(err).WithField("document_id", documentID).Warn("Could not archive receipt")
		return ""
	}
	return url
}
