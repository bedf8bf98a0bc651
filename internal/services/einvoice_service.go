package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hypernova-labs/einvoice-service/internal/database"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const sideEffectTimeout = 30 * time.Second

// SubmissionClient operaciones del cliente de MyInvois usadas por el servicio
type SubmissionClient interface {
	Submit(ctx context.Context, invoice models.InvoiceInput) *models.SubmissionResult
	GetStatus(ctx context.Context, documentID string) *models.SubmissionResult
	Cancel(ctx context.Context, documentID, reason string) *models.SubmissionResult
	AuthenticateHealthCheck(ctx context.Context) *models.SubmissionResult
	Preview(invoice models.InvoiceInput) models.ClearanceDocument
	Seller() myinvois.Seller
}

// IdempotencyStore guarda resultados exitosos por Idempotency-Key
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*models.SubmissionResult, bool, error)
	Save(ctx context.Context, key string, result *models.SubmissionResult) error
}

// SubmissionLedger registro de auditoría de documentos enviados
type SubmissionLedger interface {
	Record(ctx context.Context, record *models.SubmissionRecord) error
	UpdateStatus(ctx context.Context, documentID, status string) error
	MarkCancelled(ctx context.Context, documentID, reason string) error
	GetByDocumentID(ctx context.Context, documentID string) (*models.SubmissionRecord, error)
}

// Archiver guarda copias del documento enviado y de la respuesta
type Archiver interface {
	ArchiveSubmission(ctx context.Context, documentID string, payload models.SubmissionPayload, response []byte) (*ArchivedSubmission, error)
}

// Notifier envía avisos por correo
type Notifier interface {
	SendSubmissionNotice(invoice models.InvoiceInput, result *models.SubmissionResult) error
	SendCancellationNotice(documentID, reason, to string) error
}

// EventPublisher publica eventos para procesamiento fuera de banda
type EventPublisher interface {
	PublishTransportFailure(ctx context.Context, invoice models.InvoiceInput, idempotencyKey, message string) error
}

// Dependencies colaboradores opcionales; cualquiera puede ser nil
type Dependencies struct {
	Idempotency IdempotencyStore
	Ledger      SubmissionLedger
	Archive     Archiver
	Notifier    Notifier
	Events      EventPublisher
	QR          *QRService
	DemoDelay   time.Duration
	Now         func() time.Time
}

// InvalidInvoiceError la factura no pasó la validación local
type InvalidInvoiceError struct {
	Problems []string
}

func (e *InvalidInvoiceError) Error() string {
	return "invalid invoice: " + strings.Join(e.Problems, "; ")
}

// EInvoiceService orquesta el envío a MyInvois y sus efectos secundarios.
// Nunca modifica el SubmissionResult que produce el cliente.
type EInvoiceService struct {
	client SubmissionClient
	deps   Dependencies
	logger *logrus.Logger

	wg sync.WaitGroup
}

// NewEInvoiceService crea una nueva instancia del servicio
func NewEInvoiceService(client SubmissionClient, deps Dependencies, logger *logrus.Logger) *EInvoiceService {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &EInvoiceService{
		client: client,
		deps:   deps,
		logger: logger,
	}
}

// HealthCheck fuerza una autenticación contra MyInvois
func (s *EInvoiceService) HealthCheck(ctx context.Context) *models.SubmissionResult {
	return s.client.AuthenticateHealthCheck(ctx)
}

// Validate retorna todos los problemas de la factura
func (s *EInvoiceService) Validate(invoice models.InvoiceInput) []string {
	return myinvois.ValidateInvoice(invoice)
}

// Preview retorna el documento que se enviaría y los problemas de validación, si hay
func (s *EInvoiceService) Preview(invoice models.InvoiceInput) (models.ClearanceDocument, []string) {
	if problems := myinvois.ValidateInvoice(invoice); len(problems) > 0 {
		return models.ClearanceDocument{}, problems
	}
	return s.client.Preview(s.resolveDate(invoice)), nil
}

// Summary totales del documento tal como se envía a MyInvois
func (s *EInvoiceService) Summary(invoice models.InvoiceInput) models.EInvoiceSummary {
	doc := s.client.Preview(s.resolveDate(invoice))
	var tax float64
	if len(doc.TaxTotals) > 0 {
		tax = doc.TaxTotals[0].Amount
	}
	return models.EInvoiceSummary{
		TotalAmount: doc.TotalSalesAmount,
		TaxAmount:   tax,
		GrandTotal:  doc.TotalAmount,
	}
}

// Submit envía la factura. Una Idempotency-Key ya usada con éxito retorna el resultado guardado
// sin volver a llamar a MyInvois.
func (s *EInvoiceService) Submit(ctx context.Context, invoice models.InvoiceInput, idempotencyKey string) *models.SubmissionResult {
	if cached := s.lookupIdempotent(ctx, idempotencyKey); cached != nil {
		return cached
	}

	invoice = s.resolveDate(invoice)
	result := s.client.Submit(ctx, invoice)

	switch {
	case result.OK:
		s.afterSubmit(ctx, invoice, idempotencyKey, result)
	case result.ErrorKind == models.ErrorKindTransport:
		s.publishTransportFailure(ctx, invoice, idempotencyKey, result.Message)
	}

	return result
}

// Resubmit reenvía una factura desde el workflow de reintento; no publica eventos de fallo
func (s *EInvoiceService) Resubmit(ctx context.Context, invoice models.InvoiceInput, idempotencyKey string) *models.SubmissionResult {
	if cached := s.lookupIdempotent(ctx, idempotencyKey); cached != nil {
		return cached
	}

	invoice = s.resolveDate(invoice)
	result := s.client.Submit(ctx, invoice)
	if result.OK {
		s.afterSubmit(ctx, invoice, idempotencyKey, result)
	}
	return result
}

// Status consulta el estado de un documento y actualiza el registro local
func (s *EInvoiceService) Status(ctx context.Context, documentID string) *models.SubmissionResult {
	result := s.client.GetStatus(ctx, documentID)
	if result.OK && s.deps.Ledger != nil {
		if err := s.deps.Ledger.UpdateStatus(ctx, result.DocumentID, result.Status); err != nil {
			s.logLedgerError(err, result.DocumentID, "Could not update submission status")
		}
	}
	return result
}

// LocalRecord retorna el registro local del documento; nil si no hay registro o no existe
func (s *EInvoiceService) LocalRecord(ctx context.Context, documentID string) *models.SubmissionRecord {
	if s.deps.Ledger == nil || documentID == "" {
		return nil
	}
	record, err := s.deps.Ledger.GetByDocumentID(ctx, documentID)
	if err != nil {
		s.logLedgerError(err, documentID, "Could not read submission record")
		return nil
	}
	return record
}

// Cancel cancela un documento, lo marca en el registro local y avisa al emisor
func (s *EInvoiceService) Cancel(ctx context.Context, documentID, reason string) *models.SubmissionResult {
	result := s.client.Cancel(ctx, documentID, reason)
	if !result.OK {
		return result
	}
	reason = myinvois.CancelReason(reason)

	if s.deps.Ledger != nil {
		if err := s.deps.Ledger.MarkCancelled(ctx, result.DocumentID, reason); err != nil {
			s.logLedgerError(err, result.DocumentID, "Could not mark submission cancelled")
		}
	}

	if s.deps.Notifier != nil {
		sellerEmail := s.client.Seller().Email
		s.background(func(context.Context) {
			if err := s.deps.Notifier.SendCancellationNotice(result.DocumentID, reason, sellerEmail); err != nil {
				s.logger.WithError(err).WithField("document_id", result.DocumentID).Warn("Could not send cancellation notice")
			}
		})
	}

	return result
}

// DemoSubmit simula un envío sin tocar MyInvois
func (s *EInvoiceService) DemoSubmit(ctx context.Context, invoice models.InvoiceInput) (*models.GenerateEInvoiceResponse, error) {
	if problems := myinvois.ValidateInvoice(invoice); len(problems) > 0 {
		return nil, &InvalidInvoiceError{Problems: problems}
	}

	if s.deps.DemoDelay > 0 {
		select {
		case <-time.After(s.deps.DemoDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	subtotal := decimal.Zero
	for _, item := range invoice.Items {
		subtotal = subtotal.Add(decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromFloat(item.Quantity)))
	}
	tax := subtotal.Mul(myinvois.DefaultTaxRate).Div(decimal.NewFromInt(100))

	now := s.deps.Now().UTC()
	id := uuid.New().String()
	response := &models.GenerateEInvoiceResponse{
		EInvoiceID:    fmt.Sprintf("DEMO-%d", now.UnixMilli()),
		InvoiceNumber: invoice.InvoiceNumber,
		Timestamp:     now.Format(time.RFC3339),
		SubmissionID:  "demo-uuid-" + id[:8],
		Status:        "submitted",
		Customer:      invoice.Customer,
		Summary: models.EInvoiceSummary{
			TotalAmount: subtotal.InexactFloat64(),
			TaxAmount:   tax.InexactFloat64(),
			GrandTotal:  subtotal.Add(tax).InexactFloat64(),
		},
		Note: "This is a demo response. Real MyInvois integration requires valid LHDN credentials.",
	}

	if s.deps.QR != nil {
		qr, err := s.deps.QR.DataURL(response.SubmissionID, "")
		if err != nil {
			s.logger.WithError(err).Warn("Could not render demo QR code")
		} else {
			response.QRCode = qr
		}
	}

	return response, nil
}

// Wait bloquea hasta que terminen los efectos secundarios en curso
func (s *EInvoiceService) Wait() {
	s.wg.Wait()
}

func (s *EInvoiceService) resolveDate(invoice models.InvoiceInput) models.InvoiceInput {
	invoice.InvoiceDate = myinvois.IssuedAt(invoice, s.deps.Now())
	return invoice
}

func (s *EInvoiceService) lookupIdempotent(ctx context.Context, key string) *models.SubmissionResult {
	if key == "" || s.deps.Idempotency == nil {
		return nil
	}
	cached, found, err := s.deps.Idempotency.Get(ctx, key)
	if err != nil {
		s.logger.WithError(err).WithField("idempotency_key", key).Warn("Idempotency lookup failed, submitting anyway")
		return nil
	}
	if !found {
		return nil
	}
	s.logger.WithFields(logrus.Fields{
		"idempotency_key": key,
		"document_id":     cached.DocumentID,
	}).Info("Returning stored result for replayed idempotency key")
	return cached
}

func (s *EInvoiceService) afterSubmit(ctx context.Context, invoice models.InvoiceInput, idempotencyKey string, result *models.SubmissionResult) {
	if idempotencyKey != "" && s.deps.Idempotency != nil {
		if err := s.deps.Idempotency.Save(ctx, idempotencyKey, result); err != nil {
			s.logger.WithError(err).WithField("idempotency_key", idempotencyKey).Warn("Could not store idempotency result")
		}
	}

	if s.deps.Ledger != nil {
		summary := s.Summary(invoice)
		record := &models.SubmissionRecord{
			DocumentID:    result.DocumentID,
			InternalID:    result.InternalID,
			InvoiceNumber: invoice.InvoiceNumber,
			Status:        result.Status,
			TotalAmount:   summary.GrandTotal,
			RawResponse:   result.RawResponse,
		}
		if err := s.deps.Ledger.Record(ctx, record); err != nil {
			s.logLedgerError(err, result.DocumentID, "Could not record submission")
		}
	}

	if s.deps.Archive != nil {
		payload := models.SubmissionPayload{Documents: []models.ClearanceDocument{s.client.Preview(invoice)}}
		response := []byte(result.RawResponse)
		s.background(func(ctx context.Context) {
			if _, err := s.deps.Archive.ArchiveSubmission(ctx, result.DocumentID, payload, response); err != nil {
				s.logger.WithError(err).WithField("document_id", result.DocumentID).Warn("Could not archive submission")
			}
		})
	}

	if s.deps.Notifier != nil {
		s.background(func(context.Context) {
			if err := s.deps.Notifier.SendSubmissionNotice(invoice, result); err != nil {
				s.logger.WithError(err).WithField("document_id", result.DocumentID).Warn("Could not send submission notice")
			}
		})
	}
}

func (s *EInvoiceService) publishTransportFailure(ctx context.Context, invoice models.InvoiceInput, idempotencyKey, message string) {
	if s.deps.Events == nil {
		return
	}
	if err := s.deps.Events.PublishTransportFailure(ctx, invoice, idempotencyKey, message); err != nil {
		s.logger.WithError(err).WithField("invoice_number", invoice.InvoiceNumber).Error("Could not publish transport failure")
	}
}

// background ejecuta fn fuera del request con su propio timeout
func (s *EInvoiceService) background(fn func(ctx context.Context)) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
		defer cancel()
		fn(ctx)
	}()
}

func (s *EInvoiceService) logLedgerError(err error, documentID, message string) {
	entry := s.logger.WithError(err).WithField("document_id", documentID)
	if errors.Is(err, database.ErrSubmissionNotFound) {
		entry.Debug(message)
		return
	}
	entry.Warn(message)
}
