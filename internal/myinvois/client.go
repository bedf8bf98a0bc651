package myinvois

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/sirupsen/logrus"
)

const (
	documentsPath = "/api/v1.0/documents"

	// DefaultCancelReason motivo usado cuando el llamador no envía uno
	DefaultCancelReason = "Cancelled by user"

	defaultAuthTimeout   = 10 * time.Second
	defaultSubmitTimeout = 15 * time.Second
	defaultQueryTimeout  = 10 * time.Second
)

// Options ajustes opcionales del cliente
type Options struct {
	AuthTimeout   time.Duration
	SubmitTimeout time.Duration
	QueryTimeout  time.Duration
	// HTTPClient permite inyectar un transporte propio (tests, proxies)
	HTTPClient *http.Client
	Logger     *logrus.Logger
	Now        func() time.Time
}

// Client envía documentos a MyInvois y consulta o cancela los ya enviados.
// Ningún fallo esperado sale como error: todo se reporta en SubmissionResult.
type Client struct {
	creds         Credentials
	tokens        *TokenManager
	http          *resty.Client
	submitTimeout time.Duration
	queryTimeout  time.Duration
	now           func() time.Time
	logger        *logrus.Logger
}

// NewClient crea un cliente con su propio TokenManager
func NewClient(creds Credentials, opts Options) *Client {
	if opts.AuthTimeout <= 0 {
		opts.AuthTimeout = defaultAuthTimeout
	}
	if opts.SubmitTimeout <= 0 {
		opts.SubmitTimeout = defaultSubmitTimeout
	}
	if opts.QueryTimeout <= 0 {
		opts.QueryTimeout = defaultQueryTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logrus.New()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	var rc *resty.Client
	if opts.HTTPClient != nil {
		rc = resty.NewWithClient(opts.HTTPClient)
	} else {
		rc = resty.New()
	}
	rc.SetBaseURL(strings.TrimRight(creds.BaseURL, "/")).
		SetHeader("Accept", "application/json").
		SetLogger(opts.Logger)

	tokens := NewTokenManager(creds, rc, opts.AuthTimeout, opts.Logger)
	tokens.now = opts.Now

	return &Client{
		creds:         creds,
		tokens:        tokens,
		http:          rc,
		submitTimeout: opts.SubmitTimeout,
		queryTimeout:  opts.QueryTimeout,
		now:           opts.Now,
		logger:        opts.Logger,
	}
}

// Seller retorna la identidad del emisor configurada
func (c *Client) Seller() Seller {
	return c.creds.Seller
}

// Tokens retorna el TokenManager del cliente
func (c *Client) Tokens() *TokenManager {
	return c.tokens
}

// AuthenticateHealthCheck fuerza una autenticación contra /connect/token
func (c *Client) AuthenticateHealthCheck(ctx context.Context) *models.SubmissionResult {
	if _, err := c.tokens.Authenticate(ctx); err != nil {
		return c.authFailure(err)
	}
	return &models.SubmissionResult{OK: true, Status: "authenticated", Message: "Authentication successful"}
}

// Preview mapea la factura tal como la enviaría Submit, sin tocar la red
func (c *Client) Preview(invoice models.InvoiceInput) models.ClearanceDocument {
	invoice.InvoiceDate = IssuedAt(invoice, c.now())
	return ToClearanceDocument(invoice, c.creds.Seller)
}

// Submit valida, mapea y envía la factura a MyInvois
func (c *Client) Submit(ctx context.Context, invoice models.InvoiceInput) *models.SubmissionResult {
	if problems := ValidateInvoice(invoice); len(problems) > 0 {
		c.logger.WithFields(logrus.Fields{
			"invoice_number": invoice.InvoiceNumber,
			"problems":       len(problems),
		}).Warn("Rejecting invalid invoice before submission")
		return models.NewValidationFailure(problems)
	}

	token, err := c.tokens.GetValidToken(ctx)
	if err != nil {
		return c.authFailure(err)
	}

	payload := models.SubmissionPayload{
		Documents: []models.ClearanceDocument{c.Preview(invoice)},
	}

	ctx, cancel := context.WithTimeout(ctx, c.submitTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token.Value).
		SetHeader("Content-Type", "application/json").
		SetBody(payload).
		Post(documentsPath)
	if err != nil {
		return c.transportFailure("submit", err)
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return c.classify("submit", resp.StatusCode(), body)
	}

	doc, err := parseSubmission(body)
	if err != nil {
		c.logger.WithError(err).Error("Unexpected response format from MyInvois submission")
		return models.NewFailure(models.ErrorKindRemote,
			"Unexpected response format from MyInvois", resp.StatusCode(), body)
	}

	c.logger.WithFields(logrus.Fields{
		"invoice_number": invoice.InvoiceNumber,
		"document_id":    doc.documentID(),
		"status":         doc.Status,
	}).Info("MyInvois submission successful")

	result := &models.SubmissionResult{
		OK:         true,
		DocumentID: doc.documentID(),
		InternalID: doc.InternalID,
		Status:     orDefault(doc.Status, string(models.SubmissionStatusSubmitted)),
		QRCode:     doc.QRCode,
		Message:    "e-Invoice successfully submitted to LHDN MyInvois",
		HTTPStatus: resp.StatusCode(),
	}
	return result.WithBody(body)
}

// GetStatus consulta el estado de un documento enviado
func (c *Client) GetStatus(ctx context.Context, documentID string) *models.SubmissionResult {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return models.NewValidationFailure([]string{"Document ID is required"})
	}

	token, err := c.tokens.GetValidToken(ctx)
	if err != nil {
		return c.authFailure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token.Value).
		Get(documentPath(documentID))
	if err != nil {
		return c.transportFailure("status", err)
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return c.classify("status", resp.StatusCode(), body)
	}

	status, err := parseStatus(body)
	if err != nil {
		c.logger.WithError(err).Error("Unexpected response format from MyInvois status")
		return models.NewFailure(models.ErrorKindRemote,
			"Unexpected response format from MyInvois", resp.StatusCode(), body)
	}

	result := &models.SubmissionResult{
		OK:         true,
		DocumentID: orDefault(status.UUID, documentID),
		InternalID: status.InternalID,
		Status:     orDefault(status.Status, "unknown"),
		Message:    "e-Invoice status retrieved successfully",
		HTTPStatus: resp.StatusCode(),
	}
	return result.WithBody(body)
}

// Cancel solicita la cancelación de un documento enviado
func (c *Client) Cancel(ctx context.Context, documentID, reason string) *models.SubmissionResult {
	documentID = strings.TrimSpace(documentID)
	if documentID == "" {
		return models.NewValidationFailure([]string{"Document ID is required"})
	}
	reason = CancelReason(reason)

	token, err := c.tokens.GetValidToken(ctx)
	if err != nil {
		return c.authFailure(err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.queryTimeout)
	defer cancel()

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(token.Value).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"reason": reason}).
		Post(documentPath(documentID) + "/cancel")
	if err != nil {
		return c.transportFailure("cancel", err)
	}

	body := resp.Body()
	if !resp.IsSuccess() {
		return c.classify("cancel", resp.StatusCode(), body)
	}

	status := string(models.SubmissionStatusCancelled)
	if len(body) > 0 {
		parsed, err := parseStatus(body)
		if err != nil {
			return models.NewFailure(models.ErrorKindRemote,
				"Unexpected response format from MyInvois", resp.StatusCode(), body)
		}
		status = orDefault(parsed.Status, status)
	}

	c.logger.WithFields(logrus.Fields{
		"document_id": documentID,
		"reason":      reason,
	}).Info("MyInvois cancellation successful")

	result := &models.SubmissionResult{
		OK:         true,
		DocumentID: documentID,
		Status:     status,
		Message:    "e-Invoice cancelled successfully",
		HTTPStatus: resp.StatusCode(),
	}
	return result.WithBody(body)
}

// classify convierte una respuesta no 2xx en un resultado fallido
func (c *Client) classify(op string, status int, body []byte) *models.SubmissionResult {
	var (
		kind    models.ErrorKind
		message string
	)
	switch status {
	case http.StatusBadRequest:
		kind, message = models.ErrorKindValidation, "Invalid invoice data. Please check the invoice format."
	case http.StatusUnauthorized:
		c.tokens.Invalidate()
		kind, message = models.ErrorKindAuth, "Authentication failed. Please check MyInvois credentials."
	case http.StatusForbidden:
		kind, message = models.ErrorKindAuth, "Access forbidden. Please check permissions."
	default:
		kind, message = models.ErrorKindRemote, failureMessage(op)
		if remote := remoteErrorMessage(body); remote != "" {
			message = fmt.Sprintf("%s: %s", message, remote)
		}
	}

	c.logger.WithFields(logrus.Fields{
		"operation":  op,
		"status":     status,
		"error_kind": kind,
	}).Error("MyInvois request failed")

	return models.NewFailure(kind, message, status, body)
}

func (c *Client) transportFailure(op string, err error) *models.SubmissionResult {
	c.logger.WithError(err).WithField("operation", op).Error("Cannot reach MyInvois")

	message := "Cannot connect to MyInvois service. Please try again later."
	if errors.Is(err, context.DeadlineExceeded) {
		message = "MyInvois request timed out. Please try again later."
	}
	return models.NewFailure(models.ErrorKindTransport, message, 0, nil)
}

func (c *Client) authFailure(err error) *models.SubmissionResult {
	var transport *TransportError
	if errors.As(err, &transport) {
		return c.transportFailure(transport.Op, transport.Err)
	}

	var authErr *AuthError
	if errors.As(err, &authErr) {
		message := "MyInvois authentication failed: " + authErr.Message
		if errors.Is(err, ErrMissingCredentials) {
			message = ErrMissingCredentials.Error()
		}
		return models.NewFailure(models.ErrorKindAuth, message, authErr.StatusCode, authErr.Body)
	}

	return models.NewFailure(models.ErrorKindAuth, err.Error(), 0, nil)
}

// CancelReason retorna el motivo enviado a MyInvois; uno vacío o en blanco usa DefaultCancelReason
func CancelReason(reason string) string {
	if strings.TrimSpace(reason) == "" {
		return DefaultCancelReason
	}
	return reason
}

func failureMessage(op string) string {
	switch op {
	case "submit":
		return "Failed to submit e-Invoice to LHDN MyInvois"
	case "status":
		return "Failed to retrieve e-Invoice status"
	case "cancel":
		return "Failed to cancel e-Invoice"
	}
	return "MyInvois request failed"
}

func documentPath(documentID string) string {
	return documentsPath + "/" + url.PathEscape(documentID)
}

type submittedDocument struct {
	InternalID string `json:"internalId"`
	UUID       string `json:"uuid"`
	Status     string `json:"status"`
	QRCode     string `json:"qrCode"`
}

func (d submittedDocument) documentID() string {
	return orDefault(d.UUID, d.InternalID)
}

// parseSubmission exige al menos un documento con identificador
func parseSubmission(body []byte) (submittedDocument, error) {
	var payload struct {
		Documents []submittedDocument `json:"documents"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return submittedDocument{}, fmt.Errorf("decoding submission response: %w", err)
	}
	if len(payload.Documents) == 0 {
		return submittedDocument{}, errors.New("submission response has no documents")
	}
	doc := payload.Documents[0]
	if doc.documentID() == "" {
		return submittedDocument{}, errors.New("submission response document has no identifier")
	}
	return doc, nil
}

type documentStatus struct {
	UUID       string `json:"uuid"`
	InternalID string `json:"internalId"`
	Status     string `json:"status"`
}

func parseStatus(body []byte) (documentStatus, error) {
	var status documentStatus
	if err := json.Unmarshal(body, &status); err != nil {
		return documentStatus{}, fmt.Errorf("decoding status response: %w", err)
	}
	return status, nil
}
