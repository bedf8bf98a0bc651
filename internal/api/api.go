package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/hypernova-labs/einvoice-service/internal/services"
	"github.com/sirupsen/logrus"
)

// EInvoiceService operaciones del servicio que expone la API
type EInvoiceService interface {
	HealthCheck(ctx context.Context) *models.SubmissionResult
	Validate(invoice models.InvoiceInput) []string
	Preview(invoice models.InvoiceInput) (models.ClearanceDocument, []string)
	Summary(invoice models.InvoiceInput) models.EInvoiceSummary
	Submit(ctx context.Context, invoice models.InvoiceInput, idempotencyKey string) *models.SubmissionResult
	Status(ctx context.Context, documentID string) *models.SubmissionResult
	LocalRecord(ctx context.Context, documentID string) *models.SubmissionRecord
	Cancel(ctx context.Context, documentID, reason string) *models.SubmissionResult
	DemoSubmit(ctx context.Context, invoice models.InvoiceInput) (*models.GenerateEInvoiceResponse, error)
}

// QRRenderer genera la imagen QR del enlace de validación
type QRRenderer interface {
	PNG(documentID, longID string) ([]byte, error)
}

// API maneja todos los endpoints de la API
type API struct {
	service     EInvoiceService
	qr          QRRenderer
	environment string
	now         func() time.Time
	logger      *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(service EInvoiceService, qr QRRenderer, environment string, logger *logrus.Logger) *API {
	return &API{
		service:     service,
		qr:          qr,
		environment: environment,
		now:         time.Now,
		logger:      logger,
	}
}

// RegisterRoutes registra las rutas bajo /api/einvoice
func (api *API) RegisterRoutes(router gin.IRouter) {
	group := router.Group("/api/einvoice")
	{
		group.GET("/health", api.Health)
		group.GET("/debug/auth", api.DebugAuth)
		group.POST("/generate", api.Generate)
		group.GET("/status/:invoiceId", api.GetStatus)
		group.POST("/cancel/:invoiceId", api.Cancel)
		group.POST("/validate", api.Validate)
		group.POST("/preview", api.Preview)
		group.POST("/demo/generate", api.DemoGenerate)
		group.GET("/qr/:documentId", api.QRCode)
	}
}

// Health verifica que MyInvois acepte las credenciales configuradas
func (api *API) Health(c *gin.Context) {
	result := api.service.HealthCheck(c.Request.Context())
	if !result.OK {
		c.JSON(http.StatusServiceUnavailable, models.NewResultError("MyInvois API is not accessible", result))
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse("MyInvois API is accessible", gin.H{
		"timestamp": api.timestamp(),
	}))
}

// DebugAuth prueba la autenticación e informa el ambiente activo
func (api *API) DebugAuth(c *gin.Context) {
	result := api.service.HealthCheck(c.Request.Context())
	if !result.OK {
		resp := models.NewResultError("MyInvois authentication test failed", result)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success":     false,
			"error":       resp.Error,
			"message":     resp.Message,
			"details":     resp.Details,
			"environment": api.environment,
		})
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse("MyInvois authentication test passed", gin.H{
		"environment": api.environment,
		"timestamp":   api.timestamp(),
	}))
}

// Generate envía una factura a LHDN MyInvois
func (api *API) Generate(c *gin.Context) {
	invoice, ok := api.bindGenerateRequest(c)
	if !ok {
		return
	}

	idempotencyKey := c.GetHeader("Idempotency-Key")
	result := api.service.Submit(c.Request.Context(), invoice, idempotencyKey)
	if !result.OK {
		api.logger.WithFields(logrus.Fields{
			"correlation_id": GetCorrelationID(c),
			"invoice_number": invoice.InvoiceNumber,
			"error_kind":     result.ErrorKind,
		}).Warn("e-Invoice submission failed")
		c.JSON(statusForResult(result), models.NewResultError("MyInvois submission failed", result))
		return
	}

	response := models.GenerateEInvoiceResponse{
		EInvoiceID:    result.InternalID,
		InvoiceNumber: invoice.InvoiceNumber,
		Timestamp:     api.timestamp(),
		SubmissionID:  result.DocumentID,
		Status:        result.Status,
		Customer:      invoice.Customer,
		Summary:       api.service.Summary(invoice),
		QRCode:        result.QRCode,
	}
	if response.EInvoiceID == "" {
		response.EInvoiceID = invoice.InvoiceNumber
	}
	if len(result.RawResponse) > 0 {
		response.MyInvoisResponse = result.RawResponse
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse("e-Invoice submitted to LHDN MyInvois", response))
}

// GetStatus consulta el estado de un documento en MyInvois
func (api *API) GetStatus(c *gin.Context) {
	documentID := c.Param("invoiceId")

	result := api.service.Status(c.Request.Context(), documentID)
	if !result.OK {
		c.JSON(statusForResult(result), models.NewResultError("Failed to retrieve e-Invoice status", result))
		return
	}

	response := models.EInvoiceStatusResponse{
		InvoiceID:     documentID,
		Status:        result.Status,
		LastUpdated:   api.timestamp(),
		LHDNReference: result.DocumentID,
	}
	if response.LHDNReference == "" {
		response.LHDNReference = "unknown"
	}
	if len(result.RawResponse) > 0 {
		response.Details = result.RawResponse
	}
	response.Record = api.service.LocalRecord(c.Request.Context(), documentID)

	c.JSON(http.StatusOK, models.NewSuccessResponse("", response))
}

// Cancel cancela un documento previamente aceptado
func (api *API) Cancel(c *gin.Context) {
	documentID := c.Param("invoiceId")

	var req models.CancelEInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []string{err.Error()}))
		return
	}

	result := api.service.Cancel(c.Request.Context(), documentID, req.Reason)
	if !result.OK {
		c.JSON(statusForResult(result), models.NewResultError("Failed to cancel e-Invoice", result))
		return
	}

	data := gin.H{
		"invoiceId": documentID,
		"status":    result.Status,
	}
	if len(result.RawResponse) > 0 {
		data["details"] = result.RawResponse
	}
	c.JSON(http.StatusOK, models.NewSuccessResponse("e-Invoice cancelled successfully", data))
}

// Validate valida los datos de una factura sin enviarla
func (api *API) Validate(c *gin.Context) {
	invoice, ok := api.bindInvoicePayload(c)
	if !ok {
		return
	}

	if problems := api.service.Validate(invoice); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid invoice data", problems))
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse("e-Invoice data is valid", gin.H{
		"validated":     true,
		"timestamp":     api.timestamp(),
		"invoiceNumber": invoice.InvoiceNumber,
		"itemsCount":    len(invoice.Items),
	}))
}

// Preview retorna el documento que se enviaría a MyInvois
func (api *API) Preview(c *gin.Context) {
	invoice, ok := api.bindInvoicePayload(c)
	if !ok {
		return
	}

	doc, problems := api.service.Preview(invoice)
	if len(problems) > 0 {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid invoice data", problems))
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse("", doc))
}

// DemoGenerate simula un envío sin contactar a MyInvois
func (api *API) DemoGenerate(c *gin.Context) {
	invoice, ok := api.bindGenerateRequest(c)
	if !ok {
		return
	}

	response, err := api.service.DemoSubmit(c.Request.Context(), invoice)
	var invalid *services.InvalidInvoiceError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid invoice data", invalid.Problems))
		return
	}
	if err != nil {
		api.logger.WithError(err).Error("Error generating demo e-Invoice")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse("Demo submission failed", err.Error()))
		return
	}

	c.JSON(http.StatusOK, models.NewSuccessResponse("DEMO: e-Invoice would be submitted to LHDN MyInvois", response))
}

// QRCode retorna el PNG con el enlace de validación del documento
func (api *API) QRCode(c *gin.Context) {
	png, err := api.qr.PNG(c.Param("documentId"), c.Query("longId"))
	if err != nil {
		api.logger.WithError(err).Error("Error generating QR code")
		c.JSON(http.StatusInternalServerError, models.NewErrorResponse("Failed to generate QR code", err.Error()))
		return
	}

	c.Header("Cache-Control", "public, max-age=86400")
	c.Data(http.StatusOK, "image/png", png)
}

func (api *API) bindGenerateRequest(c *gin.Context) (models.InvoiceInput, bool) {
	var req models.GenerateEInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Debug("Error binding generate request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []string{err.Error()}))
		return models.InvoiceInput{}, false
	}

	invoice, err := req.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError(err.Error(), []string{err.Error()}))
		return models.InvoiceInput{}, false
	}
	return invoice, true
}

func (api *API) bindInvoicePayload(c *gin.Context) (models.InvoiceInput, bool) {
	var req models.ValidateEInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []string{err.Error()}))
		return models.InvoiceInput{}, false
	}
	if req.InvoiceData == nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Missing required fields: invoiceData", []string{"invoiceData is required"}))
		return models.InvoiceInput{}, false
	}

	invoice, err := req.InvoiceData.ToInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid invoice data", []string{err.Error()}))
		return models.InvoiceInput{}, false
	}
	return invoice, true
}

func (api *API) timestamp() string {
	return api.now().UTC().Format(time.RFC3339)
}

// statusForResult traduce la clase de error al código HTTP de la respuesta
func statusForResult(result *models.SubmissionResult) int {
	switch result.ErrorKind {
	case models.ErrorKindValidation:
		return http.StatusBadRequest
	case models.ErrorKindAuth:
		return http.StatusBadGateway
	case models.ErrorKindTransport:
		return http.StatusServiceUnavailable
	default:
		if result.HTTPStatus == http.StatusNotFound {
			return http.StatusNotFound
		}
		return http.StatusInternalServerError
	}
}
