package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/inngest/inngestgo"
	"github.com/inngest/inngestgo/step"
	"github.com/sirupsen/logrus"
)

const retryFunctionID = "einvoice-resubmit"

// retryAttempts cantidad de reintentos que Inngest aplica a la función
var retryAttempts = 5

// ErrStillUnreachable MyInvois sigue sin responder; Inngest reintentará
var ErrStillUnreachable = errors.New("myinvois still unreachable")

// Resubmitter reenvía una factura sin volver a publicar eventos de fallo
type Resubmitter interface {
	Resubmit(ctx context.Context, invoice models.InvoiceInput, idempotencyKey string) *models.SubmissionResult
}

// RetryWorkflow reintenta los envíos que fallaron por transporte
type RetryWorkflow struct {
	resubmitter Resubmitter
	logger      *logrus.Logger
}

// NewRetryWorkflow crea una nueva instancia del workflow de retry
func NewRetryWorkflow(resubmitter Resubmitter, logger *logrus.Logger) *RetryWorkflow {
	return &RetryWorkflow{
		resubmitter: resubmitter,
		logger:      logger,
	}
}

// Register crea la función de Inngest disparada por EventTransportFailed
func (w *RetryWorkflow) Register(client inngestgo.Client) error {
	_, err := inngestgo.CreateFunction(
		client,
		inngestgo.FunctionOpts{
			ID:      retryFunctionID,
			Name:    "Resubmit e-Invoice after transport failure",
			Retries: &retryAttempts,
		},
		inngestgo.EventTrigger(EventTransportFailed, nil),
		w.handle,
	)
	if err != nil {
		return fmt.Errorf("error registering %s: %w", retryFunctionID, err)
	}
	return nil
}

func (w *RetryWorkflow) handle(ctx context.Context, input inngestgo.Input[TransportFailureData]) (any, error) {
	data := input.Event.Data
	return step.Run(ctx, "resubmit", func(ctx context.Context) (*models.SubmissionResult, error) {
		return w.Resubmit(ctx, data)
	})
}

// Resubmit reenvía la factura del evento. Solo un nuevo fallo de transporte es reintentable;
// cualquier otro resultado se considera definitivo.
func (w *RetryWorkflow) Resubmit(ctx context.Context, data TransportFailureData) (*models.SubmissionResult, error) {
	result := w.resubmitter.Resubmit(ctx, data.Invoice, data.IdempotencyKey)

	fields := logrus.Fields{
		"invoice_number": data.InvoiceNumber,
		"ok":             result.OK,
		"error_kind":     result.ErrorKind,
	}
	if !result.OK && result.ErrorKind == models.ErrorKindTransport {
		w.logger.WithFields(fields).Warn("Resubmission failed, MyInvois still unreachable")
		return nil, fmt.Errorf("%w: %s", ErrStillUnreachable, result.Message)
	}

	w.logger.WithFields(fields).Info("Resubmission finished")
	return result, nil
}
