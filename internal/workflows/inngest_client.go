package workflows

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hypernova-labs/einvoice-service/internal/config"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
)

// EventTransportFailed se emite cuando MyInvois no respondió a un envío
const EventTransportFailed = "einvoice/submission.transport_failed"

// EventSender subconjunto del cliente de Inngest usado para publicar
type EventSender interface {
	Send(ctx context.Context, evt any) (string, error)
}

// TransportFailureData datos del evento de fallo de transporte
type TransportFailureData struct {
	InvoiceNumber  string              `json:"invoice_number"`
	IdempotencyKey string              `json:"idempotency_key,omitempty"`
	Message        string              `json:"message"`
	Invoice        models.InvoiceInput `json:"invoice"`
}

// InngestClient maneja la configuración de Inngest y la publicación de eventos
type InngestClient struct {
	client inngestgo.Client
	sender EventSender
	logger *logrus.Logger
}

// NewInngestClient crea una nueva instancia del cliente
func NewInngestClient(cfg *config.Config, logger *logrus.Logger) (*InngestClient, error) {
	if cfg.Inngest.EventKey == "" && !cfg.Inngest.Dev {
		return nil, fmt.Errorf("INNGEST_EVENT_KEY not configured")
	}
	if cfg.Inngest.SigningKey == "" && !cfg.Inngest.Dev {
		return nil, fmt.Errorf("INNGEST_SIGNING_KEY not configured")
	}

	dev := cfg.Inngest.Dev
	client, err := inngestgo.NewClient(inngestgo.ClientOpts{
		AppID:      cfg.Inngest.AppID,
		EventKey:   &cfg.Inngest.EventKey,
		SigningKey: &cfg.Inngest.SigningKey,
		Dev:        &dev,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating Inngest client: %w", err)
	}

	return &InngestClient{
		client: client,
		sender: client,
		logger: logger,
	}, nil
}

// NewPublisher crea un cliente que solo publica eventos sobre el sender dado
func NewPublisher(sender EventSender, logger *logrus.Logger) *InngestClient {
	return &InngestClient{
		sender: sender,
		logger: logger,
	}
}

// PublishTransportFailure publica el evento para reintentar el envío fuera de banda
func (c *InngestClient) PublishTransportFailure(ctx context.Context, invoice models.InvoiceInput, idempotencyKey, message string) error {
	id, err := c.sender.Send(ctx, inngestgo.Event{
		Name: EventTransportFailed,
		Data: map[string]any{
			"invoice_number":  invoice.InvoiceNumber,
			"idempotency_key": idempotencyKey,
			"message":         message,
			"invoice":         invoice,
		},
	})
	if err != nil {
		return fmt.Errorf("error publishing %s: %w", EventTransportFailed, err)
	}

	c.logger.WithFields(logrus.Fields{
		"event":          EventTransportFailed,
		"event_id":       id,
		"invoice_number": invoice.InvoiceNumber,
	}).Info("Transport failure event published")

	return nil
}

// RegisterWorkflows registra las funciones de Inngest y retorna el handler a montar
func (c *InngestClient) RegisterWorkflows(resubmitter Resubmitter) (http.Handler, error) {
	if c.client == nil {
		return nil, fmt.Errorf("inngest client not configured")
	}

	c.logger.Info("Registering workflows with Inngest")

	retry := NewRetryWorkflow(resubmitter, c.logger)
	if err := retry.Register(c.client); err != nil {
		return nil, err
	}

	return c.client.Serve(), nil
}
