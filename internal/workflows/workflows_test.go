package workflows

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/inngest/inngestgo"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	events []inngestgo.Event
	err    error
}

func (f *fakeSender) Send(_ context.Context, evt any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.events = append(f.events, evt.(inngestgo.Event))
	return "evt-1", nil
}

type fakeResubmitter struct {
	result *models.SubmissionResult
	calls  int
	key    string
}

func (f *fakeResubmitter) Resubmit(_ context.Context, _ models.InvoiceInput, key string) *models.SubmissionResult {
	f.calls++
	f.key = key
	return f.result
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestPublishTransportFailure(t *testing.T) {
	sender := &fakeSender{}
	publisher := NewPublisher(sender, quietLogger())
	invoice := models.InvoiceInput{InvoiceNumber: "INV-1"}

	err := publisher.PublishTransportFailure(context.Background(), invoice, "key-1", "timed out")

	require.NoError(t, err)
	require.Len(t, sender.events, 1)
	assert.Equal(t, EventTransportFailed, sender.events[0].Name)
	assert.Equal(t, "INV-1", sender.events[0].Data["invoice_number"])
	assert.Equal(t, "key-1", sender.events[0].Data["idempotency_key"])
	assert.Equal(t, invoice, sender.events[0].Data["invoice"])
}

func TestPublishTransportFailureError(t *testing.T) {
	publisher := NewPublisher(&fakeSender{err: errors.New("no event key")}, quietLogger())

	err := publisher.PublishTransportFailure(context.Background(), models.InvoiceInput{}, "", "down")

	assert.ErrorContains(t, err, "no event key")
}

func TestRetryWorkflow_Resubmit(t *testing.T) {
	data := TransportFailureData{InvoiceNumber: "INV-1", IdempotencyKey: "key-1"}

	t.Run("success is final", func(t *testing.T) {
		resubmitter := &fakeResubmitter{result: &models.SubmissionResult{OK: true, DocumentID: "UUID-1"}}
		workflow := NewRetryWorkflow(resubmitter, quietLogger())

		result, err := workflow.Resubmit(context.Background(), data)

		require.NoError(t, err)
		assert.Equal(t, "UUID-1", result.DocumentID)
		assert.Equal(t, "key-1", resubmitter.key)
	})

	t.Run("transport failure is retried", func(t *testing.T) {
		resubmitter := &fakeResubmitter{result: models.NewFailure(models.ErrorKindTransport, "down", 0, nil)}
		workflow := NewRetryWorkflow(resubmitter, quietLogger())

		_, err := workflow.Resubmit(context.Background(), data)

		assert.ErrorIs(t, err, ErrStillUnreachable)
	})

	t.Run("remote rejection is final", func(t *testing.T) {
		resubmitter := &fakeResubmitter{result: models.NewFailure(models.ErrorKindValidation, "bad", 400, nil)}
		workflow := NewRetryWorkflow(resubmitter, quietLogger())

		result, err := workflow.Resubmit(context.Background(), data)

		require.NoError(t, err)
		assert.False(t, result.OK)
		assert.Equal(t, 1, resubmitter.calls)
	})
}
