package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	"github.com/resend/resend-go/v2"
	"github.com/sirupsen/logrus"
)

var submissionTemplate = template.Must(template.New("submission").Parse(`
<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>e-Invoice</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background-color: #f8f9fa; padding: 20px; text-align: center; border-radius: 8px; }
        .button { display: inline-block; padding: 12px 24px; background-color: #007bff; color: white; text-decoration: none; border-radius: 5px; }
        .footer { margin-top: 30px; font-size: 14px; color: #666; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>e-Invoice {{.InvoiceNumber}}</h1>
            <p>Status: {{.Status}}</p>
        </div>
        <p>Hello {{.CustomerName}},</p>
        <p>Your invoice has been submitted to LHDN MyInvois.</p>
        <ul>
            <li><strong>Document ID:</strong> {{.DocumentID}}</li>
            <li><strong>Invoice number:</strong> {{.InvoiceNumber}}</li>
        </ul>
        <p style="text-align: center;"><a class="button" href="{{.ValidationURL}}">View on MyInvois</a></p>
        <div class="footer">
            <p>This is an automated message from the e-invoicing system.</p>
        </div>
    </div>
</body>
</html>`))

var cancellationTemplate = template.Must(template.New("cancellation").Parse(`
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
    <h2>e-Invoice cancelled</h2>
    <p>Document <strong>{{.DocumentID}}</strong> was cancelled on LHDN MyInvois.</p>
    <p><strong>Reason:</strong> {{.Reason}}</p>
</body>
</html>`))

type submissionNotice struct {
	InvoiceNumber string
	Status        string
	CustomerName  string
	DocumentID    string
	ValidationURL string
}

type cancellationNotice struct {
	DocumentID string
	Reason     string
}

// Sender subconjunto del API de correos de Resend
type Sender interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendService maneja el envío de avisos de e-Invoice usando Resend API
type ResendService struct {
	emails    Sender
	fromEmail string
	portalURL string
	logger    *logrus.Logger
}

// NewResendService crea una nueva instancia de ResendService
func NewResendService(apiKey, fromEmail, portalURL string, logger *logrus.Logger) *ResendService {
	return NewResendServiceWith(resend.NewClient(apiKey).Emails, fromEmail, portalURL, logger)
}

// NewResendServiceWith crea el servicio sobre un Sender existente
func NewResendServiceWith(sender Sender, fromEmail, portalURL string, logger *logrus.Logger) *ResendService {
	return &ResendService{
		emails:    sender,
		fromEmail: fromEmail,
		portalURL: portalURL,
		logger:    logger,
	}
}

// SendSubmissionNotice avisa al comprador que su factura fue aceptada por MyInvois
func (s *ResendService) SendSubmissionNotice(invoice models.InvoiceInput, result *models.SubmissionResult) error {
	to := strings.TrimSpace(invoice.Customer.Email)
	if to == "" {
		s.logger.WithField("invoice_number", invoice.InvoiceNumber).Debug("Customer has no email, skipping submission notice")
		return nil
	}

	subject := fmt.Sprintf("e-Invoice %s submitted to LHDN MyInvois", invoice.InvoiceNumber)
	html, err := render(submissionTemplate, submissionNotice{
		InvoiceNumber: invoice.InvoiceNumber,
		Status:        result.Status,
		CustomerName:  invoice.Customer.Name,
		DocumentID:    result.DocumentID,
		ValidationURL: myinvois.ValidationURL(s.portalURL, result.DocumentID, ""),
	})
	if err != nil {
		return err
	}

	return s.send(to, subject, html, logrus.Fields{
		"invoice_number": invoice.InvoiceNumber,
		"document_id":    result.DocumentID,
	})
}

// SendCancellationNotice avisa al contacto del emisor que un documento fue cancelado
func (s *ResendService) SendCancellationNotice(documentID, reason, to string) error {
	if strings.TrimSpace(to) == "" {
		return nil
	}

	subject := fmt.Sprintf("e-Invoice %s cancelled", documentID)
	html, err := render(cancellationTemplate, cancellationNotice{
		DocumentID: documentID,
		Reason:     reason,
	})
	if err != nil {
		return err
	}

	return s.send(to, subject, html, logrus.Fields{
		"document_id": documentID,
	})
}

// render ejecuta la plantilla escapando los datos del llamador
func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("error rendering email template: %w", err)
	}
	return buf.String(), nil
}

func (s *ResendService) send(to, subject, html string, fields logrus.Fields) error {
	result, err := s.emails.Send(&resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("error sending email via Resend: %w", err)
	}

	fields["email_id"] = result.Id
	fields["to"] = to
	fields["subject"] = subject
	s.logger.WithFields(fields).Info("Email sent successfully via Resend")

	return nil
}
