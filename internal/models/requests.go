package models

import "fmt"

// InvoiceHeader datos de cabecera recibidos en /generate
type InvoiceHeader struct {
	InvoiceNumber string   `json:"invoiceNumber"`
	InvoiceDate   string   `json:"invoiceDate,omitempty"`
	TotalAmount   *float64 `json:"totalAmount,omitempty"`
	TaxAmount     *float64 `json:"taxAmount,omitempty"`
}

// GenerateEInvoiceRequest cuerpo de POST /api/einvoice/generate
type GenerateEInvoiceRequest struct {
	InvoiceData  *InvoiceHeader `json:"invoiceData"`
	CustomerInfo *Customer      `json:"customerInfo"`
	Items        []Item         `json:"items"`
}

// ToInput convierte la petición en un InvoiceInput
func (r *GenerateEInvoiceRequest) ToInput() (InvoiceInput, error) {
	if r.InvoiceData == nil || r.CustomerInfo == nil || r.Items == nil {
		return InvoiceInput{}, fmt.Errorf("missing required fields: invoiceData, customerInfo, items")
	}
	date, err := ParseInvoiceDate(r.InvoiceData.InvoiceDate)
	if err != nil {
		return InvoiceInput{}, err
	}
	return InvoiceInput{
		InvoiceNumber: r.InvoiceData.InvoiceNumber,
		InvoiceDate:   date,
		Customer:      *r.CustomerInfo,
		Items:         r.Items,
		TotalAmount:   r.InvoiceData.TotalAmount,
		TaxAmount:     r.InvoiceData.TaxAmount,
	}, nil
}

// InvoicePayload factura completa recibida en /validate y /preview
type InvoicePayload struct {
	InvoiceNumber string   `json:"invoiceNumber"`
	InvoiceDate   string   `json:"invoiceDate,omitempty"`
	Customer      Customer `json:"customer"`
	Items         []Item   `json:"items"`
	TotalAmount   *float64 `json:"totalAmount,omitempty"`
	TaxAmount     *float64 `json:"taxAmount,omitempty"`
}

// ToInput convierte el payload en un InvoiceInput
func (p *InvoicePayload) ToInput() (InvoiceInput, error) {
	date, err := ParseInvoiceDate(p.InvoiceDate)
	if err != nil {
		return InvoiceInput{}, err
	}
	return InvoiceInput{
		InvoiceNumber: p.InvoiceNumber,
		InvoiceDate:   date,
		Customer:      p.Customer,
		Items:         p.Items,
		TotalAmount:   p.TotalAmount,
		TaxAmount:     p.TaxAmount,
	}, nil
}

// ValidateEInvoiceRequest cuerpo de POST /api/einvoice/validate y /preview
type ValidateEInvoiceRequest struct {
	InvoiceData *InvoicePayload `json:"invoiceData"`
}

// CancelEInvoiceRequest cuerpo de POST /api/einvoice/cancel/:invoiceId
type CancelEInvoiceRequest struct {
	Reason string `json:"reason"`
}

// EInvoiceSummary totales reportados al llamador
type EInvoiceSummary struct {
	TotalAmount float64 `json:"totalAmount"`
	TaxAmount   float64 `json:"taxAmount"`
	GrandTotal  float64 `json:"grandTotal"`
}

// GenerateEInvoiceResponse datos retornados por /generate y /demo/generate
type GenerateEInvoiceResponse struct {
	EInvoiceID       string          `json:"einvoiceId"`
	InvoiceNumber    string          `json:"invoiceNumber"`
	Timestamp        string          `json:"timestamp"`
	SubmissionID     string          `json:"submissionId"`
	Status           string          `json:"status"`
	Customer         Customer        `json:"customer"`
	Summary          EInvoiceSummary `json:"summary"`
	QRCode           string          `json:"qrCode,omitempty"`
	MyInvoisResponse interface{}     `json:"myInvoisResponse,omitempty"`
	Note             string          `json:"note,omitempty"`
}

// EInvoiceStatusResponse datos retornados por /status/:invoiceId
type EInvoiceStatusResponse struct {
	InvoiceID     string            `json:"invoiceId"`
	Status        string            `json:"status"`
	LastUpdated   string            `json:"lastUpdated"`
	LHDNReference string            `json:"lhdnReference"`
	Details       interface{}       `json:"details,omitempty"`
	Record        *SubmissionRecord `json:"record,omitempty"`
}
