package models

import (
	"fmt"
	"strings"
	"time"
)

// Customer representa el comprador de la factura
type Customer struct {
	Name    string `json:"name"`
	TaxID   string `json:"taxId,omitempty"`
	Branch  string `json:"branch,omitempty"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country,omitempty"`
}

// Item representa una línea de la factura tal como la envía el llamador
type Item struct {
	Description string   `json:"description"`
	Quantity    float64  `json:"quantity"`
	UnitPrice   float64  `json:"unitPrice"`
	SKU         string   `json:"sku,omitempty"`
	TaxRate     *float64 `json:"taxRate,omitempty"`
}

// InvoiceInput es la representación interna de una factura a enviar a MyInvois.
// Un InvoiceDate cero significa "fecha de envío".
type InvoiceInput struct {
	InvoiceNumber string    `json:"invoiceNumber"`
	InvoiceDate   time.Time `json:"invoiceDate"`
	Customer      Customer  `json:"customer"`
	Items         []Item    `json:"items"`
	TotalAmount   *float64  `json:"totalAmount,omitempty"`
	TaxAmount     *float64  `json:"taxAmount,omitempty"`
}

// invoiceDateLayouts formatos aceptados para invoiceDate
var invoiceDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseInvoiceDate interpreta la fecha de la factura; vacío retorna tiempo cero
func ParseInvoiceDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	for _, layout := range invoiceDateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid invoice date %q", value)
}

// Float64 retorna un puntero al valor dado
func Float64(v float64) *float64 {
	return &v
}
