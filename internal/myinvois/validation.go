package myinvois

import (
	"fmt"
	"math"
	"strings"

	"github.com/hypernova-labs/einvoice-service/internal/models"
)

// ValidateInvoice retorna todos los problemas de forma de la factura; vacío si es válida
func ValidateInvoice(invoice models.InvoiceInput) []string {
	var problems []string

	if strings.TrimSpace(invoice.InvoiceNumber) == "" {
		problems = append(problems, "Invoice number is required")
	}
	if strings.TrimSpace(invoice.Customer.Name) == "" {
		problems = append(problems, "Customer name is required")
	}
	if len(invoice.Items) == 0 {
		problems = append(problems, "At least one invoice item is required")
	}

	for i, item := range invoice.Items {
		if strings.TrimSpace(item.Description) == "" {
			problems = append(problems, fmt.Sprintf("Item %d: description is required", i+1))
		}
		if !finite(item.Quantity) || item.Quantity <= 0 {
			problems = append(problems, fmt.Sprintf("Item %d: valid quantity is required", i+1))
		}
		if !finite(item.UnitPrice) || item.UnitPrice < 0 {
			problems = append(problems, fmt.Sprintf("Item %d: valid unit price is required", i+1))
		}
		if item.TaxRate != nil && (!finite(*item.TaxRate) || *item.TaxRate < 0) {
			problems = append(problems, fmt.Sprintf("Item %d: tax rate must not be negative", i+1))
		}
	}

	if invoice.TotalAmount != nil && !finite(*invoice.TotalAmount) {
		problems = append(problems, "Total amount must be a finite number")
	}
	if invoice.TaxAmount != nil && !finite(*invoice.TaxAmount) {
		problems = append(problems, "Tax amount must be a finite number")
	}

	return problems
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
