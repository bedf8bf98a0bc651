package myinvois

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToClearanceDocument_DefaultTotals(t *testing.T) {
	doc := ToClearanceDocument(sampleInvoice(), testSeller())

	assert.Equal(t, "010", doc.DocumentType)
	assert.Equal(t, "1.0", doc.DocumentTypeVersion)
	assert.Equal(t, "2024-03-01T09:30:00Z", doc.DateTimeIssued)
	assert.Equal(t, "INV-1", doc.InternalID)
	assert.Equal(t, 200.0, doc.TotalSalesAmount)
	assert.Equal(t, 200.0, doc.NetAmount)
	require.Len(t, doc.TaxTotals, 1)
	assert.Equal(t, "T1", doc.TaxTotals[0].TaxType)
	assert.Equal(t, 12.0, doc.TaxTotals[0].Amount)
	assert.Equal(t, 212.0, doc.TotalAmount)

	require.Len(t, doc.InvoiceLines, 1)
	line := doc.InvoiceLines[0]
	assert.Equal(t, 1, line.ID)
	assert.Equal(t, "ITEM1", line.ItemCode)
	assert.Equal(t, 200.0, line.SalesTotal)
	assert.Equal(t, 100.0, line.UnitValue.Amount)
	assert.Equal(t, "MYR", line.UnitValue.CurrencySold)
	require.Len(t, line.TaxableItems, 1)
	assert.Equal(t, 12.0, line.TaxableItems[0].Amount)
	assert.Equal(t, 6.0, line.TaxableItems[0].Rate)
}

func TestToClearanceDocument_WireShape(t *testing.T) {
	raw, err := json.Marshal(ToClearanceDocument(sampleInvoice(), testSeller()))
	require.NoError(t, err)

	var wire map[string]any
	require.NoError(t, json.Unmarshal(raw, &wire))

	assert.Equal(t, "69209", wire["taxpayerActivityCode"])
	assert.Equal(t, 212.0, wire["totalAmount"])
	lines := wire["invoiceLines"].([]any)
	line := lines[0].(map[string]any)
	assert.Equal(t, 200.0, line["salesTotal"])
	taxable := line["taxableItems"].([]any)[0].(map[string]any)
	assert.Equal(t, 12.0, taxable["amount"])
}

func TestToClearanceDocument_LineOrderAndCodes(t *testing.T) {
	invoice := sampleInvoice()
	invoice.Items = []models.Item{
		{Description: "Design", Quantity: 1, UnitPrice: 50},
		{Description: "Hosting", Quantity: 3, UnitPrice: 10, SKU: "HOST-01"},
		{Description: "", Quantity: 1, UnitPrice: 5},
	}

	doc := ToClearanceDocument(invoice, testSeller())

	require.Len(t, doc.InvoiceLines, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{doc.InvoiceLines[0].ID, doc.InvoiceLines[1].ID, doc.InvoiceLines[2].ID})
	assert.Equal(t, "ITEM1", doc.InvoiceLines[0].ItemCode)
	assert.Equal(t, "HOST-01", doc.InvoiceLines[1].ItemCode)
	assert.Equal(t, "ITEM3", doc.InvoiceLines[2].ItemCode)
	assert.Equal(t, "Design", doc.InvoiceLines[0].Description)
	assert.Equal(t, "Product/Service", doc.InvoiceLines[2].Description)
	assert.Equal(t, 30.0, doc.InvoiceLines[1].SalesTotal)
	assert.Equal(t, 85.0, doc.TotalSalesAmount)
}

func TestToClearanceDocument_Overrides(t *testing.T) {
	tests := []struct {
		name      string
		total     *float64
		tax       *float64
		wantSales float64
		wantTax   float64
		wantTotal float64
	}{
		{name: "total only", total: models.Float64(150), wantSales: 150, wantTax: 9, wantTotal: 159},
		{name: "tax only", tax: models.Float64(20), wantSales: 200, wantTax: 20, wantTotal: 220},
		{name: "both", total: models.Float64(180), tax: models.Float64(18), wantSales: 180, wantTax: 18, wantTotal: 198},
		{name: "explicit zero tax", tax: models.Float64(0), wantSales: 200, wantTax: 0, wantTotal: 200},
		{name: "explicit zero total", total: models.Float64(0), wantSales: 0, wantTax: 0, wantTotal: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := sampleInvoice()
			invoice.TotalAmount = tt.total
			invoice.TaxAmount = tt.tax

			doc := ToClearanceDocument(invoice, testSeller())

			assert.Equal(t, tt.wantSales, doc.TotalSalesAmount)
			assert.Equal(t, tt.wantTax, doc.TaxTotals[0].Amount)
			assert.Equal(t, tt.wantTotal, doc.TotalAmount)
		})
	}
}

func TestToClearanceDocument_LineTaxRate(t *testing.T) {
	invoice := sampleInvoice()
	invoice.Items = []models.Item{
		{Description: "Exempt", Quantity: 1, UnitPrice: 100, TaxRate: models.Float64(0)},
		{Description: "Service", Quantity: 2, UnitPrice: 100, TaxRate: models.Float64(10)},
	}

	doc := ToClearanceDocument(invoice, testSeller())

	assert.Equal(t, 0.0, doc.InvoiceLines[0].TaxableItems[0].Amount)
	assert.Equal(t, 0.0, doc.InvoiceLines[0].TaxableItems[0].Rate)
	assert.Equal(t, 20.0, doc.InvoiceLines[1].TaxableItems[0].Amount)
	assert.Equal(t, 10.0, doc.InvoiceLines[1].TaxableItems[0].Rate)
	// el impuesto del documento sigue siendo el 6% del total
	assert.Equal(t, 18.0, doc.TaxTotals[0].Amount)
}

func TestToClearanceDocument_DecimalPrecision(t *testing.T) {
	invoice := sampleInvoice()
	invoice.Items = []models.Item{
		{Description: "A", Quantity: 3, UnitPrice: 0.1},
		{Description: "B", Quantity: 1, UnitPrice: 0.2},
	}

	doc := ToClearanceDocument(invoice, testSeller())

	assert.Equal(t, 0.5, doc.TotalSalesAmount)
	assert.Equal(t, 0.3, doc.InvoiceLines[0].SalesTotal)
	assert.Equal(t, 0.03, doc.TaxTotals[0].Amount)
}

func TestToClearanceDocument_Parties(t *testing.T) {
	t.Run("seller from credentials", func(t *testing.T) {
		doc := ToClearanceDocument(sampleInvoice(), testSeller())

		assert.Equal(t, "TIN", doc.Seller.ID.IDType)
		assert.Equal(t, "C1234567890", doc.Seller.ID.IDValue)
		assert.Equal(t, "001", doc.Seller.ID.Branch)
		assert.Equal(t, "Hypernova Sdn Bhd", doc.Seller.Name)
		assert.Equal(t, "50450", doc.Seller.Address.Postcode)
		assert.Equal(t, "billing@hypernova.my", doc.Seller.Contact.Email)
	})

	t.Run("buyer without tax id", func(t *testing.T) {
		doc := ToClearanceDocument(sampleInvoice(), testSeller())

		assert.Equal(t, "NIDN", doc.Buyer.ID.IDType)
		assert.Equal(t, "000000000000", doc.Buyer.ID.IDValue)
		assert.Equal(t, "000", doc.Buyer.ID.Branch)
		assert.Equal(t, "Acme", doc.Buyer.Name)
		assert.Equal(t, "Kuala Lumpur", doc.Buyer.Address.RegionCity)
		assert.Equal(t, "WP Kuala Lumpur", doc.Buyer.Address.Governate)
		assert.Equal(t, "MY", doc.Buyer.Address.Country)
		assert.Equal(t, "Not Provided", doc.Buyer.Address.Street)
		assert.Equal(t, "customer@example.com", doc.Buyer.Contact.Email)
	})

	t.Run("buyer with tax id", func(t *testing.T) {
		invoice := sampleInvoice()
		invoice.Customer = models.Customer{
			Name:    "Acme",
			TaxID:   "C9876543210",
			Branch:  "002",
			Email:   "ap@acme.my",
			Address: "Jalan Sultan 5",
			City:    "Penang",
			State:   "Pulau Pinang",
		}

		doc := ToClearanceDocument(invoice, testSeller())

		assert.Equal(t, "TIN", doc.Buyer.ID.IDType)
		assert.Equal(t, "C9876543210", doc.Buyer.ID.IDValue)
		assert.Equal(t, "002", doc.Buyer.ID.Branch)
		assert.Equal(t, "Penang", doc.Buyer.Address.RegionCity)
		assert.Equal(t, "Pulau Pinang", doc.Buyer.Address.Governate)
		assert.Equal(t, "ap@acme.my", doc.Buyer.Contact.Email)
	})
}

func TestToClearanceDocument_TotalsInvariant(t *testing.T) {
	invoices := []models.InvoiceInput{
		sampleInvoice(),
		{
			InvoiceNumber: "INV-2",
			Customer:      models.Customer{Name: "Beta"},
			Items: []models.Item{
				{Description: "x", Quantity: 7, UnitPrice: 13.37},
				{Description: "y", Quantity: 0.5, UnitPrice: 99.99},
			},
		},
		{
			InvoiceNumber: "INV-3",
			Customer:      models.Customer{Name: "Gamma"},
			Items:         []models.Item{{Description: "z", Quantity: 1, UnitPrice: 0}},
			TotalAmount:   models.Float64(1000),
		},
	}

	for _, invoice := range invoices {
		doc := ToClearanceDocument(invoice, testSeller())
		assert.InDelta(t, doc.TotalSalesAmount+doc.TaxTotals[0].Amount, doc.TotalAmount, 1e-9, invoice.InvoiceNumber)
		assert.Len(t, doc.InvoiceLines, len(invoice.Items))
		assert.Equal(t, doc.TotalSalesAmount, doc.NetAmount)
	}
}

func TestIssuedAt(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	invoice := sampleInvoice()
	assert.Equal(t, invoice.InvoiceDate, IssuedAt(invoice, now))

	invoice.InvoiceDate = time.Time{}
	assert.Equal(t, now, IssuedAt(invoice, now))
}

func TestValidationURL(t *testing.T) {
	assert.Equal(t,
		"https://preprod.myinvois.hasil.gov.my/UUID-1/share/LONG-1",
		ValidationURL("https://preprod.myinvois.hasil.gov.my/", "UUID-1", "LONG-1"))
	assert.Equal(t,
		"https://preprod.myinvois.hasil.gov.my/UUID-1/share",
		ValidationURL("https://preprod.myinvois.hasil.gov.my", "UUID-1", ""))
}
