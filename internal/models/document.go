package models

// SubmissionPayload es el cuerpo de POST /api/v1.0/documents
type SubmissionPayload struct {
	Documents []ClearanceDocument `json:"documents"`
}

// ClearanceDocument representa un documento en el esquema de MyInvois
type ClearanceDocument struct {
	DocumentType             string        `json:"documentType"`
	DocumentTypeVersion      string        `json:"documentTypeVersion"`
	DateTimeIssued           string        `json:"dateTimeIssued"`
	TaxpayerActivityCode     string        `json:"taxpayerActivityCode"`
	InternalID               string        `json:"internalId"`
	PurchaseOrderReference   *string       `json:"purchaseOrderReference"`
	PurchaseOrderDescription *string       `json:"purchaseOrderDescription"`
	SalesOrderReference      *string       `json:"salesOrderReference"`
	SalesOrderDescription    *string       `json:"salesOrderDescription"`
	ProformaInvoiceNumber    *string       `json:"proformaInvoiceNumber"`
	Seller                   Party         `json:"seller"`
	Buyer                    Party         `json:"buyer"`
	Payment                  Payment       `json:"payment"`
	Delivery                 Delivery      `json:"delivery"`
	InvoiceLines             []InvoiceLine `json:"invoiceLines"`
	TotalSalesAmount         float64       `json:"totalSalesAmount"`
	TotalDiscountAmount      float64       `json:"totalDiscountAmount"`
	NetAmount                float64       `json:"netAmount"`
	TaxTotals                []TaxTotal    `json:"taxTotals"`
	TotalAmount              float64       `json:"totalAmount"`
	ExtraDiscountAmount      float64       `json:"extraDiscountAmount"`
	TotalItemsDiscountAmount float64       `json:"totalItemsDiscountAmount"`
}

// Party representa al vendedor o comprador
type Party struct {
	ID      PartyID      `json:"id"`
	Name    string       `json:"name"`
	Address PartyAddress `json:"address"`
	Contact PartyContact `json:"contact"`
}

// PartyID identificación fiscal de la parte
type PartyID struct {
	IDType  string `json:"idType"`
	IDValue string `json:"idValue"`
	Branch  string `json:"branch"`
}

// PartyAddress dirección de la parte
type PartyAddress struct {
	BranchID       string `json:"branchId,omitempty"`
	Country        string `json:"country"`
	Governate      string `json:"governate"`
	RegionCity     string `json:"regionCity"`
	Street         string `json:"street"`
	BuildingNumber string `json:"buildingNumber"`
	Postcode       string `json:"postalCode,omitempty"`
}

// PartyContact contacto de la parte
type PartyContact struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Payment datos bancarios (vacíos en este servicio)
type Payment struct {
	BankName        string `json:"bankName"`
	BankAddress     string `json:"bankAddress"`
	BankAccountNo   string `json:"bankAccountNo"`
	BankAccountIBAN string `json:"bankAccountIBAN"`
	SwiftCode       string `json:"swiftCode"`
	Terms           string `json:"terms"`
}

// Delivery datos de entrega
type Delivery struct {
	Approach        string  `json:"approach"`
	Packaging       string  `json:"packaging"`
	DateValidity    string  `json:"dateValidity"`
	ExportPort      string  `json:"exportPort"`
	CountryOfOrigin string  `json:"countryOfOrigin"`
	GrossWeight     float64 `json:"grossWeight"`
	NetWeight       float64 `json:"netWeight"`
	Terms           string  `json:"terms"`
}

// InvoiceLine línea del documento con su subtotal de impuesto
type InvoiceLine struct {
	ID               int           `json:"id"`
	Description      string        `json:"description"`
	ItemType         string        `json:"itemType"`
	ItemCode         string        `json:"itemCode"`
	UnitType         string        `json:"unitType"`
	Quantity         float64       `json:"quantity"`
	SalesTotal       float64       `json:"salesTotal"`
	Total            float64       `json:"total"`
	ValueDifference  float64       `json:"valueDifference"`
	TotalTaxableFees float64       `json:"totalTaxableFees"`
	NetTotal         float64       `json:"netTotal"`
	ItemsDiscount    float64       `json:"itemsDiscount"`
	UnitValue        UnitValue     `json:"unitValue"`
	Discount         Discount      `json:"discount"`
	TaxableItems     []TaxableItem `json:"taxableItems"`
}

// UnitValue precio unitario y moneda
type UnitValue struct {
	CurrencySold string  `json:"currencySold"`
	Amount       float64 `json:"amountEGP"`
}

// Discount descuento de línea
type Discount struct {
	Rate   float64 `json:"rate"`
	Amount float64 `json:"amount"`
}

// TaxableItem subtotal de impuesto de una línea
type TaxableItem struct {
	TaxType string  `json:"taxType"`
	Amount  float64 `json:"amount"`
	SubType string  `json:"subType"`
	Rate    float64 `json:"rate"`
}

// TaxTotal total agregado por tipo de impuesto
type TaxTotal struct {
	TaxType string  `json:"taxType"`
	Amount  float64 `json:"amount"`
}
