package myinvois

import (
	"fmt"
	"strings"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/shopspring/decimal"
)

const (
	documentTypeInvoice  = "010"
	documentTypeVersion  = "1.0"
	taxpayerActivityCode = "69209"
	currencyMYR          = "MYR"
	itemTypeGS1          = "GS1"
	unitTypePiece        = "PCE"
	taxTypeSST           = "T1"
	taxSubTypeSST        = "V009"
	idTypeTIN            = "TIN"
	idTypeNIDN           = "NIDN"
	issuedLayout         = "2006-01-02T15:04:05Z"

	defaultDescription   = "Product/Service"
	defaultBuyerID       = "000000000000"
	defaultBuyerBranch   = "000"
	defaultBuyerCountry  = "MY"
	defaultBuyerEmail    = "customer@example.com"
	defaultBuyerPhone    = "0300000000"
	defaultBuyerAddress  = "Not Provided"
	defaultBuyerName     = "Unknown Customer"
	defaultBuildingNo    = "1"
	defaultOriginCountry = "MY"
)

var (
	hundred = decimal.NewFromInt(100)
	// DefaultTaxRate tasa SST en porcentaje aplicada cuando la línea no trae una
	DefaultTaxRate = decimal.NewFromInt(6)
)

// ToClearanceDocument transforma una factura interna al esquema de MyInvois.
// Es pura: todo valor por defecto se resuelve aquí y no hay camino de error.
func ToClearanceDocument(invoice models.InvoiceInput, seller Seller) models.ClearanceDocument {
	subtotal := decimal.Zero
	for _, item := range invoice.Items {
		subtotal = subtotal.Add(lineTotal(item))
	}

	finalTotal := subtotal
	if invoice.TotalAmount != nil {
		finalTotal = decimal.NewFromFloat(*invoice.TotalAmount)
	}

	finalTax := finalTotal.Mul(DefaultTaxRate).Div(hundred)
	if invoice.TaxAmount != nil {
		finalTax = decimal.NewFromFloat(*invoice.TaxAmount)
	}

	lines := make([]models.InvoiceLine, len(invoice.Items))
	for i, item := range invoice.Items {
		lines[i] = toInvoiceLine(i+1, item)
	}

	total := finalTotal.InexactFloat64()

	return models.ClearanceDocument{
		DocumentType:         documentTypeInvoice,
		DocumentTypeVersion:  documentTypeVersion,
		DateTimeIssued:       invoice.InvoiceDate.UTC().Format(issuedLayout),
		TaxpayerActivityCode: taxpayerActivityCode,
		InternalID:           invoice.InvoiceNumber,
		Seller:               sellerParty(seller),
		Buyer:                buyerParty(invoice.Customer, seller),
		Delivery:             models.Delivery{CountryOfOrigin: defaultOriginCountry},
		InvoiceLines:         lines,
		TotalSalesAmount:     total,
		NetAmount:            total,
		TaxTotals: []models.TaxTotal{
			{TaxType: taxTypeSST, Amount: finalTax.InexactFloat64()},
		},
		TotalAmount: finalTotal.Add(finalTax).InexactFloat64(),
	}
}

// IssuedAt retorna la fecha de emisión con la que se mapeará la factura
func IssuedAt(invoice models.InvoiceInput, now time.Time) time.Time {
	if invoice.InvoiceDate.IsZero() {
		return now
	}
	return invoice.InvoiceDate
}

func lineTotal(item models.Item) decimal.Decimal {
	return decimal.NewFromFloat(item.UnitPrice).Mul(decimal.NewFromFloat(item.Quantity))
}

func toInvoiceLine(index int, item models.Item) models.InvoiceLine {
	rate := DefaultTaxRate
	if item.TaxRate != nil {
		rate = decimal.NewFromFloat(*item.TaxRate)
	}

	total := lineTotal(item)
	tax := total.Mul(rate).Div(hundred)

	description := strings.TrimSpace(item.Description)
	if description == "" {
		description = defaultDescription
	}
	code := item.SKU
	if code == "" {
		code = fmt.Sprintf("ITEM%d", index)
	}

	amount := total.InexactFloat64()
	return models.InvoiceLine{
		ID:          index,
		Description: description,
		ItemType:    itemTypeGS1,
		ItemCode:    code,
		UnitType:    unitTypePiece,
		Quantity:    item.Quantity,
		SalesTotal:  amount,
		Total:       amount,
		NetTotal:    amount,
		UnitValue: models.UnitValue{
			CurrencySold: currencyMYR,
			Amount:       item.UnitPrice,
		},
		TaxableItems: []models.TaxableItem{
			{
				TaxType: taxTypeSST,
				Amount:  tax.InexactFloat64(),
				SubType: taxSubTypeSST,
				Rate:    rate.InexactFloat64(),
			},
		},
	}
}

func sellerParty(seller Seller) models.Party {
	return models.Party{
		ID: models.PartyID{
			IDType:  idTypeTIN,
			IDValue: seller.TIN,
			Branch:  seller.Branch,
		},
		Name: seller.Name,
		Address: models.PartyAddress{
			BranchID:       seller.Branch,
			Country:        seller.Country,
			Governate:      seller.State,
			RegionCity:     seller.City,
			Street:         seller.Address,
			BuildingNumber: defaultBuildingNo,
			Postcode:       seller.Postcode,
		},
		Contact: models.PartyContact{
			Name:  seller.Name,
			Phone: seller.Phone,
			Email: seller.Email,
		},
	}
}

func buyerParty(customer models.Customer, seller Seller) models.Party {
	id := models.PartyID{
		IDType:  idTypeTIN,
		IDValue: customer.TaxID,
		Branch:  orDefault(customer.Branch, defaultBuyerBranch),
	}
	if customer.TaxID == "" {
		id.IDType = idTypeNIDN
		id.IDValue = defaultBuyerID
	}

	name := orDefault(strings.TrimSpace(customer.Name), defaultBuyerName)
	return models.Party{
		ID:   id,
		Name: name,
		Address: models.PartyAddress{
			Country:        orDefault(customer.Country, defaultBuyerCountry),
			Governate:      orDefault(customer.State, seller.State),
			RegionCity:     orDefault(customer.City, seller.City),
			Street:         orDefault(customer.Address, defaultBuyerAddress),
			BuildingNumber: defaultBuildingNo,
		},
		Contact: models.PartyContact{
			Name:  name,
			Phone: orDefault(customer.Phone, defaultBuyerPhone),
			Email: orDefault(customer.Email, defaultBuyerEmail),
		},
	}
}

func orDefault(value, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
