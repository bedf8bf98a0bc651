package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/jung-kurt/gofpdf"
	"github.com/sirupsen/logrus"
)

// ReceiptGenerator genera el comprobante PDF de un documento aceptado por MyInvois
type ReceiptGenerator struct {
	qr     *QRService
	now    func() time.Time
	logger *logrus.Logger
}

// NewReceiptGenerator crea una nueva instancia del generador
func NewReceiptGenerator(qr *QRService, logger *logrus.Logger) *ReceiptGenerator {
	return &ReceiptGenerator{
		qr:     qr,
		now:    time.Now,
		logger: logger,
	}
}

// GenerateReceiptPDF genera el comprobante con partes, líneas, totales y el QR de validación
func (g *ReceiptGenerator) GenerateReceiptPDF(documentID string, doc models.ClearanceDocument) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Header con color de fondo
	pdf.SetFillColor(41, 128, 185)
	pdf.Rect(0, 0, 210, 40, "F")

	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 22)
	pdf.Cell(140, 15, "e-INVOICE")
	pdf.Ln(15)

	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(140, 8, tr(fmt.Sprintf("#%s", doc.InternalID)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(140, 6, fmt.Sprintf("Issued: %s", doc.DateTimeIssued))
	pdf.Ln(6)

	pdf.SetTextColor(44, 62, 80)

	// Partes
	g.party(pdf, tr, 10, "SELLER", doc.Seller)
	g.party(pdf, tr, 105, "BUYER", doc.Buyer)

	// Tabla de líneas
	pdf.SetY(100)
	pdf.SetX(10)
	pdf.SetFillColor(236, 240, 241)
	pdf.SetFont("Arial", "B", 10)

	colWidths := []float64{15, 75, 25, 30, 45}
	colHeaders := []string{"#", "Description", "Qty", "Unit Price", "Total"}
	for i, header := range colHeaders {
		pdf.CellFormat(colWidths[i], 10, header, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 9)
	rowHeight := 8.0
	for i, line := range doc.InvoiceLines {
		if i%2 == 0 {
			pdf.SetFillColor(248, 249, 250)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}

		pdf.CellFormat(colWidths[0], rowHeight, fmt.Sprintf("%d", line.ID), "1", 0, "C", true, 0, "")
		pdf.CellFormat(colWidths[1], rowHeight, tr(line.Description), "1", 0, "L", true, 0, "")
		pdf.CellFormat(colWidths[2], rowHeight, fmt.Sprintf("%.2f", line.Quantity), "1", 0, "R", true, 0, "")
		pdf.CellFormat(colWidths[3], rowHeight, fmt.Sprintf("%.2f", line.UnitValue.Amount), "1", 0, "R", true, 0, "")
		pdf.CellFormat(colWidths[4], rowHeight, fmt.Sprintf("%.2f", line.SalesTotal), "1", 0, "R", true, 0, "")
		pdf.Ln(rowHeight)
	}

	// Totales
	totalY := pdf.GetY() + 10
	pdf.SetY(totalY)
	pdf.SetDrawColor(189, 195, 199)
	pdf.Line(120, totalY, 200, totalY)
	pdf.Ln(5)

	taxAmount := 0.0
	if len(doc.TaxTotals) > 0 {
		taxAmount = doc.TaxTotals[0].Amount
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.SetX(120)
	pdf.Cell(50, 8, "Subtotal:")
	pdf.Cell(30, 8, fmt.Sprintf("MYR %.2f", doc.TotalSalesAmount))
	pdf.Ln(8)

	pdf.SetX(120)
	pdf.Cell(50, 8, "Tax:")
	pdf.Cell(30, 8, fmt.Sprintf("MYR %.2f", taxAmount))
	pdf.Ln(8)

	pdf.SetX(120)
	pdf.Cell(50, 12, "TOTAL:")
	pdf.Cell(30, 12, fmt.Sprintf("MYR %.2f", doc.TotalAmount))
	pdf.Ln(12)

	// QR de validación
	if g.qr != nil {
		png, err := g.qr.PNG(documentID, "")
		if err != nil {
			return nil, err
		}
		options := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("validation-qr", options, bytes.NewReader(png))
		pdf.ImageOptions("validation-qr", 10, pdf.GetY()+5, 40, 40, false, options, 0, "")

		pdf.SetXY(55, pdf.GetY()+15)
		pdf.SetFont("Arial", "", 8)
		pdf.MultiCell(145, 5, fmt.Sprintf("LHDN reference: %s\n%s", documentID, g.qr.URL(documentID, "")), "", "L", false)
	}

	// Footer
	pdf.SetY(270)
	pdf.SetTextColor(149, 165, 166)
	pdf.SetFont("Arial", "", 8)
	pdf.Cell(190, 6, "This document was submitted electronically to LHDN MyInvois")
	pdf.Ln(6)
	pdf.Cell(190, 6, fmt.Sprintf("Generated: %s", g.now().UTC().Format("02/01/2006 15:04:05")))

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("error generating PDF: %w", err)
	}

	g.logger.WithFields(logrus.Fields{
		"document_id": documentID,
		"pdf_size":    buf.Len(),
	}).Debug("Receipt generated")

	return buf.Bytes(), nil
}

func (g *ReceiptGenerator) party(pdf *gofpdf.Fpdf, tr func(string) string, x float64, title string, party models.Party) {
	pdf.SetY(50)
	pdf.SetX(x)
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(95, 8, title)
	pdf.Ln(8)

	pdf.SetFont("Arial", "", 9)
	lines := []string{
		party.Name,
		fmt.Sprintf("%s: %s", party.ID.IDType, party.ID.IDValue),
		party.Address.Street,
		fmt.Sprintf("%s, %s", party.Address.RegionCity, party.Address.Governate),
	}
	if party.Contact.Email != "" {
		lines = append(lines, party.Contact.Email)
	}
	for _, line := range lines {
		pdf.SetX(x)
		pdf.Cell(95, 6, tr(line))
		pdf.Ln(6)
	}
}
