package services

import (
	"encoding/base64"
	"fmt"

	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	qrcode "github.com/skip2/go-qrcode"
)

const qrSize = 256

// QRService genera códigos QR del enlace de validación de MyInvois
type QRService struct {
	portalURL string
}

// NewQRService crea una nueva instancia del servicio
func NewQRService(portalURL string) *QRService {
	return &QRService{portalURL: portalURL}
}

// URL enlace codificado en el QR
func (s *QRService) URL(documentID, longID string) string {
	return myinvois.ValidationURL(s.portalURL, documentID, longID)
}

// PNG genera el QR del documento como imagen PNG
func (s *QRService) PNG(documentID, longID string) ([]byte, error) {
	png, err := qrcode.Encode(s.URL(documentID, longID), qrcode.Medium, qrSize)
	if err != nil {
		return nil, fmt.Errorf("error encoding QR code: %w", err)
	}
	return png, nil
}

// DataURL genera el QR como data URL embebible en JSON
func (s *QRService) DataURL(documentID, longID string) (string, error) {
	png, err := s.PNG(documentID, longID)
	if err != nil {
		return "", err
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
