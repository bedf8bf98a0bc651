package myinvois

import "github.com/hypernova-labs/einvoice-service/internal/config"

// Seller identidad del emisor usada por defecto en cada documento
type Seller struct {
	TIN      string
	Name     string
	Branch   string
	Address  string
	Postcode string
	City     string
	State    string
	Country  string
	Email    string
	Phone    string
}

// Credentials identidad de la integración; inmutable durante la vida del proceso
type Credentials struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Seller       Seller
}

// CredentialsFromConfig proyecta la configuración cargada en Credentials
func CredentialsFromConfig(cfg *config.Config) Credentials {
	return Credentials{
		ClientID:     cfg.MyInvois.ClientID,
		ClientSecret: cfg.MyInvois.ClientSecret,
		BaseURL:      cfg.MyInvois.BaseURL,
		Seller: Seller{
			TIN:      cfg.Seller.TIN,
			Name:     cfg.Seller.Name,
			Branch:   cfg.Seller.Branch,
			Address:  cfg.Seller.Address,
			Postcode: cfg.Seller.Postcode,
			City:     cfg.Seller.City,
			State:    cfg.Seller.State,
			Country:  cfg.Seller.Country,
			Email:    cfg.Seller.Email,
			Phone:    cfg.Seller.Phone,
		},
	}
}

// HasClientCredentials indica si clientId y clientSecret están presentes
func (c Credentials) HasClientCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}
