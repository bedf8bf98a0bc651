package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/hypernova-labs/einvoice-service/internal/config"
	"github.com/hypernova-labs/einvoice-service/internal/models"
	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	verbose bool
	baseURL string
)

var rootCmd = &cobra.Command{
	Use:   "einvoicectl",
	Short: "Operate LHDN MyInvois e-invoice submissions",
	Long: `einvoicectl talks to LHDN MyInvois with the credentials of the e-invoice service.

Configuration is read from the same environment variables (and .env file) as the
service: CLIENT_ID, CLIENT_SECRET, MYINVOIS_BASE_URL and the SELLER_* keys.

Examples:
  # Check that the credentials are accepted
  einvoicectl health

  # Print the document that would be submitted
  einvoicectl map -f invoice.json

  # Submit an invoice and query it
  einvoicectl submit -f invoice.json
  einvoicectl status <document-uuid>
  einvoicectl cancel <document-uuid> --reason "Wrong buyer"`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute ejecuta el comando raíz
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "MyInvois API base URL (env: MYINVOIS_BASE_URL)")
}

// newClient construye el cliente de MyInvois a partir de la configuración
func newClient() (*myinvois.Client, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("error loading configuration: %w", err)
	}
	if baseURL != "" {
		cfg.MyInvois.BaseURL = baseURL
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	return myinvois.NewClient(myinvois.CredentialsFromConfig(cfg), myinvois.Options{
		AuthTimeout:   cfg.MyInvois.AuthTimeout,
		SubmitTimeout: cfg.MyInvois.SubmitTimeout,
		QueryTimeout:  cfg.MyInvois.QueryTimeout,
		Logger:        logger,
	}), nil
}

// readInvoice lee una factura en formato JSON desde un archivo o "-" para stdin
func readInvoice(path string, stdin io.Reader) (models.InvoiceInput, error) {
	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return models.InvoiceInput{}, fmt.Errorf("error reading invoice: %w", err)
	}

	var payload models.InvoicePayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return models.InvoiceInput{}, fmt.Errorf("error parsing invoice: %w", err)
	}
	return payload.ToInput()
}

func printJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printResult imprime el resultado y retorna error si la operación falló
func printResult(w io.Writer, result *models.SubmissionResult) error {
	if err := printJSON(w, result); err != nil {
		return err
	}
	if !result.OK {
		return fmt.Errorf("%s: %s", result.ErrorKind, result.Message)
	}
	return nil
}
