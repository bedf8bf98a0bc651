package cmd

import (
	"fmt"
	"time"

	"github.com/hypernova-labs/einvoice-service/internal/config"
	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate an invoice without submitting it",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := readInvoice(invoiceFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		problems := myinvois.ValidateInvoice(invoice)
		if err := printJSON(cmd.OutOrStdout(), map[string]any{
			"valid":    len(problems) == 0,
			"problems": problems,
		}); err != nil {
			return err
		}
		if len(problems) > 0 {
			return fmt.Errorf("invoice has %d problem(s)", len(problems))
		}
		return nil
	},
}

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Print the MyInvois document an invoice maps to",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := readInvoice(invoiceFile, cmd.InOrStdin())
		if err != nil {
			return err
		}

		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("error loading configuration: %w", err)
		}
		seller := myinvois.CredentialsFromConfig(cfg).Seller

		invoice.InvoiceDate = myinvois.IssuedAt(invoice, time.Now())
		return printJSON(cmd.OutOrStdout(), myinvois.ToClearanceDocument(invoice, seller))
	},
}

func init() {
	rootCmd.AddCommand(validateCmd, mapCmd)

	for _, c := range []*cobra.Command{validateCmd, mapCmd} {
		c.Flags().StringVarP(&invoiceFile, "file", "f", "", "Invoice JSON file (- for stdin)")
		_ = c.MarkFlagRequired("file")
	}
}
