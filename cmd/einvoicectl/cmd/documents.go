package cmd

import (
	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	"github.com/spf13/cobra"
)

var (
	invoiceFile  string
	cancelReason string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit an invoice to LHDN MyInvois",
	Long: `Submit reads an invoice in JSON form and submits it to MyInvois.

The file has the same shape as the invoiceData of POST /api/einvoice/validate:
  {"invoiceNumber": "INV-1", "customer": {"name": "Acme"},
   "items": [{"description": "Consulting", "quantity": 2, "unitPrice": 100}]}`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		invoice, err := readInvoice(invoiceFile, cmd.InOrStdin())
		if err != nil {
			return err
		}
		client, err := newClient()
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), client.Submit(cmd.Context(), invoice))
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <document-uuid>",
	Short: "Query the status of a submitted document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), client.GetStatus(cmd.Context(), args[0]))
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel <document-uuid>",
	Short: "Cancel a submitted document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), client.Cancel(cmd.Context(), args[0], cancelReason))
	},
}

func init() {
	rootCmd.AddCommand(submitCmd, statusCmd, cancelCmd)

	submitCmd.Flags().StringVarP(&invoiceFile, "file", "f", "", "Invoice JSON file (- for stdin)")
	_ = submitCmd.MarkFlagRequired("file")

	cancelCmd.Flags().StringVar(&cancelReason, "reason", myinvois.DefaultCancelReason, "Cancellation reason")
}
