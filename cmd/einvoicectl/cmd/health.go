package cmd

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check that MyInvois accepts the configured credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		return printResult(cmd.OutOrStdout(), client.AuthenticateHealthCheck(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
