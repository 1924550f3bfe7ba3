package main

import (
	"github.com/spf13/cobra"
)

var appointmentsCmd = &cobra.Command{
	Use:   "appointments",
	Short: "Print the active appointments as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context(), nil)
		if err != nil {
			return err
		}
		defer a.Close()

		return writeJSON(cmd.OutOrStdout(), a.service.ListActive(cmd.Context()))
	},
}
