package main

import (
	"github.com/spf13/cobra"
)

var acceptModal bool

var modalCmd = &cobra.Command{
	Use:   "modal",
	Short: "Print the text of the open portal dialog",
	Long: `Log in, then print the open dialog as JSON. With --accept the dialog's
confirm button is pressed afterwards.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx, nil)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.service.Session().EnsureLoggedIn(ctx); err != nil {
			return err
		}
		if err := writeJSON(cmd.OutOrStdout(), a.service.ModalText(ctx)); err != nil {
			return err
		}
		if !acceptModal {
			return nil
		}
		return writeJSON(cmd.OutOrStdout(), a.service.AcceptNotificationModal(ctx))
	},
}

func init() {
	modalCmd.Flags().BoolVar(&acceptModal, "accept", false, "press the dialog's confirm button")
}
