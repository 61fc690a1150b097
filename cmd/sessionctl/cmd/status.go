package cmd

import (
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Restore the persisted session and display it",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		state := c.Session.RestoreSession(cmd.Context())
		if !state.IsAuthenticated {
			pterm.Warning.Println("Not logged in")
			return nil
		}

		pterm.DefaultSection.Println("Session")
		pterm.Info.Printf("User: %s (%s)\n", state.DisplayName(), state.User.Email)
		if state.User.IsStaff {
			pterm.Info.Println("Staff account")
		}
		if expiry, ok := state.Credential.ExpiresAt(); ok {
			pterm.Info.Printf("Access token expires at %s\n", expiry.Format(time.RFC1123))
		}
		return nil
	},
}
