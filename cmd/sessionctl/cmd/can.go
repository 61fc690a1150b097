package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var canCmd = &cobra.Command{
	Use:   "can <path>",
	Short: "Check whether a navigation path is permitted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		state := c.Session.RestoreSession(cmd.Context())
		if !state.IsAuthenticated {
			return fmt.Errorf("not logged in")
		}

		decision := c.Guard.Authorize(cmd.Context(), args[0])
		if decision.Allowed {
			pterm.Success.Printf("%s is allowed\n", args[0])
			return nil
		}
		pterm.Error.Printf("%s is denied (redirect to %s)\n", args[0], decision.RedirectTo)
		return nil
	},
}
