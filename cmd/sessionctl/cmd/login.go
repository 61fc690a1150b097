package cmd

import (
	"fmt"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	username string
	password string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate against the protected API",
	Long: `Authenticates with username and password. On success the refresh token and
user snapshot are persisted so the session can be restored later.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		if password == "" {
			fmt.Print("Password: ")
			entered, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}
			password = string(entered)
		}

		state, err := c.Session.Login(cmd.Context(), username, password)
		if err != nil {
			return err
		}

		pterm.Success.Printf("Logged in as %s\n", state.DisplayName())
		if expiry, ok := state.Credential.ExpiresAt(); ok {
			pterm.Info.Printf("Access token expires at %s\n", expiry.Format("15:04:05"))
		}
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVarP(&username, "username", "u", "", "Username")
	loginCmd.Flags().StringVarP(&password, "password", "p", "", "Password (prompted when omitted)")
	_ = loginCmd.MarkFlagRequired("username")
}
