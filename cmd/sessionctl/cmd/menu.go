package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "List the permitted navigation entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}

		state := c.Session.RestoreSession(cmd.Context())
		if !state.IsAuthenticated {
			return fmt.Errorf("not logged in")
		}

		c.Menu.Load(cmd.Context())
		entries := c.Menu.Entries()
		if len(entries) == 0 {
			if lastError := c.Menu.LastError(); lastError != "" {
				pterm.Warning.Println(lastError)
			} else {
				pterm.Warning.Println("No permitted sections")
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tPATH\tICON")
		for _, entry := range entries {
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Name, entry.Path, entry.Icon)
		}
		w.Flush()
		return nil
	},
}
