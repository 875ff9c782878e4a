package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gsport/internal/portal"
)

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out of the portal and remove the saved session",
	Run: func(cmd *cobra.Command, args []string) {
		session, err := portal.NewSession(getHost(cmd), cfg.CookieFile)
		if err != nil {
			fatal(err, "logout")
		}

		if err := session.Logout(cmd.Context()); err != nil {
			fatal(err, "logout")
		}
		if err := session.ClearCookies(); err != nil {
			fatal(err, "logout")
		}

		fmt.Println("[logout] Logged out.")
	},
}
