package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the account behind the session cookie",
	Long: `Show the account behind the .ROBLOSECURITY cookie.
The id is the owner id assets are created for.`,
	Example: `  decalup whoami --cookie-file ~/.roblosecurity`,
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runWhoami(cmd)
	},
}

func runWhoami(cmd *cobra.Command) {
	cookie, err := getCookie(cmd, true)
	if err != nil {
		printError(cmd, err)
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	identity, err := newBootstrapper().FetchIdentity(ctx, cookie)
	if err != nil {
		printError(cmd, err)
		return
	}

	printJSON(cmd, identity)
}

func init() {
	whoamiCmd.Flags().Int("timeout", 60, "Timeout in seconds for the operation")
}
