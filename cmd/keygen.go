package cmd

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Create an Open Cloud API key from a session cookie",
	Long: `Create an Open Cloud API key scoped to asset read/write from a .ROBLOSECURITY cookie.

The cookie is taken from --cookie-file, the ROBLOSECURITY variable, or a hidden prompt.
It is only used for this exchange and is never stored. The key is printed as JSON;
put its api_key into DECAL_API_KEY and owner_id into OWNER_ID to reuse it.`,
	Example: `  # Prompt for the cookie
  decalup keygen

  # Read the cookie from a file
  decalup keygen --cookie-file ~/.roblosecurity`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runKeygen(cmd)
	},
}

func runKeygen(cmd *cobra.Command) {
	cookie, err := getCookie(cmd, true)
	if err != nil {
		printError(cmd, err)
		return
	}

	timeout, _ := cmd.Flags().GetInt("timeout")
	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(timeout)*time.Second)
	defer cancel()

	key, err := newBootstrapper().DeriveAccessKey(ctx, cookie)
	if err != nil {
		printError(cmd, err)
		return
	}

	log.Info().Str("name", key.Name).Str("ownerId", key.OwnerID).Msg("API key created")
	printJSON(cmd, key)
}

func init() {
	keygenCmd.Flags().Int("timeout", 120, "Timeout in seconds for the operation")
}
