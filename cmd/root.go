package cmd

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"decalup/config"
	"decalup/internal/auth"
	"decalup/internal/logging"
	"decalup/pkg/utils"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "decalup",
	Short: "Bulk uploader for Roblox Decal assets",
	Long: `decalup uploads local images, zip archives, image URLs and S3 objects
as individually named Decal assets through the Roblox Open Cloud API.

It can also create an Open Cloud API key from a .ROBLOSECURITY session cookie.
Configuration is loaded from .env file or environment variables`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if isVerbose(cmd) {
			logging.SetVerbose()
		}
	},
}

func Execute(config *config.Config) error {
	cfg = config
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(keygenCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(imagesCmd)

	rootCmd.PersistentFlags().String("api-key", "", "Override DECAL_API_KEY from config")
	rootCmd.PersistentFlags().String("cookie-file", "", "Read the .ROBLOSECURITY cookie from a file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
}

func getAPIKey(cmd *cobra.Command) string {
	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey != "" {
		return apiKey
	}
	return cfg.APIKey
}

func isVerbose(cmd *cobra.Command) bool {
	verbose, _ := cmd.Flags().GetBool("verbose")
	return verbose
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: cfg.HTTPTimeout}
}

func newBootstrapper() *auth.Bootstrapper {
	return auth.NewBootstrapper(newHTTPClient(), cfg.AuthURL, cfg.UsersURL, cfg.OpenCloudURL)
}

// getCookie looks at --cookie-file, then ROBLOSECURITY, then asks on the terminal when allowed.
func getCookie(cmd *cobra.Command, prompt bool) (string, error) {
	cookieFile, _ := cmd.Flags().GetString("cookie-file")
	if cookieFile != "" {
		data, err := os.ReadFile(cookieFile)
		if err != nil {
			return "", fmt.Errorf("failed to read cookie file: %w", err)
		}
		if cookie := strings.TrimSpace(string(data)); cookie != "" {
			return cookie, nil
		}
		return "", fmt.Errorf("cookie file %s is empty", cookieFile)
	}

	if cfg.Cookie != "" {
		return cfg.Cookie, nil
	}

	if !prompt {
		return "", nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", fmt.Errorf("no cookie: set ROBLOSECURITY or pass --cookie-file")
	}

	fmt.Fprint(cmd.ErrOrStderr(), "Paste your .ROBLOSECURITY cookie (input hidden): ")
	secret, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("failed to read cookie: %w", err)
	}
	cookie := strings.TrimSpace(string(secret))
	if cookie == "" {
		return "", fmt.Errorf("no cookie entered")
	}
	return cookie, nil
}

// askConfirmation reads a y/N answer from the command's input.
func askConfirmation(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s (y/N): ", question)
	response, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true
	default:
		return false
	}
}

func printJSON(cmd *cobra.Command, data interface{}) {
	if err := utils.WriteJSON(cmd.OutOrStdout(), data); err != nil {
		utils.WriteError(cmd.OutOrStdout(), err, cmd.Name())
	}
}

func printError(cmd *cobra.Command, err error) {
	utils.WriteError(cmd.OutOrStdout(), err, cmd.Name())
}
