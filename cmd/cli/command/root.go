package command

// root.go defines the root command for the animehubCLI application.
// set up the global flags and configuration here.

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiURL string // Global flag for API server URL
	wsURL  string // Global flag for the websocket endpoint
	token  string // authentication token (jwt)
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "animehubCLI",
	Short: "animehubCLI - AnimeHub Command Line Interface",
	Long: `animehubCLI is a tool for users to interact with the animehub API. User can use
this application to:
- Browse the anime catalog
- Follow an anime's comment section live (realtime updates from other viewers)
- Post, edit, delete and like comments

Use "animehubCLI command -help" or "animehubCLI command -h" to see all available commands.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, err) // Print error to standard error
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8084", "animehub API server URL")
	rootCmd.PersistentFlags().StringVar(&wsURL, "ws", "ws://localhost:8084/ws", "animehub websocket endpoint")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ANIMEHUB_TOKEN"), "JWT access token (defaults to $ANIMEHUB_TOKEN)")
}
