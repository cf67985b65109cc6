package command

import (
	"fmt"

	"animehub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

// auth.go handles authentication commands for the animehubCLI application.

// authCmd represents the auth command for authentication related subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Authentication commands",
	Long:  `Authenticate with the AnimeHub API server. Supports login and registration.`,
}

// registerCmd represents the register command
var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Register a new AnimeHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		// get data from flags
		var c client.RegisterRequest
		c.Username, _ = cmd.Flags().GetString("username")
		c.Password, _ = cmd.Flags().GetString("password")
		c.Email, _ = cmd.Flags().GetString("email")

		// call API to register user
		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Register(&c)
		if err != nil {
			return fmt.Errorf("registration process failed: %w", err)
		}

		fmt.Println("✓ Registration successful! Please login to continue.")
		fmt.Printf("UserID: %s\n", response.ID)
		return nil
	},
}

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to your AnimeHub account",
	RunE: func(cmd *cobra.Command, args []string) error {
		// get data from flags
		var c client.LoginRequest
		c.Username, _ = cmd.Flags().GetString("username")
		c.Password, _ = cmd.Flags().GetString("password")

		// call API to login user
		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Login(&c)
		if err != nil {
			return fmt.Errorf("login process failed: %w", err)
		}

		fmt.Println("✓ Login successful!")
		fmt.Printf("Token expires at: %s\n", response.ExpiresAt.Format("2006-01-02 15:04:05"))
		fmt.Println("Export the token to use it with other commands:")
		fmt.Printf("  export ANIMEHUB_TOKEN=%s\n", response.Token)
		return nil
	},
}

func init() {
	registerCmd.Flags().StringP("username", "u", "", "Username for the new account")
	registerCmd.Flags().StringP("password", "p", "", "Password for the new account")
	registerCmd.Flags().StringP("email", "e", "", "Email for the new account")
	registerCmd.MarkFlagRequired("username")
	registerCmd.MarkFlagRequired("password")
	registerCmd.MarkFlagRequired("email")

	loginCmd.Flags().StringP("username", "u", "", "Account username")
	loginCmd.Flags().StringP("password", "p", "", "Account password")
	loginCmd.MarkFlagRequired("username")
	loginCmd.MarkFlagRequired("password")

	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(authCmd)
}
