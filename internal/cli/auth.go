package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newAdminCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Host account commands",
	}

	cmd.AddCommand(newAdminAuthCmd("register", "Register a host account", "/api/v1/admins/register"))
	cmd.AddCommand(newAdminAuthCmd("login", "Log in as a host", "/api/v1/admins/login"))

	return cmd
}

func newAdminAuthCmd(use, short, path string) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				password = os.Getenv("BINGO_PASSWORD")
			}
			if username == "" || password == "" {
				return fmt.Errorf("--username and --password (or BINGO_PASSWORD) are required")
			}

			var result AuthResult
			body := map[string]string{"username": username, "password": password}
			if err := client.Post(path, body, &result); err != nil {
				return err
			}
			return saveAndPrintAuth(result)
		},
	}

	cmd.Flags().StringVar(&username, "username", "", "Host username")
	cmd.Flags().StringVar(&password, "password", "", "Host password (env: BINGO_PASSWORD)")

	return cmd
}

func newLoginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <session-id> <access-code>",
		Short: "Log in as a player with a session access code",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result AuthResult
			body := map[string]string{"session_id": args[0], "access_code": args[1]}
			if err := client.Post("/api/v1/players/login", body, &result); err != nil {
				return err
			}
			return saveAndPrintAuth(result)
		},
	}
}

func saveAndPrintAuth(result AuthResult) error {
	if err := cfg.SaveToken(result.Token); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}
	client.SetToken(result.Token)

	NewOutput(cfg.Output).Print(result)
	return nil
}

func newMeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "me",
		Short: "Show the logged in identity",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Identity
			if err := client.Get("/api/v1/me", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Revoke the current token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Token != "" {
				if err := client.Post("/api/v1/logout", nil, nil); err != nil {
					return err
				}
			}
			if err := cfg.ClearToken(); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage("Logged out")
			return nil
		},
	}
}
