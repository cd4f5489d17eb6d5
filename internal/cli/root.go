package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	cfg    *Config
	client *Client
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "bingoctl",
		Short: "CLI tool for the bingo session API",
		Long: `bingoctl is a CLI tool for interacting with the bingo session JSON API.

Hosts can create sessions, manage players, draw balls and verify claims.
Players can log in with their access code, check their card and call bingo.
Live session events can be streamed over SSE.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load token from file if not provided via flag/env
			if err := cfg.LoadToken(); err != nil {
				return err
			}

			client = NewClient(cfg.ServerURL, cfg.Token)
			if cfg.Verbose {
				client.Trace = cmd.ErrOrStderr()
			}
			return nil
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "Server URL (env: BINGO_SERVER)")
	rootCmd.PersistentFlags().StringVar(&cfg.Token, "token", cfg.Token, "Access token (env: BINGO_TOKEN)")
	rootCmd.PersistentFlags().StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "Token file path (env: BINGO_TOKEN_FILE)")
	rootCmd.PersistentFlags().StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose output")

	rootCmd.AddCommand(newAdminCmd())
	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newMeCmd())
	rootCmd.AddCommand(newLogoutCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newPlayerCmd())
	rootCmd.AddCommand(newEventsCmd())
	rootCmd.AddCommand(newHealthCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
