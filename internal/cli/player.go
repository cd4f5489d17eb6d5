package cli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"
)

func playerPath(sessionID, playerID string, parts ...string) string {
	return sessionPath(sessionID, append([]string{"players", url.PathEscape(playerID)}, parts...)...)
}

func newPlayerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "player",
		Aliases: []string{"p"},
		Short:   "Player commands",
	}

	cmd.AddCommand(newPlayerAddCmd())
	cmd.AddCommand(newPlayerGetCmd())
	cmd.AddCommand(newPlayerRemoveCmd())
	cmd.AddCommand(newPlayerCardCmd())

	return cmd
}

func newPlayerAddCmd() *cobra.Command {
	var name, contact string

	cmd := &cobra.Command{
		Use:   "add <session-id>",
		Short: "Add a player and deal a card (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerResult
			body := map[string]string{"display_name": name, "contact": contact}
			if err := client.Post(sessionPath(args[0], "players"), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Display name")
	cmd.Flags().StringVar(&contact, "contact", "", "Contact (e.g. email), unique within the session")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newPlayerGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id> <player-id>",
		Short: "Show a player and their card",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Player
			if err := client.Get(playerPath(args[0], args[1]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newPlayerRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session-id> <player-id>",
		Short: "Remove a player from a session (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Delete(playerPath(args[0], args[1]), &result); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			if cfg.Output == "json" {
				out.Print(result)
				return nil
			}
			out.PrintMessage(fmt.Sprintf("Removed player %s", args[1]))
			return nil
		},
	}
}

func newPlayerCardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "card <session-id> <player-id>",
		Short: "Deal a player a new card (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result PlayerResult
			if err := client.Post(playerPath(args[0], args[1], "card"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}
