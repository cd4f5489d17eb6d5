package cli

import (
	"fmt"
	"net/url"
	"time"

	"github.com/spf13/cobra"
)

func sessionPath(id string, parts ...string) string {
	p := "/api/v1/sessions/" + url.PathEscape(id)
	for _, part := range parts {
		p += "/" + part
	}
	return p
}

func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Aliases: []string{"s"},
		Short:   "Session commands",
	}

	cmd.AddCommand(newSessionCreateCmd())
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionGetCmd())
	cmd.AddCommand(newSessionUpdateCmd())
	cmd.AddCommand(newSessionDeleteCmd())
	cmd.AddCommand(newSessionDrawCmd())
	cmd.AddCommand(newSessionResetCmd())
	cmd.AddCommand(newSessionStrategyCmd())
	cmd.AddCommand(newSessionBingoCmd())

	return cmd
}

func parseScheduledAt(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil, fmt.Errorf("--at must be an RFC3339 time: %w", err)
	}
	return &t, nil
}

func newSessionCreateCmd() *cobra.Command {
	var (
		name     string
		strategy string
		gameType int
		at       string
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new session (host only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduledAt, err := parseScheduledAt(at)
			if err != nil {
				return err
			}

			body := map[string]any{"name": name}
			if scheduledAt != nil {
				body["scheduled_at"] = scheduledAt
			}
			if strategy != "" {
				body["strategy"] = strategy
			}
			if cmd.Flags().Changed("game-type") {
				body["game_type"] = gameType
			}

			var result Session
			if err := client.Post("/api/v1/sessions", body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Session name")
	cmd.Flags().StringVar(&strategy, "strategy", "", "Win strategy: full_card, diagonal, corners, frame, horizontal_line, vertical_line")
	cmd.Flags().IntVar(&gameType, "game-type", 0, "Numeric game type (0 full card, 1 diagonal, 2 corners, 3 frame)")
	cmd.Flags().StringVar(&at, "at", "", "Scheduled start time (RFC3339)")
	_ = cmd.MarkFlagRequired("name")
	cmd.MarkFlagsMutuallyExclusive("strategy", "game-type")

	return cmd
}

func newSessionListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List sessions (host only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var result SessionList
			if err := client.Get("/api/v1/sessions", &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <session-id>",
		Short: "Show a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Get(sessionPath(args[0]), &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionUpdateCmd() *cobra.Command {
	var name, at string

	cmd := &cobra.Command{
		Use:   "update <session-id>",
		Short: "Rename or reschedule a session (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduledAt, err := parseScheduledAt(at)
			if err != nil {
				return err
			}
			if name == "" && scheduledAt == nil {
				return fmt.Errorf("nothing to update: pass --name or --at")
			}

			body := map[string]any{}
			if name != "" {
				body["name"] = name
			}
			if scheduledAt != nil {
				body["scheduled_at"] = scheduledAt
			}

			var result Session
			if err := client.Patch(sessionPath(args[0]), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New session name")
	cmd.Flags().StringVar(&at, "at", "", "New scheduled start time (RFC3339)")

	return cmd
}

func newSessionDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <session-id>",
		Short: "Delete a session and its players (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.Delete(sessionPath(args[0]), nil); err != nil {
				return err
			}

			NewOutput(cfg.Output).PrintMessage(fmt.Sprintf("Deleted session %s", args[0]))
			return nil
		},
	}
}

func newSessionDrawCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "draw <session-id>",
		Short: "Draw the next ball (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result DrawResult
			if err := client.Post(sessionPath(args[0], "draw"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset <session-id>",
		Short: "Start a fresh game with the same players and cards (host only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			if err := client.Post(sessionPath(args[0], "reset"), nil, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionStrategyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "strategy <session-id> <strategy>",
		Short: "Change the win strategy (host only)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result Session
			body := map[string]string{"strategy": args[1]}
			if err := client.Put(sessionPath(args[0], "strategy"), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}
}

func newSessionBingoCmd() *cobra.Command {
	var playerID string

	cmd := &cobra.Command{
		Use:   "bingo <session-id>",
		Short: "Claim bingo",
		Long: `Claim bingo in a session.

Players claim for themselves. Hosts verify a claim on behalf of a player
with --player.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var body any
			if playerID != "" {
				body = map[string]string{"player_id": playerID}
			}

			var result ClaimResult
			if err := client.Post(sessionPath(args[0], "bingo"), body, &result); err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			return nil
		},
	}

	cmd.Flags().StringVar(&playerID, "player", "", "Player to claim for (hosts only)")

	return cmd
}
