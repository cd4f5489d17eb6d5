package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newEventsCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "events <session-id>",
		Short: "Stream live events from a session",
		Long: `Connect to the session's SSE endpoint and stream events in real-time.

Events include:
  - connected: Session snapshot sent when the stream opens
  - ball-drawn: A new ball was drawn
  - session-updated: Session snapshot after a change
  - session-finished: A winner was declared or the pool ran out
  - session-reset: A fresh game started
  - bingo-claimed: A player called bingo
  - player-joined / player-removed / card-changed: Roster changes
  - presence-changed: A player came online or went offline
  - strategy-changed: The win strategy changed
  - session-deleted: The session was deleted

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return streamEvents(cmd.Context(), args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// SSEEvent represents a parsed SSE event
type SSEEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func streamEvents(parent context.Context, sessionID string, jsonOutput bool) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	url := strings.TrimSuffix(cfg.ServerURL, "/") + sessionPath(sessionID, "events")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	if cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cfg.Token)
	}

	// No timeout for SSE
	resp, err := (&http.Client{}).Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		var errResp ErrorResponse
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err == nil && errResp.Error.Code != "" {
			return &errResp.Error
		}
		return fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if !jsonOutput {
		fmt.Printf("Connected to session %s\n", sessionID)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	var currentEvent string
	var dataLines []string

	for scanner.Scan() {
		line := scanner.Text()

		switch {
		case strings.HasPrefix(line, ":"):
			// keepalive comment
		case strings.HasPrefix(line, "event: "):
			currentEvent = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			dataLines = append(dataLines, strings.TrimPrefix(line, "data: "))
		case line == "":
			if currentEvent != "" {
				printEvent(currentEvent, strings.Join(dataLines, "\n"), jsonOutput)
			}
			currentEvent = ""
			dataLines = nil
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("stream error: %w", err)
	}

	if !jsonOutput {
		fmt.Println("Disconnected")
	}
	return nil
}

func printEvent(event, data string, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		raw := json.RawMessage(data)
		if !json.Valid(raw) {
			raw, _ = json.Marshal(data)
		}
		jsonData, _ := json.Marshal(SSEEvent{Time: now, Event: event, Data: raw})
		fmt.Println(string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	displayData := strings.ReplaceAll(data, "\n", " ")
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", timestamp, event, displayData)
}
