package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
)

const healthPath = "/api/v1/health"

func newHealthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check server and storage health",
		Long: `Check server health.

Reports the server status and whether its session storage is reachable.
Exits non-zero when the server reports itself degraded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := fetchHealth(client)
			if err != nil {
				return err
			}

			NewOutput(cfg.Output).Print(result)
			if result.Status != "ok" {
				return fmt.Errorf("server is %s (storage %s)", result.Status, result.Storage)
			}
			return nil
		},
	}
}

// fetchHealth reads the health report. A degraded server answers 503 with
// the same body, which is decoded rather than treated as a failure.
func fetchHealth(c *Client) (HealthResult, error) {
	var result HealthResult
	err := c.Get(healthPath, &result)

	var httpErr *HTTPError
	if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusServiceUnavailable {
		if jsonErr := json.Unmarshal(httpErr.Body, &result); jsonErr == nil && result.Status != "" {
			return result, nil
		}
	}
	return result, err
}
