// Package status implements the "status" subcommand: a read-only query
// against a running instance's admin API, rendered as a table.
package status

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type scraperStatus struct {
	Running  bool `json:"running"`
	Adapters []struct {
		Adapter   string    `json:"adapter"`
		SessionID string    `json:"sessionId"`
		StartedAt time.Time `json:"startedAt"`
	} `json:"adapters"`
}

// Command builds the "status" subcommand.
func Command() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Query a running instance's scraper status",
		RunE: func(_ *cobra.Command, _ []string) error {
			return run(addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "http://localhost:8080", "base URL of the running admin API")
	return cmd
}

func run(addr string) error {
	resp, err := http.Get(addr + "/api/scraper/status")
	if err != nil {
		return fmt.Errorf("status: request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("status: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("status: server returned %d: %s", resp.StatusCode, string(body))
	}

	var envelope struct {
		Data scraperStatus `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("status: decode response: %w", err)
	}
	st := envelope.Data

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Adapter", "Session ID", "Started At"})
	for _, a := range st.Adapters {
		t.AppendRow(table.Row{a.Adapter, a.SessionID, a.StartedAt.Format(time.RFC3339)})
	}
	fmt.Printf("running: %v\n", st.Running)
	t.Render()
	return nil
}
