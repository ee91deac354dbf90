// Command healthcheck queries the overlay server's /health endpoint and exits non-zero
// unless the poll loop reports itself healthy. It is used as the container HEALTHCHECK.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const timeout = 5 * time.Second

// report is the subset of the /health body the check cares about.
type report struct {
	Status string `json:"status"`
	Poller struct {
		LastError string `json:"last_error"`
	} `json:"poller"`
}

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	err := check(ctx, http.DefaultClient, endpoint(os.Getenv("SERVER_PORT")))
	cancel()
	if err != nil {
		fmt.Fprintln(os.Stderr, "unhealthy:", err)
		os.Exit(1)
	}
}

// endpoint builds the local health URL for port, which defaults to 3000.
func endpoint(port string) string {
	if port == "" {
		port = "3000"
	}
	u := url.URL{Scheme: "http", Host: net.JoinHostPort("localhost", port), Path: "/health"}
	return u.String()
}

func check(ctx context.Context, c *http.Client, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	resp, err := c.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", target, err)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = resp.Body.Close()
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	var r report
	if err := json.Unmarshal(body, &r); err != nil {
		return fmt.Errorf("status %d, body is not a health report: %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusOK && r.Status == "ok":
		return nil
	case r.Status == "stale" && r.Poller.LastError != "":
		return fmt.Errorf("poller stale, last error: %s", r.Poller.LastError)
	case r.Status == "":
		return errors.New("health report has no status")
	default:
		return fmt.Errorf("status %d, service reported %q", resp.StatusCode, r.Status)
	}
}
