package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"time"
)

const requestTimeout = 2 * time.Second

// healthBody is the part of the /api/v1/health response the check relies on.
type healthBody struct {
	Status string `json:"status"`
}

func main() {
	os.Exit(check())
}

func check() int {
	addr := normalizeAddr(os.Getenv("PORTFOLIO_LISTEN_ADDR"))

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	client := &http.Client{Timeout: requestTimeout}
	if err := fetchHealth(ctx, client, fmt.Sprintf("http://%s/api/v1/health", addr)); err != nil {
		fmt.Fprintln(os.Stderr, "healthcheck:", err)
		return 1
	}
	return 0
}

// fetchHealth reports an error unless url answers 200 with a JSON body whose
// status is "ok".
func fetchHealth(ctx context.Context, client *http.Client, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body); err != nil {
		return fmt.Errorf("decoding health response: %w", err)
	}
	if body.Status != "ok" {
		return fmt.Errorf("service reported status %q", body.Status)
	}
	return nil
}

// normalizeAddr ensures the healthcheck connects to loopback rather than the
// bind-all address. Containers bind 0.0.0.0 but the check runs in the same
// container, where loopback is reachable.
func normalizeAddr(raw string) string {
	const fallback = "127.0.0.1:8080"

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return fallback
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
