// Command smoketest exercises a running server end to end: identify a user,
// start a free training session, and finish it. It exits non-zero on the
// first failure so it can gate deployments.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"time"

	"github.com/rafatrikUOC/soloprogress/internal/logging"
	"github.com/rafatrikUOC/soloprogress/internal/testhelpers"
)

const (
	readyTimeout    = 30 * time.Second
	readyPollPeriod = 500 * time.Millisecond
	scenarioTimeout = 10 * time.Second
)

type client struct {
	http *http.Client
	url  string
}

func newClient(url string) (*client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	return &client{
		http: &http.Client{Jar: jar},
		url:  url,
	}, nil
}

func (c *client) waitForReady(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, readyTimeout)
	defer cancel()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url+"/api/healthy", nil)
		if err != nil {
			return fmt.Errorf("create readiness request: %w", err)
		}
		resp, err := c.http.Do(req)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("server not ready: %w", ctx.Err())
		case <-time.After(readyPollPeriod):
		}
	}
}

func (c *client) postJSON(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("POST %s: unexpected status %d", path, resp.StatusCode)
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

func testSessionLifecycle(ctx context.Context, c *client) error {
	ctx, cancel := context.WithTimeout(ctx, scenarioTimeout)
	defer cancel()

	if err := c.postJSON(ctx, "/api/identify", map[string]string{
		"display_name": "smoketest",
	}, nil); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	var session struct {
		ID string `json:"id"`
	}
	if err := c.postJSON(ctx, "/api/sessions/start", map[string]string{
		"kind": "free",
	}, &session); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if session.ID == "" {
		return fmt.Errorf("start session: empty session id")
	}

	var summary struct {
		TotalSets int `json:"total_sets"`
	}
	if err := c.postJSON(ctx, "/api/sessions/"+session.ID+"/finish", map[string]string{}, &summary); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != 2 { //nolint:mnd // we expect only hostname to be passed as argument.
		logger.LogAttrs(ctx, slog.LevelError, "usage: smoketest <hostname>")
		os.Exit(1)
	}

	var (
		hostname = os.Args[1]
		start    = time.Now()
	)
	ctx = logging.WithAttrs(ctx, slog.String("hostname", hostname))
	url := "https://" + hostname
	if strings.Contains(hostname, "localhost") {
		url = "http://" + hostname
	}

	c, err := newClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = c.waitForReady(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}
	if err = testSessionLifecycle(ctx, c); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error testing session lifecycle", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Smoke test successful 🙌", slog.Duration("duration", time.Since(start)))
	os.Exit(0)
}
