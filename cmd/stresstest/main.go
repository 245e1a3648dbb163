// Command stresstest drives many concurrent users through the workout API to
// find contention in the SQLite write path and slow generation queries. Each
// user identifies, plans a split day, runs a session with a completed set,
// and asks for the next workout. The test fails when the success rate drops
// below the threshold.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/rafatrikUOC/soloprogress/internal/logging"
	"github.com/rafatrikUOC/soloprogress/internal/testhelpers"
	"golang.org/x/sync/errgroup"
)

const (
	numUsers                = 10
	maxConcurrentOperations = 20
	readyTimeout            = 30 * time.Second
	readyPollPeriod         = 500 * time.Millisecond
	scenarioTimeout         = 30 * time.Second
	successRateThreshold    = 95.0
	percentageMultiplier    = 100
	expectedArgsCount       = 2

	stressSplitID = 1
	baseReps      = 8
	repsRange     = 8
	baseWeight    = 15.0
	weightRange   = 20
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

func (c *client) do(ctx context.Context, method, path string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", path, err)
		}
	}
	return nil
}

// workoutScenario runs one user through the full session lifecycle against a
// planned split day.
func workoutScenario(ctx context.Context, url string, userIndex int, logger *slog.Logger) error {
	c, err := newClient(url)
	if err != nil {
		return fmt.Errorf("create client for user %d: %w", userIndex, err)
	}

	if err = c.do(ctx, http.MethodPost, "/api/identify", map[string]string{
		"display_name": fmt.Sprintf("stress-user-%d-%d", userIndex, time.Now().UnixNano()),
	}, nil); err != nil {
		return fmt.Errorf("identify: %w", err)
	}

	activeSplitID := int64(stressSplitID)
	if err = c.do(ctx, http.MethodPost, "/api/settings", map[string]any{
		"fitness_goal":           "hypertrophy",
		"active_split_id":        activeSplitID,
		"workout_minutes":        60,
		"compound_rest_seconds":  180,
		"isolation_rest_seconds": 90,
		"excluded_exercises":     []int64{},
	}, nil); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	var exercises []struct {
		ID int64 `json:"id"`
	}
	if err = c.do(ctx, http.MethodGet, "/api/exercises", nil, &exercises); err != nil {
		return fmt.Errorf("list exercises: %w", err)
	}
	if len(exercises) == 0 {
		return errors.New("exercise catalog is empty")
	}

	planPath := fmt.Sprintf("/api/workouts/%d/0", activeSplitID)
	if err = c.do(ctx, http.MethodPut, planPath, map[string]any{
		"title": "Stress Day",
		"exercises": []map[string]any{
			{"exercise_id": exercises[0].ID, "overrides": map[string]any{}},
		},
	}, nil); err != nil {
		return fmt.Errorf("save planned workout: %w", err)
	}

	var session struct {
		ID        string `json:"id"`
		Exercises []struct {
			ExerciseID int64 `json:"exercise_id"`
			Series     []struct {
				SetNumber int `json:"set_number"`
			} `json:"series"`
		} `json:"exercises"`
	}
	if err = c.do(ctx, http.MethodPost, "/api/sessions/start", map[string]any{
		"kind":          "split",
		"split_id":      activeSplitID,
		"session_index": 0,
	}, &session); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if len(session.Exercises) == 0 || len(session.Exercises[0].Series) == 0 {
		return errors.New("session materialized without series")
	}

	// Random-ish set data to simulate real usage.
	completePath := fmt.Sprintf("/api/sessions/%s/exercises/%d/series/%d/complete",
		session.ID, session.Exercises[0].ExerciseID, session.Exercises[0].Series[0].SetNumber)
	if err = c.do(ctx, http.MethodPost, completePath, map[string]any{
		"reps":   baseReps + time.Now().UnixNano()%repsRange,
		"weight": baseWeight + float64(time.Now().UnixNano()%weightRange),
	}, nil); err != nil {
		return fmt.Errorf("complete set: %w", err)
	}

	var summary struct {
		TotalSets int `json:"total_sets"`
	}
	if err = c.do(ctx, http.MethodPost, "/api/sessions/"+session.ID+"/finish", map[string]string{}, &summary); err != nil {
		return fmt.Errorf("finish session: %w", err)
	}
	if summary.TotalSets != 1 {
		return fmt.Errorf("summary reported %d completed sets, want 1", summary.TotalSets)
	}

	// Fetching the next workout is the common operation after finishing.
	if err = c.do(ctx, http.MethodGet, "/api/workouts/next", nil, nil); err != nil {
		return fmt.Errorf("next workout: %w", err)
	}

	logger.LogAttrs(ctx, slog.LevelDebug, "Workout scenario completed",
		slog.Int("user_index", userIndex))
	return nil
}

// runLoadTest launches all scenarios concurrently and checks the success rate.
func runLoadTest(ctx context.Context, url string, logger *slog.Logger) error {
	logger.LogAttrs(ctx, slog.LevelInfo, "Starting load test", slog.Int("num_users", numUsers))

	var successCount, failureCount atomic.Int64

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentOperations)

	for i := range numUsers {
		g.Go(func() error {
			scenarioCtx, cancel := context.WithTimeout(ctx, scenarioTimeout)
			defer cancel()

			if err := workoutScenario(scenarioCtx, url, i, logger); err != nil {
				failureCount.Add(1)
				// Individual failures count against the rate but do not stop
				// the other scenarios.
				logger.LogAttrs(scenarioCtx, slog.LevelWarn, "Scenario failed",
					slog.Int("user_index", i),
					slog.Any("error", err))
				return nil
			}

			successCount.Add(1)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("load test failed: %w", err)
	}

	successRate := float64(successCount.Load()) / float64(numUsers) * percentageMultiplier

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed",
		slog.Int64("successful", successCount.Load()),
		slog.Int64("failed", failureCount.Load()),
		slog.Float64("success_rate", successRate))

	if successRate < successRateThreshold {
		return fmt.Errorf("load test failed: success rate %.1f%% below threshold", successRate)
	}
	return nil
}

func main() {
	logger := testhelpers.NewLogger(os.Stdout)
	ctx := context.Background()

	if len(os.Args) != expectedArgsCount {
		logger.LogAttrs(ctx, slog.LevelError, "usage: stresstest <hostname>")
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

	readinessClient, err := newClient(url)
	if err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "error creating client", slog.Any("error", err))
		os.Exit(1)
	}
	if err = readinessClient.waitForReady(ctx); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "server not ready in time", slog.Any("error", err))
		os.Exit(1)
	}

	if err = runLoadTest(ctx, url, logger); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "load test failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.LogAttrs(ctx, slog.LevelInfo, "Load test completed successfully 🙌",
		slog.Duration("total_duration", time.Since(start)))
}
