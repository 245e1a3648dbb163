package flightrecorder_test

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/rafatrikUOC/soloprogress/internal/flightrecorder"
)

func newTestService(t *testing.T) (*flightrecorder.Service, string) {
	t.Helper()

	traceDir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	service, err := flightrecorder.New(flightrecorder.Config{
		Logger:    logger,
		MinAge:    0,
		MaxBytes:  0,
		TracesDir: traceDir,
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return service, traceDir
}

func TestService_StartStop(t *testing.T) {
	service, _ := newTestService(t)

	ctx := t.Context()
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	service.Stop(ctx)
}

func TestService_CaptureTimeoutTrace(t *testing.T) {
	service, traceDir := newTestService(t)

	ctx := t.Context()
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer service.Stop(ctx)

	service.CaptureTimeoutTrace(ctx)

	entries, err := os.ReadDir(traceDir)
	if err != nil {
		t.Fatalf("failed to read trace directory: %v", err)
	}
	if len(entries) == 0 {
		t.Fatal("expected a trace file to be created")
	}

	filename := entries[0].Name()
	if !strings.HasPrefix(filename, "timeout-") {
		t.Errorf("expected filename to start with 'timeout-', got %s", filename)
	}
	if !strings.HasSuffix(filename, ".trace") {
		t.Errorf("expected filename to end with '.trace', got %s", filename)
	}
}

func TestService_CooldownPreventsCapture(t *testing.T) {
	service, traceDir := newTestService(t)

	ctx := t.Context()
	if err := service.Start(ctx); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer service.Stop(ctx)

	service.CaptureTimeoutTrace(ctx)
	// The second capture lands inside the cooldown window.
	service.CaptureTimeoutTrace(ctx)

	entries, err := os.ReadDir(traceDir)
	if err != nil {
		t.Fatalf("failed to read trace directory: %v", err)
	}
	if len(entries) > 1 {
		t.Error("expected cooldown to prevent rapid successive captures")
	}
}
