// Package flightrecorder snapshots recent runtime activity when a request
// times out so that slow workout generation paths can be diagnosed after
// the fact.
package flightrecorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/trace"
	"sync/atomic"
	"time"
)

const (
	defaultMinAge   = 5 * time.Minute
	defaultMaxBytes = 64 * 1024 * 1024

	// captureCooldown bounds how often traces are written so a burst of
	// timeouts cannot fill the disk.
	captureCooldown = 30 * time.Minute
)

// Service keeps a runtime flight recorder running and writes its buffer to
// disk on demand.
type Service struct {
	logger      *slog.Logger
	recorder    *trace.FlightRecorder
	tracesDir   string
	lastCapture atomic.Int64 // unix seconds of the previous capture
}

// Config configures the flight recorder service.
type Config struct {
	Logger    *slog.Logger
	MinAge    time.Duration
	MaxBytes  uint64
	TracesDir string
}

func New(cfg Config) (*Service, error) {
	if cfg.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if cfg.TracesDir == "" {
		return nil, errors.New("traces directory is required")
	}

	if stat, err := os.Stat(cfg.TracesDir); err != nil {
		if err = os.MkdirAll(cfg.TracesDir, 0o700); err != nil {
			return nil, fmt.Errorf("create traces directory: %w", err)
		}
	} else if !stat.IsDir() {
		return nil, fmt.Errorf("traces path is not a directory: %s", cfg.TracesDir)
	}

	minAge := cfg.MinAge
	if minAge == 0 {
		minAge = defaultMinAge
	}
	maxBytes := cfg.MaxBytes
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}

	return &Service{
		logger: cfg.Logger,
		recorder: trace.NewFlightRecorder(trace.FlightRecorderConfig{
			MinAge:   minAge,
			MaxBytes: maxBytes,
		}),
		tracesDir:   cfg.TracesDir,
		lastCapture: atomic.Int64{},
	}, nil
}

func (s *Service) Start(ctx context.Context) error {
	if err := s.recorder.Start(); err != nil {
		return fmt.Errorf("start flight recorder: %w", err)
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder started",
		slog.String("traces_dir", s.tracesDir))
	return nil
}

func (s *Service) Stop(ctx context.Context) {
	s.recorder.Stop()
	s.logger.LogAttrs(ctx, slog.LevelInfo, "flight recorder stopped")
}

// CaptureTimeoutTrace writes the recorder buffer to a timestamped file.
// Captures within the cooldown window are dropped silently.
func (s *Service) CaptureTimeoutTrace(ctx context.Context) {
	now := time.Now().Unix()
	last := s.lastCapture.Load()

	if last > 0 && time.Duration(now-last)*time.Second < captureCooldown {
		s.logger.LogAttrs(ctx, slog.LevelDebug, "skipping trace capture during cooldown",
			slog.Time("last_capture", time.Unix(last, 0)))
		return
	}
	// Lost the race against a concurrent capture.
	if !s.lastCapture.CompareAndSwap(last, now) {
		return
	}

	filename := fmt.Sprintf("timeout-%s.trace", time.Unix(now, 0).UTC().Format("20060102-150405"))
	path := filepath.Join(s.tracesDir, filename)

	file, err := os.Create(path)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to create trace file",
			slog.String("file", path), slog.Any("error", err))
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelError, "failed to close trace file",
				slog.String("file", path), slog.Any("error", closeErr))
		}
	}()

	written, err := s.recorder.WriteTo(file)
	if err != nil {
		s.logger.LogAttrs(ctx, slog.LevelError, "failed to write trace",
			slog.String("file", path), slog.Any("error", err))
		return
	}

	s.logger.LogAttrs(ctx, slog.LevelWarn, "captured timeout trace",
		slog.String("file", path), slog.Int64("bytes", written))
}
