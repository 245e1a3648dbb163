package training

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNoActiveSplit is returned when an operation needs an active split and the
// user has not selected one.
var ErrNoActiveSplit = errors.New("no active split selected")

// sessionMark is a session index of a split together with the moment it was
// resolved, either by completing the workout or by skipping it.
type sessionMark struct {
	index int
	at    time.Time
}

// nextSessionIndex picks the next workout of a split from the most recent
// completion and the most recent skip. Whichever happened later decides;
// the index after it is next. Any index past the end of the plan resets to
// the first workout, including stale indices left behind by a shrunk split.
// A fresh split starts at index zero.
func nextSessionIndex(completed, skipped *sessionMark, planCount int) int {
	if planCount <= 0 {
		return 0
	}

	latest := completed
	if skipped != nil && (latest == nil || skipped.at.After(latest.at)) {
		latest = skipped
	}
	if latest == nil {
		return 0
	}

	next := latest.index + 1
	if next >= planCount {
		next = 0
	}
	return next
}

// NextWorkout resolves which planned workout of the active split the user
// should do next.
func (s *Service) NextWorkout(ctx context.Context) (PlannedWorkout, error) {
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return PlannedWorkout{}, fmt.Errorf("get settings: %w", err)
	}
	if settings.ActiveSplitID == nil {
		return PlannedWorkout{}, ErrNoActiveSplit
	}
	splitID := *settings.ActiveSplitID

	planCount, err := s.repo.plans.Count(ctx, splitID)
	if err != nil {
		return PlannedWorkout{}, fmt.Errorf("count planned workouts: %w", err)
	}

	var completed *sessionMark
	index, endTime, err := s.repo.sessions.LastCompletedSplitSession(ctx, splitID)
	switch {
	case err == nil:
		completed = &sessionMark{index: index, at: endTime}
	case errors.Is(err, ErrNotFound):
	default:
		return PlannedWorkout{}, fmt.Errorf("get last completed session: %w", err)
	}

	skipped := latestSkipMark(settings.SkippedSessions, splitID)

	nextIndex := nextSessionIndex(completed, skipped, planCount)

	plan, err := s.repo.plans.Get(ctx, splitID, nextIndex)
	if errors.Is(err, ErrNotFound) && nextIndex != 0 {
		// Splits with gaps in their indices fall back to the first workout.
		plan, err = s.repo.plans.Get(ctx, splitID, 0)
	}
	if err != nil {
		return PlannedWorkout{}, fmt.Errorf("get planned workout %d/%d: %w", splitID, nextIndex, err)
	}

	return plan, nil
}

// latestSkipMark finds the most recent skip of the given split among the
// user's skip records.
func latestSkipMark(skips []SkipRecord, splitID int64) *sessionMark {
	var latest *sessionMark
	for _, skip := range skips {
		if skip.SplitID == nil || *skip.SplitID != splitID {
			continue
		}
		if latest == nil || skip.SkippedAt.After(latest.at) {
			latest = &sessionMark{index: skip.Session, at: skip.SkippedAt}
		}
	}
	return latest
}

// RecordSkip notes that the user skipped a workout of a split. Only the most
// recent skip per split is retained so the resolver has a single candidate to
// weigh against the last completion.
func (s *Service) RecordSkip(ctx context.Context, splitID int64, sessionIndex int) error {
	settings, err := s.repo.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("get settings: %w", err)
	}

	skip := SkipRecord{
		SplitID:   &splitID,
		Session:   sessionIndex,
		SkippedAt: time.Now().UTC(),
	}

	pruned := make([]SkipRecord, 0, len(settings.SkippedSessions)+1)
	for _, existing := range settings.SkippedSessions {
		if existing.SplitID != nil && *existing.SplitID == splitID {
			continue
		}
		pruned = append(pruned, existing)
	}
	settings.SkippedSessions = append(pruned, skip)

	if err = s.repo.settings.Set(ctx, settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	return nil
}
