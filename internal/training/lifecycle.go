package training

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// resolveOpenSession returns the user's open session for a context, creating
// one when none exists. Open sessions bound to a different context are
// discarded first, so the user holds at most one open session per context and
// switching contexts abandons the unfinished work.
//
// The cleanup and the create are separate statements. A concurrent start for
// the same user can slip between them and leave two open sessions briefly;
// the next start cleans the older one up.
func (s *Service) resolveOpenSession(
	ctx context.Context,
	target Context,
	build func() ([]TrainingExercise, error),
) (TrainingSession, error) {
	open, err := s.repo.sessions.ListOpen(ctx)
	if err != nil {
		return TrainingSession{}, fmt.Errorf("list open sessions: %w", err)
	}

	var existing *TrainingSession
	for i := range open {
		if open[i].Context.Equal(target) {
			if existing == nil {
				existing = &open[i]
			}
			continue
		}

		if err = s.repo.sessions.Delete(ctx, open[i].ID); err != nil {
			return TrainingSession{}, fmt.Errorf("delete stale session %s: %w", open[i].ID, err)
		}
		s.logger.LogAttrs(ctx, slog.LevelInfo, "discarded stale open session",
			slog.String("session_id", open[i].ID),
			slog.String("context_kind", string(open[i].Context.Kind)))
	}

	if existing != nil {
		return *existing, nil
	}

	exercises, err := build()
	if err != nil {
		return TrainingSession{}, err
	}

	now := time.Now().UTC()
	session := TrainingSession{
		ID:        uuid.NewString(),
		Context:   target,
		CreatedAt: now,
		StartTime: &now,
		Exercises: exercises,
	}

	if err = s.repo.sessions.Create(ctx, session); err != nil {
		return TrainingSession{}, fmt.Errorf("create session: %w", err)
	}

	return s.repo.sessions.Get(ctx, session.ID)
}
