package engine

import (
	"context"

	"routinepet/internal/storage"
)

// Streak counts the user's consecutive most recent "done" events.
func (s *Service) Streak(ctx context.Context, userID int64) (int, error) {
	return streakFrom(ctx, s.logs, userID)
}

func streakFrom(ctx context.Context, logs *storage.LogRepo, userID int64) (int, error) {
	recent, err := logs.Recent(ctx, userID, StreakWindow)
	if err != nil {
		return 0, err
	}
	return countStreak(recent), nil
}

// countStreak walks newest first and stops at the first non-done status.
// Events with an unreadable end time are ignored.
func countStreak(newestFirst []storage.CompletionLog) int {
	streak := 0
	for _, l := range newestFirst {
		if _, err := storage.ParseTimestamp(l.EndedAt); err != nil {
			continue
		}
		if Status(l.Status) != StatusDone {
			break
		}
		streak++
	}
	return streak
}
