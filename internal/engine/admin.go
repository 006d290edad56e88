package engine

import (
	"context"

	"routinepet/internal/storage"
)

// PetPatch overwrites the non-nil fields of a pet without any rollover.
type PetPatch struct {
	Level              *int `json:"level"`
	XP                 *int `json:"xp"`
	NextLevelThreshold *int `json:"next_level_threshold"`
}

// LogEntry is a completion event as shown to operators.
type LogEntry struct {
	ID        int64   `json:"id"`
	UserID    int64   `json:"user_id"`
	RoutineID int64   `json:"routine_id"`
	Status    Status  `json:"status"`
	StartedAt string  `json:"started_at"`
	EndedAt   string  `json:"ended_at"`
	Note      *string `json:"note"`
}

// Pet returns the user's pet, creating it at level 1 on first access.
func (s *Service) Pet(ctx context.Context, userID int64) (*PetState, error) {
	if userID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	var out PetState
	err := s.inTx(ctx, func(r txRepos) error {
		stored, err := s.petForUpdate(ctx, r, userID)
		if err != nil {
			return err
		}
		out = fromStoragePet(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Service) PatchPet(ctx context.Context, userID int64, patch PetPatch) (*PetState, error) {
	if userID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	if patch.Level != nil && *patch.Level < 1 {
		return nil, invalid("level", "must be >= 1")
	}
	if patch.XP != nil && *patch.XP < 0 {
		return nil, invalid("xp", "must be >= 0")
	}
	if patch.NextLevelThreshold != nil && *patch.NextLevelThreshold < 1 {
		return nil, invalid("next_level_threshold", "must be >= 1")
	}

	var out PetState
	err := s.inTx(ctx, func(r txRepos) error {
		stored, err := s.petForUpdate(ctx, r, userID)
		if err != nil {
			return err
		}
		if patch.Level != nil {
			stored.Level = *patch.Level
		}
		if patch.XP != nil {
			stored.XP = *patch.XP
		}
		if patch.NextLevelThreshold != nil {
			stored.NextLevelThreshold = *patch.NextLevelThreshold
		}
		if err := r.pets.Update(ctx, stored); err != nil {
			return err
		}
		out = fromStoragePet(stored)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("pet_patched", "user_id", userID, "level", out.Level, "xp", out.XP, "next_level_threshold", out.NextLevelThreshold)
	return &out, nil
}

// RecentLogs lists events across all users, newest first. A limit outside
// 1..500 is clamped; zero or less means the default of 100.
func (s *Service) RecentLogs(ctx context.Context, limit int) ([]LogEntry, error) {
	stored, err := s.logs.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]LogEntry, 0, len(stored))
	for _, l := range stored {
		out = append(out, toLogEntry(l))
	}
	return out, nil
}

func toLogEntry(l storage.CompletionLog) LogEntry {
	return LogEntry{
		ID:        l.ID,
		UserID:    l.UserID,
		RoutineID: l.RoutineID,
		Status:    Status(l.Status),
		StartedAt: l.StartedAt,
		EndedAt:   l.EndedAt,
		Note:      l.Note,
	}
}
