package engine

import (
	"context"
	"strings"
	"time"

	"routinepet/internal/storage"
)

type Routine struct {
	ID         int64      `json:"id"`
	UserID     int64      `json:"user_id"`
	Title      string     `json:"title"`
	Time       string     `json:"time"`
	Days       []string   `json:"days"`
	Difficulty Difficulty `json:"difficulty"`
	Active     bool       `json:"active"`
	IconKey    string     `json:"icon_key"`
}

// RoutineInput creates a routine. Nil Active means active.
type RoutineInput struct {
	UserID     int64      `json:"user_id"`
	Title      string     `json:"title"`
	Time       string     `json:"time"`
	Days       []string   `json:"days"`
	Difficulty Difficulty `json:"difficulty"`
	Active     *bool      `json:"active"`
	IconKey    string     `json:"icon_key"`
}

// RoutinePatch changes only the non-nil fields.
type RoutinePatch struct {
	Title      *string     `json:"title"`
	Time       *string     `json:"time"`
	Days       *[]string   `json:"days"`
	Difficulty *Difficulty `json:"difficulty"`
	Active     *bool       `json:"active"`
	IconKey    *string     `json:"icon_key"`
}

func (s *Service) CreateRoutine(ctx context.Context, in RoutineInput) (*Routine, error) {
	if in.UserID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	rt := Routine{
		UserID:     in.UserID,
		Title:      strings.TrimSpace(in.Title),
		Time:       strings.TrimSpace(in.Time),
		Days:       normalizeDays(in.Days),
		Difficulty: in.Difficulty,
		Active:     true,
		IconKey:    strings.TrimSpace(in.IconKey),
	}
	if rt.Difficulty == "" {
		rt.Difficulty = DefaultDifficulty
	}
	if rt.IconKey == "" {
		rt.IconKey = DefaultIconKey
	}
	if in.Active != nil {
		rt.Active = *in.Active
	}
	if err := validateRoutine(rt); err != nil {
		return nil, err
	}

	err := s.inTx(ctx, func(r txRepos) error {
		if err := r.users.Ensure(ctx, rt.UserID); err != nil {
			return err
		}
		id, err := r.routines.Insert(ctx, toStorageRoutine(rt))
		if err != nil {
			return err
		}
		rt.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("routine_created", "routine_id", rt.ID, "user_id", rt.UserID, "title", rt.Title)
	return &rt, nil
}

func (s *Service) GetRoutine(ctx context.Context, id int64) (*Routine, error) {
	stored, err := s.routines.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if stored == nil {
		return nil, ErrNotFound
	}
	rt := fromStorageRoutine(*stored)
	return &rt, nil
}

func (s *Service) ListRoutines(ctx context.Context, userID int64) ([]Routine, error) {
	if userID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	stored, err := s.routines.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]Routine, 0, len(stored))
	for _, rt := range stored {
		out = append(out, fromStorageRoutine(rt))
	}
	return out, nil
}

func (s *Service) UpdateRoutine(ctx context.Context, id int64, patch RoutinePatch) (*Routine, error) {
	var out *Routine
	err := s.inTx(ctx, func(r txRepos) error {
		repo := r.routines
		stored, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		if stored == nil {
			return ErrNotFound
		}
		rt := fromStorageRoutine(*stored)
		applyPatch(&rt, patch)
		if err := validateRoutine(rt); err != nil {
			return err
		}
		if err := repo.Update(ctx, toStorageRoutine(rt)); err != nil {
			return err
		}
		out = &rt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Service) DeleteRoutine(ctx context.Context, id int64) error {
	removed, err := s.routines.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	s.logger.Info("routine_deleted", "routine_id", id)
	return nil
}

func applyPatch(rt *Routine, p RoutinePatch) {
	if p.Title != nil {
		rt.Title = strings.TrimSpace(*p.Title)
	}
	if p.Time != nil {
		rt.Time = strings.TrimSpace(*p.Time)
	}
	if p.Days != nil {
		rt.Days = normalizeDays(*p.Days)
	}
	if p.Difficulty != nil {
		rt.Difficulty = *p.Difficulty
	}
	if p.Active != nil {
		rt.Active = *p.Active
	}
	if p.IconKey != nil {
		rt.IconKey = strings.TrimSpace(*p.IconKey)
		if rt.IconKey == "" {
			rt.IconKey = DefaultIconKey
		}
	}
}

func validateRoutine(rt Routine) error {
	if rt.Title == "" {
		return invalid("title", "is required")
	}
	if _, err := time.Parse("15:04", rt.Time); err != nil {
		return invalid("time", "must be HH:MM")
	}
	if !rt.Difficulty.IsValid() {
		return invalid("difficulty", "must be easy, mid, or hard")
	}
	return nil
}

func normalizeDays(days []string) []string {
	out := make([]string, 0, len(days))
	for _, d := range days {
		if d = strings.TrimSpace(d); d != "" {
			out = append(out, d)
		}
	}
	return out
}

func toStorageRoutine(rt Routine) storage.Routine {
	return storage.Routine{
		ID:         rt.ID,
		UserID:     rt.UserID,
		Title:      rt.Title,
		Time:       rt.Time,
		Days:       rt.Days,
		Difficulty: string(rt.Difficulty),
		Active:     rt.Active,
		IconKey:    rt.IconKey,
	}
}

func fromStorageRoutine(rt storage.Routine) Routine {
	return Routine{
		ID:         rt.ID,
		UserID:     rt.UserID,
		Title:      rt.Title,
		Time:       rt.Time,
		Days:       rt.Days,
		Difficulty: Difficulty(rt.Difficulty),
		Active:     rt.Active,
		IconKey:    rt.IconKey,
	}
}
