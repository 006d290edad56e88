package engine

import (
	"context"
	"strings"

	"routinepet/internal/storage"
)

const (
	HintLevelUp   = "Level up! A new reward is on its way."
	HintRetry     = "You missed this one, but you can always start again."
	HintGreatJob  = "Perfect! Keep this rhythm going."
	HintKeepGoing = "Push a little more and you'll reach your goal soon."
)

// RewardResult is the outcome of the reward step.
type RewardResult struct {
	Pet       PetState
	XPGain    int
	LeveledUp bool
}

// ApplyCompletion credits a completion with the given status to the user's pet.
func (s *Service) ApplyCompletion(ctx context.Context, userID int64, status Status) (*RewardResult, error) {
	if userID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	var res *RewardResult
	err := s.inTx(ctx, func(r txRepos) error {
		var err error
		res, err = s.applyReward(ctx, r, userID, status)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) applyReward(ctx context.Context, r txRepos, userID int64, status Status) (*RewardResult, error) {
	stored, err := s.petForUpdate(ctx, r, userID)
	if err != nil {
		return nil, err
	}
	gain := s.rewards.XPFor(status)
	next, leveledUp := ApplyXP(fromStoragePet(stored), gain, s.rewards.ThresholdStep)
	updated := toStoragePet(next)
	if err := r.pets.Update(ctx, &updated); err != nil {
		return nil, err
	}
	return &RewardResult{Pet: next, XPGain: gain, LeveledUp: leveledUp}, nil
}

type CompleteInput struct {
	UserID    int64
	RoutineID int64
	Status    Status
	StartedAt string
	EndedAt   string
	Note      *string
}

type CompleteResult struct {
	Pet       PetState
	XPGain    int
	LeveledUp bool
	Streak    int
	Hint      string
	LogID     int64
}

// CompleteRoutine rewards the pet, records the event, and recomputes the
// streak in one transaction. Nothing is kept if any step fails.
func (s *Service) CompleteRoutine(ctx context.Context, in CompleteInput) (*CompleteResult, error) {
	if in.UserID < 1 {
		return nil, invalid("user_id", "must be >= 1")
	}
	if in.RoutineID < 1 {
		return nil, invalid("routine_id", "must be >= 1")
	}
	if strings.TrimSpace(in.StartedAt) == "" {
		return nil, invalid("started_at", "is required")
	}
	if strings.TrimSpace(in.EndedAt) == "" {
		return nil, invalid("ended_at", "is required")
	}

	var out *CompleteResult
	err := s.inTx(ctx, func(r txRepos) error {
		reward, err := s.applyReward(ctx, r, in.UserID, in.Status)
		if err != nil {
			return err
		}
		logID, err := r.logs.Insert(ctx, storage.CompletionLog{
			UserID:    in.UserID,
			RoutineID: in.RoutineID,
			Status:    string(in.Status),
			StartedAt: in.StartedAt,
			EndedAt:   in.EndedAt,
			Note:      in.Note,
		})
		if err != nil {
			return err
		}
		streak, err := streakFrom(ctx, r.logs, in.UserID)
		if err != nil {
			return err
		}
		out = &CompleteResult{
			Pet:       reward.Pet,
			XPGain:    reward.XPGain,
			LeveledUp: reward.LeveledUp,
			Streak:    streak,
			Hint:      CoachHint(in.Status, reward.XPGain, reward.LeveledUp),
			LogID:     logID,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("routine_completed",
		"user_id", in.UserID,
		"routine_id", in.RoutineID,
		"status", string(in.Status),
		"xp_gain", out.XPGain,
		"level", out.Pet.Level,
		"leveled_up", out.LeveledUp,
		"streak", out.Streak,
	)
	return out, nil
}

// CoachHint picks the single canned hint shown after a completion.
func CoachHint(status Status, xpGain int, leveledUp bool) string {
	switch {
	case leveledUp:
		return HintLevelUp
	case status == StatusMiss:
		return HintRetry
	case xpGain >= 10:
		return HintGreatJob
	default:
		return HintKeepGoing
	}
}
