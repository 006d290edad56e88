package engine

import "strings"

// Status is the outcome recorded for one routine attempt.
type Status string

const (
	StatusDone    Status = "done"
	StatusPartial Status = "partial"
	StatusLate    Status = "late"
	StatusMiss    Status = "miss"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusDone, StatusPartial, StatusLate, StatusMiss:
		return true
	default:
		return false
	}
}

// ParseStatus normalizes user input. Unknown values are returned as-is and
// fail IsValid; the reward table treats them as zero XP.
func ParseStatus(input string) Status {
	return Status(strings.TrimSpace(strings.ToLower(input)))
}

type Difficulty string

const (
	DifficultyEasy Difficulty = "easy"
	DifficultyMid  Difficulty = "mid"
	DifficultyHard Difficulty = "hard"
)

// DefaultDifficulty is used when a routine is created without one.
const DefaultDifficulty = DifficultyMid

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMid, DifficultyHard:
		return true
	default:
		return false
	}
}

// DefaultIconKey is the icon a routine gets when none is chosen.
const DefaultIconKey = "yoga"

// PetState is the gamified progress of one user.
type PetState struct {
	UserID             int64 `json:"-"`
	Level              int   `json:"level"`
	XP                 int   `json:"xp"`
	NextLevelThreshold int   `json:"next_level_threshold"`
}
