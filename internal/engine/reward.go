package engine

const (
	// BaseLevelThreshold is the XP needed to leave level 1.
	BaseLevelThreshold = 100

	// ThresholdStep is added to the threshold on every level up.
	ThresholdStep = 50
)

// Rewards holds the XP table and level curve.
type Rewards struct {
	XP            map[Status]int
	BaseThreshold int
	ThresholdStep int
}

func DefaultRewards() Rewards {
	return Rewards{
		XP: map[Status]int{
			StatusDone:    10,
			StatusLate:    6,
			StatusPartial: 5,
			StatusMiss:    0,
		},
		BaseThreshold: BaseLevelThreshold,
		ThresholdStep: ThresholdStep,
	}
}

// normalized fills zero fields with defaults.
func (r Rewards) normalized() Rewards {
	def := DefaultRewards()
	if r.XP == nil {
		r.XP = def.XP
	}
	if r.BaseThreshold < 1 {
		r.BaseThreshold = def.BaseThreshold
	}
	if r.ThresholdStep < 0 {
		r.ThresholdStep = def.ThresholdStep
	}
	return r
}

// XPFor returns the reward for a status. Unknown statuses earn nothing.
func (r Rewards) XPFor(status Status) int {
	gain := r.XP[status]
	if gain < 0 {
		return 0
	}
	return gain
}

// InitialPet is the state a user's pet starts in.
func (r Rewards) InitialPet(userID int64) PetState {
	return PetState{UserID: userID, Level: 1, XP: 0, NextLevelThreshold: r.BaseThreshold}
}

// ApplyXP adds gain and rolls over as many levels as it covers. The result
// satisfies 0 <= XP < NextLevelThreshold whenever the threshold is positive.
func ApplyXP(p PetState, gain int, step int) (PetState, bool) {
	if p.NextLevelThreshold < 1 {
		p.NextLevelThreshold = 1
	}
	p.XP += gain
	leveledUp := false
	for p.XP >= p.NextLevelThreshold {
		p.XP -= p.NextLevelThreshold
		p.Level++
		p.NextLevelThreshold += step
		leveledUp = true
	}
	return p, leveledUp
}
