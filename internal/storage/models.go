package storage

type User struct {
	ID int64
}

type PetState struct {
	UserID             int64
	Level              int
	XP                 int
	NextLevelThreshold int
}

// CompletionLog is one routine execution attempt. Timestamps are stored verbatim.
type CompletionLog struct {
	ID        int64
	UserID    int64
	RoutineID int64
	Status    string
	StartedAt string
	EndedAt   string
	Note      *string
}

type Routine struct {
	ID         int64
	UserID     int64
	Title      string
	Time       string
	Days       []string
	Difficulty string
	Active     bool
	IconKey    string
}

// StatsCacheRow holds the raw JSON payloads; decoding is the reader's job.
type StatsCacheRow struct {
	UserID         int64
	WeekStart      string
	CompletionRate float64
	Streak         int
	BestSlotsJSON  string
	InsightsJSON   string
	TipsJSON       string
}
