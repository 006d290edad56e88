package engine

import (
	"context"
	"database/sql"
	"io"
	"log/slog"

	"routinepet/internal/storage"
)

// StreakWindow is how many recent events the streak walk looks at.
const StreakWindow = 30

type Service struct {
	db       *sql.DB
	users    *storage.UserRepo
	pets     *storage.PetRepo
	logs     *storage.LogRepo
	routines *storage.RoutineRepo
	stats    *storage.StatsRepo

	clock   Clock
	rewards Rewards
	logger  *slog.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

func WithRewards(r Rewards) Option {
	return func(s *Service) { s.rewards = r.normalized() }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func NewService(db *sql.DB, opts ...Option) *Service {
	s := &Service{
		db:       db,
		users:    storage.NewUserRepo(db),
		pets:     storage.NewPetRepo(db),
		logs:     storage.NewLogRepo(db),
		routines: storage.NewRoutineRepo(db),
		stats:    storage.NewStatsRepo(db),
		clock:    RealClock{},
		rewards:  DefaultRewards(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) LogRepo() *storage.LogRepo         { return s.logs }
func (s *Service) RoutineRepo() *storage.RoutineRepo { return s.routines }
func (s *Service) Clock() Clock                      { return s.clock }
func (s *Service) Rewards() Rewards                  { return s.rewards }

// txRepos are the repos bound to one transaction.
type txRepos struct {
	users    *storage.UserRepo
	pets     *storage.PetRepo
	logs     *storage.LogRepo
	routines *storage.RoutineRepo
	stats    *storage.StatsRepo
}

func (s *Service) inTx(ctx context.Context, fn func(r txRepos) error) error {
	return storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		return fn(txRepos{
			users:    s.users.WithTx(tx),
			pets:     s.pets.WithTx(tx),
			logs:     s.logs.WithTx(tx),
			routines: s.routines.WithTx(tx),
			stats:    s.stats.WithTx(tx),
		})
	})
}

// EnsureUser provisions the user row and its pet.
func (s *Service) EnsureUser(ctx context.Context, userID int64) error {
	if userID < 1 {
		return invalid("user_id", "must be >= 1")
	}
	return s.inTx(ctx, func(r txRepos) error {
		_, err := s.petForUpdate(ctx, r, userID)
		return err
	})
}

func (s *Service) petForUpdate(ctx context.Context, r txRepos, userID int64) (*storage.PetState, error) {
	if err := r.users.Ensure(ctx, userID); err != nil {
		return nil, err
	}
	initial := s.rewards.InitialPet(userID)
	return r.pets.GetOrCreate(ctx, userID, toStoragePet(initial))
}

func toStoragePet(p PetState) storage.PetState {
	return storage.PetState{UserID: p.UserID, Level: p.Level, XP: p.XP, NextLevelThreshold: p.NextLevelThreshold}
}

func fromStoragePet(p *storage.PetState) PetState {
	return PetState{UserID: p.UserID, Level: p.Level, XP: p.XP, NextLevelThreshold: p.NextLevelThreshold}
}
