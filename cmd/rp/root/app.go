package root

import (
	"context"
	"io"
	"log/slog"

	"routinepet/internal/coach"
	"routinepet/internal/config"
	"routinepet/internal/engine"
	"routinepet/internal/logging"
	"routinepet/internal/storage"
)

// app bundles everything a command needs.
type app struct {
	cfg    *config.Config
	logger *slog.Logger
	svc    *engine.Service
	coach  *coach.Coach
}

func openApp(ctx context.Context) (*app, func(), error) {
	return openAppWithConsole(ctx, nil)
}

// openAppWithConsole is openApp with console logs sent to w (nil means stderr).
func openAppWithConsole(ctx context.Context, w io.Writer) (*app, func(), error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, nil, err
	}
	if flags.dbPath != "" {
		cfg.DB.Path = flags.dbPath
	}

	logger, closeLog, err := logging.New(logging.Options{Level: cfg.Log.Level, File: cfg.Log.File, Console: w})
	if err != nil {
		return nil, nil, err
	}

	path, err := storage.ResolveDBPath(cfg.DB.Path)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	db, err := storage.Open(ctx, path)
	if err != nil {
		_ = closeLog()
		return nil, nil, err
	}
	logger.Debug("db_opened", "path", path)

	svc := engine.NewService(db,
		engine.WithLogger(logger),
		engine.WithRewards(rewardsFromConfig(cfg.Rewards)),
	)
	ollama := coach.NewOllamaClient(cfg.Ollama.URL, cfg.Ollama.Model, cfg.Ollama.Timeout,
		coach.WithRateLimit(cfg.Ollama.RPS, cfg.Ollama.Burst),
		coach.WithOllamaLogger(logger),
	)

	cleanup := func() {
		_ = db.Close()
		_ = closeLog()
	}
	return &app{cfg: cfg, logger: logger, svc: svc, coach: coach.New(ollama, logger)}, cleanup, nil
}

func rewardsFromConfig(rc config.RewardsConfig) engine.Rewards {
	xp := make(map[engine.Status]int, len(rc.XP))
	for status, gain := range rc.XP {
		xp[engine.ParseStatus(status)] = gain
	}
	step := engine.ThresholdStep
	if rc.ThresholdStep != nil {
		step = *rc.ThresholdStep
	}
	return engine.Rewards{XP: xp, BaseThreshold: rc.BaseThreshold, ThresholdStep: step}
}
