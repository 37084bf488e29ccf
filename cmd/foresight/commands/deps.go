package commands

import (
	"context"
	"fmt"

	"github.com/wonny/foresight/internal/runlog"
	"github.com/wonny/foresight/pkg/config"
	"github.com/wonny/foresight/pkg/database"
	"github.com/wonny/foresight/pkg/logger"
)

// initDeps loads config, builds the logger and, when DATABASE_URL is
// set, connects the run-log repository. The pipeline runs file-only
// without a database, so a missing URL is not an error.
func initDeps(ctx context.Context) (*config.Config, *logger.Logger, *database.DB, *runlog.Repository, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	if !cfg.Database.Enabled() {
		return cfg, log, nil, nil, nil
	}

	db, err := database.New(cfg)
	if err != nil {
		// DB는 감사 로그 전용 → 연결 실패가 학습을 막지 않는다
		log.WithError(err).Warn("Run log database unavailable, continuing without it")
		return cfg, log, nil, nil, nil
	}

	runs := runlog.NewRepository(db.Pool)
	if err := runs.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, nil, nil, fmt.Errorf("migrate run log schema: %w", err)
	}

	return cfg, log, db, runs, nil
}
