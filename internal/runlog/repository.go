package runlog

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/foresight/internal/contracts"
)

// Repository 학습 실행 감사 기록 저장소
// ⭐ SSOT: training_runs 테이블 접근은 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Schema is the DDL for the run log table
const Schema = `
CREATE SCHEMA IF NOT EXISTS pipeline;
CREATE TABLE IF NOT EXISTS pipeline.training_runs (
	id             BIGSERIAL PRIMARY KEY,
	model          TEXT NOT NULL,
	dataset        TEXT NOT NULL,
	args           TEXT NOT NULL DEFAULT '',
	trained        BOOLEAN NOT NULL,
	final_loss     DOUBLE PRECISION NOT NULL DEFAULT 0,
	final_val_loss DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_balance    DOUBLE PRECISION NOT NULL DEFAULT 0,
	sim_trades     INTEGER NOT NULL DEFAULT 0,
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Migrate creates the run log table when missing
func (r *Repository) Migrate(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, Schema)
	return err
}

// SaveRun 실행 기록 저장
func (r *Repository) SaveRun(ctx context.Context, run contracts.RunRecord) (int64, error) {
	query := `
		INSERT INTO pipeline.training_runs
			(model, dataset, args, trained, final_loss, final_val_loss, sim_balance, sim_trades)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`

	var id int64
	err := r.pool.QueryRow(ctx, query,
		run.Model, run.Dataset, run.Args, run.Trained,
		run.FinalLoss, run.FinalValLoss, run.SimBalance, run.SimTrades,
	).Scan(&id)

	return id, err
}

// GetRun 실행 기록 조회
func (r *Repository) GetRun(ctx context.Context, id int64) (*contracts.RunRecord, error) {
	query := `
		SELECT id, model, dataset, args, trained, final_loss, final_val_loss,
			   sim_balance, sim_trades, created_at
		FROM pipeline.training_runs
		WHERE id = $1`

	var run contracts.RunRecord
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&run.ID, &run.Model, &run.Dataset, &run.Args, &run.Trained,
		&run.FinalLoss, &run.FinalValLoss, &run.SimBalance, &run.SimTrades, &run.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &run, nil
}

// ListRuns returns the most recent runs, newest first
func (r *Repository) ListRuns(ctx context.Context, model string, limit int) ([]contracts.RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, model, dataset, args, trained, final_loss, final_val_loss,
			   sim_balance, sim_trades, created_at
		FROM pipeline.training_runs
		WHERE ($1 = '' OR model = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, model, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []contracts.RunRecord
	for rows.Next() {
		var run contracts.RunRecord
		if err := rows.Scan(
			&run.ID, &run.Model, &run.Dataset, &run.Args, &run.Trained,
			&run.FinalLoss, &run.FinalValLoss, &run.SimBalance, &run.SimTrades, &run.CreatedAt,
		); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
