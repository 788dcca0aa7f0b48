package runrepo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/caustin-usgs/lcmap-gaia/internal/domain/chip"
)

// Schema creates the run ledger tables.
const Schema = `
CREATE TABLE IF NOT EXISTS chip_runs (
	id             UUID PRIMARY KEY,
	cx             BIGINT NOT NULL,
	cy             BIGINT NOT NULL,
	dates          TEXT[] NOT NULL,
	status         TEXT NOT NULL,
	failure_reason TEXT,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS chip_run_outputs (
	run_id     UUID NOT NULL REFERENCES chip_runs(id) ON DELETE CASCADE,
	seq        BIGSERIAL,
	date       TEXT NOT NULL,
	object_key TEXT NOT NULL,
	records    INTEGER NOT NULL,
	size_bytes BIGINT NOT NULL,
	etag       TEXT NOT NULL,
	PRIMARY KEY (run_id, date)
);
ALTER TABLE chip_run_outputs ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
CREATE INDEX IF NOT EXISTS chip_runs_chip_idx ON chip_runs (cx, cy, created_at DESC);
`

// selectOutputsSQL returns outputs in the order they were first recorded, which is request order.
const selectOutputsSQL = `
	SELECT date, object_key, records, size_bytes, etag
	FROM chip_run_outputs
	WHERE run_id = $1
	ORDER BY seq
`

// PostgresRepository persists the run ledger in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema applies Schema.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply run ledger schema: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, run chip.Run) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO chip_runs (id, cx, cy, dates, status, failure_reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, run.ID, run.Cx, run.Cy, run.Dates, string(run.Status), run.FailureReason, run.CreatedAt, run.UpdatedAt)
	return err
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status chip.RunStatus, failureReason *string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE chip_runs
		SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3
	`, string(status), failureReason, id)
	return err
}

func (r *PostgresRepository) AppendOutput(ctx context.Context, id uuid.UUID, output chip.Output) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO chip_run_outputs (run_id, date, object_key, records, size_bytes, etag)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (run_id, date) DO UPDATE
		SET object_key = EXCLUDED.object_key, records = EXCLUDED.records,
		    size_bytes = EXCLUDED.size_bytes, etag = EXCLUDED.etag
	`, id, output.Date, output.Key, output.Records, output.Size, output.ETag)
	batch.Queue(`UPDATE chip_runs SET updated_at = NOW() WHERE id = $1`, id)
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (chip.Run, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, cx, cy, dates, status, failure_reason, created_at, updated_at
		FROM chip_runs
		WHERE id = $1
		LIMIT 1
	`, id)
	var (
		run    chip.Run
		status string
	)
	if err := row.Scan(&run.ID, &run.Cx, &run.Cy, &run.Dates, &status, &run.FailureReason, &run.CreatedAt, &run.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return chip.Run{}, false, nil
		}
		return chip.Run{}, false, err
	}
	run.Status = chip.RunStatus(status)

	rows, err := r.pool.Query(ctx, selectOutputsSQL, id)
	if err != nil {
		return chip.Run{}, false, err
	}
	defer rows.Close()
	run.Outputs = []chip.Output{}
	for rows.Next() {
		var out chip.Output
		if err := rows.Scan(&out.Date, &out.Key, &out.Records, &out.Size, &out.ETag); err != nil {
			return chip.Run{}, false, err
		}
		run.Outputs = append(run.Outputs, out)
	}
	if err := rows.Err(); err != nil {
		return chip.Run{}, false, err
	}
	return run, true, nil
}

var _ chip.RunRepository = (*PostgresRepository)(nil)
