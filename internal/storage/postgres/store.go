package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"reclamm/internal/model"
)

// Store provides Postgres persistence for pool state and replay results.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS reclamm_pool_state (
	name TEXT PRIMARY KEY,
	last_ts BIGINT NOT NULL,
	state JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS reclamm_operations (
	pool_name TEXT NOT NULL,
	seq INTEGER NOT NULL,
	op TEXT NOT NULL,
	ts BIGINT NOT NULL,
	status TEXT NOT NULL,
	error TEXT,
	amount_in NUMERIC(78, 0),
	amount_out NUMERIC(78, 0),
	bpt NUMERIC(78, 0),
	amounts JSONB,
	snapshot JSONB,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (pool_name, seq)
);
`

// EnsureSchema creates the tables used by the store.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertOperations inserts or replaces replay results for a pool.
func (s *Store) InsertOperations(ctx context.Context, name string, results []model.OperationResult) error {
	if len(results) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range results {
		amounts, err := jsonOrNil(r.Amounts)
		if err != nil {
			return err
		}
		snapshot, err := jsonOrNil(r.Snapshot)
		if err != nil {
			return err
		}
		batch.Queue(`
			INSERT INTO reclamm_operations (
				pool_name, seq, op, ts, status, error, amount_in, amount_out, bpt, amounts, snapshot, created_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,now())
			ON CONFLICT (pool_name, seq)
			DO UPDATE SET
				op = EXCLUDED.op,
				ts = EXCLUDED.ts,
				status = EXCLUDED.status,
				error = EXCLUDED.error,
				amount_in = EXCLUDED.amount_in,
				amount_out = EXCLUDED.amount_out,
				bpt = EXCLUDED.bpt,
				amounts = EXCLUDED.amounts,
				snapshot = EXCLUDED.snapshot
		`,
			name,
			r.Seq,
			r.Op,
			int64(r.Timestamp),
			r.Status,
			nullString(r.Error),
			numeric(r.AmountIn),
			numeric(r.AmountOut),
			numeric(r.Bpt),
			amounts,
			snapshot,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range results {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the persisted vault state for a name.
func (s *Store) LoadState(ctx context.Context, name string) (model.VaultState, bool, error) {
	if name == "" {
		return model.VaultState{}, false, fmt.Errorf("state name required")
	}
	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT state FROM reclamm_pool_state WHERE name=$1`, name)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.VaultState{}, false, nil
		}
		return model.VaultState{}, false, err
	}
	var state model.VaultState
	if err := json.Unmarshal(data, &state); err != nil {
		return model.VaultState{}, false, fmt.Errorf("parse state: %w", err)
	}
	return state, true, nil
}

// SaveState upserts the vault state for a name.
func (s *Store) SaveState(ctx context.Context, name string, state model.VaultState) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	data, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO reclamm_pool_state (name, last_ts, state, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (name) DO UPDATE
		SET last_ts = EXCLUDED.last_ts, state = EXCLUDED.state, updated_at = now()
	`, name, int64(state.Pool.LastTimestamp), data)
	return err
}

func numeric(v *uint256.Int) *string {
	if v == nil {
		return nil
	}
	s := v.Dec()
	return &s
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func jsonOrNil[T any](v *T) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal column: %w", err)
	}
	return data, nil
}
