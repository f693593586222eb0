// Package store persists finished loads in PostgreSQL.
//
// A load is written in one transaction: a summary row in sheet_loads, the
// accepted records as JSONB in sheet_records and the collected messages in
// sheet_messages. Records and messages are sent with the COPY protocol.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/sheetload/internal/loader"
)

// PoolConfig holds connection pool settings.
type PoolConfig struct {
	URL             string
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Connect opens a pool and verifies it with a ping.
func Connect(ctx context.Context, cfg PoolConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolConfig.MinConns = int32(cfg.MinConns)
	}
	if cfg.MaxConnLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	}
	if cfg.MaxConnIdleTime > 0 {
		poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// Store writes loads to the database.
type Store struct {
	pool *pgxpool.Pool
}

// New wraps an open pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS sheet_loads (
	id          uuid PRIMARY KEY,
	schema_key  text        NOT NULL,
	sheet_name  text        NOT NULL,
	filename    text        NOT NULL,
	language    text        NOT NULL,
	row_count   integer     NOT NULL,
	error_count integer     NOT NULL,
	info_count  integer     NOT NULL,
	started_at  timestamptz NOT NULL,
	finished_at timestamptz NOT NULL
);

CREATE TABLE IF NOT EXISTS sheet_records (
	load_id   uuid    NOT NULL REFERENCES sheet_loads (id) ON DELETE CASCADE,
	row_index integer NOT NULL,
	data      jsonb   NOT NULL,
	PRIMARY KEY (load_id, row_index)
);

CREATE TABLE IF NOT EXISTS sheet_messages (
	load_id  uuid    NOT NULL REFERENCES sheet_loads (id) ON DELETE CASCADE,
	kind     text    NOT NULL CHECK (kind IN ('error', 'info')),
	position integer NOT NULL,
	message  text    NOT NULL,
	PRIMARY KEY (load_id, kind, position)
);

CREATE INDEX IF NOT EXISTS sheet_loads_schema_idx ON sheet_loads (schema_key, finished_at DESC);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("create tables: %w", err)
	}
	return nil
}

var (
	recordColumns  = []string{"load_id", "row_index", "data"}
	messageColumns = []string{"load_id", "kind", "position", "message"}
)

const insertLoadSQL = `
INSERT INTO sheet_loads (
	id, schema_key, sheet_name, filename, language,
	row_count, error_count, info_count, started_at, finished_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

// SaveLoad writes r in a single transaction.
func (s *Store) SaveLoad(ctx context.Context, r *loader.Result) error {
	records, err := recordRows(r)
	if err != nil {
		return err
	}
	messages := messageRows(r)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, insertLoadSQL, loadArgs(r)...); err != nil {
		return fmt.Errorf("insert load: %w", err)
	}
	if len(records) > 0 {
		n, err := tx.CopyFrom(ctx, pgx.Identifier{"sheet_records"}, recordColumns, pgx.CopyFromRows(records))
		if err != nil {
			return fmt.Errorf("copy records: %w", err)
		}
		slog.Debug("records copied", "load_id", r.ID, "rows", n)
	}
	if len(messages) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"sheet_messages"}, messageColumns, pgx.CopyFromRows(messages)); err != nil {
			return fmt.Errorf("copy messages: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func pgUUID(r *loader.Result) pgtype.UUID {
	return pgtype.UUID{Bytes: r.ID, Valid: true}
}

func pgTime(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: !t.IsZero()}
}

func loadArgs(r *loader.Result) []any {
	return []any{
		pgUUID(r),
		r.Schema,
		r.SheetName,
		r.Filename,
		string(r.Language),
		int32(len(r.Rows)),
		int32(len(r.Errors)),
		int32(len(r.Infos)),
		pgTime(r.StartedAt),
		pgTime(r.FinishedAt),
	}
}

// recordRows encodes every record as one COPY row.
func recordRows(r *loader.Result) ([][]any, error) {
	id := pgUUID(r)
	rows := make([][]any, len(r.Rows))
	for i, rec := range r.Rows {
		data, err := json.Marshal(rec)
		if err != nil {
			return nil, fmt.Errorf("encode row %d: %w", i, err)
		}
		rows[i] = []any{id, int32(i), json.RawMessage(data)}
	}
	return rows, nil
}

// messageRows lists errors then infos, each numbered from zero.
func messageRows(r *loader.Result) [][]any {
	id := pgUUID(r)
	rows := make([][]any, 0, len(r.Errors)+len(r.Infos))
	for i, msg := range r.Errors {
		rows = append(rows, []any{id, "error", int32(i), msg})
	}
	for i, msg := range r.Infos {
		rows = append(rows, []any{id, "info", int32(i), msg})
	}
	return rows
}
