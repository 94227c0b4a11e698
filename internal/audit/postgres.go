package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/sheetlink/internal/core"
)

const createTable = `
CREATE TABLE IF NOT EXISTS connector_audit (
	id               uuid PRIMARY KEY,
	operation        text NOT NULL,
	connection_id    text NOT NULL DEFAULT '',
	entity_type      text NOT NULL DEFAULT '',
	state            text NOT NULL,
	user_explanation text NOT NULL DEFAULT '',
	tech_explanation text NOT NULL DEFAULT '',
	code             text NOT NULL DEFAULT '',
	client_ip        text NOT NULL DEFAULT '',
	user_agent       text NOT NULL DEFAULT '',
	duration_ms      bigint NOT NULL,
	created_at       timestamptz NOT NULL
)`

const createIndex = `
CREATE INDEX IF NOT EXISTS connector_audit_created_at_idx
	ON connector_audit (created_at DESC)`

const addClientColumns = `
ALTER TABLE connector_audit
	ADD COLUMN IF NOT EXISTS client_ip text NOT NULL DEFAULT '',
	ADD COLUMN IF NOT EXISTS user_agent text NOT NULL DEFAULT ''`

const insertEntry = `
INSERT INTO connector_audit (
	id, operation, connection_id, entity_type, state,
	user_explanation, tech_explanation, code, client_ip, user_agent,
	duration_ms, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectRecent = `
SELECT id, operation, connection_id, entity_type, state,
	user_explanation, tech_explanation, code, client_ip, user_agent,
	duration_ms, created_at
FROM connector_audit
ORDER BY created_at DESC
LIMIT $1`

const deleteBefore = `
DELETE FROM connector_audit
WHERE created_at < $1`

// PoolConfig sizes the connection pool of a PostgresSink.
type PoolConfig struct {
	MaxConns int
	MinConns int
}

// PostgresSink stores entries in the connector_audit table.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink connects to url and creates the audit table if needed.
func NewPostgresSink(ctx context.Context, url string, pc PoolConfig) (*PostgresSink, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse audit database url: %w", err)
	}
	if pc.MaxConns > 0 {
		cfg.MaxConns = int32(pc.MaxConns)
	}
	if pc.MinConns > 0 {
		cfg.MinConns = int32(pc.MinConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect audit database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping audit database: %w", err)
	}

	s := &PostgresSink{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresSink) migrate(ctx context.Context) error {
	for _, stmt := range []string{createTable, addClientColumns, createIndex} {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create audit table: %w", err)
		}
	}
	return nil
}

// Record inserts e.
func (s *PostgresSink) Record(ctx context.Context, e Entry) error {
	_, err := s.pool.Exec(ctx, insertEntry,
		pgtype.UUID{Bytes: e.ID, Valid: true},
		e.Operation, e.ConnectionID, e.EntityType, string(e.State),
		e.UserExplanation, e.TechExplanation, e.Code, e.ClientIP, e.UserAgent,
		e.Duration.Milliseconds(),
		pgtype.Timestamptz{Time: e.CreatedAt, Valid: true},
	)
	if err != nil {
		return fmt.Errorf("insert audit entry %s: %w", e.ID, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *PostgresSink) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.pool.Query(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	entries, err := pgx.CollectRows(rows, scanEntry)
	if err != nil {
		return nil, fmt.Errorf("scan audit entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.CollectableRow) (Entry, error) {
	var (
		id         pgtype.UUID
		e          Entry
		state      string
		durationMS int64
		createdAt  pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &e.Operation, &e.ConnectionID, &e.EntityType, &state,
		&e.UserExplanation, &e.TechExplanation, &e.Code, &e.ClientIP, &e.UserAgent,
		&durationMS, &createdAt,
	)
	if err != nil {
		return Entry{}, err
	}
	e.ID = uuid.UUID(id.Bytes)
	e.State = core.State(state)
	e.Duration = time.Duration(durationMS) * time.Millisecond
	e.CreatedAt = createdAt.Time
	return e, nil
}

// Prune deletes entries created before cutoff and returns how many went.
func (s *PostgresSink) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx, deleteBefore, pgtype.Timestamptz{Time: cutoff, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("prune audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close releases the pool.
func (s *PostgresSink) Close() {
	s.pool.Close()
}
