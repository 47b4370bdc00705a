package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/hamed0406/slotwatch/internal/domain"
	"github.com/hamed0406/slotwatch/internal/repo"
)

var _ repo.SendLogStore = (*Store)(nil)

// Schema is applied by EnsureSchema. last_send_dt stays text so the
// stored value round-trips byte for byte with the JSON file format.
const Schema = `
CREATE TABLE IF NOT EXISTS send_log (
  session_id   TEXT PRIMARY KEY,
  num_sends    INTEGER NOT NULL DEFAULT 0,
  last_send_dt TEXT NOT NULL DEFAULT '',
  center_name  TEXT NOT NULL DEFAULT ''
);`

type Store struct {
	pool *pgxpool.Pool
	log  *zap.Logger
}

func New(ctx context.Context, dsn string, log *zap.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctxPing); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *Store) Load(ctx context.Context) (domain.SendLog, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT session_id, num_sends, last_send_dt, center_name FROM send_log`)
	if err != nil {
		return nil, fmt.Errorf("load send-log: %w", err)
	}
	defer rows.Close()

	out := domain.SendLog{}
	for rows.Next() {
		var (
			id string
			e  domain.SendLogEntry
		)
		if err := rows.Scan(&id, &e.NumSends, &e.LastSendDT, &e.CenterName); err != nil {
			return nil, fmt.Errorf("scan send-log: %w", err)
		}
		out[id] = e
	}
	return out, rows.Err()
}

// Save replaces the table contents in one transaction.
func (s *Store) Save(ctx context.Context, l domain.SendLog) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `DELETE FROM send_log`); err != nil {
		return fmt.Errorf("clear send-log: %w", err)
	}
	rows := make([][]any, 0, len(l))
	for id, e := range l {
		rows = append(rows, []any{id, e.NumSends, e.LastSendDT, e.CenterName})
	}
	n, err := tx.CopyFrom(ctx,
		pgx.Identifier{"send_log"},
		[]string{"session_id", "num_sends", "last_send_dt", "center_name"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("copy send-log: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit send-log: %w", err)
	}
	s.log.Debug("sendlog_saved", zap.Int64("rows", n))
	return nil
}
