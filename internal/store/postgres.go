package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/linguameet/whiteboard/internal/document"
	"github.com/linguameet/whiteboard/internal/typeid"
)

const schema = `
CREATE TABLE IF NOT EXISTS board_snapshots (
	id         TEXT PRIMARY KEY,
	board_id   TEXT NOT NULL,
	version    INTEGER NOT NULL,
	document   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (board_id, version)
)`

// Postgres keeps every save as a new versioned snapshot row; Load returns
// the latest.
type Postgres struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewPool connects to databaseURL and verifies the connection.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

func NewPostgres(pool *pgxpool.Pool, logger *slog.Logger) *Postgres {
	if logger == nil {
		logger = slog.Default()
	}
	return &Postgres{pool: pool, logger: logger}
}

// Migrate creates the snapshot table if it does not exist.
func (s *Postgres) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Postgres) Load(ctx context.Context, boardID string) (document.Document, error) {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT document FROM board_snapshots WHERE board_id = $1 ORDER BY version DESC LIMIT 1`,
		boardID,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return document.Document{}, fmt.Errorf("%s: %w", boardID, ErrNotFound)
		}
		return document.Document{}, fmt.Errorf("get snapshot: %w", err)
	}
	return Decode(data)
}

// Save writes the next snapshot version of the board.
func (s *Postgres) Save(ctx context.Context, boardID string, doc document.Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	var version int32
	err = pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`SELECT COALESCE(MAX(version), 0) + 1 FROM board_snapshots WHERE board_id = $1`,
			boardID,
		).Scan(&version); err != nil {
			return err
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO board_snapshots (id, board_id, version, document) VALUES ($1, $2, $3, $4)`,
			typeid.NewSnapshotID(), boardID, version, data,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("create snapshot: %w", err)
	}
	s.logger.Debug("snapshot saved", "board", boardID, "version", version)
	return nil
}

// Versions returns how many snapshots the board has.
func (s *Postgres) Versions(ctx context.Context, boardID string) (int, error) {
	var n int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM board_snapshots WHERE board_id = $1`, boardID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// Prune deletes all but the newest keep snapshots of the board.
func (s *Postgres) Prune(ctx context.Context, boardID string, keep int) (int64, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM board_snapshots
		WHERE board_id = $1 AND version <= (
			SELECT COALESCE(MAX(version), 0) - $2 FROM board_snapshots WHERE board_id = $1
		)`, boardID, keep)
	if err != nil {
		return 0, fmt.Errorf("prune snapshots: %w", err)
	}
	return tag.RowsAffected(), nil
}
