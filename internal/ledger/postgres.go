package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

type PostgresService struct {
	db *sql.DB
}

func NewPostgresService(dsn string) (*PostgresService, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensurePostgresLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &PostgresService{db: db}, nil
}

func (s *PostgresService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *PostgresService) RecordHand(ctx context.Context, rec HandRecord) error {
	if strings.TrimSpace(rec.HandID) == "" || strings.TrimSpace(rec.TableID) == "" {
		return fmt.Errorf("hand id and table id are required")
	}
	if rec.PlayedAt.IsZero() {
		rec.PlayedAt = time.Now().UTC()
	}
	playersRaw, err := json.Marshal(rec.Players)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO hand_history (
    hand_id, table_id, played_at, round, pot, players_json
)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (hand_id) DO UPDATE
SET
    played_at = excluded.played_at,
    round = excluded.round,
    pot = excluded.pot,
    players_json = excluded.players_json
`, rec.HandID, rec.TableID, rec.PlayedAt.UTC(), rec.Round, rec.Pot, string(playersRaw))
	return err
}

func (s *PostgresService) ListRecent(ctx context.Context, tableID string, limit int) ([]HandRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT hand_id, table_id, played_at, round, pot, players_json
FROM hand_history
WHERE table_id = $1
ORDER BY played_at DESC, id DESC
LIMIT $2
`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]HandRecord, 0, limit)
	for rows.Next() {
		var rec HandRecord
		var playersRaw []byte
		if err := rows.Scan(&rec.HandID, &rec.TableID, &rec.PlayedAt, &rec.Round, &rec.Pot, &playersRaw); err != nil {
			return nil, err
		}
		rec.PlayedAt = rec.PlayedAt.UTC()
		if len(playersRaw) > 0 {
			_ = json.Unmarshal(playersRaw, &rec.Players)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func ensurePostgresLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS hand_history (
    id BIGSERIAL PRIMARY KEY,
    hand_id TEXT NOT NULL UNIQUE,
    table_id TEXT NOT NULL,
    played_at TIMESTAMPTZ NOT NULL,
    round TEXT NOT NULL,
    pot BIGINT NOT NULL,
    players_json TEXT NOT NULL DEFAULT '[]'
)`,
		`CREATE INDEX IF NOT EXISTS idx_hand_history_table_recent ON hand_history(table_id, played_at DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
