package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

type SQLiteService struct {
	db *sql.DB
}

func NewSQLiteService(dbPath string) (*SQLiteService, error) {
	dbPath = strings.TrimSpace(dbPath)
	if dbPath == "" {
		return nil, fmt.Errorf("empty sqlite database path")
	}
	if dbPath != ":memory:" {
		parent := filepath.Dir(dbPath)
		if parent != "" && parent != "." {
			if err := os.MkdirAll(parent, 0o755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 5000;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := ensureSQLiteLedgerSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &SQLiteService{db: db}, nil
}

func (s *SQLiteService) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteService) RecordHand(ctx context.Context, rec HandRecord) error {
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
    hand_id, table_id, played_at_ms, round, pot, players_json
)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (hand_id) DO UPDATE
SET
    played_at_ms = excluded.played_at_ms,
    round = excluded.round,
    pot = excluded.pot,
    players_json = excluded.players_json
`, rec.HandID, rec.TableID, rec.PlayedAt.UTC().UnixMilli(), rec.Round, rec.Pot, string(playersRaw))
	return err
}

func (s *SQLiteService) ListRecent(ctx context.Context, tableID string, limit int) ([]HandRecord, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if ctx == nil {
		ctx = context.Background()
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT hand_id, table_id, played_at_ms, round, pot, players_json
FROM hand_history
WHERE table_id = ?
ORDER BY played_at_ms DESC, id DESC
LIMIT ?
`, tableID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]HandRecord, 0, limit)
	for rows.Next() {
		var rec HandRecord
		var playedAtMs int64
		var playersRaw []byte
		if err := rows.Scan(&rec.HandID, &rec.TableID, &playedAtMs, &rec.Round, &rec.Pot, &playersRaw); err != nil {
			return nil, err
		}
		rec.PlayedAt = time.UnixMilli(playedAtMs).UTC()
		if len(playersRaw) > 0 {
			_ = json.Unmarshal(playersRaw, &rec.Players)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func ensureSQLiteLedgerSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`
CREATE TABLE IF NOT EXISTS hand_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    hand_id TEXT NOT NULL,
    table_id TEXT NOT NULL,
    played_at_ms INTEGER NOT NULL,
    round TEXT NOT NULL,
    pot INTEGER NOT NULL,
    players_json TEXT NOT NULL DEFAULT '[]',
    UNIQUE (hand_id)
)`,
		`CREATE INDEX IF NOT EXISTS idx_hand_history_table_recent ON hand_history(table_id, played_at_ms DESC)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
