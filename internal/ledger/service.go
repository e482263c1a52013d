// Package ledger persists per-hand summaries so finished hands survive a
// server restart. The backend is selected by environment: an in-memory
// no-op store by default, SQLite for single-node deployments, Postgres
// when a DATABASE_URL is provided.
package ledger

import (
	"context"
	"fmt"
	"os"
	"time"
)

// PlayerResult is one seat's outcome at the end of a hand.
type PlayerResult struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Chips    int64  `json:"chips"`
	Folded   bool   `json:"folded"`
}

// HandRecord summarizes one completed hand.
type HandRecord struct {
	HandID   string         `json:"handId"`
	TableID  string         `json:"tableId"`
	PlayedAt time.Time      `json:"playedAt"`
	Round    string         `json:"round"`
	Pot      int64          `json:"pot"`
	Players  []PlayerResult `json:"players"`
}

type Service interface {
	RecordHand(ctx context.Context, rec HandRecord) error
	ListRecent(ctx context.Context, tableID string, limit int) ([]HandRecord, error)
	Close() error
}

// NewServiceFromEnv selects the backend from POKER_LEDGER: "memory"
// (default), "sqlite" (POKER_SQLITE_PATH, default poker.db) or
// "postgres" (POKER_DATABASE_URL).
func NewServiceFromEnv() (Service, error) {
	switch backend := os.Getenv("POKER_LEDGER"); backend {
	case "", "memory":
		return NewNoopService(), nil
	case "sqlite":
		path := os.Getenv("POKER_SQLITE_PATH")
		if path == "" {
			path = "poker.db"
		}
		return NewSQLiteService(path)
	case "postgres":
		url := os.Getenv("POKER_DATABASE_URL")
		if url == "" {
			return nil, fmt.Errorf("ledger: POKER_DATABASE_URL is required for the postgres backend")
		}
		return NewPostgresService(url)
	default:
		return nil, fmt.Errorf("ledger: unknown backend %q", backend)
	}
}

type noopService struct{}

// NewNoopService returns a ledger that records nothing. Used when hand
// history persistence is not configured.
func NewNoopService() Service { return noopService{} }

func (noopService) RecordHand(context.Context, HandRecord) error { return nil }

func (noopService) ListRecent(context.Context, string, int) ([]HandRecord, error) {
	return nil, nil
}

func (noopService) Close() error { return nil }
