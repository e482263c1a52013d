// Package lobby manages the set of live tables: creation, lookup and
// eviction of tables nobody sits at anymore.
package lobby

import (
	"log"
	"sync"
	"time"

	"github.com/Aspandiyar933/poker/internal/ledger"
	"github.com/Aspandiyar933/poker/internal/table"

	"github.com/thoas/go-funk"
)

const (
	defaultIdleTTL       = 5 * time.Minute
	defaultSweepInterval = 30 * time.Second
)

// Config contains lobby settings. Table is the config every created table
// starts from.
type Config struct {
	Table         table.Config
	Ledger        ledger.Service
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

// Lobby manages all tables.
type Lobby struct {
	mu     sync.RWMutex
	tables map[string]*table.Table
	closed bool

	cfg      Config
	stopOnce sync.Once
	done     chan struct{}
}

// New creates a lobby and starts the idle-table janitor.
func New(cfg Config) *Lobby {
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = defaultIdleTTL
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = defaultSweepInterval
	}

	l := &Lobby{
		tables: make(map[string]*table.Table),
		cfg:    cfg,
		done:   make(chan struct{}),
	}
	go l.janitor()
	return l
}

// Create spins up a new table. The broadcast callback delivers encoded
// frames to a connected client by id.
func (l *Lobby) Create(broadcastFn func(clientID string, data []byte)) (*table.Table, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return nil, table.ErrTableClosed
	}

	t, err := table.New(l.cfg.Table, broadcastFn, l.cfg.Ledger)
	if err != nil {
		return nil, err
	}
	l.tables[t.ID] = t

	log.Printf("[Lobby] Created table %s (%d total)", t.ID, len(l.tables))
	return t, nil
}

// Get returns a table by id, or nil when it does not exist.
func (l *Lobby) Get(tableID string) *table.Table {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.tables[tableID]
}

// ListTables returns all live table ids.
func (l *Lobby) ListTables() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return funk.Keys(l.tables).([]string)
}

func (l *Lobby) janitor() {
	ticker := time.NewTicker(l.cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.sweep()
		case <-l.done:
			return
		}
	}
}

// sweep stops and drops tables that have sat empty past the idle TTL.
func (l *Lobby) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for id, t := range l.tables {
		if !t.IsIdleFor(l.cfg.IdleTTL) {
			continue
		}
		t.Stop()
		delete(l.tables, id)
		log.Printf("[Lobby] Evicted idle table %s (%d remaining)", id, len(l.tables))
	}
}

// Stop shuts down the janitor and every table.
func (l *Lobby) Stop() {
	l.mu.Lock()
	l.closed = true
	tables := funk.Values(l.tables).([]*table.Table)
	l.tables = make(map[string]*table.Table)
	l.mu.Unlock()

	for _, t := range tables {
		t.Stop()
	}
	l.stopOnce.Do(func() {
		close(l.done)
	})
}
