// Package table runs one poker table as an actor: a single goroutine owns
// the game engine and consumes client events from a channel, with a
// sub-second ticker driving action timeouts and inter-hand scheduling.
package table

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Aspandiyar933/poker/holdem"
	"github.com/Aspandiyar933/poker/internal/codec"
	"github.com/Aspandiyar933/poker/internal/ledger"
)

// Config contains table settings.
type Config struct {
	MaxPlayers     int
	SmallBlind     int64
	BigBlind       int64
	StartingStake  int64
	ActionTimeout  time.Duration
	HandStartDelay time.Duration
	Seed           int64
}

// DefaultConfig is the standard cash-table setup.
func DefaultConfig() Config {
	return Config{
		MaxPlayers:     9,
		SmallBlind:     10,
		BigBlind:       25,
		StartingStake:  1000,
		ActionTimeout:  30 * time.Second,
		HandStartDelay: 3 * time.Second,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.MaxPlayers <= 0 {
		c.MaxPlayers = def.MaxPlayers
	}
	if c.SmallBlind <= 0 {
		c.SmallBlind = def.SmallBlind
	}
	if c.BigBlind <= 0 {
		c.BigBlind = def.BigBlind
	}
	if c.StartingStake <= 0 {
		c.StartingStake = def.StartingStake
	}
	if c.ActionTimeout <= 0 {
		c.ActionTimeout = def.ActionTimeout
	}
	if c.HandStartDelay <= 0 {
		c.HandStartDelay = def.HandStartDelay
	}
	return c
}

// Event types for the actor message queue.
type EventType int

const (
	EventJoin EventType = iota
	EventLeave
	EventBet
	EventFold
	EventStartHand
	EventClose
)

// Event represents a message to the table actor.
type Event struct {
	Type       EventType
	ClientID   string
	PlayerName string
	PlayerID   string
	Amount     int64
	Response   chan error
}

var ErrTableClosed = errors.New("table closed")

// Table represents a single poker table with an actor model.
type Table struct {
	ID     string
	Config Config

	mu       sync.RWMutex
	game     *holdem.Game
	members  map[string]string // clientID -> playerID
	round    uint32
	closed   bool
	stopOnce sync.Once

	// Set by locked handlers when state changed; the actor loop fans the
	// new state out after releasing the lock.
	stateDirty bool

	events chan Event
	done   chan struct{}

	// Timers and lifecycle metadata.
	actionPlayerID string
	actionDeadline time.Time
	nextHandAt     time.Time
	emptySince     time.Time

	// Callback to deliver messages to a connected client.
	broadcast func(clientID string, data []byte)
	ledger    ledger.Service
}

// New creates a new table. The broadcast callback receives already-encoded
// JSON frames addressed to one client.
func New(cfg Config, broadcastFn func(clientID string, data []byte), ledgerService ledger.Service) (*Table, error) {
	cfg = cfg.withDefaults()

	game, err := holdem.NewGame(holdem.Config{
		MaxPlayers: cfg.MaxPlayers,
		MinPlayers: 2,
		SmallBlind: cfg.SmallBlind,
		BigBlind:   cfg.BigBlind,
		Seed:       cfg.Seed,
	})
	if err != nil {
		return nil, err
	}

	t := &Table{
		ID:         game.ID(),
		Config:     cfg,
		game:       game,
		members:    make(map[string]string),
		events:     make(chan Event, 256),
		done:       make(chan struct{}),
		broadcast:  broadcastFn,
		ledger:     ledgerService,
		emptySince: time.Now(),
	}

	go t.run()

	log.Printf("[Table %s] Created (max=%d, blinds=%d/%d)", t.ID, cfg.MaxPlayers, cfg.SmallBlind, cfg.BigBlind)
	return t, nil
}

// run is the main actor loop.
func (t *Table) run() {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case event := <-t.events:
			err := t.handleEvent(event)
			if event.Response != nil {
				event.Response <- err
			}
		case <-ticker.C:
			t.tick()
		case <-t.done:
			log.Printf("[Table %s] Actor stopped", t.ID)
			return
		}
	}
}

func (t *Table) handleEvent(e Event) error {
	t.mu.Lock()
	err := t.dispatchLocked(e)
	members, snap, dirty := t.takeBroadcastLocked()
	t.mu.Unlock()

	if dirty {
		t.fanOutState(members, snap)
	}
	return err
}

func (t *Table) dispatchLocked(e Event) error {
	if t.closed && e.Type != EventClose {
		return ErrTableClosed
	}

	switch e.Type {
	case EventJoin:
		return t.handleJoin(e.ClientID, e.PlayerName)
	case EventLeave:
		return t.handleLeave(e.ClientID)
	case EventBet:
		return t.handleAction(e.ClientID, e.PlayerID, e.Amount, false)
	case EventFold:
		return t.handleAction(e.ClientID, e.PlayerID, 0, true)
	case EventStartHand:
		return t.handleStartHand()
	case EventClose:
		t.stopLocked()
		return nil
	default:
		return fmt.Errorf("unknown event type: %d", e.Type)
	}
}

func (t *Table) handleJoin(clientID, name string) error {
	if _, exists := t.members[clientID]; exists {
		t.stateDirty = true
		return nil
	}

	ps, err := t.game.AddPlayer(name, t.Config.StartingStake)
	if err != nil {
		return err
	}
	t.members[clientID] = ps.ID
	t.emptySince = time.Time{}
	log.Printf("[Table %s] Player %s (%s) joined", t.ID, name, ps.ID)

	snap := t.game.Snapshot()
	if !handRunning(snap) && len(t.members) >= 2 && t.nextHandAt.IsZero() {
		t.nextHandAt = time.Now().Add(t.Config.HandStartDelay)
	}

	t.stateDirty = true
	return nil
}

func (t *Table) handleLeave(clientID string) error {
	playerID, exists := t.members[clientID]
	if !exists {
		return nil
	}
	delete(t.members, clientID)
	log.Printf("[Table %s] Player %s left", t.ID, playerID)

	// The seat stays in the engine mid-hand so pot accounting holds; the
	// action timeout folds the absent player when their turn comes, and
	// the seat is released at hand end. Between hands it frees up now.
	if !handRunning(t.game.Snapshot()) {
		t.releaseAbandonedSeatsLocked()
	}
	if len(t.members) == 0 {
		t.emptySince = time.Now()
	}
	if len(t.members) < 2 {
		t.nextHandAt = time.Time{}
	}

	t.stateDirty = true
	return nil
}

// releaseAbandonedSeatsLocked removes engine seats whose client is gone.
// Only callable between hands; mid-hand callers defer to handleHandEnd.
func (t *Table) releaseAbandonedSeatsLocked() {
	seated := make(map[string]bool, len(t.members))
	for _, playerID := range t.members {
		seated[playerID] = true
	}
	for _, ps := range t.game.Snapshot().Players {
		if seated[ps.ID] {
			continue
		}
		if err := t.game.RemovePlayer(ps.ID); err != nil {
			log.Printf("[Table %s] release seat %s failed: %v", t.ID, ps.ID, err)
			continue
		}
		log.Printf("[Table %s] Released abandoned seat %s", t.ID, ps.ID)
	}
}

func (t *Table) handleAction(clientID, playerID string, amount int64, fold bool) error {
	ownPlayerID, exists := t.members[clientID]
	if !exists {
		return fmt.Errorf("client not at table")
	}
	if playerID == "" {
		playerID = ownPlayerID
	}
	if playerID != ownPlayerID {
		return fmt.Errorf("cannot act for another player")
	}

	var err error
	if fold {
		err = t.game.Fold(playerID)
	} else {
		err = t.game.Bet(playerID, amount)
	}
	if err != nil {
		return err
	}

	if fold {
		log.Printf("[Table %s] Player %s folds", t.ID, playerID)
	} else {
		log.Printf("[Table %s] Player %s bets %d", t.ID, playerID, amount)
	}

	t.afterActionLocked()
	t.stateDirty = true
	return nil
}

// afterActionLocked advances the game after a successful bet or fold:
// turn pointer first, then the street if betting settled, then hand-end
// bookkeeping.
func (t *Table) afterActionLocked() {
	if err := t.game.AdvanceTurn(); err != nil {
		log.Printf("[Table %s] advance turn failed: %v", t.ID, err)
	}
	if !t.game.HandOver() {
		if err := t.game.AdvanceRound(); err != nil && !errors.Is(err, holdem.ErrBettingOpen) {
			log.Printf("[Table %s] advance round failed: %v", t.ID, err)
		}
	}

	if t.game.HandOver() {
		t.handleHandEnd()
		return
	}
	t.armActionTimeoutLocked()
}

func (t *Table) handleStartHand() error {
	if t.closed {
		return ErrTableClosed
	}
	if len(t.members) < 2 {
		return holdem.ErrNotEnoughPlayers
	}
	t.nextHandAt = time.Time{}
	t.clearActionTimeoutLocked()

	if err := t.game.DealHand(); err != nil {
		log.Printf("[Table %s] deal hand failed: %v", t.ID, err)
		return err
	}
	if err := t.game.PostBlinds(); err != nil {
		log.Printf("[Table %s] post blinds failed: %v", t.ID, err)
		return err
	}
	t.round++

	snap := t.game.Snapshot()
	log.Printf("[Table %s] Hand %d started. Dealer: %d, Action: %d",
		t.ID, t.round, snap.DealerIndex, snap.CurrentPlayerIndex)

	t.armActionTimeoutLocked()
	t.stateDirty = true
	return nil
}

func (t *Table) handleHandEnd() {
	snap := t.game.Snapshot()
	log.Printf("[Table %s] Hand %d ended. Pot: %d, Round: %s", t.ID, t.round, snap.Pot, snap.Round)

	t.clearActionTimeoutLocked()
	t.persistHandHistory(snap)
	t.releaseAbandonedSeatsLocked()

	if err := t.game.RotateDealer(); err != nil {
		log.Printf("[Table %s] rotate dealer failed: %v", t.ID, err)
	}

	if len(t.members) >= 2 {
		t.nextHandAt = time.Now().Add(t.Config.HandStartDelay)
	} else {
		t.nextHandAt = time.Time{}
	}
}

func (t *Table) persistHandHistory(snap holdem.Snapshot) {
	if t.ledger == nil {
		return
	}
	rec := ledger.HandRecord{
		HandID:   fmt.Sprintf("%s_r%d", t.ID, t.round),
		TableID:  t.ID,
		PlayedAt: time.Now().UTC(),
		Round:    snap.Round.String(),
		Pot:      snap.Pot,
	}
	for _, ps := range snap.Players {
		rec.Players = append(rec.Players, ledger.PlayerResult{
			PlayerID: ps.ID,
			Name:     ps.Name,
			Chips:    ps.Chips,
			Folded:   ps.Folded,
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := t.ledger.RecordHand(ctx, rec); err != nil {
			log.Printf("[Table %s] record hand failed: %v", t.ID, err)
		}
	}()
}

func (t *Table) tick() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	now := time.Now()
	t.handleTimeoutLocked(now)
	if !t.nextHandAt.IsZero() && !now.Before(t.nextHandAt) {
		snap := t.game.Snapshot()
		if !handRunning(snap) {
			if err := t.handleStartHand(); err != nil {
				log.Printf("[Table %s] delayed hand start failed: %v", t.ID, err)
			}
		} else {
			t.nextHandAt = time.Time{}
		}
	}
	members, snap, dirty := t.takeBroadcastLocked()
	t.mu.Unlock()

	if dirty {
		t.fanOutState(members, snap)
	}
}

// handleTimeoutLocked auto-acts for a player whose action clock expired:
// check when nothing is owed this street or the player is all-in (no
// further action is possible for them), fold otherwise.
func (t *Table) handleTimeoutLocked(now time.Time) {
	if t.actionPlayerID == "" || t.actionDeadline.IsZero() || now.Before(t.actionDeadline) {
		return
	}

	playerID := t.actionPlayerID
	t.clearActionTimeoutLocked()

	snap := t.game.Snapshot()
	if !handRunning(snap) {
		return
	}
	acting := actingPlayer(snap)
	if acting == nil || acting.ID != playerID {
		return
	}

	var err error
	if acting.Bet == snap.CurBet || acting.AllIn {
		log.Printf("[Table %s] Action timeout for %s -> auto check", t.ID, playerID)
		err = t.game.Bet(playerID, 0)
	} else {
		log.Printf("[Table %s] Action timeout for %s -> auto fold", t.ID, playerID)
		err = t.game.Fold(playerID)
	}
	if err != nil {
		log.Printf("[Table %s] timeout auto-action failed for %s: %v", t.ID, playerID, err)
		return
	}

	t.afterActionLocked()
	t.stateDirty = true
}

func (t *Table) armActionTimeoutLocked() {
	snap := t.game.Snapshot()
	if !handRunning(snap) {
		t.clearActionTimeoutLocked()
		return
	}
	acting := actingPlayer(snap)
	if acting == nil {
		t.clearActionTimeoutLocked()
		return
	}
	if acting.ID == t.actionPlayerID && !t.actionDeadline.IsZero() {
		return // clock already running for this player
	}
	t.actionPlayerID = acting.ID
	t.actionDeadline = time.Now().Add(t.Config.ActionTimeout)
}

func (t *Table) clearActionTimeoutLocked() {
	t.actionPlayerID = ""
	t.actionDeadline = time.Time{}
}

// takeBroadcastLocked consumes the dirty flag and copies the member list
// and engine state so the fan-out can run after the lock is released.
func (t *Table) takeBroadcastLocked() (map[string]string, holdem.Snapshot, bool) {
	if !t.stateDirty {
		return nil, holdem.Snapshot{}, false
	}
	t.stateDirty = false
	members := make(map[string]string, len(t.members))
	for clientID, playerID := range t.members {
		members[clientID] = playerID
	}
	return members, t.game.Snapshot(), true
}

// fanOutState sends each member their own view of the table. Hole cards
// are filtered per viewer, so every client gets a distinct frame. Runs
// without t.mu held.
func (t *Table) fanOutState(members map[string]string, snap holdem.Snapshot) {
	for clientID, playerID := range members {
		data, err := json.Marshal(codec.NewGameState(snap, playerID))
		if err != nil {
			log.Printf("[Table %s] marshal state failed: %v", t.ID, err)
			return
		}
		t.broadcast(clientID, data)
	}
}

// SubmitEvent sends an event to the actor and waits for the result.
func (t *Table) SubmitEvent(e Event) error {
	if e.Response == nil {
		e.Response = make(chan error, 1)
	}

	t.mu.RLock()
	closed := t.closed
	t.mu.RUnlock()
	if closed {
		return ErrTableClosed
	}

	select {
	case t.events <- e:
	case <-t.done:
		return ErrTableClosed
	}

	select {
	case err := <-e.Response:
		return err
	case <-t.done:
		return ErrTableClosed
	}
}

// Join adds a client to the table and returns the seat created for them.
func (t *Table) Join(clientID, playerName string) (holdem.PlayerSnapshot, error) {
	if err := t.SubmitEvent(Event{Type: EventJoin, ClientID: clientID, PlayerName: playerName}); err != nil {
		return holdem.PlayerSnapshot{}, err
	}

	t.mu.RLock()
	playerID := t.members[clientID]
	t.mu.RUnlock()

	for _, ps := range t.game.Snapshot().Players {
		if ps.ID == playerID {
			return ps, nil
		}
	}
	return holdem.PlayerSnapshot{}, holdem.ErrPlayerNotFound
}

// Leave removes a client from the table.
func (t *Table) Leave(clientID string) error {
	return t.SubmitEvent(Event{Type: EventLeave, ClientID: clientID})
}

// Bet submits a bet or call for the client's player.
func (t *Table) Bet(clientID, playerID string, amount int64) error {
	return t.SubmitEvent(Event{Type: EventBet, ClientID: clientID, PlayerID: playerID, Amount: amount})
}

// Fold submits a fold for the client's player.
func (t *Table) Fold(clientID, playerID string) error {
	return t.SubmitEvent(Event{Type: EventFold, ClientID: clientID, PlayerID: playerID})
}

// Snapshot returns current game state (thread-safe).
func (t *Table) Snapshot() holdem.Snapshot {
	return t.game.Snapshot()
}

// MemberCount returns the number of connected clients.
func (t *Table) MemberCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.members)
}

// IsIdleFor reports whether the table has had no members for at least ttl.
func (t *Table) IsIdleFor(ttl time.Duration) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.closed {
		return true
	}
	if len(t.members) > 0 {
		return false
	}
	if t.emptySince.IsZero() {
		return false
	}
	return time.Since(t.emptySince) >= ttl
}

func (t *Table) IsClosed() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.closed
}

// Stop shuts down the table actor.
func (t *Table) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
}

func (t *Table) stopLocked() {
	t.closed = true
	t.nextHandAt = time.Time{}
	t.clearActionTimeoutLocked()
	t.stopOnce.Do(func() {
		close(t.done)
	})
}

func handRunning(snap holdem.Snapshot) bool {
	return snap.HandActive && !snap.HandOver
}

func actingPlayer(snap holdem.Snapshot) *holdem.PlayerSnapshot {
	idx := snap.CurrentPlayerIndex
	if idx < 0 || idx >= len(snap.Players) {
		return nil
	}
	return &snap.Players[idx]
}
