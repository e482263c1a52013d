package holdem

import (
	"math/rand"
	"sync"
	"time"

	"github.com/Aspandiyar933/poker/card"

	"github.com/google/uuid"
)

// Game is a single poker table: seated players, deck, community cards, pot
// and the betting round state machine. All mutations serialize on g.mu so
// concurrent client actions against one table cannot corrupt its invariants.
type Game struct {
	cfg Config
	rng *rand.Rand

	mu sync.Mutex

	id      string
	players []*Player // seating order, dealer-relative

	// hand state
	round          Round
	deck           card.CardList
	communityCards card.CardList
	pot            int64

	dealerIndex int
	curIndex    int

	curBet     int64
	actedCount int // actions applied since the current street started

	handActive bool
	handOver   bool
}

func NewGame(cfg Config) (*Game, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Game{
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(seed)),
		id:       uuid.NewString(),
		players:  make([]*Player, 0, cfg.MaxPlayers),
		round:    RoundPreflop,
		curIndex: InvalidIndex,
	}, nil
}

func (g *Game) ID() string { return g.id }

// AddPlayer seats a new player with the given stack. A player joining while
// a hand is running sits out folded until the next deal, so the join never
// has to fail and never stalls the live betting round.
func (g *Game) AddPlayer(name string, chips int64) (PlayerSnapshot, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) >= g.cfg.MaxPlayers {
		return PlayerSnapshot{}, ErrTableFull
	}
	if chips < 0 {
		return PlayerSnapshot{}, errInvalidAction("starting chips must be >= 0")
	}
	p := &Player{
		ID:    uuid.NewString(),
		Name:  name,
		chips: chips,
	}
	if g.handActive && !g.handOver {
		p.folded = true
	}
	g.players = append(g.players, p)
	return snapshotPlayer(p), nil
}

// DealHand resets the table for a fresh hand: full reshuffled deck, two
// hole cards per player, cleared community cards and per-player flags.
func (g *Game) DealHand() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handActive && !g.handOver {
		return errInvalidAction("hand already in progress")
	}
	if len(g.players) < g.cfg.MinPlayers {
		return ErrNotEnoughPlayers
	}

	g.deck.Init(card.FullDeck())
	g.rng.Shuffle(g.deck.Count(), func(i, j int) {
		g.deck[i], g.deck[j] = g.deck[j], g.deck[i]
	})
	if g.deck.Count() < 2*len(g.players) {
		return ErrDeckExhausted
	}

	for _, p := range g.players {
		p.resetForNewHand()
	}
	// Two laps around the table, one card per player per lap.
	for lap := 0; lap < 2; lap++ {
		for _, p := range g.players {
			c, ok := g.deck.PopCard()
			if !ok {
				return ErrDeckExhausted
			}
			p.addHandCard(c)
		}
	}

	g.communityCards = nil
	g.pot = 0
	g.curBet = 0
	g.actedCount = 0
	g.round = RoundPreflop
	g.handActive = true
	g.handOver = false
	return nil
}

// PostBlinds makes the blind seats pay into the pot and sets the first
// player to act. Heads-up the dealer posts the small blind; with three or
// more players the blinds sit left of the dealer. Short stacks post what
// they have and go all-in rather than failing silently.
func (g *Game) PostBlinds() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.handActive || g.handOver {
		return errInvalidAction("no hand in progress")
	}
	if g.round != RoundPreflop || g.pot != 0 || g.curBet != 0 {
		return errInvalidAction("blinds already posted")
	}

	n := len(g.players)
	var sbIndex, bbIndex int
	if n == 2 {
		sbIndex = g.dealerIndex
		bbIndex = (g.dealerIndex + 1) % n
	} else {
		sbIndex = (g.dealerIndex + 1) % n
		bbIndex = (g.dealerIndex + 2) % n
	}

	g.pot += g.players[sbIndex].placeBet(g.cfg.SmallBlind)
	g.pot += g.players[bbIndex].placeBet(g.cfg.BigBlind)

	g.curBet = g.cfg.BigBlind
	g.curIndex = g.nextActiveFromLocked((bbIndex + 1) % n)
	g.actedCount = 0
	return nil
}

// Bet commits amount additional chips for the player: a call tops the bet
// up to the table bet, a raise goes past it. The amount is the delta the
// player adds this action, not a street total.
func (g *Game) Bet(playerID string, amount int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, p, err := g.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	if amount < 0 {
		return errInvalidAction("bet amount must be >= 0")
	}
	if amount > p.chips {
		return errInvalidAction("bet %d exceeds available chips %d", amount, p.chips)
	}

	g.pot += p.placeBet(amount)
	if p.bet > g.curBet {
		g.curBet = p.bet
	}
	g.actedCount++
	return nil
}

// Fold takes the player out of the hand.
func (g *Game) Fold(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, p, err := g.actingPlayerLocked(playerID)
	if err != nil {
		return err
	}
	p.folded = true
	g.actedCount++
	return nil
}

// AdvanceTurn moves the turn pointer to the next non-folded seat. When only
// one player is left in the hand it ends the hand instead of walking the
// ring forever.
func (g *Game) AdvanceTurn() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.handActive {
		return errInvalidAction("no hand in progress")
	}
	if g.handOver {
		return ErrHandOver
	}

	active := 0
	for _, p := range g.players {
		if !p.folded {
			active++
		}
	}
	if active == 0 {
		return ErrNoActivePlayers
	}
	if active == 1 {
		g.endHandLocked()
		return nil
	}

	g.curIndex = g.nextActiveFromLocked((g.curIndex + 1) % len(g.players))
	return nil
}

// AdvanceRound moves to the next street, but only once the betting round is
// complete: every player still able to act has matched the table bet and at
// least one action happened this street. Street bets reset on transition.
func (g *Game) AdvanceRound() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.handActive {
		return errInvalidAction("no hand in progress")
	}
	if g.handOver || g.round == RoundShowdown {
		return ErrHandOver
	}
	if !g.bettingCompleteLocked() {
		return ErrBettingOpen
	}

	var err error
	switch g.round {
	case RoundPreflop:
		err = g.dealFlopLocked()
	case RoundFlop:
		err = g.dealTurnLocked()
	case RoundTurn:
		err = g.dealRiverLocked()
	case RoundRiver:
		g.round = RoundShowdown
		g.endHandLocked()
	}
	if err != nil {
		return err
	}

	g.resetBetsLocked()
	return nil
}

func (g *Game) DealFlop() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealFlopLocked()
}

func (g *Game) DealTurn() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealTurnLocked()
}

func (g *Game) DealRiver() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.dealRiverLocked()
}

// RemovePlayer releases a seat. Seat mutation during an active hand would
// break pot and turn accounting, so removal is only allowed between hands.
func (g *Game) RemovePlayer(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.handActive && !g.handOver {
		return errInvalidAction("cannot remove player mid-hand")
	}
	idx, _ := g.findPlayerLocked(playerID)
	if idx == InvalidIndex {
		return ErrPlayerNotFound
	}

	g.players = append(g.players[:idx], g.players[idx+1:]...)
	g.curIndex = InvalidIndex
	if len(g.players) == 0 {
		g.dealerIndex = 0
		return nil
	}
	if idx < g.dealerIndex {
		g.dealerIndex--
	}
	if g.dealerIndex >= len(g.players) {
		g.dealerIndex = 0
	}
	return nil
}

// RotateDealer moves the button one seat, once per hand between hands.
func (g *Game) RotateDealer() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.players) == 0 {
		return ErrNotEnoughPlayers
	}
	if g.handActive && !g.handOver {
		return errInvalidAction("cannot rotate dealer mid-hand")
	}
	g.dealerIndex = (g.dealerIndex + 1) % len(g.players)
	return nil
}

// BettingComplete reports whether the current street's betting is settled.
func (g *Game) BettingComplete() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.bettingCompleteLocked()
}

// HandOver reports whether the current hand reached a terminal state.
func (g *Game) HandOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.handOver
}

// --- internal, caller holds g.mu ---

// actingPlayerLocked resolves a player id and checks it is that player's
// turn in a live hand.
func (g *Game) actingPlayerLocked(playerID string) (int, *Player, error) {
	if !g.handActive {
		return InvalidIndex, nil, errInvalidAction("no hand in progress")
	}
	if g.handOver {
		return InvalidIndex, nil, ErrHandOver
	}
	idx, p := g.findPlayerLocked(playerID)
	if p == nil {
		return InvalidIndex, nil, ErrPlayerNotFound
	}
	if p.folded {
		return InvalidIndex, nil, errInvalidAction("player has folded")
	}
	if idx != g.curIndex {
		return InvalidIndex, nil, errInvalidAction("acting out of turn")
	}
	return idx, p, nil
}

func (g *Game) findPlayerLocked(playerID string) (int, *Player) {
	for i, p := range g.players {
		if p.ID == playerID {
			return i, p
		}
	}
	return InvalidIndex, nil
}

// nextActiveFromLocked walks the seats from start and returns the first
// non-folded index. Callers guarantee at least one active player exists.
func (g *Game) nextActiveFromLocked(start int) int {
	n := len(g.players)
	for i := 0; i < n; i++ {
		idx := (start + i) % n
		if !g.players[idx].folded {
			return idx
		}
	}
	return InvalidIndex
}

func (g *Game) bettingCompleteLocked() bool {
	if g.actedCount == 0 {
		return false
	}
	for _, p := range g.players {
		if p.folded || p.allIn {
			continue
		}
		if p.bet != g.curBet {
			return false
		}
	}
	return true
}

func (g *Game) resetBetsLocked() {
	g.curBet = 0
	g.actedCount = 0
	for _, p := range g.players {
		p.resetBet()
	}
}

// burnAndDealLocked discards one card then reveals count community cards,
// the standard anti-cheat convention.
func (g *Game) burnAndDealLocked(count int) error {
	if _, ok := g.deck.PopCard(); !ok {
		return ErrDeckExhausted
	}
	cards, ok := g.deck.PopCards(count)
	if !ok {
		return ErrDeckExhausted
	}
	g.communityCards.Add(cards...)
	return nil
}

func (g *Game) dealFlopLocked() error {
	if !g.handActive || g.handOver {
		return errInvalidAction("no hand in progress")
	}
	if g.round != RoundPreflop {
		return errInvalidAction("flop follows preflop, current round is %s", g.round)
	}
	if err := g.burnAndDealLocked(3); err != nil {
		return err
	}
	g.round = RoundFlop
	return nil
}

func (g *Game) dealTurnLocked() error {
	if !g.handActive || g.handOver {
		return errInvalidAction("no hand in progress")
	}
	if g.round != RoundFlop {
		return errInvalidAction("turn follows flop, current round is %s", g.round)
	}
	if err := g.burnAndDealLocked(1); err != nil {
		return err
	}
	g.round = RoundTurn
	return nil
}

func (g *Game) dealRiverLocked() error {
	if !g.handActive || g.handOver {
		return errInvalidAction("no hand in progress")
	}
	if g.round != RoundTurn {
		return errInvalidAction("river follows turn, current round is %s", g.round)
	}
	if err := g.burnAndDealLocked(1); err != nil {
		return err
	}
	g.round = RoundRiver
	return nil
}

// endHandLocked marks the hand terminal. handActive stays set until the
// next DealHand so post-hand actions report ErrHandOver, not "no hand".
func (g *Game) endHandLocked() {
	g.handOver = true
}
