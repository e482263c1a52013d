package holdem

import "github.com/Aspandiyar933/poker/card"

type PlayerSnapshot struct {
	ID        string
	Name      string
	Chips     int64
	Bet       int64
	Folded    bool
	AllIn     bool
	HandCards []card.Card
}

type Snapshot struct {
	ID         string
	Round      Round
	Pot        int64
	CurBet     int64
	HandActive bool
	HandOver   bool

	DealerIndex        int
	CurrentPlayerIndex int

	DeckCount      int
	CommunityCards []card.Card
	Players        []PlayerSnapshot
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()

	s := Snapshot{
		ID:                 g.id,
		Round:              g.round,
		Pot:                g.pot,
		CurBet:             g.curBet,
		HandActive:         g.handActive,
		HandOver:           g.handOver,
		DealerIndex:        g.dealerIndex,
		CurrentPlayerIndex: g.curIndex,
		DeckCount:          g.deck.Count(),
		CommunityCards:     append([]card.Card{}, g.communityCards...),
	}
	for _, p := range g.players {
		s.Players = append(s.Players, snapshotPlayer(p))
	}
	return s
}

func snapshotPlayer(p *Player) PlayerSnapshot {
	return PlayerSnapshot{
		ID:        p.ID,
		Name:      p.Name,
		Chips:     p.chips,
		Bet:       p.bet,
		Folded:    p.folded,
		AllIn:     p.allIn,
		HandCards: append([]card.Card{}, p.handCards...),
	}
}
