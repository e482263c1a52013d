package holdem

import "github.com/Aspandiyar933/poker/card"

type Player struct {
	ID   string
	Name string

	chips int64
	bet   int64 // chips committed on the current street

	folded bool
	allIn  bool

	handCards card.CardList
}

func (p *Player) Chips() int64 { return p.chips }
func (p *Player) Bet() int64   { return p.bet }
func (p *Player) Folded() bool { return p.folded }
func (p *Player) AllIn() bool  { return p.allIn }

func (p *Player) Hand() []card.Card { return p.handCards }

func (p *Player) resetForNewHand() {
	p.bet = 0
	p.folded = false
	p.allIn = false
	p.handCards = make(card.CardList, 0, 2)
}

func (p *Player) addHandCard(cards ...card.Card) {
	p.handCards = append(p.handCards, cards...)
}

// placeBet moves up to amount chips into the player's street bet, capping
// at the remaining stack. Returns what was actually paid so the pot stays
// conserved even for short-stacked blinds.
func (p *Player) placeBet(amount int64) int64 {
	if amount <= 0 {
		return 0
	}
	if amount >= p.chips {
		amount = p.chips
	}
	p.chips -= amount
	p.bet += amount
	if p.chips == 0 {
		p.allIn = true
	}
	return amount
}

func (p *Player) resetBet() {
	p.bet = 0
}
