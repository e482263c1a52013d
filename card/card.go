package card

import "fmt"

// Card encodes one playing card in a single byte:
// high nibble = suit (0:Spade, 1:Heart, 2:Club, 3:Diamond),
// low nibble = rank (1:A, 2..9, 10:T, 11:J, 12:Q, 13:K).
type Card byte

const CardInvalid Card = 0

func (c Card) String() string {
	if c == CardInvalid {
		return "Invalid"
	}
	return fmt.Sprintf("%s%s", c.Suit(), c.RankName())
}

// Rank returns the raw rank value 1-13 (A=1, K=13).
func (c Card) Rank() byte {
	if c == CardInvalid {
		return 0
	}
	return byte(c & 0x0F)
}

func (c Card) Suit() Suit {
	return Suit(c >> 4)
}

// RankName renders the rank the way clients expect it: 2..10, J, Q, K, A.
func (c Card) RankName() string {
	switch r := c.Rank(); r {
	case 1:
		return "A"
	case 11:
		return "J"
	case 12:
		return "Q"
	case 13:
		return "K"
	default:
		return fmt.Sprintf("%d", r)
	}
}

// Make builds a card from a suit and a rank value 1-13.
func Make(s Suit, rank byte) Card {
	return Card(byte(s)<<4 | rank&0x0F)
}
