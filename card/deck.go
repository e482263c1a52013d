package card

// FullDeck returns the 52 distinct cards in deterministic suit-major order.
// Shuffling is the caller's job; the game engine shuffles with its own RNG.
func FullDeck() CardList {
	deck := make(CardList, 0, 52)
	for s := Spade; s <= Diamond; s++ {
		for rank := byte(1); rank <= 13; rank++ {
			deck = append(deck, Make(s, rank))
		}
	}
	return deck
}
