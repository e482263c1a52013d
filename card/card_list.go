package card

type CardList []Card

func (ds *CardList) Init(cards []Card) {
	*ds = make([]Card, len(cards))
	copy(*ds, cards)
}

func (ds CardList) Count() int {
	return len(ds)
}

func (ds *CardList) Add(cards ...Card) {
	*ds = append(*ds, cards...)
}

// PopCard removes and returns the top card. ok is false on an empty list.
func (ds *CardList) PopCard() (Card, bool) {
	n := ds.Count()
	if n == 0 {
		return CardInvalid, false
	}
	c := (*ds)[n-1]
	*ds = (*ds)[:n-1]
	return c, true
}

// PopCards removes size cards from the top. ok is false if fewer remain.
func (ds *CardList) PopCards(size int) ([]Card, bool) {
	if size > ds.Count() {
		return nil, false
	}
	cards := make([]Card, size)
	copy(cards, (*ds)[:size])
	*ds = (*ds)[size:]
	return cards, true
}
