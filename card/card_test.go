package card

import "testing"

func TestFullDeckHas52DistinctCards(t *testing.T) {
	deck := FullDeck()
	if deck.Count() != 52 {
		t.Fatalf("expected 52 cards, got %d", deck.Count())
	}
	seen := make(map[Card]bool, 52)
	for _, c := range deck {
		if c == CardInvalid {
			t.Fatalf("full deck contains invalid card")
		}
		if seen[c] {
			t.Fatalf("duplicate card %s in full deck", c)
		}
		seen[c] = true
	}
}

func TestPopCardDrainsDeck(t *testing.T) {
	var ds CardList
	ds.Init(FullDeck())

	for i := 0; i < 52; i++ {
		if _, ok := ds.PopCard(); !ok {
			t.Fatalf("unexpected empty deck after %d draws", i)
		}
	}
	if _, ok := ds.PopCard(); ok {
		t.Fatalf("expected draw from empty deck to fail")
	}
	if ds.Count() != 0 {
		t.Fatalf("expected empty deck, got %d cards", ds.Count())
	}
}

func TestPopCardsRefusesOverdraw(t *testing.T) {
	var ds CardList
	ds.Init(FullDeck())

	cards, ok := ds.PopCards(3)
	if !ok || len(cards) != 3 {
		t.Fatalf("expected 3 cards, got %d (ok=%v)", len(cards), ok)
	}
	if _, ok := ds.PopCards(50); ok {
		t.Fatalf("expected overdraw of 50 from 49 remaining to fail")
	}
	if ds.Count() != 49 {
		t.Fatalf("failed overdraw must not consume cards, got %d", ds.Count())
	}
}

func TestCardRendering(t *testing.T) {
	cases := []struct {
		c    Card
		want string
	}{
		{Make(Spade, 1), "♠A"},
		{Make(Heart, 10), "♥10"},
		{Make(Club, 12), "♣Q"},
		{Make(Diamond, 2), "♦2"},
	}
	for _, tc := range cases {
		if got := tc.c.String(); got != tc.want {
			t.Fatalf("expected %s, got %s", tc.want, got)
		}
	}
}
