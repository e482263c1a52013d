package holdem

// Round is the betting street. Strictly linear: a hand only ever moves
// forward through these, and showdown is terminal.
type Round byte

const (
	RoundPreflop Round = iota
	RoundFlop
	RoundTurn
	RoundRiver
	RoundShowdown
)

var RoundDictionary = map[Round]string{
	RoundPreflop:  "preflop",
	RoundFlop:     "flop",
	RoundTurn:     "turn",
	RoundRiver:    "river",
	RoundShowdown: "showdown",
}

func (r Round) String() string {
	if s, ok := RoundDictionary[r]; ok {
		return s
	}
	return "unknown"
}

// InvalidIndex marks "no seat" in dealer/turn pointers.
const InvalidIndex = -1
