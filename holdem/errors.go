package holdem

import (
	"errors"
	"fmt"
)

var (
	ErrTableFull        = errors.New("table is full")
	ErrPlayerNotFound   = errors.New("player not found")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrDeckExhausted    = errors.New("deck exhausted")
	ErrHandOver         = errors.New("hand is over")
	ErrBettingOpen      = errors.New("betting round not complete")
	ErrNoActivePlayers  = errors.New("no active players remain")
)

// InvalidActionError covers rule-violating player actions: betting more
// than available chips, acting while folded, acting out of turn. These
// always surface to the caller rather than being dropped.
type InvalidActionError string

func (e InvalidActionError) Error() string { return "invalid action: " + string(e) }

func errInvalidAction(format string, args ...any) error {
	return InvalidActionError(fmt.Sprintf(format, args...))
}
