// Package codec defines the JSON wire messages exchanged with clients and
// the conversion from engine snapshots to client-facing state views.
package codec

import (
	"github.com/Aspandiyar933/poker/card"
	"github.com/Aspandiyar933/poker/holdem"

	"github.com/thoas/go-funk"
)

// Client message types.
const (
	TypeCreateGame = "CREATE_GAME"
	TypeJoinGame   = "JOIN_GAME"
	TypeBet        = "BET"
	TypeFold       = "FOLD"
)

// Server message types.
const (
	TypeGameCreated = "GAME_CREATED"
	TypeGameJoined  = "GAME_JOINED"
	TypeGameState   = "GAME_STATE"
	TypeError       = "ERROR"
)

// ClientMessage is the single inbound envelope. Bet and fold carry the
// acting player's own id, distinct from the game id.
type ClientMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName,omitempty"`
	GameID     string `json:"gameId,omitempty"`
	PlayerID   string `json:"playerId,omitempty"`
	Amount     int64  `json:"amount,omitempty"`
}

type GameCreated struct {
	Type     string `json:"type"`
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type GameJoined struct {
	Type     string `json:"type"`
	GameID   string `json:"gameId"`
	PlayerID string `json:"playerId"`
}

type GameState struct {
	Type  string    `json:"type"`
	State StateView `json:"state"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

type CardView struct {
	Suit string `json:"suit"`
	Rank string `json:"rank"`
}

type PlayerView struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Chips      int64      `json:"chips"`
	Hand       []CardView `json:"hand"`
	HasFolded  bool       `json:"hasFolded"`
	IsAllin    bool       `json:"isAllin"`
	CurrentBet int64      `json:"currentBet"`
}

type StateView struct {
	ID                 string       `json:"id"`
	Pot                int64        `json:"pot"`
	Players            []PlayerView `json:"players"`
	CommunityCards     []CardView   `json:"communityCards"`
	Round              string       `json:"round"`
	CurrentPlayerIndex int          `json:"currentPlayerIndex"`
}

func NewGameCreated(gameID, playerID string) GameCreated {
	return GameCreated{Type: TypeGameCreated, GameID: gameID, PlayerID: playerID}
}

func NewGameJoined(gameID, playerID string) GameJoined {
	return GameJoined{Type: TypeGameJoined, GameID: gameID, PlayerID: playerID}
}

func NewError(message string) ErrorMessage {
	return ErrorMessage{Type: TypeError, Message: message}
}

// NewGameState builds the per-viewer state broadcast. Hole cards belong to
// their owner only: every other player's hand is rendered empty.
func NewGameState(snap holdem.Snapshot, viewerID string) GameState {
	view := StateView{
		ID:                 snap.ID,
		Pot:                snap.Pot,
		Round:              snap.Round.String(),
		CurrentPlayerIndex: snap.CurrentPlayerIndex,
		CommunityCards:     cardViews(snap.CommunityCards),
		Players: funk.Map(snap.Players, func(ps holdem.PlayerSnapshot) PlayerView {
			pv := PlayerView{
				ID:         ps.ID,
				Name:       ps.Name,
				Chips:      ps.Chips,
				Hand:       []CardView{},
				HasFolded:  ps.Folded,
				IsAllin:    ps.AllIn,
				CurrentBet: ps.Bet,
			}
			if ps.ID == viewerID {
				pv.Hand = cardViews(ps.HandCards)
			}
			return pv
		}).([]PlayerView),
	}
	return GameState{Type: TypeGameState, State: view}
}

func cardViews(cards []card.Card) []CardView {
	views := make([]CardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, CardView{Suit: c.Suit().String(), Rank: c.RankName()})
	}
	return views
}
