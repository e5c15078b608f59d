package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// GameType names a chance procedure
type GameType string

const (
	GameTypeCoinFlip    GameType = "coin_flip"
	GameTypeDiceRoll    GameType = "dice_roll"
	GameTypeNumberGuess GameType = "number_guess"
)

// IsValid returns true for the supported game types
func (gt GameType) IsValid() bool {
	switch gt {
	case GameTypeCoinFlip, GameTypeDiceRoll, GameTypeNumberGuess:
		return true
	}
	return false
}

// GameResult is the outcome of a single play
type GameResult string

const (
	GameResultWon  GameResult = "won"
	GameResultLost GameResult = "lost"
)

// CoinSide is a coin flip result
type CoinSide string

const (
	CoinSideHeads CoinSide = "heads"
	CoinSideTails CoinSide = "tails"
)

// Game is an append-only record of one wager
type Game struct {
	ID              int64           `db:"id" json:"id"`
	UserID          int64           `db:"user_id" json:"user_id"`
	GameType        GameType        `db:"game_type" json:"game_type"`
	StakeAmount     decimal.Decimal `db:"stake_amount" json:"stake_amount"`
	Result          GameResult      `db:"result" json:"result"`
	InstitutionCode string          `db:"institution_code" json:"institution_code"`
	Details         GameDetails     `db:"metadata" json:"details"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
}

// Won reports whether the play was a win
func (g *Game) Won() bool {
	return g.Result == GameResultWon
}

// GameDetails carries the internals of a resolved game
type GameDetails interface {
	Game() GameType
	Outcome() GameResult
}

// CoinFlipDetails wins on heads
type CoinFlipDetails struct {
	Side CoinSide `json:"result"`
}

func (d CoinFlipDetails) Game() GameType { return GameTypeCoinFlip }

func (d CoinFlipDetails) Outcome() GameResult {
	if d.Side == CoinSideHeads {
		return GameResultWon
	}
	return GameResultLost
}

// DiceRollDetails wins on a six
type DiceRollDetails struct {
	Roll int `json:"roll"`
}

func (d DiceRollDetails) Game() GameType { return GameTypeDiceRoll }

func (d DiceRollDetails) Outcome() GameResult {
	if d.Roll == 6 {
		return GameResultWon
	}
	return GameResultLost
}

// NumberGuessDetails wins when the guess matches the target
type NumberGuessDetails struct {
	Target int `json:"target"`
	Guess  int `json:"guess"`
}

func (d NumberGuessDetails) Game() GameType { return GameTypeNumberGuess }

func (d NumberGuessDetails) Outcome() GameResult {
	if d.Guess == d.Target {
		return GameResultWon
	}
	return GameResultLost
}

// MarshalGameDetails encodes details tagged with the game type
func MarshalGameDetails(d GameDetails) ([]byte, error) {
	body, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s details: %w", d.Game(), err)
	}
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten %s details: %w", d.Game(), err)
	}
	game, _ := json.Marshal(d.Game())
	fields["game"] = game
	return json.Marshal(fields)
}

// UnmarshalGameDetails decodes a tagged details payload
func UnmarshalGameDetails(data []byte) (GameDetails, error) {
	var tag struct {
		Game GameType `json:"game"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("failed to read game tag: %w", err)
	}

	switch tag.Game {
	case GameTypeCoinFlip:
		var d CoinFlipDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case GameTypeDiceRoll:
		var d DiceRollDetails
		err := json.Unmarshal(data, &d)
		return d, err
	case GameTypeNumberGuess:
		var d NumberGuessDetails
		err := json.Unmarshal(data, &d)
		return d, err
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameType, tag.Game)
	}
}

// MarshalJSON writes the game with tagged details
func (g Game) MarshalJSON() ([]byte, error) {
	type plain Game
	var details json.RawMessage = []byte("null")
	if g.Details != nil {
		var err error
		if details, err = MarshalGameDetails(g.Details); err != nil {
			return nil, err
		}
	}
	return json.Marshal(struct {
		plain
		Details json.RawMessage `json:"details"`
	}{plain: plain(g), Details: details})
}
