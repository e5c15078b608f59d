package services

import (
	"celestia/domain/entities"
	"celestia/domain/interfaces"
)

const (
	diceFaces    = 6
	guessCeiling = 10
)

// ResolveGame draws the outcome of one play from rng
func ResolveGame(gameType entities.GameType, rng interfaces.RandomSource) (entities.GameDetails, error) {
	switch gameType {
	case entities.GameTypeCoinFlip:
		side := entities.CoinSideTails
		if rng.IntN(2) == 0 {
			side = entities.CoinSideHeads
		}
		return entities.CoinFlipDetails{Side: side}, nil
	case entities.GameTypeDiceRoll:
		return entities.DiceRollDetails{Roll: rng.IntN(diceFaces) + 1}, nil
	case entities.GameTypeNumberGuess:
		target := rng.IntN(guessCeiling) + 1
		guess := rng.IntN(guessCeiling) + 1
		return entities.NumberGuessDetails{Target: target, Guess: guess}, nil
	default:
		return nil, entities.ErrInvalidGameType
	}
}
