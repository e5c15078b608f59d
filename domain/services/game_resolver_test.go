package services

import (
	"math"
	"testing"

	"celestia/domain/entities"
	"celestia/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveGame_DiceWinRate(t *testing.T) {
	const trials = 100_000
	rng := NewRandomSource(42, 1337)

	wins := 0
	for i := 0; i < trials; i++ {
		details, err := ResolveGame(entities.GameTypeDiceRoll, rng)
		require.NoError(t, err)
		roll := details.(entities.DiceRollDetails).Roll
		require.True(t, roll >= 1 && roll <= 6, "roll %d out of range", roll)
		if details.Outcome() == entities.GameResultWon {
			wins++
		}
	}

	p := 1.0 / 6.0
	stddev := math.Sqrt(p * (1 - p) / trials)
	rate := float64(wins) / trials
	assert.InDelta(t, p, rate, 5*stddev, "dice win rate %f", rate)
}

func TestResolveGame_CoinAndGuessRates(t *testing.T) {
	const trials = 100_000
	rng := NewRandomSource(7, 9)

	coinWins, guessWins := 0, 0
	for i := 0; i < trials; i++ {
		coin, err := ResolveGame(entities.GameTypeCoinFlip, rng)
		require.NoError(t, err)
		if coin.Outcome() == entities.GameResultWon {
			coinWins++
		}
		guess, err := ResolveGame(entities.GameTypeNumberGuess, rng)
		require.NoError(t, err)
		d := guess.(entities.NumberGuessDetails)
		require.True(t, d.Target >= 1 && d.Target <= 10)
		require.True(t, d.Guess >= 1 && d.Guess <= 10)
		if guess.Outcome() == entities.GameResultWon {
			guessWins++
		}
	}

	assert.InDelta(t, 0.5, float64(coinWins)/trials, 5*math.Sqrt(0.25/trials))
	assert.InDelta(t, 0.1, float64(guessWins)/trials, 5*math.Sqrt(0.09/trials))
}

func TestResolveGame_Deterministic(t *testing.T) {
	details, err := ResolveGame(entities.GameTypeNumberGuess, testhelpers.NewSequenceRandom(6, 6))
	require.NoError(t, err)
	assert.Equal(t, entities.NumberGuessDetails{Target: 7, Guess: 7}, details)

	_, err = ResolveGame(entities.GameType("slots"), testhelpers.NewSequenceRandom())
	assert.ErrorIs(t, err, entities.ErrInvalidGameType)
}
