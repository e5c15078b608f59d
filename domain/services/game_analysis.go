package services

import (
	"fmt"
	"math"

	"celestia/domain/entities"
	"celestia/domain/interfaces"
)

// chiSquaredCritical is the 95% critical value for one degree of freedom
const chiSquaredCritical = 3.841

// GameAnalysis summarizes a batch of simulated plays of one game
type GameAnalysis struct {
	GameType        entities.GameType
	Trials          int
	Wins            int
	ExpectedWinRate float64
	ActualWinRate   float64
	ChiSquared      float64
}

// Fair reports whether the observed win rate is consistent with the expected one
func (a GameAnalysis) Fair() bool {
	return a.ChiSquared < chiSquaredCritical
}

func (a GameAnalysis) String() string {
	verdict := "PASS"
	if !a.Fair() {
		verdict = "FAIL"
	}
	return fmt.Sprintf("%-12s trials=%d wins=%d expected=%.4f actual=%.4f chi2=%.2f %s",
		a.GameType, a.Trials, a.Wins, a.ExpectedWinRate, a.ActualWinRate, a.ChiSquared, verdict)
}

// ExpectedWinRate is the probability that one play of gameType is won
func ExpectedWinRate(gameType entities.GameType) (float64, error) {
	switch gameType {
	case entities.GameTypeCoinFlip:
		return 0.5, nil
	case entities.GameTypeDiceRoll:
		return 1.0 / diceFaces, nil
	case entities.GameTypeNumberGuess:
		return 1.0 / guessCeiling, nil
	default:
		return 0, entities.ErrInvalidGameType
	}
}

// AnalyzeGame resolves trials plays of gameType from rng and tests the win rate
func AnalyzeGame(gameType entities.GameType, trials int, rng interfaces.RandomSource) (GameAnalysis, error) {
	if trials <= 0 {
		return GameAnalysis{}, fmt.Errorf("trials must be positive, got %d", trials)
	}
	expected, err := ExpectedWinRate(gameType)
	if err != nil {
		return GameAnalysis{}, err
	}

	wins := 0
	for i := 0; i < trials; i++ {
		details, err := ResolveGame(gameType, rng)
		if err != nil {
			return GameAnalysis{}, err
		}
		if details.Outcome() == entities.GameResultWon {
			wins++
		}
	}

	expectedWins := float64(trials) * expected
	expectedLosses := float64(trials) * (1 - expected)
	chiSquared := math.Pow(float64(wins)-expectedWins, 2)/expectedWins +
		math.Pow(float64(trials-wins)-expectedLosses, 2)/expectedLosses

	return GameAnalysis{
		GameType:        gameType,
		Trials:          trials,
		Wins:            wins,
		ExpectedWinRate: expected,
		ActualWinRate:   float64(wins) / float64(trials),
		ChiSquared:      chiSquared,
	}, nil
}
