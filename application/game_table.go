package application

import (
	"context"
	"fmt"
	"time"

	"celestia/application/dto"
	"celestia/domain/entities"
	"celestia/domain/interfaces"
	"celestia/domain/pricing"
	"celestia/domain/services"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// GameTable resolves and settles games, each in its own unit of work.
// It never returns an error: every outcome is a dto.GameResult.
type GameTable struct {
	uowFactory UnitOfWorkFactory
	engine     *pricing.Engine
	rng        interfaces.RandomSource
	clock      interfaces.Clock
	metrics    SettlementMetrics
}

// NewGameTable creates a new GameTable
func NewGameTable(uowFactory UnitOfWorkFactory, engine *pricing.Engine, rng interfaces.RandomSource, clock interfaces.Clock, metrics SettlementMetrics) *GameTable {
	if rng == nil {
		rng = services.DefaultRandomSource()
	}
	if clock == nil {
		clock = time.Now
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &GameTable{
		uowFactory: uowFactory,
		engine:     engine,
		rng:        rng,
		clock:      clock,
		metrics:    metrics,
	}
}

// Play stakes amount on one game against the institution market
func (g *GameTable) Play(ctx context.Context, userID int64, institutionCode string, gameType entities.GameType, stake decimal.Decimal) (result dto.GameResult) {
	start := time.Now()
	fields := log.Fields{
		"user_id":          userID,
		"institution_code": institutionCode,
		"game_type":        gameType,
		"stake":            stake.String(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(fields).WithField("panic", r).Error("Game panicked")
			result = dto.GameFailure(gameType, institutionCode, stake, fmt.Errorf("game aborted: %v", r))
		}
		outcome := "success"
		gameOutcome := string(result.Result)
		if !result.Success {
			outcome = string(result.Reason)
			gameOutcome = "failed"
		}
		g.metrics.RecordSettlement(ctx, string(entities.TransactionTypeGame), outcome, time.Since(start))
		g.metrics.RecordGame(ctx, string(gameType), gameOutcome)
	}()

	uow := g.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to begin game")
		return dto.GameFailure(gameType, institutionCode, stake, err)
	}
	defer uow.Rollback()

	settlementService := services.NewSettlementService(
		uow.WalletRepository(),
		uow.TokenMarketRepository(),
		uow.TransactionRepository(),
		g.engine,
		uow.EventBus(),
		g.clock,
	)
	gameService := services.NewGameService(
		uow.WalletRepository(),
		uow.GameRepository(),
		settlementService,
		g.rng,
		uow.EventBus(),
	)

	play, err := gameService.PlayGame(ctx, userID, institutionCode, gameType, stake)
	if err != nil {
		failure := dto.GameFailure(gameType, institutionCode, stake, err)
		logFailure(fields, failure.Reason, err)
		return failure
	}

	if err := uow.Commit(); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to commit game")
		return dto.GameFailure(gameType, institutionCode, stake, err)
	}

	log.WithFields(fields).WithFields(log.Fields{
		"game_id":     play.Game.ID,
		"result":      play.Game.Result,
		"new_balance": play.Settlement.NewBalance.String(),
	}).Info("Game settled")

	message := "You lost!"
	if play.Game.Won() {
		message = "You won!"
	}

	return dto.GameResult{
		Success:         true,
		Message:         message,
		GameID:          play.Game.ID,
		GameType:        gameType,
		InstitutionCode: institutionCode,
		Stake:           stake,
		Result:          play.Game.Result,
		Details:         play.Game.Details,
		NewBalance:      play.Settlement.NewBalance,
		TokenValue:      play.Settlement.TokenValue,
		Fee:             play.Settlement.Fee,
	}
}
