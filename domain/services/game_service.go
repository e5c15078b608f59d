package services

import (
	"context"
	"fmt"

	"celestia/domain/entities"
	"celestia/domain/interfaces"
	"celestia/events"

	"github.com/shopspring/decimal"
)

type gameService struct {
	walletRepo     interfaces.WalletRepository
	gameRepo       interfaces.GameRepository
	settlement     interfaces.SettlementService
	rng            interfaces.RandomSource
	eventPublisher interfaces.EventPublisher
}

// NewGameService creates a new game service
func NewGameService(
	walletRepo interfaces.WalletRepository,
	gameRepo interfaces.GameRepository,
	settlement interfaces.SettlementService,
	rng interfaces.RandomSource,
	eventPublisher interfaces.EventPublisher,
) interfaces.GameService {
	if rng == nil {
		rng = DefaultRandomSource()
	}
	return &gameService{
		walletRepo:     walletRepo,
		gameRepo:       gameRepo,
		settlement:     settlement,
		rng:            rng,
		eventPublisher: eventPublisher,
	}
}

func (s *gameService) PlayGame(ctx context.Context, userID int64, institutionCode string, gameType entities.GameType, stake decimal.Decimal) (*interfaces.Play, error) {
	if !gameType.IsValid() {
		return nil, fmt.Errorf("%w: %q", entities.ErrInvalidGameType, gameType)
	}
	if !stake.IsPositive() {
		return nil, entities.ErrInvalidAmount
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet == nil {
		return nil, entities.ErrWalletNotFound
	}
	if !wallet.CanDebit(stake) {
		return nil, fmt.Errorf("%w: have %s, staking %s", entities.ErrInsufficientBalance, wallet.Balance, stake)
	}

	details, err := ResolveGame(gameType, s.rng)
	if err != nil {
		return nil, err
	}

	game := &entities.Game{
		UserID:          userID,
		GameType:        gameType,
		StakeAmount:     stake,
		Result:          details.Outcome(),
		InstitutionCode: institutionCode,
		Details:         details,
	}
	if err := s.gameRepo.Append(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to record game: %w", err)
	}

	settlement, err := s.settlement.Settle(ctx, interfaces.SettlementRequest{
		UserID:          userID,
		InstitutionCode: institutionCode,
		Type:            entities.TransactionTypeGame,
		Amount:          stake,
		Game:            game,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to settle game: %w", err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(events.GamePlayedEvent{
			GameID:          game.ID,
			UserID:          userID,
			InstitutionCode: institutionCode,
			GameType:        gameType,
			StakeAmount:     stake,
			Result:          game.Result,
			NewBalance:      settlement.NewBalance,
		})
	}

	return &interfaces.Play{Game: game, Settlement: settlement}, nil
}
