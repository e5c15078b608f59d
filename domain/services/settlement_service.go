package services

import (
	"context"
	"fmt"
	"time"

	"celestia/domain/entities"
	"celestia/domain/interfaces"
	"celestia/domain/pricing"
	"celestia/events"
)

type settlementService struct {
	walletRepo      interfaces.WalletRepository
	marketRepo      interfaces.TokenMarketRepository
	transactionRepo interfaces.TransactionRepository
	engine          *pricing.Engine
	eventPublisher  interfaces.EventPublisher
	now             interfaces.Clock
}

// NewSettlementService creates a new settlement service
func NewSettlementService(
	walletRepo interfaces.WalletRepository,
	marketRepo interfaces.TokenMarketRepository,
	transactionRepo interfaces.TransactionRepository,
	engine *pricing.Engine,
	eventPublisher interfaces.EventPublisher,
	clock interfaces.Clock,
) interfaces.SettlementService {
	if clock == nil {
		clock = time.Now
	}
	return &settlementService{
		walletRepo:      walletRepo,
		marketRepo:      marketRepo,
		transactionRepo: transactionRepo,
		engine:          engine,
		eventPublisher:  eventPublisher,
		now:             clock,
	}
}

func (s *settlementService) Settle(ctx context.Context, req interfaces.SettlementRequest) (*interfaces.Settlement, error) {
	if !req.Amount.IsPositive() {
		return nil, entities.ErrInvalidAmount
	}
	if req.InstitutionCode == "" {
		return nil, fmt.Errorf("institution code is required")
	}
	if !req.Type.IsSettlementType() {
		return nil, fmt.Errorf("unsupported settlement type %q", req.Type)
	}
	if req.Type == entities.TransactionTypeGame && req.Game == nil {
		return nil, fmt.Errorf("game settlement requires a resolved game")
	}

	wallet, err := s.walletRepo.GetByUserIDForUpdate(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet: %w", err)
	}
	if wallet == nil {
		return nil, entities.ErrWalletNotFound
	}

	oldBalance := wallet.Balance
	switch {
	case req.Type == entities.TransactionTypeBuy:
		wallet.Credit(req.Amount)
	case req.Type == entities.TransactionTypeGame && req.Game.Won():
		wallet.Credit(req.Amount)
	default:
		if err := wallet.Debit(req.Amount); err != nil {
			return nil, fmt.Errorf("%w: have %s, need %s", err, oldBalance, req.Amount)
		}
	}

	market, created, err := s.marketRepo.LoadOrCreateForUpdate(ctx, req.InstitutionCode)
	if err != nil {
		return nil, fmt.Errorf("failed to load market: %w", err)
	}

	adj, err := s.engine.Adjust(market, req.Type, req.Amount, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to price %s: %w", req.Type, err)
	}
	fee := s.engine.CollectFee(market, req.Amount)

	if err := s.walletRepo.UpdateBalance(ctx, wallet.ID, wallet.Balance); err != nil {
		return nil, fmt.Errorf("failed to update wallet balance: %w", err)
	}
	if err := s.marketRepo.Update(ctx, market); err != nil {
		return nil, fmt.Errorf("failed to update market: %w", err)
	}

	tx := &entities.Transaction{
		UserID:          req.UserID,
		WalletID:        wallet.ID,
		TransactionType: req.Type,
		Amount:          req.Amount,
		Fee:             fee,
		Status:          entities.TransactionStatusCompleted,
		InstitutionCode: req.InstitutionCode,
		Metadata:        metadataFor(req, adj),
	}
	if err := s.transactionRepo.Append(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to record transaction: %w", err)
	}

	if created {
		s.publish(events.MarketProvisionedEvent{
			InstitutionCode: market.InstitutionCode,
			InitialValue:    entities.DefaultMarketValue,
			TotalSupply:     market.TotalSupply,
		})
	}
	s.publish(events.SettlementCompletedEvent{
		TransactionID:   tx.ID,
		UserID:          req.UserID,
		InstitutionCode: req.InstitutionCode,
		TransactionType: req.Type,
		Amount:          req.Amount,
		Fee:             fee,
		OldBalance:      oldBalance,
		NewBalance:      wallet.Balance,
		TokenValue:      adj.NewValue,
	})

	return &interfaces.Settlement{
		Transaction:   tx,
		Market:        market,
		OldBalance:    oldBalance,
		NewBalance:    wallet.Balance,
		Fee:           fee,
		TokenValue:    adj.NewValue,
		MarketCreated: created,
	}, nil
}

func (s *settlementService) publish(event events.Event) {
	if s.eventPublisher == nil {
		return
	}
	// publishing to the transactional bus only queues the event
	_ = s.eventPublisher.Publish(event)
}

func metadataFor(req interfaces.SettlementRequest, adj pricing.Adjustment) entities.TransactionMetadata {
	if req.Type == entities.TransactionTypeGame {
		return entities.GameMetadata{
			GameID:          req.Game.ID,
			GameType:        req.Game.GameType,
			Result:          req.Game.Result,
			InstitutionCode: req.InstitutionCode,
			TokenValue:      adj.NewValue,
		}
	}
	return entities.TradeMetadata{
		Side:            req.Type,
		InstitutionCode: req.InstitutionCode,
		TokenValue:      adj.NewValue,
	}
}
