package application

import (
	"context"
	"fmt"

	"celestia/domain/entities"
	"celestia/domain/services"
)

// DefaultHistoryLimit is used when a caller asks for no specific page size
const DefaultHistoryLimit = 10

// MaxHistoryLimit caps history page sizes
const MaxHistoryLimit = 100

// AccountQueries serves read-only views of users, wallets and markets
type AccountQueries struct {
	uowFactory UnitOfWorkFactory
}

// NewAccountQueries creates a new AccountQueries
func NewAccountQueries(uowFactory UnitOfWorkFactory) *AccountQueries {
	return &AccountQueries{uowFactory: uowFactory}
}

func (q *AccountQueries) read(ctx context.Context, fn func(uow UnitOfWork) error) error {
	uow := q.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()
	return fn(uow)
}

// GetUser returns the user or ErrUserNotFound
func (q *AccountQueries) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	var user *entities.User
	err := q.read(ctx, func(uow UnitOfWork) error {
		var err error
		user, err = uow.UserRepository().GetByID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entities.ErrUserNotFound
	}
	return user, nil
}

// GetWallet returns the user's wallet or ErrWalletNotFound
func (q *AccountQueries) GetWallet(ctx context.Context, userID int64) (*entities.Wallet, error) {
	var wallet *entities.Wallet
	err := q.read(ctx, func(uow UnitOfWork) error {
		var err error
		wallet, err = uow.WalletRepository().GetByUserID(ctx, userID)
		return err
	})
	if err != nil {
		return nil, err
	}
	if wallet == nil {
		return nil, entities.ErrWalletNotFound
	}
	return wallet, nil
}

// ListTransactions returns the user's newest ledger rows
func (q *AccountQueries) ListTransactions(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	var txs []*entities.Transaction
	err := q.read(ctx, func(uow UnitOfWork) error {
		var err error
		txs, err = uow.TransactionRepository().ListByUser(ctx, userID, clampLimit(limit))
		return err
	})
	return txs, err
}

// ListGames returns the user's newest games
func (q *AccountQueries) ListGames(ctx context.Context, userID int64, limit int) ([]*entities.Game, error) {
	var games []*entities.Game
	err := q.read(ctx, func(uow UnitOfWork) error {
		var err error
		games, err = uow.GameRepository().ListByUser(ctx, userID, clampLimit(limit))
		return err
	})
	return games, err
}

// MarketStats summarizes an institution market
func (q *AccountQueries) MarketStats(ctx context.Context, institutionCode string) (*entities.MarketStats, error) {
	var stats *entities.MarketStats
	err := q.read(ctx, func(uow UnitOfWork) error {
		var err error
		stats, err = services.NewMarketService(uow.TokenMarketRepository(), uow.TransactionRepository()).GetMarketStats(ctx, institutionCode)
		return err
	})
	return stats, err
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		return MaxHistoryLimit
	}
	return limit
}
