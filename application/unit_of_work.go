package application

import (
	"context"

	"celestia/domain/interfaces"
)

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes queued events
	Commit() error

	// Rollback rolls back the transaction and discards queued events
	Rollback() error

	// Repository getters
	UserRepository() interfaces.UserRepository
	WalletRepository() interfaces.WalletRepository
	TokenMarketRepository() interfaces.TokenMarketRepository
	TransactionRepository() interfaces.TransactionRepository
	GameRepository() interfaces.GameRepository
	EventBus() interfaces.EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	// Create returns a fresh, not yet begun UnitOfWork
	Create() UnitOfWork
}
