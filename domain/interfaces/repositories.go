package interfaces

import (
	"context"

	"celestia/domain/entities"
	"celestia/events"

	"github.com/shopspring/decimal"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// GetByID retrieves a user by id, returning nil when absent
	GetByID(ctx context.Context, id int64) (*entities.User, error)

	// GetByRegNumber retrieves a user by exam registration number, returning nil when absent
	GetByRegNumber(ctx context.Context, regNumber string) (*entities.User, error)

	// Create inserts the user and sets its ID and timestamps. It reports
	// false, leaving user untouched, when the reg number is already taken.
	Create(ctx context.Context, user *entities.User) (bool, error)
}

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUserID retrieves the wallet owned by a user, returning nil when absent
	GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error)

	// GetByUserIDForUpdate retrieves the wallet and locks its row until the
	// transaction ends, returning nil when absent
	GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error)

	// Create inserts a wallet for the user with a zero balance
	Create(ctx context.Context, userID int64) (*entities.Wallet, error)

	// UpdateBalance sets the wallet's available balance
	UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error
}

// TokenMarketRepository defines the interface for institution market data access
type TokenMarketRepository interface {
	// LoadOrCreateForUpdate returns the institution's market, provisioning it
	// with defaults when absent, and locks its row until the transaction ends.
	// created reports whether this call provisioned the market.
	LoadOrCreateForUpdate(ctx context.Context, institutionCode string) (market *entities.TokenMarket, created bool, err error)

	// GetByInstitutionCode retrieves a market without locking, returning nil when absent
	GetByInstitutionCode(ctx context.Context, institutionCode string) (*entities.TokenMarket, error)

	// Update persists current value, supply, liquidity pool and last updated
	Update(ctx context.Context, market *entities.TokenMarket) error
}

// TransactionRepository defines the interface for the append-only ledger
type TransactionRepository interface {
	// Append inserts the row and sets its ID and CreatedAt
	Append(ctx context.Context, tx *entities.Transaction) error

	// ListByUser returns the user's most recent transactions, newest first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error)

	// RecentByInstitution returns the institution's most recent transactions, newest first
	RecentByInstitution(ctx context.Context, institutionCode string, limit int) ([]*entities.Transaction, error)
}

// GameRepository defines the interface for the append-only game record
type GameRepository interface {
	// Append inserts the game and sets its ID and CreatedAt
	Append(ctx context.Context, game *entities.Game) error

	// ListByUser returns the user's most recent games, newest first
	ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Game, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event) error
}

// TransactionalEventPublisher holds events until the surrounding unit of work commits
type TransactionalEventPublisher interface {
	EventPublisher
	Flush(ctx context.Context) error
	Discard()
}
