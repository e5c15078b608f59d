package interfaces

import (
	"context"
	"time"

	"celestia/domain/entities"

	"github.com/shopspring/decimal"
)

// Settlement is the outcome of a committed buy, sell or game settlement
type Settlement struct {
	Transaction   *entities.Transaction
	Market        *entities.TokenMarket
	OldBalance    decimal.Decimal
	NewBalance    decimal.Decimal
	Fee           decimal.Decimal
	TokenValue    decimal.Decimal
	MarketCreated bool
}

// SettlementService applies balance, price and ledger changes inside the
// caller's transaction
type SettlementService interface {
	// Settle moves amount for a buy, sell or game trade against the institution market
	Settle(ctx context.Context, req SettlementRequest) (*Settlement, error)
}

// SettlementRequest describes a single settlement
type SettlementRequest struct {
	UserID          int64
	InstitutionCode string
	Type            entities.TransactionType
	Amount          decimal.Decimal
	// Game is required for game settlements; a win credits the stake, a loss debits it
	Game *entities.Game
}

// Play is the outcome of a resolved and settled game
type Play struct {
	Game       *entities.Game
	Settlement *Settlement
}

// GameService defines the interface for the chance games
type GameService interface {
	// PlayGame validates the stake, resolves the outcome and settles it
	PlayGame(ctx context.Context, userID int64, institutionCode string, gameType entities.GameType, stake decimal.Decimal) (*Play, error)
}

// MarketService defines the interface for market reads
type MarketService interface {
	// GetMarketStats returns the market with volume over its most recent transactions
	GetMarketStats(ctx context.Context, institutionCode string) (*entities.MarketStats, error)
}

// RegistrationService defines the interface for onboarding verified students
type RegistrationService interface {
	// Enroll creates the user and its wallet from a verified profile, or
	// returns the existing user with that registration number
	Enroll(ctx context.Context, profile *entities.StudentProfile) (user *entities.User, created bool, err error)
}

// VerificationProvider is the external national identity service
type VerificationProvider interface {
	// ListInstitutions returns the institutions known to the provider
	ListInstitutions(ctx context.Context) ([]entities.Institution, error)

	// VerifyInstitute returns a short-lived token for a matriculation number
	VerifyInstitute(ctx context.Context, matricNumber, providerID string) (string, error)

	// VerifyExamRecord returns the verified profile for a token and exam record
	VerifyExamRecord(ctx context.Context, dateOfBirth, examNumber, token string) (*entities.StudentProfile, error)
}

// SessionManager issues and validates bearer credentials
type SessionManager interface {
	Issue(ctx context.Context, userID int64) (token string, expiresAt time.Time, err error)
	Validate(ctx context.Context, token string) (int64, error)
	Revoke(ctx context.Context, token string) error
}

// RandomSource yields uniform integers in [0, n)
type RandomSource interface {
	IntN(n int) int
}

// Clock returns the current time
type Clock func() time.Time
