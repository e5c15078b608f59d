package testhelpers

import (
	"context"
	"sync"

	"celestia/domain/entities"
	"celestia/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (*entities.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetByRegNumber(ctx context.Context, regNumber string) (*entities.User, error) {
	args := m.Called(ctx, regNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *entities.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUserID(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByUserIDForUpdate(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID int64) (*entities.Wallet, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Wallet), args.Error(1)
}

func (m *MockWalletRepository) UpdateBalance(ctx context.Context, walletID int64, balance decimal.Decimal) error {
	args := m.Called(ctx, walletID, balance)
	return args.Error(0)
}

// MockTokenMarketRepository is a mock implementation of TokenMarketRepository
type MockTokenMarketRepository struct {
	mock.Mock
}

func (m *MockTokenMarketRepository) LoadOrCreateForUpdate(ctx context.Context, institutionCode string) (*entities.TokenMarket, bool, error) {
	args := m.Called(ctx, institutionCode)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entities.TokenMarket), args.Bool(1), args.Error(2)
}

func (m *MockTokenMarketRepository) GetByInstitutionCode(ctx context.Context, institutionCode string) (*entities.TokenMarket, error) {
	args := m.Called(ctx, institutionCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.TokenMarket), args.Error(1)
}

func (m *MockTokenMarketRepository) Update(ctx context.Context, market *entities.TokenMarket) error {
	args := m.Called(ctx, market)
	return args.Error(0)
}

// MockTransactionRepository is a mock implementation of TransactionRepository
type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) Append(ctx context.Context, tx *entities.Transaction) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockTransactionRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) RecentByInstitution(ctx context.Context, institutionCode string, limit int) ([]*entities.Transaction, error) {
	args := m.Called(ctx, institutionCode, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Transaction), args.Error(1)
}

// MockGameRepository is a mock implementation of GameRepository
type MockGameRepository struct {
	mock.Mock
}

func (m *MockGameRepository) Append(ctx context.Context, game *entities.Game) error {
	args := m.Called(ctx, game)
	return args.Error(0)
}

func (m *MockGameRepository) ListByUser(ctx context.Context, userID int64, limit int) ([]*entities.Game, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Game), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// SequenceRandom replays fixed draws; it panics when exhausted
type SequenceRandom struct {
	mu     sync.Mutex
	values []int
	calls  int
}

// NewSequenceRandom returns a source that yields values in order
func NewSequenceRandom(values ...int) *SequenceRandom {
	return &SequenceRandom{values: values}
}

func (r *SequenceRandom) IntN(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.calls >= len(r.values) {
		panic("SequenceRandom exhausted")
	}
	v := r.values[r.calls]
	r.calls++
	if v < 0 || v >= n {
		panic("SequenceRandom value out of range")
	}
	return v
}

// Calls returns the number of draws taken
func (r *SequenceRandom) Calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

// DecimalEq matches a decimal argument by value
func DecimalEq(expected string) interface{} {
	want := decimal.RequireFromString(expected)
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(want)
	})
}
