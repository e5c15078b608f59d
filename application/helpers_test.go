package application_test

import (
	"context"
	"sync"

	"celestia/application"
	"celestia/database"
	"celestia/domain/interfaces"
	"celestia/domain/testhelpers"
	"celestia/events"
	"celestia/repository"
)

// dbUnitOfWorkFactory creates repository-backed units of work sharing one local bus
type dbUnitOfWorkFactory struct {
	db  *database.DB
	bus *events.Bus
}

func newDBFactory(db *database.DB) *dbUnitOfWorkFactory {
	return &dbUnitOfWorkFactory{db: db, bus: events.NewBus()}
}

func (f *dbUnitOfWorkFactory) Create() application.UnitOfWork {
	return repository.CreateTestUnitOfWork(f.db, events.NewTransactionalBus(f.bus))
}

// fakeUnitOfWork hands out testify mocks and records lifecycle calls
type fakeUnitOfWork struct {
	mu         sync.Mutex
	beginErr   error
	commitErr  error
	began      bool
	committed  bool
	rolledBack bool

	users     *testhelpers.MockUserRepository
	wallets   *testhelpers.MockWalletRepository
	markets   *testhelpers.MockTokenMarketRepository
	ledger    *testhelpers.MockTransactionRepository
	games     *testhelpers.MockGameRepository
	publisher *testhelpers.MockEventPublisher
}

func newFakeUnitOfWork() *fakeUnitOfWork {
	return &fakeUnitOfWork{
		users:     new(testhelpers.MockUserRepository),
		wallets:   new(testhelpers.MockWalletRepository),
		markets:   new(testhelpers.MockTokenMarketRepository),
		ledger:    new(testhelpers.MockTransactionRepository),
		games:     new(testhelpers.MockGameRepository),
		publisher: new(testhelpers.MockEventPublisher),
	}
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.began = true
	return u.beginErr
}

func (u *fakeUnitOfWork) Commit() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.commitErr != nil {
		return u.commitErr
	}
	u.committed = true
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if !u.committed {
		u.rolledBack = true
	}
	return nil
}

func (u *fakeUnitOfWork) UserRepository() interfaces.UserRepository               { return u.users }
func (u *fakeUnitOfWork) WalletRepository() interfaces.WalletRepository           { return u.wallets }
func (u *fakeUnitOfWork) TokenMarketRepository() interfaces.TokenMarketRepository { return u.markets }
func (u *fakeUnitOfWork) TransactionRepository() interfaces.TransactionRepository { return u.ledger }
func (u *fakeUnitOfWork) GameRepository() interfaces.GameRepository               { return u.games }
func (u *fakeUnitOfWork) EventBus() interfaces.EventPublisher                     { return u.publisher }

type fakeFactory struct {
	uow *fakeUnitOfWork
}

func (f *fakeFactory) Create() application.UnitOfWork {
	return f.uow
}
