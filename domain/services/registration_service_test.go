package services

import (
	"context"
	"testing"

	"celestia/domain/entities"
	"celestia/domain/testhelpers"
	"celestia/events"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testProfile() *entities.StudentProfile {
	return &entities.StudentProfile{
		RegNumber:       "20231234567AB",
		NIN:             "12345678901",
		Surname:         "Okafor",
		FirstName:       "Ada",
		DateOfBirth:     "2003-04-05",
		Institution:     "University of Nigeria, Nsukka",
		InstitutionCode: "UNN01",
		Course:          "Computer Science",
	}
}

func TestRegistrationService_EnrollCreatesUserAndWallet(t *testing.T) {
	ctx := context.Background()
	users := new(testhelpers.MockUserRepository)
	wallets := new(testhelpers.MockWalletRepository)
	publisher := new(testhelpers.MockEventPublisher)
	svc := NewRegistrationService(users, wallets, publisher)

	users.On("GetByRegNumber", ctx, "20231234567AB").Return(nil, nil)
	users.On("Create", ctx, mock.MatchedBy(func(u *entities.User) bool {
		return u.RegNumber == "20231234567AB" && u.UserType == entities.UserTypeStudent && u.InstitutionCode == "UNN01"
	})).Return(true, nil).Run(func(args mock.Arguments) {
		args.Get(1).(*entities.User).ID = 3
	})
	wallets.On("Create", ctx, int64(3)).Return(&entities.Wallet{ID: 4, UserID: 3, Balance: decimal.Zero}, nil)
	publisher.On("Publish", mock.MatchedBy(func(e events.UserRegisteredEvent) bool {
		return e.UserID == 3 && e.InstitutionCode == "UNN01"
	})).Return(nil)

	user, created, err := svc.Enroll(ctx, testProfile())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, int64(3), user.ID)
	assert.Equal(t, "Ada Okafor", user.FullName())
	wallets.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestRegistrationService_EnrollReturnsExistingUser(t *testing.T) {
	ctx := context.Background()
	users := new(testhelpers.MockUserRepository)
	wallets := new(testhelpers.MockWalletRepository)
	svc := NewRegistrationService(users, wallets, nil)

	existing := &entities.User{ID: 8, RegNumber: "20231234567AB"}
	users.On("GetByRegNumber", ctx, "20231234567AB").Return(existing, nil)

	user, created, err := svc.Enroll(ctx, testProfile())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, existing, user)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	wallets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegistrationService_EnrollLosesInsertRace(t *testing.T) {
	ctx := context.Background()
	users := new(testhelpers.MockUserRepository)
	wallets := new(testhelpers.MockWalletRepository)
	publisher := new(testhelpers.MockEventPublisher)
	svc := NewRegistrationService(users, wallets, publisher)

	winner := &entities.User{ID: 11, RegNumber: "20231234567AB"}
	users.On("GetByRegNumber", ctx, "20231234567AB").Return(nil, nil).Once()
	users.On("Create", ctx, mock.Anything).Return(false, nil).Once()
	users.On("GetByRegNumber", ctx, "20231234567AB").Return(winner, nil).Once()

	user, created, err := svc.Enroll(ctx, testProfile())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Same(t, winner, user)
	users.AssertExpectations(t)
	wallets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	publisher.AssertNotCalled(t, "Publish", mock.Anything)
}

func TestRegistrationService_RejectsEmptyProfile(t *testing.T) {
	svc := NewRegistrationService(new(testhelpers.MockUserRepository), new(testhelpers.MockWalletRepository), nil)

	_, _, err := svc.Enroll(context.Background(), &entities.StudentProfile{})
	assert.ErrorIs(t, err, entities.ErrVerificationFailed)
}
