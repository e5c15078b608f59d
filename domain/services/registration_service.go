package services

import (
	"context"
	"fmt"

	"celestia/domain/entities"
	"celestia/domain/interfaces"
	"celestia/events"
)

type registrationService struct {
	userRepo       interfaces.UserRepository
	walletRepo     interfaces.WalletRepository
	eventPublisher interfaces.EventPublisher
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(userRepo interfaces.UserRepository, walletRepo interfaces.WalletRepository, eventPublisher interfaces.EventPublisher) interfaces.RegistrationService {
	return &registrationService{
		userRepo:       userRepo,
		walletRepo:     walletRepo,
		eventPublisher: eventPublisher,
	}
}

func (s *registrationService) Enroll(ctx context.Context, profile *entities.StudentProfile) (*entities.User, bool, error) {
	if profile == nil || profile.RegNumber == "" {
		return nil, false, fmt.Errorf("%w: profile has no registration number", entities.ErrVerificationFailed)
	}

	existing, err := s.userRepo.GetByRegNumber(ctx, profile.RegNumber)
	if err != nil {
		return nil, false, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return existing, false, nil
	}

	user := entities.NewUserFromProfile(profile)
	inserted, err := s.userRepo.Create(ctx, user)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create user: %w", err)
	}
	if !inserted {
		// a concurrent registration for the same student committed first
		existing, err := s.userRepo.GetByRegNumber(ctx, profile.RegNumber)
		if err != nil {
			return nil, false, fmt.Errorf("failed to look up user: %w", err)
		}
		if existing == nil {
			return nil, false, fmt.Errorf("user %s vanished after insert conflict", profile.RegNumber)
		}
		return existing, false, nil
	}
	if _, err := s.walletRepo.Create(ctx, user.ID); err != nil {
		return nil, false, fmt.Errorf("failed to create wallet: %w", err)
	}

	if s.eventPublisher != nil {
		_ = s.eventPublisher.Publish(events.UserRegisteredEvent{
			UserID:          user.ID,
			RegNumber:       user.RegNumber,
			InstitutionCode: user.InstitutionCode,
		})
	}
	return user, true, nil
}
