package application

import (
	"context"
	"fmt"

	"celestia/application/dto"
	"celestia/domain/entities"
	"celestia/domain/interfaces"
	"celestia/domain/services"

	log "github.com/sirupsen/logrus"
)

// Onboarding verifies students with the national provider and issues sessions
type Onboarding struct {
	uowFactory UnitOfWorkFactory
	provider   interfaces.VerificationProvider
	sessions   interfaces.SessionManager
}

// NewOnboarding creates a new Onboarding
func NewOnboarding(uowFactory UnitOfWorkFactory, provider interfaces.VerificationProvider, sessions interfaces.SessionManager) *Onboarding {
	return &Onboarding{
		uowFactory: uowFactory,
		provider:   provider,
		sessions:   sessions,
	}
}

// ListInstitutions returns the institutions known to the provider
func (o *Onboarding) ListInstitutions(ctx context.Context) ([]entities.Institution, error) {
	return o.provider.ListInstitutions(ctx)
}

// VerifyInstitute checks a matriculation number and returns the provider token
func (o *Onboarding) VerifyInstitute(ctx context.Context, matricNumber, providerID string) (string, error) {
	token, err := o.provider.VerifyInstitute(ctx, matricNumber, providerID)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Register verifies the exam record, enrolls the student if new and issues a session
func (o *Onboarding) Register(ctx context.Context, req dto.RegistrationRequest) (*dto.SessionResult, error) {
	token := req.ProviderToken
	if token == "" {
		var err error
		if token, err = o.VerifyInstitute(ctx, req.MatricNumber, req.ProviderID); err != nil {
			return nil, err
		}
	}

	profile, err := o.provider.VerifyExamRecord(ctx, req.DateOfBirth, req.ExamNumber, token)
	if err != nil {
		return nil, err
	}

	// external calls are made before the transaction opens
	uow := o.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	registration := services.NewRegistrationService(uow.UserRepository(), uow.WalletRepository(), uow.EventBus())
	user, created, err := registration.Enroll(ctx, profile)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit registration: %w", err)
	}

	accessToken, expiresAt, err := o.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to issue session: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":          user.ID,
		"institution_code": user.InstitutionCode,
		"created":          created,
	}).Info("Student authenticated")

	return &dto.SessionResult{
		AccessToken: accessToken,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        user,
		Created:     created,
	}, nil
}

// Authenticate resolves a bearer token to its user. Rejected credentials
// wrap ErrUnauthenticated; session store failures are returned as they are.
func (o *Onboarding) Authenticate(ctx context.Context, accessToken string) (int64, error) {
	userID, err := o.sessions.Validate(ctx, accessToken)
	if err != nil {
		return 0, err
	}
	return userID, nil
}

// Logout revokes the bearer token
func (o *Onboarding) Logout(ctx context.Context, accessToken string) error {
	return o.sessions.Revoke(ctx, accessToken)
}
