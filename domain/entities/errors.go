package entities

import "errors"

// Settlement and identity failures. Callers classify with errors.Is.
var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrInvalidGameType     = errors.New("invalid game type")
	ErrInvalidAmount       = errors.New("amount must be positive")
	ErrMarketConfiguration = errors.New("market configuration error")
	ErrMarketNotFound      = errors.New("market not found")
	ErrStorageConflict     = errors.New("storage conflict")
	ErrVerificationFailed  = errors.New("verification failed")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnauthenticated     = errors.New("could not validate credentials")
)
