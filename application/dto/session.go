package dto

import (
	"time"

	"celestia/domain/entities"
)

// RegistrationRequest carries the exam-record verification step. When
// ProviderToken is empty, MatricNumber and ProviderID are verified first.
type RegistrationRequest struct {
	MatricNumber  string
	ProviderID    string
	ProviderToken string
	DateOfBirth   string
	ExamNumber    string
}

// SessionResult is returned after a successful registration or login
type SessionResult struct {
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
	ExpiresAt   time.Time      `json:"expires_at"`
	User        *entities.User `json:"user"`
	Created     bool           `json:"created"`
}
