package dto

import (
	"errors"
	"fmt"

	"celestia/domain/entities"

	"github.com/shopspring/decimal"
)

// FailureReason classifies a failed settlement or game
type FailureReason string

const (
	ReasonInvalidAmount       FailureReason = "invalid_amount"
	ReasonInvalidType         FailureReason = "invalid_transaction_type"
	ReasonInvalidGameType     FailureReason = "invalid_game_type"
	ReasonWalletNotFound      FailureReason = "wallet_not_found"
	ReasonInsufficientBalance FailureReason = "insufficient_balance"
	ReasonMarketConfiguration FailureReason = "market_configuration"
	ReasonStorageConflict     FailureReason = "storage_conflict"
	ReasonInternal            FailureReason = "internal_error"
)

// IsValidation reports whether the failure was detected before any mutation
func (r FailureReason) IsValidation() bool {
	switch r {
	case ReasonInvalidAmount, ReasonInvalidType, ReasonInvalidGameType,
		ReasonWalletNotFound, ReasonInsufficientBalance:
		return true
	}
	return false
}

// Classify maps an error from the domain or storage layers to a reason
func Classify(err error) FailureReason {
	switch {
	case errors.Is(err, entities.ErrInvalidAmount):
		return ReasonInvalidAmount
	case errors.Is(err, entities.ErrInvalidGameType):
		return ReasonInvalidGameType
	case errors.Is(err, entities.ErrWalletNotFound):
		return ReasonWalletNotFound
	case errors.Is(err, entities.ErrInsufficientBalance):
		return ReasonInsufficientBalance
	case errors.Is(err, entities.ErrMarketConfiguration):
		return ReasonMarketConfiguration
	case errors.Is(err, entities.ErrStorageConflict):
		return ReasonStorageConflict
	default:
		return ReasonInternal
	}
}

// SettlementResult is the discriminated outcome of a buy or sell
type SettlementResult struct {
	Success         bool                     `json:"success"`
	Reason          FailureReason            `json:"reason,omitempty"`
	Message         string                   `json:"message"`
	TransactionID   int64                    `json:"transaction_id,omitempty"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	InstitutionCode string                   `json:"institution_code"`
	Amount          decimal.Decimal          `json:"amount"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
	TokenValue      decimal.Decimal          `json:"token_value"`
	Fee             decimal.Decimal          `json:"fee"`
}

// SettlementFailure builds a failed result from err
func SettlementFailure(txType entities.TransactionType, institutionCode string, amount decimal.Decimal, err error) SettlementResult {
	return SettlementResult{
		Success:         false,
		Reason:          Classify(err),
		Message:         failureMessage(err),
		TransactionType: txType,
		InstitutionCode: institutionCode,
		Amount:          amount,
	}
}

// GameResult is the discriminated outcome of a game play
type GameResult struct {
	Success         bool                 `json:"success"`
	Reason          FailureReason        `json:"reason,omitempty"`
	Message         string               `json:"message"`
	GameID          int64                `json:"game_id,omitempty"`
	GameType        entities.GameType    `json:"game_type"`
	InstitutionCode string               `json:"institution_code"`
	Stake           decimal.Decimal      `json:"stake"`
	Result          entities.GameResult  `json:"result,omitempty"`
	Details         entities.GameDetails `json:"details,omitempty"`
	NewBalance      decimal.Decimal      `json:"new_balance"`
	TokenValue      decimal.Decimal      `json:"token_value"`
	Fee             decimal.Decimal      `json:"fee"`
}

// GameFailure builds a failed game result from err
func GameFailure(gameType entities.GameType, institutionCode string, stake decimal.Decimal, err error) GameResult {
	return GameResult{
		Success:         false,
		Reason:          Classify(err),
		Message:         failureMessage(err),
		GameType:        gameType,
		InstitutionCode: institutionCode,
		Stake:           stake,
	}
}

func failureMessage(err error) string {
	switch Classify(err) {
	case ReasonInvalidAmount:
		return "Amount must be greater than zero"
	case ReasonInvalidGameType:
		return "Invalid game type"
	case ReasonWalletNotFound:
		return "Wallet not found"
	case ReasonInsufficientBalance:
		return "Insufficient balance"
	case ReasonStorageConflict:
		return "The market is busy, please retry"
	default:
		return fmt.Sprintf("Transaction failed: %v", err)
	}
}
