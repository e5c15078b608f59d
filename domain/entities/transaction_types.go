package entities

// TransactionType represents the kind of ledger entry
type TransactionType string

const (
	TransactionTypeBuy     TransactionType = "buy"
	TransactionTypeSell    TransactionType = "sell"
	TransactionTypeSend    TransactionType = "send"
	TransactionTypeStake   TransactionType = "stake"
	TransactionTypeUnstake TransactionType = "unstake"
	TransactionTypeGame    TransactionType = "game"
)

// IsValid returns true for the ledger types the schema accepts
func (tt TransactionType) IsValid() bool {
	switch tt {
	case TransactionTypeBuy, TransactionTypeSell, TransactionTypeSend,
		TransactionTypeStake, TransactionTypeUnstake, TransactionTypeGame:
		return true
	}
	return false
}

// IsSettlementType returns true if the type can go through settlement
func (tt TransactionType) IsSettlementType() bool {
	return tt == TransactionTypeBuy ||
		tt == TransactionTypeSell ||
		tt == TransactionTypeGame
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}

// TransactionStatus is the lifecycle state of a ledger entry
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "completed"
	TransactionStatusFailed    TransactionStatus = "failed"
	TransactionStatusPending   TransactionStatus = "pending"
)
