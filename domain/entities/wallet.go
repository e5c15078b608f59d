package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

// Wallet holds a user's token units. StakedBalance is reserved for staking
// and is not touched by settlement.
type Wallet struct {
	ID            int64           `db:"id" json:"id"`
	UserID        int64           `db:"user_id" json:"user_id"`
	Balance       decimal.Decimal `db:"balance" json:"balance"`
	StakedBalance decimal.Decimal `db:"staked_balance" json:"staked_balance"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at" json:"updated_at"`
}

// CanDebit reports whether amount can be taken without going negative
func (w *Wallet) CanDebit(amount decimal.Decimal) bool {
	return w.Balance.GreaterThanOrEqual(amount)
}

// Credit adds amount to the available balance
func (w *Wallet) Credit(amount decimal.Decimal) {
	w.Balance = w.Balance.Add(amount)
}

// Debit removes amount from the available balance, refusing to go negative
func (w *Wallet) Debit(amount decimal.Decimal) error {
	if !w.CanDebit(amount) {
		return ErrInsufficientBalance
	}
	w.Balance = w.Balance.Sub(amount)
	return nil
}
