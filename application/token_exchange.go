package application

import (
	"context"
	"fmt"
	"time"

	"celestia/application/dto"
	"celestia/domain/entities"
	"celestia/domain/interfaces"
	"celestia/domain/pricing"
	"celestia/domain/services"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// TokenExchange runs buy and sell settlements, each in its own unit of work.
// It never returns an error: every outcome is a dto.SettlementResult.
type TokenExchange struct {
	uowFactory UnitOfWorkFactory
	engine     *pricing.Engine
	clock      interfaces.Clock
	metrics    SettlementMetrics
}

// NewTokenExchange creates a new TokenExchange
func NewTokenExchange(uowFactory UnitOfWorkFactory, engine *pricing.Engine, clock interfaces.Clock, metrics SettlementMetrics) *TokenExchange {
	if clock == nil {
		clock = time.Now
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &TokenExchange{
		uowFactory: uowFactory,
		engine:     engine,
		clock:      clock,
		metrics:    metrics,
	}
}

// Buy credits amount tokens of the institution to the user
func (x *TokenExchange) Buy(ctx context.Context, userID int64, institutionCode string, amount decimal.Decimal) dto.SettlementResult {
	return x.Settle(ctx, userID, institutionCode, entities.TransactionTypeBuy, amount)
}

// Sell debits amount tokens of the institution from the user
func (x *TokenExchange) Sell(ctx context.Context, userID int64, institutionCode string, amount decimal.Decimal) dto.SettlementResult {
	return x.Settle(ctx, userID, institutionCode, entities.TransactionTypeSell, amount)
}

// Settle applies a buy or sell atomically
func (x *TokenExchange) Settle(ctx context.Context, userID int64, institutionCode string, txType entities.TransactionType, amount decimal.Decimal) (result dto.SettlementResult) {
	start := time.Now()
	fields := log.Fields{
		"user_id":          userID,
		"institution_code": institutionCode,
		"transaction_type": txType,
		"amount":           amount.String(),
	}

	defer func() {
		if r := recover(); r != nil {
			log.WithFields(fields).WithField("panic", r).Error("Settlement panicked")
			result = dto.SettlementFailure(txType, institutionCode, amount, fmt.Errorf("settlement aborted: %v", r))
		}
		outcome := "success"
		if !result.Success {
			outcome = string(result.Reason)
		}
		x.metrics.RecordSettlement(ctx, string(txType), outcome, time.Since(start))
	}()

	if txType != entities.TransactionTypeBuy && txType != entities.TransactionTypeSell {
		return dto.SettlementResult{
			Reason:          dto.ReasonInvalidType,
			Message:         fmt.Sprintf("Unsupported transaction type %q", txType),
			TransactionType: txType,
			InstitutionCode: institutionCode,
			Amount:          amount,
		}
	}

	uow := x.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to begin settlement")
		return dto.SettlementFailure(txType, institutionCode, amount, err)
	}
	defer uow.Rollback()

	settlementService := services.NewSettlementService(
		uow.WalletRepository(),
		uow.TokenMarketRepository(),
		uow.TransactionRepository(),
		x.engine,
		uow.EventBus(),
		x.clock,
	)

	settlement, err := settlementService.Settle(ctx, interfaces.SettlementRequest{
		UserID:          userID,
		InstitutionCode: institutionCode,
		Type:            txType,
		Amount:          amount,
	})
	if err != nil {
		failure := dto.SettlementFailure(txType, institutionCode, amount, err)
		logFailure(fields, failure.Reason, err)
		return failure
	}

	if err := uow.Commit(); err != nil {
		log.WithFields(fields).WithError(err).Error("Failed to commit settlement")
		return dto.SettlementFailure(txType, institutionCode, amount, err)
	}

	log.WithFields(fields).WithFields(log.Fields{
		"transaction_id": settlement.Transaction.ID,
		"new_balance":    settlement.NewBalance.String(),
		"token_value":    settlement.TokenValue.String(),
		"market_created": settlement.MarketCreated,
	}).Info("Settlement completed")

	return dto.SettlementResult{
		Success:         true,
		Message:         fmt.Sprintf("Successfully %s %s tokens", pastTense(txType), amount.String()),
		TransactionID:   settlement.Transaction.ID,
		TransactionType: txType,
		InstitutionCode: institutionCode,
		Amount:          amount,
		NewBalance:      settlement.NewBalance,
		TokenValue:      settlement.TokenValue,
		Fee:             settlement.Fee,
	}
}

func pastTense(txType entities.TransactionType) string {
	if txType == entities.TransactionTypeBuy {
		return "bought"
	}
	return "sold"
}

func logFailure(fields log.Fields, reason dto.FailureReason, err error) {
	entry := log.WithFields(fields).WithField("reason", reason).WithError(err)
	if reason.IsValidation() {
		entry.Debug("Settlement rejected")
		return
	}
	entry.Error("Settlement failed")
}
