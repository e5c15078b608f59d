package entities

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is an append-only ledger row
type Transaction struct {
	ID              int64               `db:"id" json:"id"`
	UserID          int64               `db:"user_id" json:"user_id"`
	WalletID        int64               `db:"wallet_id" json:"wallet_id"`
	TransactionType TransactionType     `db:"transaction_type" json:"transaction_type"`
	Amount          decimal.Decimal     `db:"amount" json:"amount"`
	Fee             decimal.Decimal     `db:"fee" json:"fee"`
	Status          TransactionStatus   `db:"status" json:"status"`
	InstitutionCode string              `db:"institution_code" json:"institution_code"`
	Metadata        TransactionMetadata `db:"metadata" json:"metadata"`
	CreatedAt       time.Time           `db:"created_at" json:"created_at"`
}

// TransactionMetadata is the subtype-specific payload of a ledger row
type TransactionMetadata interface {
	Kind() TransactionType
}

// TradeMetadata describes a buy or sell against an institution market
type TradeMetadata struct {
	Side            TransactionType `json:"-"`
	InstitutionCode string          `json:"institution_code"`
	TokenValue      decimal.Decimal `json:"token_value"`
}

func (m TradeMetadata) Kind() TransactionType {
	return m.Side
}

// GameMetadata links a game ledger row to the game that produced it
type GameMetadata struct {
	GameID          int64           `json:"game_id"`
	GameType        GameType        `json:"game_type"`
	Result          GameResult      `json:"result"`
	InstitutionCode string          `json:"institution_code"`
	TokenValue      decimal.Decimal `json:"token_value"`
}

func (m GameMetadata) Kind() TransactionType {
	return TransactionTypeGame
}

type metadataEnvelope struct {
	Kind TransactionType `json:"kind"`
}

// MarshalTransactionMetadata encodes metadata with its kind tag
func MarshalTransactionMetadata(m TransactionMetadata) ([]byte, error) {
	if m == nil {
		return []byte("null"), nil
	}

	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %s metadata: %w", m.Kind(), err)
	}

	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("failed to flatten %s metadata: %w", m.Kind(), err)
	}
	kind, _ := json.Marshal(m.Kind())
	fields["kind"] = kind

	return json.Marshal(fields)
}

// UnmarshalTransactionMetadata decodes a tagged metadata payload
func UnmarshalTransactionMetadata(data []byte) (TransactionMetadata, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var env metadataEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to read metadata kind: %w", err)
	}

	switch env.Kind {
	case TransactionTypeBuy, TransactionTypeSell:
		m := TradeMetadata{Side: env.Kind}
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal trade metadata: %w", err)
		}
		return m, nil
	case TransactionTypeGame:
		var m GameMetadata
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, fmt.Errorf("failed to unmarshal game metadata: %w", err)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unknown metadata kind %q", env.Kind)
	}
}

// MarshalJSON writes the transaction with a tagged metadata object
func (t Transaction) MarshalJSON() ([]byte, error) {
	type plain Transaction
	metadata, err := MarshalTransactionMetadata(t.Metadata)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		plain
		Metadata json.RawMessage `json:"metadata"`
	}{plain: plain(t), Metadata: metadata})
}
