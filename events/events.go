package events

import (
	"context"
	"sync"

	"celestia/domain/entities"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeSettlementCompleted EventType = "settlement_completed"
	EventTypeGamePlayed          EventType = "game_played"
	EventTypeUserRegistered      EventType = "user_registered"
	EventTypeMarketProvisioned   EventType = "market_provisioned"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// Publisher accepts events for delivery
type Publisher interface {
	Publish(event Event) error
}

// SettlementCompletedEvent is emitted once a buy, sell or game settlement commits
type SettlementCompletedEvent struct {
	TransactionID   int64                    `json:"transaction_id"`
	UserID          int64                    `json:"user_id"`
	InstitutionCode string                   `json:"institution_code"`
	TransactionType entities.TransactionType `json:"transaction_type"`
	Amount          decimal.Decimal          `json:"amount"`
	Fee             decimal.Decimal          `json:"fee"`
	OldBalance      decimal.Decimal          `json:"old_balance"`
	NewBalance      decimal.Decimal          `json:"new_balance"`
	TokenValue      decimal.Decimal          `json:"token_value"`
}

func (e SettlementCompletedEvent) Type() EventType {
	return EventTypeSettlementCompleted
}

// GamePlayedEvent is emitted once a game and its settlement commit
type GamePlayedEvent struct {
	GameID          int64               `json:"game_id"`
	UserID          int64               `json:"user_id"`
	InstitutionCode string              `json:"institution_code"`
	GameType        entities.GameType   `json:"game_type"`
	StakeAmount     decimal.Decimal     `json:"stake_amount"`
	Result          entities.GameResult `json:"result"`
	NewBalance      decimal.Decimal     `json:"new_balance"`
}

func (e GamePlayedEvent) Type() EventType {
	return EventTypeGamePlayed
}

// UserRegisteredEvent is emitted when a verified student account is created
type UserRegisteredEvent struct {
	UserID          int64  `json:"user_id"`
	RegNumber       string `json:"reg_number"`
	InstitutionCode string `json:"institution_code"`
}

func (e UserRegisteredEvent) Type() EventType {
	return EventTypeUserRegistered
}

// MarketProvisionedEvent is emitted when an institution market is created
type MarketProvisionedEvent struct {
	InstitutionCode string          `json:"institution_code"`
	InitialValue    decimal.Decimal `json:"initial_value"`
	TotalSupply     decimal.Decimal `json:"total_supply"`
}

func (e MarketProvisionedEvent) Type() EventType {
	return EventTypeMarketProvisioned
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages in-process event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit delivers an event to all registered handlers asynchronously
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Publish implements Publisher by emitting on a background context
func (b *Bus) Publish(event Event) error {
	b.Emit(context.Background(), event)
	return nil
}

// TransactionalBus holds events coupled to a unit of work until the
// transaction commits.
type TransactionalBus struct {
	real    Publisher
	pending []Event
}

// NewTransactionalBus creates a transactional bus that flushes into real
func NewTransactionalBus(real Publisher) *TransactionalBus {
	return &TransactionalBus{real: real}
}

// Publish stashes the event until Flush
func (b *TransactionalBus) Publish(e Event) error {
	log.WithFields(log.Fields{
		"eventType":    e.Type(),
		"pendingCount": len(b.pending),
	}).Debug("Adding event to transactional bus pending queue")
	b.pending = append(b.pending, e)
	return nil
}

// Flush delivers pending events; called after a successful commit.
// Delivery errors are logged, the transaction has already committed.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	log.WithField("pendingEventCount", len(b.pending)).Debug("Flushing pending events")

	for _, ev := range b.pending {
		if err := b.real.Publish(ev); err != nil {
			log.WithFields(log.Fields{
				"eventType": ev.Type(),
				"error":     err,
			}).Error("Failed to publish event during flush")
		}
	}
	b.pending = nil
	return nil
}

// Discard drops pending events; called after rollback
func (b *TransactionalBus) Discard() {
	b.pending = nil
}

// Pending returns the number of queued events
func (b *TransactionalBus) Pending() int {
	return len(b.pending)
}
