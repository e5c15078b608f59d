package infrastructure

import (
	"fmt"

	"celestia/events"
)

const (
	SubjectSettlementCompleted = "celestia.settlements.completed"
	SubjectGamePlayed          = "celestia.games.played"
	SubjectUserRegistered      = "celestia.users.registered"
	SubjectMarketProvisioned   = "celestia.markets.provisioned"
)

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its corresponding NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	switch event.Type() {
	case events.EventTypeSettlementCompleted:
		return SubjectSettlementCompleted
	case events.EventTypeGamePlayed:
		return SubjectGamePlayed
	case events.EventTypeUserRegistered:
		return SubjectUserRegistered
	case events.EventTypeMarketProvisioned:
		return SubjectMarketProvisioned
	default:
		return fmt.Sprintf("celestia.unknown.%s", event.Type())
	}
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	switch subject {
	case SubjectSettlementCompleted:
		return events.EventTypeSettlementCompleted
	case SubjectGamePlayed:
		return events.EventTypeGamePlayed
	case SubjectUserRegistered:
		return events.EventTypeUserRegistered
	case SubjectMarketProvisioned:
		return events.EventTypeMarketProvisioned
	default:
		return events.EventType(subject)
	}
}

// GetAllSubjects returns all subjects that this service publishes to
func (m *EventSubjectMapper) GetAllSubjects() []string {
	return []string{
		SubjectSettlementCompleted,
		SubjectGamePlayed,
		SubjectUserRegistered,
		SubjectMarketProvisioned,
	}
}
