package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"celestia/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// LocalHandler handles an event inside the publishing process
type LocalHandler func(ctx context.Context, event events.Event) error

// EventEnvelope wraps every event published to NATS
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

type messagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

type publishMetrics interface {
	RecordNATSMessagePublished(eventType string)
}

// NATSEventPublisher delivers committed events to local handlers and, when
// a client is configured, to NATS JetStream
type NATSEventPublisher struct {
	natsClient    messagePublisher
	subjectMapper *EventSubjectMapper
	metrics       publishMetrics
	mu            sync.RWMutex
	localHandlers map[events.EventType][]LocalHandler
}

// NewNATSEventPublisher creates a new NATS event publisher. A nil client
// limits delivery to local handlers.
func NewNATSEventPublisher(natsClient messagePublisher, subjectMapper *EventSubjectMapper) *NATSEventPublisher {
	if subjectMapper == nil {
		subjectMapper = NewEventSubjectMapper()
	}
	return &NATSEventPublisher{
		natsClient:    natsClient,
		subjectMapper: subjectMapper,
		localHandlers: make(map[events.EventType][]LocalHandler),
	}
}

// WithMetrics attaches a published-message counter
func (p *NATSEventPublisher) WithMetrics(metrics publishMetrics) *NATSEventPublisher {
	p.metrics = metrics
	return p
}

// Publish publishes an event to NATS using the appropriate subject
func (p *NATSEventPublisher) Publish(event events.Event) error {
	ctx := context.Background()
	eventType := event.Type()

	p.mu.RLock()
	handlers := append([]LocalHandler(nil), p.localHandlers[eventType]...)
	p.mu.RUnlock()

	for _, handler := range handlers {
		if err := p.invokeLocal(ctx, handler, event); err != nil {
			log.WithFields(log.Fields{
				"eventType": eventType,
				"error":     err,
			}).Error("Local event handler failed")
		}
	}

	if p.natsClient == nil {
		return nil
	}

	envelopeData, envelope, err := p.encode(event)
	if err != nil {
		return err
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		if strings.Contains(err.Error(), "no response from stream") {
			return nil
		}
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	if p.metrics != nil {
		p.metrics.RecordNATSMessagePublished(string(eventType))
	}

	log.WithFields(log.Fields{
		"eventType": eventType,
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")

	return nil
}

func (p *NATSEventPublisher) invokeLocal(ctx context.Context, handler LocalHandler, event events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return handler(ctx, event)
}

func (p *NATSEventPublisher) encode(event events.Event) ([]byte, *EventEnvelope, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "celestia",
		Payload:       payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal event envelope: %w", err)
	}
	return data, envelope, nil
}

// RegisterLocalHandler registers a handler that will be invoked locally for events
func (p *NATSEventPublisher) RegisterLocalHandler(eventType events.EventType, handler LocalHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.localHandlers[eventType] = append(p.localHandlers[eventType], handler)
	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(p.localHandlers[eventType]),
	}).Info("Registered local event handler")
}

// EnsureEventStream ensures the celestia_events stream exists with the correct subjects
func (p *NATSEventPublisher) EnsureEventStream() error {
	client, ok := p.natsClient.(*NATSClient)
	if !ok || client == nil {
		return nil
	}
	return client.ensureStream(EventStreamName, p.subjectMapper.GetAllSubjects())
}
