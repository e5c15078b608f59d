package observability

// Metric name prefixes
const (
	MetricPrefix = "celestia"
)

// Metric names
const (
	// Settlement metrics
	SettlementsTotal   = MetricPrefix + ".settlements.total"
	SettlementDuration = MetricPrefix + ".settlements.duration"

	// Game metrics
	GamesTotal = MetricPrefix + ".games.total"

	// NATS metrics
	NATSMessagesPublishedTotal = MetricPrefix + ".nats.messages_published_total"
)

// Label keys
const (
	LabelType      = "type"
	LabelOutcome   = "outcome"
	LabelGameType  = "game_type"
	LabelResult    = "result"
	LabelEventType = "event_type"
)
