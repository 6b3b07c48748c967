package events

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Event types emitted after successful writes.
const (
	UserCreated             = "user.created"
	UserRegistered          = "user.registered"
	UserDeactivated         = "user.deactivated"
	ProjectCreated          = "project.created"
	ProjectDeleted          = "project.deleted"
	UnitCreated             = "unit.created"
	UnitDeleted             = "unit.deleted"
	TenancyCreated          = "tenancy.created"
	TenancyDeleted          = "tenancy.deleted"
	RentTransactionRecorded = "rent_transaction.recorded"
	BookingCreated          = "booking.created"
	BookingUpdated          = "booking.updated"
	BookingDeleted          = "booking.deleted"
)

// Event is a domain notification sent to the configured sink.
type Event struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
	Payload    any       `json:"payload,omitempty"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType, entityID string, payload any) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       eventType,
		EntityID:   entityID,
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	}
}

// Publisher delivers events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }

// Emitter publishes and logs failures instead of returning them, so a broken
// sink never fails the request that produced the event.
type Emitter struct {
	publisher Publisher
	logger    *zap.Logger
}

func NewEmitter(publisher Publisher, logger *zap.Logger) *Emitter {
	if publisher == nil {
		publisher = NopPublisher{}
	}
	return &Emitter{publisher: publisher, logger: logger}
}

// PublishTimeout bounds a single Emit. The write that produced the event has
// already committed, so publishing outlives the request context.
const PublishTimeout = 15 * time.Second

// Emit builds and publishes one event.
func (e *Emitter) Emit(ctx context.Context, eventType, entityID string, payload any) {
	if e == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	ev := New(eventType, entityID, payload)
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.logger.Error("Failed to publish event",
			zap.String("event_type", eventType),
			zap.String("entity_id", entityID),
			zap.Error(err),
		)
		return
	}
	e.logger.Debug("Event published", zap.String("event_type", eventType), zap.String("entity_id", entityID))
}
