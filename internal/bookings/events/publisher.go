package events

import (
	"context"
	"fmt"
	"time"

	"roomdesk/internal/scheduling/grid"
	"roomdesk/pkg/kafka"
	"roomdesk/pkg/model"
)

const (
	EventBookingCreated = "booking.created"

	schemaVersion = "1"
)

// BookingCreated is the payload emitted after a booking is stored.
type BookingCreated struct {
	BookingID string         `json:"booking_id"`
	Organizer string         `json:"organizer"`
	Title     string         `json:"title,omitempty"`
	Date      string         `json:"date"`
	Start     grid.TimeOfDay `json:"start"`
	End       grid.TimeOfDay `json:"end"`
	Method    model.Method   `json:"method"`
	Branch    string         `json:"branch,omitempty"`
	Room      string         `json:"room,omitempty"`
	Link      string         `json:"link,omitempty"`
	Invitees  []string       `json:"invitees,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func NewBookingCreated(b *model.Booking) BookingCreated {
	return BookingCreated{
		BookingID: b.ID,
		Organizer: b.Organizer,
		Title:     b.Title,
		Date:      b.Date,
		Start:     b.Start,
		End:       b.End,
		Method:    b.Method,
		Branch:    b.Branch,
		Room:      b.Room,
		Link:      b.Link,
		Invitees:  b.Invitees,
		CreatedAt: b.CreatedAt,
	}
}

type Publisher interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
}

// MessageProducer is the subset of *kafka.Producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type kafkaPublisher struct {
	producer MessageProducer
	source   string
}

func NewKafkaPublisher(producer MessageProducer, source string) Publisher {
	return &kafkaPublisher{producer: producer, source: source}
}

func (p *kafkaPublisher) BookingCreated(ctx context.Context, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithValue(NewBookingCreated(booking)).
		WithEventType(EventBookingCreated).
		WithSchemaVersion(schemaVersion).
		WithSource(p.source).
		WithCorrelationID(CorrelationID(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build %s event: %w", EventBookingCreated, err)
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", EventBookingCreated, err)
	}
	return nil
}

type noopPublisher struct{}

// NewNoopPublisher is used when events are disabled.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) BookingCreated(context.Context, *model.Booking) error {
	return nil
}

type correlationKey struct{}

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationKey{}, id)
}

func CorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationKey{}).(string)
	return id
}
