package notifications

import (
	"context"
	"time"

	"barbershop/pkg/kafka"
	"barbershop/pkg/model"
	"barbershop/pkg/sanitizer"

	"github.com/cenkalti/backoff/v5"
)

const (
	EventBookingConfirmed = "booking.confirmed"
	eventSchemaVersion    = "1"
)

// BookingConfirmedEvent is the payload published for every stored booking.
type BookingConfirmedEvent struct {
	BookingID     string    `json:"bookingId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	PhoneNumber   string    `json:"phoneNumber"`
	PhoneE164     string    `json:"phoneE164,omitempty"`
	Service       string    `json:"service"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"createdAt"`
}

type publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// EventDispatcher publishes booking.confirmed events keyed by slot, so every
// event for one slot lands on the same partition.
type EventDispatcher struct {
	producer publisher
	source   string
}

func NewEventDispatcher(producer publisher, source string) *EventDispatcher {
	return &EventDispatcher{producer: producer, source: source}
}

func (d *EventDispatcher) Name() string {
	return "kafka_event"
}

func (d *EventDispatcher) Dispatch(ctx context.Context, booking *model.Booking) error {
	msg, err := kafka.NewMessage().
		WithKey(booking.Slot().Key()).
		WithValue(BookingConfirmedEvent{
			BookingID:     booking.ID,
			CustomerName:  booking.CustomerName,
			CustomerEmail: booking.CustomerEmail,
			PhoneNumber:   booking.PhoneNumber,
			PhoneE164:     sanitizer.NormalizePhone(booking.PhoneNumber),
			Service:       booking.Service,
			Date:          booking.Date,
			Time:          booking.Time,
			CreatedAt:     booking.CreatedAt,
		}).
		WithEventID(booking.ID).
		WithEventType(EventBookingConfirmed).
		WithSchemaVersion(eventSchemaVersion).
		WithSource(d.source).
		WithCorrelationID(booking.ID).
		Build()
	if err != nil {
		return backoff.Permanent(err)
	}
	if err := d.producer.Publish(ctx, msg); err != nil {
		if !kafka.IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	return nil
}
