// Package notifications delivers booking confirmations after a booking has
// been stored. Delivery is best-effort: failures are retried by the Worker and
// logged, and never undo the booking.
package notifications

import (
	"context"

	"barbershop/pkg/logger"
	"barbershop/pkg/model"
)

type Dispatcher interface {
	Name() string
	Dispatch(ctx context.Context, booking *model.Booking) error
}

// LogDispatcher records the confirmation in the service log. It is the
// fallback when neither SMTP nor Kafka is configured.
type LogDispatcher struct {
	log *logger.Logger
}

func NewLogDispatcher(log *logger.Logger) *LogDispatcher {
	return &LogDispatcher{log: log}
}

func (d *LogDispatcher) Name() string {
	return "log"
}

func (d *LogDispatcher) Dispatch(_ context.Context, booking *model.Booking) error {
	d.log.Info("Booking confirmed",
		"booking_id", booking.ID,
		"date", booking.Date,
		"time", booking.Time,
		"service", booking.Service,
		"customer_email", booking.CustomerEmail,
	)
	return nil
}
