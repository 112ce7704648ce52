package service

import (
	"context"
	"errors"
	"strings"
	"time"

	bookingserrors "barbershop/internal/bookings/errors"
	"barbershop/internal/bookings/repository"
	"barbershop/internal/bookings/validator"
	"barbershop/pkg/config"
	apperrors "barbershop/pkg/errors"
	"barbershop/pkg/form"
	"barbershop/pkg/hours"
	"barbershop/pkg/model"
	"barbershop/pkg/sanitizer"

	"github.com/google/uuid"
)

const (
	MsgDateTimeRequired = "Date and time are required"
	MsgDateRequired     = "Date is required"
	MsgInvalidDate      = "Valid date is required"
	MsgInvalidDateTime  = "Invalid date or time. Please choose a future date during business hours (9 AM - 6 PM, Monday-Saturday)."
	MsgSlotTaken        = "This time slot is already booked"
	MsgBookingFailed    = "Failed to process booking. Please try again later."
	MsgBooked           = "Appointment booked successfully"
)

type BookingService interface {
	CheckAvailability(ctx context.Context, date, clock string) (bool, error)
	SubmitBooking(ctx context.Context, req *model.BookingRequest) (*model.Booking, error)
	AvailableTimes(ctx context.Context, date string) (*model.DaySchedule, error)
}

// Notifier accepts confirmed bookings for delivery in the background.
type Notifier interface {
	Enqueue(booking *model.Booking) error
}

type Option func(*bookingService)

// WithClock replaces the time source used for the "strictly in the future"
// rule and creation timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *bookingService) {
		s.now = now
	}
}

type bookingService struct {
	repo      repository.BookingRepository
	validator *validator.BookingValidator
	notifier  Notifier
	rules     hours.Rules
	cfg       *config.Config
	now       func() time.Time
}

func NewBookingService(
	repo repository.BookingRepository,
	validator *validator.BookingValidator,
	notifier Notifier,
	cfg *config.Config,
	opts ...Option,
) BookingService {
	s := &bookingService{
		repo:      repo,
		validator: validator,
		notifier:  notifier,
		rules:     hours.Default(cfg.Location),
		cfg:       cfg,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *bookingService) CheckAvailability(ctx context.Context, date, clock string) (bool, error) {
	date, clock = strings.TrimSpace(date), strings.TrimSpace(clock)
	if date == "" || clock == "" {
		return false, apperrors.InvalidRequest(MsgDateTimeRequired, nil)
	}

	slot, err := s.rules.Validate(date, clock, s.now())
	if err != nil {
		s.cfg.Log.Debug("Availability check rejected", "date", date, "time", clock, "reason", err)
		return false, apperrors.InvalidRequest(MsgInvalidDateTime, err)
	}

	taken, err := s.repo.IsTaken(ctx, slot)
	if err != nil {
		s.cfg.Log.Error("Failed to check slot availability", "slot", slot.String(), "error", err)
		return false, apperrors.Internal("Failed to check availability", err)
	}

	return !taken, nil
}

func (s *bookingService) SubmitBooking(ctx context.Context, req *model.BookingRequest) (*model.Booking, error) {
	s.sanitize(req)

	if err := s.validate(req); err != nil {
		return nil, err
	}

	now := s.now()
	slot, err := s.rules.Validate(req.Date, req.Time, now)
	if err != nil {
		s.cfg.Log.Warn("Booking rejected by business hours", "date", req.Date, "time", req.Time, "reason", err)
		return nil, apperrors.InvalidRequest(MsgInvalidDateTime, err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		s.cfg.Log.Error("Failed to generate booking ID", "error", err)
		return nil, apperrors.Internal(MsgBookingFailed, err)
	}

	booking := &model.Booking{
		ID:            id.String(),
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		PhoneNumber:   req.PhoneNumber,
		Service:       req.Service,
		Date:          slot.Date,
		Time:          slot.Time,
		CreatedAt:     now.UTC().Truncate(time.Millisecond),
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if errors.Is(err, bookingserrors.ErrSlotTaken) {
			s.cfg.Log.Info("Booking rejected, slot already taken", "slot", slot.String())
			return nil, apperrors.SlotTaken(MsgSlotTaken)
		}
		s.cfg.Log.Error("Failed to store booking", "slot", slot.String(), "error", err)
		return nil, apperrors.Internal(MsgBookingFailed, err)
	}

	s.cfg.Log.Info("Booking created successfully",
		"id", booking.ID,
		"date", booking.Date,
		"time", booking.Time,
		"service", booking.Service,
	)

	if err := s.notifier.Enqueue(booking); err != nil {
		s.cfg.Log.Error("Booking stored but notification was not scheduled",
			"id", booking.ID,
			"error", err,
		)
	}

	return booking, nil
}

func (s *bookingService) AvailableTimes(ctx context.Context, date string) (*model.DaySchedule, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, apperrors.InvalidRequest(MsgDateRequired, nil)
	}

	now := s.now()
	times, err := form.AvailableTimes(s.rules, date, now)
	if err != nil {
		return nil, apperrors.InvalidRequest(MsgInvalidDate, err)
	}

	day, _ := s.rules.ParseDate(date)
	schedule := &model.DaySchedule{
		Date:    day.Format(hours.DateLayout),
		Closed:  times.Closed,
		Message: times.Message,
		Slots:   []model.SlotStatus{},
	}
	if times.Closed {
		return schedule, nil
	}

	booked, err := s.repo.FindByDate(ctx, schedule.Date)
	if err != nil {
		s.cfg.Log.Error("Failed to list bookings for date", "date", schedule.Date, "error", err)
		return nil, apperrors.Internal("Failed to load available times", err)
	}
	taken := make(map[string]bool, len(booked))
	for _, b := range booked {
		taken[b.Time] = true
	}

	for _, opt := range times.Options {
		_, at, err := s.rules.Resolve(schedule.Date, opt.Value)
		available := err == nil && s.rules.Check(at, now) == nil && !taken[opt.Value]
		schedule.Slots = append(schedule.Slots, model.SlotStatus{
			Time:      opt.Value,
			Label:     opt.Label,
			Available: available,
		})
	}

	return schedule, nil
}

// --- Helpers ---

func (s *bookingService) sanitize(req *model.BookingRequest) {
	req.CustomerName = sanitizer.NormalizeName(req.CustomerName)
	req.CustomerEmail = sanitizer.NormalizeEmail(req.CustomerEmail)
	req.PhoneNumber = strings.TrimSpace(req.PhoneNumber)
	req.Service = sanitizer.NormalizeService(req.Service)
	req.Date = strings.TrimSpace(req.Date)
	req.Time = strings.TrimSpace(req.Time)
}

func (s *bookingService) validate(req *model.BookingRequest) error {
	err := s.validator.Validate(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", verrs.Fields())
	}

	s.cfg.Log.Error("Booking validator failed", "error", err)
	return apperrors.Internal(MsgBookingFailed, err)
}
