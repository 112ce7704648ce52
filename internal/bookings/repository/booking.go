package repository

import (
	"context"
	"sort"
	"sync"

	bookingserrors "barbershop/internal/bookings/errors"
	"barbershop/pkg/hours"
	"barbershop/pkg/model"
)

type BookingRepository interface {
	// Create stores the booking unless its slot is already held, in which
	// case it returns ErrSlotTaken and stores nothing.
	Create(ctx context.Context, booking *model.Booking) error
	FindBySlot(ctx context.Context, slot hours.Slot) (*model.Booking, error)
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByDate(ctx context.Context, date string) ([]*model.Booking, error)
	IsTaken(ctx context.Context, slot hours.Slot) (bool, error)
	Count(ctx context.Context) (int64, error)
}

// memoryBookingRepository keeps bookings for the lifetime of the process.
// The slot key index plays the role of a unique index: check and insert
// happen under one write lock.
type memoryBookingRepository struct {
	mu     sync.RWMutex
	bySlot map[string]*model.Booking
	byID   map[string]*model.Booking
}

func NewMemoryBookingRepository() BookingRepository {
	return &memoryBookingRepository{
		bySlot: make(map[string]*model.Booking),
		byID:   make(map[string]*model.Booking),
	}
}

func (r *memoryBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key := booking.Slot().Key()
	stored := *booking

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.bySlot[key]; exists {
		return bookingserrors.ErrSlotTaken
	}
	r.bySlot[key] = &stored
	r.byID[stored.ID] = &stored
	return nil
}

func (r *memoryBookingRepository) FindBySlot(ctx context.Context, slot hours.Slot) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.bySlot[slot.Key()]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	found := *booking
	return &found, nil
}

func (r *memoryBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	booking, ok := r.byID[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	found := *booking
	return &found, nil
}

// FindByDate returns the bookings of one day ordered by time.
func (r *memoryBookingRepository) FindByDate(ctx context.Context, date string) ([]*model.Booking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	var bookings []*model.Booking
	for _, b := range r.bySlot {
		if b.Date == date {
			found := *b
			bookings = append(bookings, &found)
		}
	}
	r.mu.RUnlock()

	sort.Slice(bookings, func(i, j int) bool {
		return bookings[i].Time < bookings[j].Time
	})
	return bookings, nil
}

func (r *memoryBookingRepository) IsTaken(ctx context.Context, slot hours.Slot) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	_, taken := r.bySlot[slot.Key()]
	return taken, nil
}

func (r *memoryBookingRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.bySlot)), nil
}
