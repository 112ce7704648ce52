package model

import (
	"time"

	"barbershop/pkg/hours"
)

// BookingRequest is the body of POST /api/book.
type BookingRequest struct {
	CustomerName  string `json:"customerName" validate:"required"`
	CustomerEmail string `json:"customerEmail" validate:"required,email"`
	PhoneNumber   string `json:"phoneNumber" validate:"required,usphone"`
	Service       string `json:"service" validate:"required"`
	Date          string `json:"date" validate:"required,datetime=2006-01-02"`
	Time          string `json:"time" validate:"required,clock"`
}

// Booking is a confirmed appointment. It is never modified after creation.
type Booking struct {
	ID            string    `json:"bookingId"`
	CustomerName  string    `json:"customerName"`
	CustomerEmail string    `json:"customerEmail"`
	PhoneNumber   string    `json:"phoneNumber"`
	Service       string    `json:"service"`
	Date          string    `json:"date"`
	Time          string    `json:"time"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (b *Booking) Slot() hours.Slot {
	return hours.Slot{Date: b.Date, Time: b.Time}
}

// BookingConfirmation is the 201 body of POST /api/book.
type BookingConfirmation struct {
	Message   string `json:"message"`
	BookingID string `json:"bookingId"`
}

// Availability is the body of GET /api/check-availability.
type Availability struct {
	Available bool `json:"available"`
}

// SlotStatus is one entry of GET /api/available-times.
type SlotStatus struct {
	Time      string `json:"time"`
	Label     string `json:"label"`
	Available bool   `json:"available"`
}

// DaySchedule is the body of GET /api/available-times.
type DaySchedule struct {
	Date    string       `json:"date"`
	Closed  bool         `json:"closed"`
	Message string       `json:"message,omitempty"`
	Slots   []SlotStatus `json:"slots"`
}
