package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrSlotTaken = errors.New("time slot already booked")
)
