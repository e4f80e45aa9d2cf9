package errors

import (
	"errors"
	"fmt"

	"roomdesk/pkg/model"
)

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrTimeConflict = errors.New("booking time conflicts with existing booking")

	ErrSlotLocked = errors.New("resource is currently being booked by another request")

	ErrNoRangeSelected = errors.New("no time range selected")

	ErrSlotNotOnGrid = errors.New("slot is not on the booking grid")

	ErrUnknownResource = errors.New("unknown branch or room")

	ErrSessionNotFound = errors.New("booking session not found")

	ErrSessionClosed = errors.New("booking session is closed")
)

// ConflictError reports that a requested interval overlaps an existing booking.
type ConflictError struct {
	Booking *model.Booking
}

func (e *ConflictError) Error() string {
	if e.Booking == nil {
		return ErrTimeConflict.Error()
	}
	return fmt.Sprintf("range contains an existing booking (%s %s-%s %s)",
		e.Booking.Date, e.Booking.Start, e.Booking.End, e.Booking.Resource())
}

func (e *ConflictError) Unwrap() error {
	return ErrTimeConflict
}
