package domain

import (
	"fmt"
	"strings"
)

// ValidationError indicates the caller supplied missing or malformed input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// NotFoundError indicates a referenced entity does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and identifier.
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// SeatConflictError indicates requested seats are already booked on the trip.
// It carries the conflicting seat identifiers so the client can refresh its
// seat map.
type SeatConflictError struct {
	Seats []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already booked: %s", strings.Join(e.Seats, ", "))
}

// NewSeatConflictError creates a SeatConflictError naming the taken seats.
func NewSeatConflictError(seats []string) *SeatConflictError {
	return &SeatConflictError{Seats: seats}
}

// CapacityError indicates the trip does not have enough free seats left,
// even absent a direct seat collision.
type CapacityError struct {
	Requested int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("not enough seats available: requested %d, available %d", e.Requested, e.Available)
}

// NewCapacityError creates a CapacityError for the given counts.
func NewCapacityError(requested, available int) *CapacityError {
	return &CapacityError{Requested: requested, Available: available}
}

// ForbiddenError indicates the caller is authenticated but not allowed to
// perform the operation.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string {
	return e.Message
}

// NewForbiddenError creates a ForbiddenError with the given message.
func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{Message: message}
}

// UnauthorizedError indicates the caller could not be authenticated.
type UnauthorizedError struct {
	Message string
}

func (e *UnauthorizedError) Error() string {
	return e.Message
}

// NewUnauthorizedError creates an UnauthorizedError with the given message.
func NewUnauthorizedError(message string) *UnauthorizedError {
	return &UnauthorizedError{Message: message}
}

// AlreadyCancelledError is the idempotency guard on double cancellation.
type AlreadyCancelledError struct {
	BookingID string
}

func (e *AlreadyCancelledError) Error() string {
	return fmt.Sprintf("booking already cancelled: %s", e.BookingID)
}

// NewAlreadyCancelledError creates an AlreadyCancelledError for the booking.
func NewAlreadyCancelledError(bookingID string) *AlreadyCancelledError {
	return &AlreadyCancelledError{BookingID: bookingID}
}

// InvalidStateError indicates a state machine transition is not allowed.
type InvalidStateError struct {
	From string
	To   string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("invalid state transition from %s to %s", e.From, e.To)
}

// NewInvalidStateError creates an InvalidStateError for the transition.
func NewInvalidStateError(from, to string) *InvalidStateError {
	return &InvalidStateError{From: from, To: to}
}

// ConflictError indicates a concurrent modification was detected.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// NewConflictError creates a ConflictError with the given message.
func NewConflictError(message string) *ConflictError {
	return &ConflictError{Message: message}
}
