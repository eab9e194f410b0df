package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/transitgo/service-booking/internal/domain"
	"github.com/transitgo/service-booking/internal/domain/trip"
)

const bookingCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// DefaultCancellationReason is recorded when the caller gives no reason.
const DefaultCancellationReason = "User cancelled"

// Booking is the aggregate root for a traveler's reservation of specific
// seats on one trip.
type Booking struct {
	id            uuid.UUID
	bookingCode   string
	ownerID       uuid.UUID
	tripID        uuid.UUID
	passengers    []Passenger
	selectedSeats trip.SeatSet

	paymentMethod    PaymentMethod
	paymentStatus    PaymentStatus
	totalAmountCents int64
	serviceFeeCents  int64

	status             BookingStatus
	cancellationReason string
	cancelledAt        *time.Time

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// generateBookingCode creates a booking code in the format
// "TGB-<unix timestamp>-XXXXXX".
func generateBookingCode(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	for i := range suffix {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(bookingCodeChars))))
		if err != nil {
			return "", fmt.Errorf("failed to generate booking code: %w", err)
		}
		suffix[i] = bookingCodeChars[n.Int64()]
	}
	return fmt.Sprintf("TGB-%d-%s", now.Unix(), string(suffix)), nil
}

// NewBooking creates a new Booking aggregate with status=confirmed and
// paymentStatus=paid (payment is simulated as always succeeding).
func NewBooking(
	ownerID uuid.UUID,
	tripID uuid.UUID,
	passengers []Passenger,
	selectedSeats trip.SeatSet,
	paymentMethod PaymentMethod,
	totalAmountCents int64,
	serviceFeeCents int64,
) (*Booking, error) {
	if ownerID == uuid.Nil {
		return nil, domain.NewValidationError("owner ID is required")
	}
	if tripID == uuid.Nil {
		return nil, domain.NewValidationError("trip ID is required")
	}
	if len(passengers) == 0 {
		return nil, domain.NewValidationError("at least one passenger is required")
	}
	for i, p := range passengers {
		if p.FullName == "" {
			return nil, domain.NewValidationError(fmt.Sprintf("passenger %d: full name is required", i+1))
		}
	}
	if len(selectedSeats) == 0 {
		return nil, domain.NewValidationError("at least one seat must be selected")
	}
	if len(selectedSeats) != len(passengers) {
		return nil, domain.NewValidationError("number of selected seats must match number of passengers")
	}
	if !paymentMethod.IsValid() {
		return nil, domain.NewValidationError(fmt.Sprintf("invalid payment method: %s", paymentMethod))
	}
	if totalAmountCents <= 0 {
		return nil, domain.NewValidationError("total amount must be positive")
	}

	now := time.Now().UTC()
	code, err := generateBookingCode(now)
	if err != nil {
		return nil, err
	}

	return &Booking{
		id:               uuid.New(),
		bookingCode:      code,
		ownerID:          ownerID,
		tripID:           tripID,
		passengers:       passengers,
		selectedSeats:    selectedSeats,
		paymentMethod:    paymentMethod,
		paymentStatus:    PaymentPaid,
		totalAmountCents: totalAmountCents,
		serviceFeeCents:  serviceFeeCents,
		status:           StatusConfirmed,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id uuid.UUID,
	bookingCode string,
	ownerID uuid.UUID,
	tripID uuid.UUID,
	passengers []Passenger,
	selectedSeats trip.SeatSet,
	paymentMethod PaymentMethod,
	paymentStatus PaymentStatus,
	totalAmountCents int64,
	serviceFeeCents int64,
	status BookingStatus,
	cancellationReason string,
	cancelledAt *time.Time,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Booking {
	return &Booking{
		id:                 id,
		bookingCode:        bookingCode,
		ownerID:            ownerID,
		tripID:             tripID,
		passengers:         passengers,
		selectedSeats:      selectedSeats,
		paymentMethod:      paymentMethod,
		paymentStatus:      paymentStatus,
		totalAmountCents:   totalAmountCents,
		serviceFeeCents:    serviceFeeCents,
		status:             status,
		cancellationReason: cancellationReason,
		cancelledAt:        cancelledAt,
		version:            version,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

// --- Getters ---

// ID returns the booking's unique identifier.
func (b *Booking) ID() uuid.UUID { return b.id }

// BookingCode returns the human-facing booking code.
func (b *Booking) BookingCode() string { return b.bookingCode }

// OwnerID returns the owning traveler's user ID.
func (b *Booking) OwnerID() uuid.UUID { return b.ownerID }

// TripID returns the referenced trip's ID.
func (b *Booking) TripID() uuid.UUID { return b.tripID }

// Passengers returns the passenger manifest.
func (b *Booking) Passengers() []Passenger { return b.passengers }

// SelectedSeats returns the set of reserved seat identifiers.
func (b *Booking) SelectedSeats() trip.SeatSet { return b.selectedSeats }

// PaymentMethod returns how the booking was paid.
func (b *Booking) PaymentMethod() PaymentMethod { return b.paymentMethod }

// PaymentStatus returns the current payment status.
func (b *Booking) PaymentStatus() PaymentStatus { return b.paymentStatus }

// TotalAmountCents returns the booking total in cents, inclusive of the
// service fee.
func (b *Booking) TotalAmountCents() int64 { return b.totalAmountCents }

// ServiceFeeCents returns the service fee recorded at booking time.
func (b *Booking) ServiceFeeCents() int64 { return b.serviceFeeCents }

// Status returns the current booking status.
func (b *Booking) Status() BookingStatus { return b.status }

// CancellationReason returns the recorded cancellation reason.
func (b *Booking) CancellationReason() string { return b.cancellationReason }

// CancelledAt returns the time the booking was cancelled.
func (b *Booking) CancelledAt() *time.Time { return b.cancelledAt }

// Version returns the entity version for optimistic locking.
func (b *Booking) Version() int64 { return b.version }

// CreatedAt returns the creation timestamp.
func (b *Booking) CreatedAt() time.Time { return b.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }

// --- Behavior ---

// Cancel transitions the booking to cancelled and flips the payment to
// refunded. Cancelling an already-cancelled booking fails with
// AlreadyCancelledError so seats are never released twice.
func (b *Booking) Cancel(reason string) error {
	if b.status == StatusCancelled {
		return domain.NewAlreadyCancelledError(b.id.String())
	}
	if !b.status.CanTransitionTo(StatusCancelled) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCancelled))
	}
	if reason == "" {
		reason = DefaultCancellationReason
	}
	now := time.Now().UTC()
	b.status = StatusCancelled
	b.paymentStatus = PaymentRefunded
	b.cancellationReason = reason
	b.cancelledAt = &now
	b.updatedAt = now
	return nil
}

// Complete transitions the booking from confirmed to completed. This is
// driven by trip completion events, not by the traveler.
func (b *Booking) Complete() error {
	if !b.status.CanTransitionTo(StatusCompleted) {
		return domain.NewInvalidStateError(string(b.status), string(StatusCompleted))
	}
	b.status = StatusCompleted
	b.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (b *Booking) IncrementVersion() {
	b.version++
	b.updatedAt = time.Now().UTC()
}
