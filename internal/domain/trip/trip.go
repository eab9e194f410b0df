package trip

import (
	"time"

	"github.com/google/uuid"

	"github.com/transitgo/service-booking/internal/domain"
)

// Trip is the aggregate root for the trip catalog. Seat occupancy is held as
// a set of booked seat identifiers; the free seat count is derived from it so
// the two can never drift apart.
type Trip struct {
	id          uuid.UUID
	companyID   uuid.UUID
	origin      string
	destination string
	departureAt time.Time
	arrivalAt   time.Time
	vehicleType string
	status      TripStatus

	seats            int
	bookedSeats      SeatSet
	farePerSeatCents int64
	currency         string

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewTrip creates a new Trip aggregate with status=active and no booked seats.
func NewTrip(
	companyID uuid.UUID,
	origin string,
	destination string,
	departureAt time.Time,
	arrivalAt time.Time,
	vehicleType string,
	seats int,
	farePerSeatCents int64,
	currency string,
) (*Trip, error) {
	if companyID == uuid.Nil {
		return nil, domain.NewValidationError("company ID is required")
	}
	if origin == "" {
		return nil, domain.NewValidationError("origin is required")
	}
	if destination == "" {
		return nil, domain.NewValidationError("destination is required")
	}
	if departureAt.IsZero() {
		return nil, domain.NewValidationError("departure time is required")
	}
	if !arrivalAt.IsZero() && arrivalAt.Before(departureAt) {
		return nil, domain.NewValidationError("arrival time must be after departure time")
	}
	if seats <= 0 {
		return nil, domain.NewValidationError("seat capacity must be positive")
	}
	if farePerSeatCents <= 0 {
		return nil, domain.NewValidationError("fare per seat must be positive")
	}

	now := time.Now().UTC()
	return &Trip{
		id:               uuid.New(),
		companyID:        companyID,
		origin:           origin,
		destination:      destination,
		departureAt:      departureAt,
		arrivalAt:        arrivalAt,
		vehicleType:      vehicleType,
		status:           StatusActive,
		seats:            seats,
		bookedSeats:      NewSeatSet(nil),
		farePerSeatCents: farePerSeatCents,
		currency:         currency,
		version:          1,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

// ReconstructTrip rebuilds a Trip from persistence data (no validation).
func ReconstructTrip(
	id uuid.UUID,
	companyID uuid.UUID,
	origin string,
	destination string,
	departureAt time.Time,
	arrivalAt time.Time,
	vehicleType string,
	status TripStatus,
	seats int,
	bookedSeats SeatSet,
	farePerSeatCents int64,
	currency string,
	version int64,
	createdAt time.Time,
	updatedAt time.Time,
) *Trip {
	return &Trip{
		id:               id,
		companyID:        companyID,
		origin:           origin,
		destination:      destination,
		departureAt:      departureAt,
		arrivalAt:        arrivalAt,
		vehicleType:      vehicleType,
		status:           status,
		seats:            seats,
		bookedSeats:      bookedSeats,
		farePerSeatCents: farePerSeatCents,
		currency:         currency,
		version:          version,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// --- Getters ---

// ID returns the trip's unique identifier.
func (t *Trip) ID() uuid.UUID { return t.id }

// CompanyID returns the publishing company's identifier.
func (t *Trip) CompanyID() uuid.UUID { return t.companyID }

// Origin returns the departure location.
func (t *Trip) Origin() string { return t.origin }

// Destination returns the arrival location.
func (t *Trip) Destination() string { return t.destination }

// DepartureAt returns the scheduled departure time.
func (t *Trip) DepartureAt() time.Time { return t.departureAt }

// ArrivalAt returns the scheduled arrival time.
func (t *Trip) ArrivalAt() time.Time { return t.arrivalAt }

// VehicleType returns the vehicle type for this trip.
func (t *Trip) VehicleType() string { return t.vehicleType }

// Status returns the current trip status.
func (t *Trip) Status() TripStatus { return t.status }

// Seats returns the total seat capacity.
func (t *Trip) Seats() int { return t.seats }

// BookedSeats returns the set of already-booked seat identifiers.
func (t *Trip) BookedSeats() SeatSet { return t.bookedSeats }

// AvailableSeats returns the number of free seats, derived from the booked
// seat set so it cannot drift from it.
func (t *Trip) AvailableSeats() int { return t.seats - len(t.bookedSeats) }

// FarePerSeatCents returns the fare per seat in cents.
func (t *Trip) FarePerSeatCents() int64 { return t.farePerSeatCents }

// Currency returns the currency code.
func (t *Trip) Currency() string { return t.currency }

// Version returns the entity version for optimistic locking.
func (t *Trip) Version() int64 { return t.version }

// CreatedAt returns the creation timestamp.
func (t *Trip) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns the last-updated timestamp.
func (t *Trip) UpdatedAt() time.Time { return t.updatedAt }

// --- Behavior ---

// ReserveSeats claims the requested seats on the trip. It fails with a
// SeatConflictError naming the taken seats if any requested seat is already
// booked, and with a CapacityError if the trip does not have enough free
// seats left even without a direct collision.
func (t *Trip) ReserveSeats(requested SeatSet) error {
	if !t.status.AcceptsBookings() {
		return domain.NewValidationError("trip is not open for booking")
	}
	if len(requested) == 0 {
		return domain.NewValidationError("at least one seat must be selected")
	}

	if conflict := t.bookedSeats.Intersect(requested); len(conflict) > 0 {
		return domain.NewSeatConflictError(conflict.Strings())
	}
	if len(requested) > t.AvailableSeats() {
		return domain.NewCapacityError(len(requested), t.AvailableSeats())
	}

	t.bookedSeats = t.bookedSeats.Union(requested)
	t.updatedAt = time.Now().UTC()
	return nil
}

// ReleaseSeats removes the given seats from the booked set and returns how
// many were actually released. Seats not currently booked are ignored so a
// release can never push occupancy negative.
func (t *Trip) ReleaseSeats(seats SeatSet) int {
	before := len(t.bookedSeats)
	t.bookedSeats = t.bookedSeats.Without(seats)
	released := before - len(t.bookedSeats)
	if released > 0 {
		t.updatedAt = time.Now().UTC()
	}
	return released
}

// ChangeCapacity updates the total seat count. The new capacity must still
// accommodate every seat already booked.
func (t *Trip) ChangeCapacity(seats int) error {
	if seats <= 0 {
		return domain.NewValidationError("seat capacity must be positive")
	}
	if seats < len(t.bookedSeats) {
		return domain.NewValidationError("seat capacity cannot be lower than the number of booked seats")
	}
	t.seats = seats
	t.updatedAt = time.Now().UTC()
	return nil
}

// SetFarePerSeat updates the fare charged per seat. Existing bookings keep
// the total they were charged at creation time.
func (t *Trip) SetFarePerSeat(cents int64) {
	t.farePerSeatCents = cents
	t.updatedAt = time.Now().UTC()
}

// SetVehicleType updates the vehicle type for this trip.
func (t *Trip) SetVehicleType(vehicleType string) {
	t.vehicleType = vehicleType
	t.updatedAt = time.Now().UTC()
}

// ChangeStatus transitions the trip to the target status.
func (t *Trip) ChangeStatus(target TripStatus) error {
	if !t.status.CanTransitionTo(target) {
		return domain.NewInvalidStateError(string(t.status), string(target))
	}
	t.status = target
	t.updatedAt = time.Now().UTC()
	return nil
}

// IncrementVersion bumps the version for optimistic locking.
func (t *Trip) IncrementVersion() {
	t.version++
	t.updatedAt = time.Now().UTC()
}
