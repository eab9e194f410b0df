// Package events defines the topics and payloads exchanged with other
// services over Kafka.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Topics.
const (
	TopicBookingEvents = "booking.events"
	TopicTripEvents    = "trip.events"
)

// Event types.
const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
	BookingCompleted = "booking.completed"

	TripCompleted = "trip.completed"
	TripCancelled = "trip.cancelled"
)

// BookingCreatedEvent is published after a booking commits.
type BookingCreatedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	OwnerID     uuid.UUID `json:"owner_id"`
	TripID      uuid.UUID `json:"trip_id"`
	Seats       []string  `json:"seats"`
	TotalCents  int64     `json:"total_cents"`
	Currency    string    `json:"currency"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// BookingCancelledEvent is published after a cancellation commits.
type BookingCancelledEvent struct {
	BookingID     uuid.UUID `json:"booking_id"`
	BookingCode   string    `json:"booking_code"`
	OwnerID       uuid.UUID `json:"owner_id"`
	TripID        uuid.UUID `json:"trip_id"`
	ReleasedSeats []string  `json:"released_seats"`
	Reason        string    `json:"reason"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// BookingCompletedEvent is published when a booking is closed out after its
// trip completes.
type BookingCompletedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	BookingCode string    `json:"booking_code"`
	OwnerID     uuid.UUID `json:"owner_id"`
	TripID      uuid.UUID `json:"trip_id"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TripCompletedEvent is consumed from the ops scheduler when a trip has run.
type TripCompletedEvent struct {
	TripID     uuid.UUID `json:"trip_id"`
	OccurredAt time.Time `json:"occurred_at"`
}
