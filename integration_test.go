//go:build integration

package main_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitgo/service-booking/internal/application"
	"github.com/transitgo/service-booking/internal/domain"
	bookingDomain "github.com/transitgo/service-booking/internal/domain/booking"
	"github.com/transitgo/service-booking/internal/events"
	"github.com/transitgo/service-booking/internal/repository"
)

// TestConcurrentBooking_OneWinner fires concurrent requests for the same seat
// against a live database. The row lock on the trip serializes them: exactly
// one succeeds, the rest fail with a seat conflict, and the seat count stays
// consistent.
func TestConcurrentBooking_OneWinner(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	tripID := seedActiveTrip(t, infra.DB, 4, 5000)

	const travelers = 8
	results := make([]error, travelers)
	var wg sync.WaitGroup
	for i := 0; i < travelers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := stack.Service.CreateBooking(context.Background(), uuid.New(), "",
				application.CreateBookingRequest{
					TripID:           tripID,
					Passengers:       []bookingDomain.Passenger{{FullName: "Traveler"}},
					SelectedSeats:    []string{"A1"},
					PaymentMethod:    "card",
					TotalAmountCents: 5500,
				})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var wins, conflicts int
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		var conflictErr *domain.SeatConflictError
		require.True(t, errors.As(err, &conflictErr), "unexpected error: %v", err)
		assert.Equal(t, []string{"A1"}, conflictErr.Seats)
		conflicts++
	}
	assert.Equal(t, 1, wins, "exactly one traveler should win the seat")
	assert.Equal(t, travelers-1, conflicts)

	// Capacity conservation: one seat booked, three free.
	tripRepo := repository.NewGormTripRepository(infra.DB)
	trip, err := tripRepo.FindByID(context.Background(), tripID)
	require.NoError(t, err)
	assert.Equal(t, []string{"A1"}, trip.BookedSeats().Strings())
	assert.Equal(t, 3, trip.AvailableSeats())
}

// TestCancelBooking_ReleasesSeats books, cancels and rebooks the same seat.
func TestCancelBooking_ReleasesSeats(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()

	tripID := seedActiveTrip(t, infra.DB, 2, 5000)
	ownerID := uuid.New()

	created, err := stack.Service.CreateBooking(context.Background(), ownerID, "",
		application.CreateBookingRequest{
			TripID:           tripID,
			Passengers:       []bookingDomain.Passenger{{FullName: "Ama Mensah"}},
			SelectedSeats:    []string{"A1"},
			PaymentMethod:    "card",
			TotalAmountCents: 5500,
		})
	require.NoError(t, err)

	cancelled, err := stack.Service.CancelBooking(context.Background(), ownerID, "", created.ID, "plans changed")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, "refunded", cancelled.PaymentStatus)

	// The seat is bookable again.
	_, err = stack.Service.CreateBooking(context.Background(), uuid.New(), "",
		application.CreateBookingRequest{
			TripID:           tripID,
			Passengers:       []bookingDomain.Passenger{{FullName: "Kojo Mensah"}},
			SelectedSeats:    []string{"A1"},
			PaymentMethod:    "card",
			TotalAmountCents: 5500,
		})
	require.NoError(t, err)
}

// TestTripCompleted_CompletesBookings verifies that when a trip.completed
// event arrives on trip.events, the consumer closes out the trip's confirmed
// bookings and publishes booking.completed.
func TestTripCompleted_CompletesBookings(t *testing.T) {
	infra := setupContainers(t)
	defer infra.Cleanup()

	stack := setupBookingStack(t, infra.DB, infra.KafkaBrokers)
	defer stack.CleanupProducer()
	defer func() { _ = stack.Consumer.Close() }()

	tripID := seedActiveTrip(t, infra.DB, 4, 5000)
	ownerID := uuid.New()

	created, err := stack.Service.CreateBooking(context.Background(), ownerID, "",
		application.CreateBookingRequest{
			TripID:           tripID,
			Passengers:       []bookingDomain.Passenger{{FullName: "Ama Mensah"}},
			SelectedSeats:    []string{"A1"},
			PaymentMethod:    "card",
			TotalAmountCents: 5500,
		})
	require.NoError(t, err)

	// Start the consumer.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = stack.Consumer.Start(ctx) }()
	time.Sleep(3 * time.Second) // Wait for consumer group join.

	evt := events.TripCompletedEvent{
		TripID:     tripID,
		OccurredAt: time.Now().UTC(),
	}
	publishTestEvent(t, infra.KafkaBrokers, events.TopicTripEvents,
		"service-trips", events.TripCompleted, evt)

	// Assert: booking transitions to "completed".
	waitForBookingStatus(t, infra.DB, created.ID, "completed", 15*time.Second)

	// Assert: BookingCompletedEvent on booking.events.
	ce := consumeOneEvent(t, infra.KafkaBrokers, events.TopicBookingEvents,
		events.BookingCompleted, 15*time.Second)

	var completed events.BookingCompletedEvent
	require.NoError(t, ce.ParseData(&completed))
	assert.Equal(t, created.ID, completed.BookingID)
	assert.Equal(t, tripID, completed.TripID)
}
