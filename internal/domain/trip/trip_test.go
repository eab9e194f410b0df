package trip

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitgo/service-booking/internal/domain"
)

func newTestTrip(t *testing.T, seats int) *Trip {
	t.Helper()
	tr, err := NewTrip(
		uuid.New(),
		"Accra",
		"Kumasi",
		time.Now().Add(24*time.Hour),
		time.Now().Add(30*time.Hour),
		"bus",
		seats,
		5000,
		"USD",
	)
	require.NoError(t, err)
	return tr
}

func TestNewTrip_Validation(t *testing.T) {
	departure := time.Now().Add(24 * time.Hour)

	tests := []struct {
		name string
		fn   func() (*Trip, error)
	}{
		{"missing company", func() (*Trip, error) {
			return NewTrip(uuid.Nil, "Accra", "Kumasi", departure, time.Time{}, "bus", 10, 5000, "USD")
		}},
		{"missing origin", func() (*Trip, error) {
			return NewTrip(uuid.New(), "", "Kumasi", departure, time.Time{}, "bus", 10, 5000, "USD")
		}},
		{"missing destination", func() (*Trip, error) {
			return NewTrip(uuid.New(), "Accra", "", departure, time.Time{}, "bus", 10, 5000, "USD")
		}},
		{"arrival before departure", func() (*Trip, error) {
			return NewTrip(uuid.New(), "Accra", "Kumasi", departure, departure.Add(-time.Hour), "bus", 10, 5000, "USD")
		}},
		{"zero seats", func() (*Trip, error) {
			return NewTrip(uuid.New(), "Accra", "Kumasi", departure, time.Time{}, "bus", 0, 5000, "USD")
		}},
		{"non-positive fare", func() (*Trip, error) {
			return NewTrip(uuid.New(), "Accra", "Kumasi", departure, time.Time{}, "bus", 10, 0, "USD")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.fn()
			var validationErr *domain.ValidationError
			assert.ErrorAs(t, err, &validationErr)
		})
	}
}

func TestNewTrip_StartsActiveAndEmpty(t *testing.T) {
	tr := newTestTrip(t, 10)
	assert.Equal(t, StatusActive, tr.Status())
	assert.Empty(t, tr.BookedSeats())
	assert.Equal(t, 10, tr.AvailableSeats())
}

func TestTrip_ReserveSeats(t *testing.T) {
	tr := newTestTrip(t, 4)

	require.NoError(t, tr.ReserveSeats(NewSeatSet([]string{"A1", "A2"})))
	assert.Equal(t, 2, tr.AvailableSeats())
	assert.Equal(t, []string{"A1", "A2"}, tr.BookedSeats().Strings())
}

func TestTrip_ReserveSeats_Conflict(t *testing.T) {
	tr := newTestTrip(t, 4)
	require.NoError(t, tr.ReserveSeats(NewSeatSet([]string{"A1", "A2"})))

	err := tr.ReserveSeats(NewSeatSet([]string{"A2", "A3"}))
	var conflictErr *domain.SeatConflictError
	require.ErrorAs(t, err, &conflictErr)
	assert.Equal(t, []string{"A2"}, conflictErr.Seats)

	// A failed reservation leaves the booked set untouched.
	assert.Equal(t, []string{"A1", "A2"}, tr.BookedSeats().Strings())
}

func TestTrip_ReserveSeats_Capacity(t *testing.T) {
	tr := newTestTrip(t, 3)
	require.NoError(t, tr.ReserveSeats(NewSeatSet([]string{"A1", "A2"})))

	err := tr.ReserveSeats(NewSeatSet([]string{"B1", "B2"}))
	var capErr *domain.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, 2, capErr.Requested)
	assert.Equal(t, 1, capErr.Available)
}

func TestTrip_ReserveSeats_NotOpen(t *testing.T) {
	tr := newTestTrip(t, 4)
	require.NoError(t, tr.ChangeStatus(StatusInactive))

	err := tr.ReserveSeats(NewSeatSet([]string{"A1"}))
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestTrip_BookedPlusAvailableIsConstant(t *testing.T) {
	tr := newTestTrip(t, 6)

	require.NoError(t, tr.ReserveSeats(NewSeatSet([]string{"A1", "A2", "A3"})))
	assert.Equal(t, 6, len(tr.BookedSeats())+tr.AvailableSeats())

	tr.ReleaseSeats(NewSeatSet([]string{"A2"}))
	assert.Equal(t, 6, len(tr.BookedSeats())+tr.AvailableSeats())
}

func TestTrip_ReleaseSeats(t *testing.T) {
	tr := newTestTrip(t, 4)
	require.NoError(t, tr.ReserveSeats(NewSeatSet([]string{"A1", "A2"})))

	released := tr.ReleaseSeats(NewSeatSet([]string{"A1", "Z9"}))
	assert.Equal(t, 1, released)
	assert.Equal(t, []string{"A2"}, tr.BookedSeats().Strings())

	// Releasing again is a no-op.
	assert.Equal(t, 0, tr.ReleaseSeats(NewSeatSet([]string{"A1"})))
}

func TestTrip_ChangeCapacity(t *testing.T) {
	tr := newTestTrip(t, 4)
	require.NoError(t, tr.ReserveSeats(NewSeatSet([]string{"A1", "A2"})))

	require.NoError(t, tr.ChangeCapacity(2))
	assert.Equal(t, 0, tr.AvailableSeats())

	err := tr.ChangeCapacity(1)
	var validationErr *domain.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestTripStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    TripStatus
		to      TripStatus
		allowed bool
	}{
		{StatusActive, StatusInactive, true},
		{StatusActive, StatusCancelled, true},
		{StatusActive, StatusCompleted, true},
		{StatusInactive, StatusActive, true},
		{StatusInactive, StatusCompleted, false},
		{StatusCancelled, StatusActive, false},
		{StatusCompleted, StatusActive, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}

func TestTrip_ChangeStatus_Invalid(t *testing.T) {
	tr := newTestTrip(t, 4)
	require.NoError(t, tr.ChangeStatus(StatusCompleted))

	err := tr.ChangeStatus(StatusActive)
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}
