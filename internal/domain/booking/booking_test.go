package booking

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transitgo/service-booking/internal/domain"
	"github.com/transitgo/service-booking/internal/domain/trip"
)

func newTestBooking(t *testing.T) *Booking {
	t.Helper()
	bk, err := NewBooking(
		uuid.New(),
		uuid.New(),
		[]Passenger{
			{FullName: "Ama Mensah", Age: 34},
			{FullName: "Kojo Mensah", Age: 36},
		},
		trip.NewSeatSet([]string{"A1", "A2"}),
		PaymentMethodCard,
		10500,
		500,
	)
	require.NoError(t, err)
	return bk
}

func TestNewBooking_Validation(t *testing.T) {
	ownerID := uuid.New()
	tripID := uuid.New()
	passengers := []Passenger{{FullName: "Ama Mensah"}}
	seats := trip.NewSeatSet([]string{"A1"})

	tests := []struct {
		name string
		fn   func() (*Booking, error)
	}{
		{"missing owner", func() (*Booking, error) {
			return NewBooking(uuid.Nil, tripID, passengers, seats, PaymentMethodCard, 5500, 500)
		}},
		{"missing trip", func() (*Booking, error) {
			return NewBooking(ownerID, uuid.Nil, passengers, seats, PaymentMethodCard, 5500, 500)
		}},
		{"no passengers", func() (*Booking, error) {
			return NewBooking(ownerID, tripID, nil, seats, PaymentMethodCard, 5500, 500)
		}},
		{"unnamed passenger", func() (*Booking, error) {
			return NewBooking(ownerID, tripID, []Passenger{{Age: 20}}, seats, PaymentMethodCard, 5500, 500)
		}},
		{"no seats", func() (*Booking, error) {
			return NewBooking(ownerID, tripID, passengers, nil, PaymentMethodCard, 5500, 500)
		}},
		{"seat count mismatch", func() (*Booking, error) {
			return NewBooking(ownerID, tripID, passengers, trip.NewSeatSet([]string{"A1", "A2"}), PaymentMethodCard, 5500, 500)
		}},
		{"bad payment method", func() (*Booking, error) {
			return NewBooking(ownerID, tripID, passengers, seats, PaymentMethod("crypto"), 5500, 500)
		}},
		{"non-positive total", func() (*Booking, error) {
			return NewBooking(ownerID, tripID, passengers, seats, PaymentMethodCard, 0, 500)
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

func TestNewBooking_Defaults(t *testing.T) {
	bk := newTestBooking(t)

	assert.Equal(t, StatusConfirmed, bk.Status())
	assert.Equal(t, PaymentPaid, bk.PaymentStatus())
	assert.Nil(t, bk.CancelledAt())
	assert.NotEqual(t, uuid.Nil, bk.ID())
}

func TestNewBooking_CodeFormat(t *testing.T) {
	bk := newTestBooking(t)

	parts := strings.Split(bk.BookingCode(), "-")
	require.Len(t, parts, 3)
	assert.Equal(t, "TGB", parts[0])
	assert.NotEmpty(t, parts[1])
	assert.Len(t, parts[2], 6)
}

func TestBooking_Cancel(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel("plans changed"))
	assert.Equal(t, StatusCancelled, bk.Status())
	assert.Equal(t, PaymentRefunded, bk.PaymentStatus())
	assert.Equal(t, "plans changed", bk.CancellationReason())
	require.NotNil(t, bk.CancelledAt())
}

func TestBooking_Cancel_DefaultReason(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Cancel(""))
	assert.Equal(t, DefaultCancellationReason, bk.CancellationReason())
}

func TestBooking_Cancel_AlreadyCancelled(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Cancel("first"))

	firstCancelledAt := *bk.CancelledAt()

	err := bk.Cancel("second")
	var alreadyErr *domain.AlreadyCancelledError
	require.ErrorAs(t, err, &alreadyErr)
	assert.Equal(t, bk.ID().String(), alreadyErr.BookingID)

	// A rejected second cancel leaves the booking untouched.
	assert.Equal(t, "first", bk.CancellationReason())
	assert.Equal(t, firstCancelledAt, *bk.CancelledAt())
}

func TestBooking_Complete(t *testing.T) {
	bk := newTestBooking(t)

	require.NoError(t, bk.Complete())
	assert.Equal(t, StatusCompleted, bk.Status())
}

func TestBooking_Complete_AfterCancel(t *testing.T) {
	bk := newTestBooking(t)
	require.NoError(t, bk.Cancel(""))

	err := bk.Complete()
	var stateErr *domain.InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestBookingStatus_Transitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusCompleted, true},
		{StatusCancelled, StatusConfirmed, false},
		{StatusCancelled, StatusCompleted, false},
		{StatusCompleted, StatusCancelled, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to),
			"%s -> %s", tt.from, tt.to)
	}
}
