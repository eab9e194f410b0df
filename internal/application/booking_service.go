package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitgo/service-booking/internal/domain"
	bookingDomain "github.com/transitgo/service-booking/internal/domain/booking"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
	"github.com/transitgo/service-booking/internal/events"
	"github.com/transitgo/service-booking/internal/platform/kafka"
)

// UnitOfWork runs a function against transaction-scoped repositories. The
// function commits or rolls back atomically; it is the only concurrency
// boundary the booking core relies on.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(trips tripDomain.TripRepository, bookings bookingDomain.BookingRepository) error) error
}

// EventPublisher publishes CloudEvents. Satisfied by the Kafka producer.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic string, event kafka.CloudEvent) error
}

// Notifier delivers booking emails. Implementations are fire-and-forget:
// they log failures and never return them into the booking flow.
type Notifier interface {
	BookingCreated(ctx context.Context, recipient string, booking *BookingDTO)
	BookingCancelled(ctx context.Context, recipient string, booking *BookingDTO)
}

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	TripID           uuid.UUID                 `json:"trip_id" binding:"required"`
	Passengers       []bookingDomain.Passenger `json:"passengers" binding:"required,min=1"`
	SelectedSeats    []string                  `json:"selected_seats" binding:"required,min=1"`
	PaymentMethod    string                    `json:"payment_method" binding:"required"`
	TotalAmountCents int64                     `json:"total_amount_cents" binding:"required"`
}

// CancelBookingRequest holds the optional cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

// TripSummary is the trip projection echoed inside a booking response.
type TripSummary struct {
	ID               uuid.UUID `json:"id"`
	Origin           string    `json:"origin"`
	Destination      string    `json:"destination"`
	DepartureAt      time.Time `json:"departure_at"`
	Status           string    `json:"status"`
	FarePerSeatCents int64     `json:"fare_per_seat_cents"`
	Currency         string    `json:"currency"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID                 uuid.UUID                 `json:"id"`
	BookingCode        string                    `json:"booking_code"`
	OwnerID            uuid.UUID                 `json:"owner_id"`
	TripID             uuid.UUID                 `json:"trip_id"`
	Trip               *TripSummary              `json:"trip,omitempty"`
	Passengers         []bookingDomain.Passenger `json:"passengers"`
	SelectedSeats      []string                  `json:"selected_seats"`
	PaymentMethod      string                    `json:"payment_method"`
	PaymentStatus      string                    `json:"payment_status"`
	TotalAmountCents   int64                     `json:"total_amount_cents"`
	ServiceFeeCents    int64                     `json:"service_fee_cents"`
	Status             string                    `json:"status"`
	CancellationReason string                    `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time                `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time                 `json:"created_at"`
	UpdatedAt          time.Time                 `json:"updated_at"`
}

// BookingService is the application service orchestrating the booking
// lifecycle: seat reservation, cancellation and the post-commit side effects.
type BookingService struct {
	uow      UnitOfWork
	trips    tripDomain.TripRepository
	bookings bookingDomain.BookingRepository
	fare     bookingDomain.FarePolicy
	producer EventPublisher
	notifier Notifier
	logger   *zap.Logger
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	uow UnitOfWork,
	trips tripDomain.TripRepository,
	bookings bookingDomain.BookingRepository,
	fare bookingDomain.FarePolicy,
	producer EventPublisher,
	notifier Notifier,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		uow:      uow,
		trips:    trips,
		bookings: bookings,
		fare:     fare,
		producer: producer,
		notifier: notifier,
		logger:   logger,
	}
}

// CreateBooking reserves the requested seats on the trip and records the
// booking, all inside one database transaction. The trip row is locked for
// the duration, so two concurrent requests for an overlapping seat are
// serialized: the first commit wins, the second observes the updated seat
// set and fails with a SeatConflictError (or CapacityError).
func (s *BookingService) CreateBooking(ctx context.Context, ownerID uuid.UUID, ownerEmail string, req CreateBookingRequest) (*BookingDTO, error) {
	if req.TripID == uuid.Nil {
		return nil, domain.NewValidationError("trip ID is required")
	}
	requested := tripDomain.NewSeatSet(req.SelectedSeats)
	if len(requested) != len(req.SelectedSeats) {
		return nil, domain.NewValidationError("selected seats must be unique and non-empty")
	}

	var created *bookingDomain.Booking
	err := s.uow.WithinTx(ctx, func(trips tripDomain.TripRepository, bookings bookingDomain.BookingRepository) error {
		t, err := trips.FindByIDForUpdate(ctx, req.TripID)
		if err != nil {
			return err
		}

		if err := s.fare.ValidateTotal(req.TotalAmountCents, t.FarePerSeatCents(), len(requested)); err != nil {
			return err
		}

		bk, err := bookingDomain.NewBooking(
			ownerID,
			t.ID(),
			req.Passengers,
			requested,
			bookingDomain.PaymentMethod(req.PaymentMethod),
			req.TotalAmountCents,
			bookingDomain.ServiceFeeCents,
		)
		if err != nil {
			return err
		}

		if err := t.ReserveSeats(requested); err != nil {
			return err
		}

		if err := bookings.Save(ctx, bk); err != nil {
			return err
		}

		t.IncrementVersion()
		if err := trips.Update(ctx, t); err != nil {
			return err
		}

		created = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Post-commit re-read for the response projection. Not atomic with the
	// write; only the response payload depends on it.
	dto, err := s.bookingWithTrip(ctx, created.ID())
	if err != nil {
		s.logger.Warn("failed to re-fetch booking after commit",
			zap.String("booking_id", created.ID().String()),
			zap.Error(err),
		)
		fallback := toBookingDTO(created)
		dto = &fallback
	}

	s.publishBookingCreated(ctx, created)
	s.notifier.BookingCreated(ctx, ownerEmail, dto)

	return dto, nil
}

// CancelBooking cancels a booking owned by the caller, refunds the payment
// and releases the reserved seats back to the trip, atomically. Cancelling
// twice fails with AlreadyCancelledError and releases nothing.
func (s *BookingService) CancelBooking(ctx context.Context, callerID uuid.UUID, callerEmail string, bookingID uuid.UUID, reason string) (*BookingDTO, error) {
	var cancelled *bookingDomain.Booking
	err := s.uow.WithinTx(ctx, func(trips tripDomain.TripRepository, bookings bookingDomain.BookingRepository) error {
		bk, err := bookings.FindByID(ctx, bookingID)
		if err != nil {
			return err
		}

		if bk.OwnerID() != callerID {
			return domain.NewForbiddenError("booking does not belong to this user")
		}

		if err := bk.Cancel(reason); err != nil {
			return err
		}

		bk.IncrementVersion()
		if err := bookings.Update(ctx, bk); err != nil {
			return err
		}

		// Release seats against the live trip. If the trip is gone the
		// cancellation still stands; the booking side is authoritative.
		t, err := trips.FindByIDForUpdate(ctx, bk.TripID())
		if err != nil {
			var notFound *domain.NotFoundError
			if errors.As(err, &notFound) {
				s.logger.Warn("trip missing during cancellation, skipping seat release",
					zap.String("booking_id", bk.ID().String()),
					zap.String("trip_id", bk.TripID().String()),
				)
				cancelled = bk
				return nil
			}
			return err
		}

		t.ReleaseSeats(bk.SelectedSeats())
		t.IncrementVersion()
		if err := trips.Update(ctx, t); err != nil {
			return err
		}

		cancelled = bk
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := toBookingDTO(cancelled)
	s.publishBookingCancelled(ctx, cancelled)
	s.notifier.BookingCancelled(ctx, callerEmail, &dto)

	return &dto, nil
}

// GetBooking retrieves a booking by ID. Only the owning traveler may read it.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	return s.projectWithTrip(ctx, bk), nil
}

// GetBookingByCode retrieves a booking by its human-facing code. Only the
// owning traveler may read it.
func (s *BookingService) GetBookingByCode(ctx context.Context, callerID uuid.UUID, code string) (*BookingDTO, error) {
	bk, err := s.bookings.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if bk.OwnerID() != callerID {
		return nil, domain.NewForbiddenError("booking does not belong to this user")
	}
	return s.projectWithTrip(ctx, bk), nil
}

// GetOwnerBookings retrieves paginated bookings for a traveler.
func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID uuid.UUID, page, limit int) (*domain.PaginatedResult[BookingDTO], error) {
	bookings, total, err := s.bookings.FindByOwnerID(ctx, ownerID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// CompleteTrip marks a trip as completed and closes out its confirmed
// bookings. Driven by trip.completed events from the ops scheduler; calling
// it again for an already-completed trip is a no-op.
func (s *BookingService) CompleteTrip(ctx context.Context, tripID uuid.UUID) error {
	var completed []*bookingDomain.Booking
	err := s.uow.WithinTx(ctx, func(trips tripDomain.TripRepository, bookings bookingDomain.BookingRepository) error {
		t, err := trips.FindByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}

		if t.Status() == tripDomain.StatusCompleted {
			return nil
		}
		if err := t.ChangeStatus(tripDomain.StatusCompleted); err != nil {
			return err
		}
		t.IncrementVersion()
		if err := trips.Update(ctx, t); err != nil {
			return err
		}

		confirmed, err := bookings.FindConfirmedByTripID(ctx, tripID)
		if err != nil {
			return err
		}
		for _, bk := range confirmed {
			if err := bk.Complete(); err != nil {
				return err
			}
			bk.IncrementVersion()
			if err := bookings.Update(ctx, bk); err != nil {
				return err
			}
		}

		completed = confirmed
		return nil
	})
	if err != nil {
		return err
	}

	for _, bk := range completed {
		evt := events.BookingCompletedEvent{
			BookingID:   bk.ID(),
			BookingCode: bk.BookingCode(),
			OwnerID:     bk.OwnerID(),
			TripID:      bk.TripID(),
			OccurredAt:  time.Now().UTC(),
		}
		s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCompleted, evt)
	}
	return nil
}

// --- Admin methods ---

// BookingStatsDTO holds booking statistics for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"total_bookings"`
	ByStatus      map[string]int64 `json:"by_status"`
}

// ListAllBookings returns a paginated list of all bookings (admin).
func (s *BookingService) ListAllBookings(ctx context.Context, page, limit int) ([]BookingDTO, int64, error) {
	bookings, total, err := s.bookings.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	dtos := make([]BookingDTO, len(bookings))
	for i, bk := range bookings {
		dtos[i] = toBookingDTO(bk)
	}
	return dtos, total, nil
}

// GetBookingStats returns aggregate booking statistics (admin).
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.bookings.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	var total int64
	for _, c := range counts {
		total += c
	}

	return &BookingStatsDTO{
		TotalBookings: total,
		ByStatus:      counts,
	}, nil
}

// --- Helpers ---

func (s *BookingService) bookingWithTrip(ctx context.Context, bookingID uuid.UUID) (*BookingDTO, error) {
	bk, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	return s.projectWithTrip(ctx, bk), nil
}

func (s *BookingService) projectWithTrip(ctx context.Context, bk *bookingDomain.Booking) *BookingDTO {
	dto := toBookingDTO(bk)
	t, err := s.trips.FindByID(ctx, bk.TripID())
	if err != nil {
		s.logger.Debug("trip projection unavailable",
			zap.String("trip_id", bk.TripID().String()),
			zap.Error(err),
		)
		return &dto
	}
	dto.Trip = &TripSummary{
		ID:               t.ID(),
		Origin:           t.Origin(),
		Destination:      t.Destination(),
		DepartureAt:      t.DepartureAt(),
		Status:           string(t.Status()),
		FarePerSeatCents: t.FarePerSeatCents(),
		Currency:         t.Currency(),
	}
	return &dto
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:                 bk.ID(),
		BookingCode:        bk.BookingCode(),
		OwnerID:            bk.OwnerID(),
		TripID:             bk.TripID(),
		Passengers:         bk.Passengers(),
		SelectedSeats:      bk.SelectedSeats().Strings(),
		PaymentMethod:      string(bk.PaymentMethod()),
		PaymentStatus:      string(bk.PaymentStatus()),
		TotalAmountCents:   bk.TotalAmountCents(),
		ServiceFeeCents:    bk.ServiceFeeCents(),
		Status:             string(bk.Status()),
		CancellationReason: bk.CancellationReason(),
		CancelledAt:        bk.CancelledAt(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}
}

func (s *BookingService) publishBookingCreated(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCreatedEvent{
		BookingID:   bk.ID(),
		BookingCode: bk.BookingCode(),
		OwnerID:     bk.OwnerID(),
		TripID:      bk.TripID(),
		Seats:       bk.SelectedSeats().Strings(),
		TotalCents:  bk.TotalAmountCents(),
		OccurredAt:  time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCreated, evt)
}

func (s *BookingService) publishBookingCancelled(ctx context.Context, bk *bookingDomain.Booking) {
	evt := events.BookingCancelledEvent{
		BookingID:     bk.ID(),
		BookingCode:   bk.BookingCode(),
		OwnerID:       bk.OwnerID(),
		TripID:        bk.TripID(),
		ReleasedSeats: bk.SelectedSeats().Strings(),
		Reason:        bk.CancellationReason(),
		OccurredAt:    time.Now().UTC(),
	}
	s.publishEvent(ctx, events.TopicBookingEvents, events.BookingCancelled, evt)
}

func (s *BookingService) publishEvent(ctx context.Context, topic, eventType string, data interface{}) {
	cloudEvent, err := kafka.NewCloudEvent("service-booking", eventType, data)
	if err != nil {
		s.logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := s.producer.PublishEvent(ctx, topic, cloudEvent); err != nil {
		s.logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
	}
}
