package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/transitgo/service-booking/internal/domain"
	bookingDomain "github.com/transitgo/service-booking/internal/domain/booking"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
)

// CreateTripRequest holds the data a company submits to publish a trip.
type CreateTripRequest struct {
	Origin           string    `json:"origin" binding:"required"`
	Destination      string    `json:"destination" binding:"required"`
	DepartureAt      time.Time `json:"departure_at" binding:"required"`
	ArrivalAt        time.Time `json:"arrival_at"`
	VehicleType      string    `json:"vehicle_type"`
	Seats            int       `json:"seats" binding:"required"`
	FarePerSeatCents int64     `json:"fare_per_seat_cents" binding:"required"`
	Currency         string    `json:"currency"`
}

// UpdateTripRequest holds the mutable trip fields. Nil fields are unchanged.
type UpdateTripRequest struct {
	Seats            *int    `json:"seats"`
	FarePerSeatCents *int64  `json:"fare_per_seat_cents"`
	VehicleType      *string `json:"vehicle_type"`
}

// ChangeTripStatusRequest holds the target status for a trip.
type ChangeTripStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// TripDTO is the response representation of a trip, including the derived
// seat availability.
type TripDTO struct {
	ID               uuid.UUID  `json:"id"`
	CompanyID        uuid.UUID  `json:"company_id"`
	Origin           string     `json:"origin"`
	Destination      string     `json:"destination"`
	DepartureAt      time.Time  `json:"departure_at"`
	ArrivalAt        *time.Time `json:"arrival_at,omitempty"`
	VehicleType      string     `json:"vehicle_type,omitempty"`
	Status           string     `json:"status"`
	Seats            int        `json:"seats"`
	AvailableSeats   int        `json:"available_seats"`
	BookedSeats      []string   `json:"booked_seats"`
	FarePerSeatCents int64      `json:"fare_per_seat_cents"`
	Currency         string     `json:"currency"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TripService is the application service for the trip catalog: company
// publishing, public search and admin moderation.
type TripService struct {
	uow    UnitOfWork
	trips  tripDomain.TripRepository
	logger *zap.Logger
}

// NewTripService creates a new TripService.
func NewTripService(uow UnitOfWork, trips tripDomain.TripRepository, logger *zap.Logger) *TripService {
	return &TripService{uow: uow, trips: trips, logger: logger}
}

// CreateTrip publishes a new trip for the company.
func (s *TripService) CreateTrip(ctx context.Context, companyID uuid.UUID, req CreateTripRequest) (*TripDTO, error) {
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	t, err := tripDomain.NewTrip(
		companyID,
		req.Origin,
		req.Destination,
		req.DepartureAt,
		req.ArrivalAt,
		req.VehicleType,
		req.Seats,
		req.FarePerSeatCents,
		currency,
	)
	if err != nil {
		return nil, err
	}

	if err := s.trips.Save(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save trip: %w", err)
	}

	s.logger.Info("trip published",
		zap.String("trip_id", t.ID().String()),
		zap.String("company_id", companyID.String()),
	)

	result := toTripDTO(t)
	return &result, nil
}

// UpdateTrip edits a trip's capacity, fare or vehicle type. The edit runs
// under the trip row lock so a capacity change can never strand seats that
// a concurrent booking just reserved.
func (s *TripService) UpdateTrip(ctx context.Context, companyID, tripID uuid.UUID, req UpdateTripRequest) (*TripDTO, error) {
	var updated *tripDomain.Trip
	err := s.uow.WithinTx(ctx, func(trips tripDomain.TripRepository, _ bookingDomain.BookingRepository) error {
		t, err := trips.FindByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if t.CompanyID() != companyID {
			return domain.NewForbiddenError("trip does not belong to this company")
		}

		if req.Seats != nil {
			if err := t.ChangeCapacity(*req.Seats); err != nil {
				return err
			}
		}
		if req.FarePerSeatCents != nil {
			if *req.FarePerSeatCents <= 0 {
				return domain.NewValidationError("fare per seat must be positive")
			}
			t.SetFarePerSeat(*req.FarePerSeatCents)
		}
		if req.VehicleType != nil {
			t.SetVehicleType(*req.VehicleType)
		}

		t.IncrementVersion()
		if err := trips.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := toTripDTO(updated)
	return &result, nil
}

// ChangeTripStatus transitions a trip's status on behalf of its company.
func (s *TripService) ChangeTripStatus(ctx context.Context, companyID, tripID uuid.UUID, target string) (*TripDTO, error) {
	return s.changeStatus(ctx, tripID, target, &companyID)
}

// ForceTripStatus transitions a trip's status regardless of owner (admin).
func (s *TripService) ForceTripStatus(ctx context.Context, tripID uuid.UUID, target string) (*TripDTO, error) {
	return s.changeStatus(ctx, tripID, target, nil)
}

func (s *TripService) changeStatus(ctx context.Context, tripID uuid.UUID, target string, companyID *uuid.UUID) (*TripDTO, error) {
	status, err := tripDomain.ParseTripStatus(target)
	if err != nil {
		return nil, domain.NewValidationError(err.Error())
	}

	var updated *tripDomain.Trip
	err = s.uow.WithinTx(ctx, func(trips tripDomain.TripRepository, _ bookingDomain.BookingRepository) error {
		t, err := trips.FindByIDForUpdate(ctx, tripID)
		if err != nil {
			return err
		}
		if companyID != nil && t.CompanyID() != *companyID {
			return domain.NewForbiddenError("trip does not belong to this company")
		}

		if err := t.ChangeStatus(status); err != nil {
			return err
		}
		t.IncrementVersion()
		if err := trips.Update(ctx, t); err != nil {
			return err
		}
		updated = t
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("trip status changed",
		zap.String("trip_id", tripID.String()),
		zap.String("status", target),
	)

	result := toTripDTO(updated)
	return &result, nil
}

// GetTrip retrieves a single trip with its seat availability.
func (s *TripService) GetTrip(ctx context.Context, tripID uuid.UUID) (*TripDTO, error) {
	t, err := s.trips.FindByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	result := toTripDTO(t)
	return &result, nil
}

// SearchTrips retrieves active trips matching the filter (public).
func (s *TripService) SearchTrips(ctx context.Context, filter tripDomain.SearchFilter, page, limit int) (*domain.PaginatedResult[TripDTO], error) {
	trips, total, err := s.trips.Search(ctx, filter, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// GetCompanyTrips retrieves paginated trips published by a company.
func (s *TripService) GetCompanyTrips(ctx context.Context, companyID uuid.UUID, page, limit int) (*domain.PaginatedResult[TripDTO], error) {
	trips, total, err := s.trips.FindByCompanyID(ctx, companyID, page, limit)
	if err != nil {
		return nil, err
	}

	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}

	result := domain.NewPaginatedResult(dtos, total, page, limit)
	return &result, nil
}

// ListAllTrips returns a paginated list of all trips (admin).
func (s *TripService) ListAllTrips(ctx context.Context, page, limit int) ([]TripDTO, int64, error) {
	trips, total, err := s.trips.ListAll(ctx, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	dtos := make([]TripDTO, len(trips))
	for i, t := range trips {
		dtos[i] = toTripDTO(t)
	}
	return dtos, total, nil
}

func toTripDTO(t *tripDomain.Trip) TripDTO {
	var arrivalAt *time.Time
	if !t.ArrivalAt().IsZero() {
		at := t.ArrivalAt()
		arrivalAt = &at
	}
	return TripDTO{
		ID:               t.ID(),
		CompanyID:        t.CompanyID(),
		Origin:           t.Origin(),
		Destination:      t.Destination(),
		DepartureAt:      t.DepartureAt(),
		ArrivalAt:        arrivalAt,
		VehicleType:      t.VehicleType(),
		Status:           string(t.Status()),
		Seats:            t.Seats(),
		AvailableSeats:   t.AvailableSeats(),
		BookedSeats:      t.BookedSeats().Strings(),
		FarePerSeatCents: t.FarePerSeatCents(),
		Currency:         t.Currency(),
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
	}
}
