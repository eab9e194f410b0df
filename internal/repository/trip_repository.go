package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/transitgo/service-booking/internal/domain"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
)

// TripModel is the GORM model for the trips table. Seat occupancy is stored
// only as the booked seat set; the free count is derived on read.
type TripModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CompanyID        uuid.UUID       `gorm:"type:uuid;index;not null"`
	Origin           string          `gorm:"not null;size:120;index:idx_trips_route"`
	Destination      string          `gorm:"not null;size:120;index:idx_trips_route"`
	DepartureAt      time.Time       `gorm:"not null;index"`
	ArrivalAt        *time.Time      `gorm:""`
	VehicleType      string          `gorm:"size:60"`
	Status           string          `gorm:"not null;size:20;index"`
	Seats            int             `gorm:"not null"`
	BookedSeats      json.RawMessage `gorm:"type:jsonb;not null"`
	FarePerSeatCents int64           `gorm:"not null"`
	Currency         string          `gorm:"not null;size:3;default:'USD'"`
	Version          int64           `gorm:"not null;default:1"`
	CreatedAt        time.Time       `gorm:"not null"`
	UpdatedAt        time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (TripModel) TableName() string {
	return "trips"
}

// GormTripRepository is the GORM-based implementation of TripRepository.
type GormTripRepository struct {
	db *gorm.DB
}

// NewGormTripRepository creates a new GormTripRepository.
func NewGormTripRepository(db *gorm.DB) *GormTripRepository {
	return &GormTripRepository{db: db}
}

// FindByID retrieves a trip by its unique identifier.
func (r *GormTripRepository) FindByID(ctx context.Context, id uuid.UUID) (*tripDomain.Trip, error) {
	var model TripModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Trip", id.String())
		}
		return nil, fmt.Errorf("failed to find trip by ID: %w", err)
	}
	return toDomainTrip(&model)
}

// FindByIDForUpdate retrieves a trip by ID with a SELECT ... FOR UPDATE row
// lock. The caller must already be inside a transaction; the lock serializes
// concurrent seat reservations against the same trip row.
func (r *GormTripRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*tripDomain.Trip, error) {
	var model TripModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Trip", id.String())
		}
		return nil, fmt.Errorf("failed to find trip for update: %w", err)
	}
	return toDomainTrip(&model)
}

// Search retrieves active trips matching the filter with pagination.
func (r *GormTripRepository) Search(ctx context.Context, filter tripDomain.SearchFilter, page, limit int) ([]*tripDomain.Trip, int64, error) {
	query := r.db.WithContext(ctx).Model(&TripModel{}).Where("status = ?", string(tripDomain.StatusActive))
	if filter.Origin != "" {
		query = query.Where("origin = ?", filter.Origin)
	}
	if filter.Destination != "" {
		query = query.Where("destination = ?", filter.Destination)
	}
	if filter.Date != nil {
		dayStart := filter.Date.UTC().Truncate(24 * time.Hour)
		query = query.Where("departure_at >= ? AND departure_at < ?", dayStart, dayStart.Add(24*time.Hour))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	var models []TripModel
	offset := (page - 1) * limit
	if err := query.
		Order("departure_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to search trips: %w", err)
	}

	return toDomainTrips(models, total)
}

// FindByCompanyID retrieves trips published by a company with pagination.
func (r *GormTripRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, page, limit int) ([]*tripDomain.Trip, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TripModel{}).Where("company_id = ?", companyID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count company trips: %w", err)
	}

	var models []TripModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("company_id = ?", companyID).
		Order("departure_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find company trips: %w", err)
	}

	return toDomainTrips(models, total)
}

// ListAll retrieves all trips with pagination (admin).
func (r *GormTripRepository) ListAll(ctx context.Context, page, limit int) ([]*tripDomain.Trip, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&TripModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count trips: %w", err)
	}

	var models []TripModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("departure_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list trips: %w", err)
	}

	return toDomainTrips(models, total)
}

// Save persists a new trip.
func (r *GormTripRepository) Save(ctx context.Context, t *tripDomain.Trip) error {
	model, err := toTripModel(t)
	if err != nil {
		return fmt.Errorf("failed to convert trip to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save trip: %w", err)
	}
	return nil
}

// Update persists changes to an existing trip with optimistic locking.
func (r *GormTripRepository) Update(ctx context.Context, t *tripDomain.Trip) error {
	model, err := toTripModel(t)
	if err != nil {
		return fmt.Errorf("failed to convert trip to model: %w", err)
	}

	expectedVersion := t.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&TripModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"origin":              model.Origin,
			"destination":         model.Destination,
			"departure_at":        model.DepartureAt,
			"arrival_at":          model.ArrivalAt,
			"vehicle_type":        model.VehicleType,
			"status":              model.Status,
			"seats":               model.Seats,
			"booked_seats":        model.BookedSeats,
			"fare_per_seat_cents": model.FarePerSeatCents,
			"currency":            model.Currency,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update trip: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("trip was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toTripModel(t *tripDomain.Trip) (*TripModel, error) {
	bookedSeatsJSON, err := json.Marshal(t.BookedSeats())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booked seats: %w", err)
	}

	var arrivalAt *time.Time
	if !t.ArrivalAt().IsZero() {
		at := t.ArrivalAt()
		arrivalAt = &at
	}

	return &TripModel{
		ID:               t.ID(),
		CompanyID:        t.CompanyID(),
		Origin:           t.Origin(),
		Destination:      t.Destination(),
		DepartureAt:      t.DepartureAt(),
		ArrivalAt:        arrivalAt,
		VehicleType:      t.VehicleType(),
		Status:           string(t.Status()),
		Seats:            t.Seats(),
		BookedSeats:      bookedSeatsJSON,
		FarePerSeatCents: t.FarePerSeatCents(),
		Currency:         t.Currency(),
		Version:          t.Version(),
		CreatedAt:        t.CreatedAt(),
		UpdatedAt:        t.UpdatedAt(),
	}, nil
}

func toDomainTrip(m *TripModel) (*tripDomain.Trip, error) {
	var seats []string
	if len(m.BookedSeats) > 0 {
		if err := json.Unmarshal(m.BookedSeats, &seats); err != nil {
			return nil, fmt.Errorf("failed to unmarshal booked seats: %w", err)
		}
	}

	status, err := tripDomain.ParseTripStatus(m.Status)
	if err != nil {
		return nil, err
	}

	var arrivalAt time.Time
	if m.ArrivalAt != nil {
		arrivalAt = *m.ArrivalAt
	}

	return tripDomain.ReconstructTrip(
		m.ID,
		m.CompanyID,
		m.Origin,
		m.Destination,
		m.DepartureAt,
		arrivalAt,
		m.VehicleType,
		status,
		m.Seats,
		tripDomain.NewSeatSet(seats),
		m.FarePerSeatCents,
		m.Currency,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainTrips(models []TripModel, total int64) ([]*tripDomain.Trip, int64, error) {
	trips := make([]*tripDomain.Trip, len(models))
	for i, m := range models {
		t, err := toDomainTrip(&m)
		if err != nil {
			return nil, 0, err
		}
		trips[i] = t
	}
	return trips, total, nil
}
