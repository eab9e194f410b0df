package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/transitgo/service-booking/internal/domain"
	bookingDomain "github.com/transitgo/service-booking/internal/domain/booking"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey"`
	BookingCode        string          `gorm:"uniqueIndex;not null;size:30"`
	OwnerID            uuid.UUID       `gorm:"type:uuid;index;not null"`
	TripID             uuid.UUID       `gorm:"type:uuid;index;not null"`
	Passengers         json.RawMessage `gorm:"type:jsonb;not null"`
	SelectedSeats      json.RawMessage `gorm:"type:jsonb;not null"`
	PaymentMethod      string          `gorm:"not null;size:10"`
	PaymentStatus      string          `gorm:"not null;size:10"`
	TotalAmountCents   int64           `gorm:"not null"`
	ServiceFeeCents    int64           `gorm:"not null"`
	Status             string          `gorm:"not null;size:20;index"`
	CancellationReason string          `gorm:"size:500"`
	CancelledAt        *time.Time      `gorm:""`
	Version            int64           `gorm:"not null;default:1"`
	CreatedAt          time.Time       `gorm:"not null"`
	UpdatedAt          time.Time       `gorm:"not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

// GormBookingRepository is the GORM-based implementation of BookingRepository.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// FindByID retrieves a booking by its unique identifier.
func (r *GormBookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", id.String())
		}
		return nil, fmt.Errorf("failed to find booking by ID: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByCode retrieves a booking by its human-facing booking code.
func (r *GormBookingRepository) FindByCode(ctx context.Context, code string) (*bookingDomain.Booking, error) {
	var model BookingModel
	if err := r.db.WithContext(ctx).Where("booking_code = ?", code).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewNotFoundError("Booking", code)
		}
		return nil, fmt.Errorf("failed to find booking by code: %w", err)
	}
	return toDomainBooking(&model)
}

// FindByOwnerID retrieves bookings for a traveler with pagination.
func (r *GormBookingRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Where("owner_id = ?", ownerID).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count owner bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find owner bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// FindConfirmedByTripID retrieves all confirmed bookings on a trip.
func (r *GormBookingRepository) FindConfirmedByTripID(ctx context.Context, tripID uuid.UUID) ([]*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := r.db.WithContext(ctx).
		Where("trip_id = ? AND status = ?", tripID, string(bookingDomain.StatusConfirmed)).
		Order("created_at ASC").
		Find(&models).Error; err != nil {
		return nil, fmt.Errorf("failed to find trip bookings: %w", err)
	}

	bookings, _, err := toDomainBookings(models, 0)
	return bookings, err
}

// ListAll retrieves all bookings with pagination (admin).
func (r *GormBookingRepository) ListAll(ctx context.Context, page, limit int) ([]*bookingDomain.Booking, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	var models []BookingModel
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&models).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return toDomainBookings(models, total)
}

// CountByStatus returns booking counts grouped by status (admin).
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[string]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := r.db.WithContext(ctx).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[string]int64)
	for _, sc := range results {
		counts[sc.Status] = sc.Count
	}
	return counts, nil
}

// Save persists a new booking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return fmt.Errorf("failed to save booking: %w", err)
	}
	return nil
}

// Update persists changes to an existing booking with optimistic locking.
func (r *GormBookingRepository) Update(ctx context.Context, bk *bookingDomain.Booking) error {
	model, err := toBookingModel(bk)
	if err != nil {
		return fmt.Errorf("failed to convert booking to model: %w", err)
	}

	expectedVersion := bk.Version() - 1
	result := r.db.WithContext(ctx).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]interface{}{
			"payment_status":      model.PaymentStatus,
			"status":              model.Status,
			"cancellation_reason": model.CancellationReason,
			"cancelled_at":        model.CancelledAt,
			"version":             model.Version,
			"updated_at":          model.UpdatedAt,
		})

	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) (*BookingModel, error) {
	passengersJSON, err := json.Marshal(bk.Passengers())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal passengers: %w", err)
	}

	seatsJSON, err := json.Marshal(bk.SelectedSeats())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal selected seats: %w", err)
	}

	return &BookingModel{
		ID:                 bk.ID(),
		BookingCode:        bk.BookingCode(),
		OwnerID:            bk.OwnerID(),
		TripID:             bk.TripID(),
		Passengers:         passengersJSON,
		SelectedSeats:      seatsJSON,
		PaymentMethod:      string(bk.PaymentMethod()),
		PaymentStatus:      string(bk.PaymentStatus()),
		TotalAmountCents:   bk.TotalAmountCents(),
		ServiceFeeCents:    bk.ServiceFeeCents(),
		Status:             string(bk.Status()),
		CancellationReason: bk.CancellationReason(),
		CancelledAt:        bk.CancelledAt(),
		Version:            bk.Version(),
		CreatedAt:          bk.CreatedAt(),
		UpdatedAt:          bk.UpdatedAt(),
	}, nil
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	var passengers []bookingDomain.Passenger
	if err := json.Unmarshal(m.Passengers, &passengers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal passengers: %w", err)
	}

	var seats []string
	if err := json.Unmarshal(m.SelectedSeats, &seats); err != nil {
		return nil, fmt.Errorf("failed to unmarshal selected seats: %w", err)
	}

	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}

	paymentStatus, err := bookingDomain.ParsePaymentStatus(m.PaymentStatus)
	if err != nil {
		return nil, err
	}

	return bookingDomain.ReconstructBooking(
		m.ID,
		m.BookingCode,
		m.OwnerID,
		m.TripID,
		passengers,
		tripDomain.NewSeatSet(seats),
		bookingDomain.PaymentMethod(m.PaymentMethod),
		paymentStatus,
		m.TotalAmountCents,
		m.ServiceFeeCents,
		status,
		m.CancellationReason,
		m.CancelledAt,
		m.Version,
		m.CreatedAt,
		m.UpdatedAt,
	), nil
}

func toDomainBookings(models []BookingModel, total int64) ([]*bookingDomain.Booking, int64, error) {
	bookings := make([]*bookingDomain.Booking, len(models))
	for i, m := range models {
		bk, err := toDomainBooking(&m)
		if err != nil {
			return nil, 0, err
		}
		bookings[i] = bk
	}
	return bookings, total, nil
}
