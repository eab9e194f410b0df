package repository

import (
	"context"

	"gorm.io/gorm"

	bookingDomain "github.com/transitgo/service-booking/internal/domain/booking"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
)

// GormUnitOfWork runs a function against transaction-scoped repositories.
// The whole function commits or rolls back as one database transaction; it is
// the consistency boundary for seat reservation and release.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork.
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTx executes fn inside a database transaction. Repositories handed to
// fn are bound to that transaction; any error from fn rolls everything back.
func (u *GormUnitOfWork) WithinTx(ctx context.Context, fn func(trips tripDomain.TripRepository, bookings bookingDomain.BookingRepository) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGormTripRepository(tx), NewGormBookingRepository(tx))
	})
}
