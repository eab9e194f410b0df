package trip

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SearchFilter narrows a public trip search.
type SearchFilter struct {
	Origin      string
	Destination string
	// Date limits results to trips departing on this calendar day (UTC).
	Date *time.Time
}

// TripRepository defines the persistence contract for trip aggregates.
type TripRepository interface {
	// FindByID retrieves a trip by its unique identifier.
	FindByID(ctx context.Context, id uuid.UUID) (*Trip, error)

	// FindByIDForUpdate retrieves a trip by ID while taking a row-level lock
	// on it. Must only be called inside a transaction; the lock is the
	// linearization point for concurrent seat reservations.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Trip, error)

	// Search retrieves active trips matching the filter with pagination.
	Search(ctx context.Context, filter SearchFilter, page, limit int) ([]*Trip, int64, error)

	// FindByCompanyID retrieves trips published by a company with pagination.
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, page, limit int) ([]*Trip, int64, error)

	// ListAll retrieves all trips with pagination (admin).
	ListAll(ctx context.Context, page, limit int) ([]*Trip, int64, error)

	// Save persists a new trip.
	Save(ctx context.Context, trip *Trip) error

	// Update persists changes to an existing trip with optimistic locking.
	Update(ctx context.Context, trip *Trip) error
}
