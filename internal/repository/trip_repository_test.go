package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/transitgo/service-booking/internal/domain"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return gormDB, mock
}

func tripColumns() []string {
	return []string{
		"id", "company_id", "origin", "destination", "departure_at", "arrival_at",
		"vehicle_type", "status", "seats", "booked_seats", "fare_per_seat_cents",
		"currency", "version", "created_at", "updated_at",
	}
}

func TestTripRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormTripRepository(db)

	tripID := uuid.New()
	now := time.Now()

	mock.ExpectQuery(`SELECT \* FROM "trips" WHERE id = \$1(.+)FOR UPDATE`).
		WithArgs(tripID, 1).
		WillReturnRows(sqlmock.NewRows(tripColumns()).AddRow(
			tripID, uuid.New(), "Accra", "Kumasi", now.Add(24*time.Hour), nil,
			"bus", "active", 4, []byte(`["A1"]`), int64(5000),
			"USD", int64(1), now, now,
		))

	trip, err := repo.FindByIDForUpdate(context.Background(), tripID)
	require.NoError(t, err)

	assert.Equal(t, tripID, trip.ID())
	assert.Equal(t, []string{"A1"}, trip.BookedSeats().Strings())
	assert.Equal(t, 3, trip.AvailableSeats())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_FindByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormTripRepository(db)

	tripID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "trips" WHERE id = \$1`).
		WithArgs(tripID, 1).
		WillReturnRows(sqlmock.NewRows(tripColumns()))

	_, err := repo.FindByID(context.Background(), tripID)

	var notFound *domain.NotFoundError
	assert.ErrorAs(t, err, &notFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_Update_StaleVersion(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormTripRepository(db)

	trip, err := tripDomain.NewTrip(
		uuid.New(), "Accra", "Kumasi",
		time.Now().Add(24*time.Hour), time.Time{},
		"bus", 4, 5000, "USD",
	)
	require.NoError(t, err)
	trip.IncrementVersion()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "trips" SET`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err = repo.Update(context.Background(), trip)

	var conflictErr *domain.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTripRepository_Update_Success(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGormTripRepository(db)

	trip, err := tripDomain.NewTrip(
		uuid.New(), "Accra", "Kumasi",
		time.Now().Add(24*time.Hour), time.Time{},
		"bus", 4, 5000, "USD",
	)
	require.NoError(t, err)
	trip.IncrementVersion()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "trips" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Update(context.Background(), trip))
	assert.NoError(t, mock.ExpectationsWereMet())
}
