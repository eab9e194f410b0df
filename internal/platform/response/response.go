package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/transitgo/service-booking/internal/domain"
)

// Success writes a 200 response with the given payload.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, gin.H{"data": data})
}

// Created writes a 201 response with the given payload.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, gin.H{"data": data})
}

// Paginated writes a 200 response with paging metadata.
func Paginated(c *gin.Context, items interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, gin.H{
		"data": items,
		"pagination": gin.H{
			"total": total,
			"page":  page,
			"limit": limit,
		},
	})
}

// BadRequest writes a 400 response with the given message.
func BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

// Error maps a domain error to its HTTP status and writes the response.
// Seat conflicts additionally carry the conflicting seat identifiers so the
// client can refresh its seat map.
func Error(c *gin.Context, err error) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *domain.NotFoundError
		seatErr       *domain.SeatConflictError
		capacityErr   *domain.CapacityError
		forbiddenErr  *domain.ForbiddenError
		unauthErr     *domain.UnauthorizedError
		cancelledErr  *domain.AlreadyCancelledError
		stateErr      *domain.InvalidStateError
		conflictErr   *domain.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, gin.H{"error": validationErr.Message})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundErr.Error()})
	case errors.As(err, &seatErr):
		c.JSON(http.StatusConflict, gin.H{
			"error":             seatErr.Error(),
			"conflicting_seats": seatErr.Seats,
		})
	case errors.As(err, &capacityErr):
		c.JSON(http.StatusConflict, gin.H{"error": capacityErr.Error()})
	case errors.As(err, &forbiddenErr):
		c.JSON(http.StatusForbidden, gin.H{"error": forbiddenErr.Message})
	case errors.As(err, &unauthErr):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthErr.Message})
	case errors.As(err, &cancelledErr):
		c.JSON(http.StatusConflict, gin.H{"error": cancelledErr.Error()})
	case errors.As(err, &stateErr):
		c.JSON(http.StatusConflict, gin.H{"error": stateErr.Error()})
	case errors.As(err, &conflictErr):
		c.JSON(http.StatusConflict, gin.H{"error": conflictErr.Message})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
