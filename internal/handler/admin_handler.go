package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/transitgo/service-booking/internal/application"
	"github.com/transitgo/service-booking/internal/platform/auth"
	"github.com/transitgo/service-booking/internal/platform/middleware"
	"github.com/transitgo/service-booking/internal/platform/response"
)

// AdminHandler exposes platform-operator views over bookings and trips.
type AdminHandler struct {
	bookings *application.BookingService
	trips    *application.TripService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(bookings *application.BookingService, trips *application.TripService) *AdminHandler {
	return &AdminHandler{bookings: bookings, trips: trips}
}

// RegisterRoutes registers admin routes. All routes require an admin token.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	admin := r.Group("/api/v1/admin")
	admin.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/bookings", h.ListBookings)
		admin.GET("/stats/bookings", h.BookingStats)
		admin.GET("/trips", h.ListTrips)
		admin.POST("/trips/:id/status", h.ForceTripStatus)
	}
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.bookings.ListAllBookings(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// BookingStats handles GET /api/v1/admin/stats/bookings.
func (h *AdminHandler) BookingStats(c *gin.Context) {
	stats, err := h.bookings.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}

// ListTrips handles GET /api/v1/admin/trips.
func (h *AdminHandler) ListTrips(c *gin.Context) {
	page, limit := parsePagination(c)

	items, total, err := h.trips.ListAllTrips(c.Request.Context(), page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, items, total, page, limit)
}

// ForceTripStatus handles POST /api/v1/admin/trips/:id/status. Admins can
// move a trip to any valid next status regardless of owning company.
func (h *AdminHandler) ForceTripStatus(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trip ID")
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.trips.ForceTripStatus(c.Request.Context(), tripID, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
