package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/transitgo/service-booking/internal/application"
	tripDomain "github.com/transitgo/service-booking/internal/domain/trip"
	"github.com/transitgo/service-booking/internal/platform/auth"
	"github.com/transitgo/service-booking/internal/platform/middleware"
	"github.com/transitgo/service-booking/internal/platform/response"
)

// TripHandler handles HTTP requests for trip search and company trip management.
type TripHandler struct {
	service *application.TripService
}

// NewTripHandler creates a new TripHandler.
func NewTripHandler(service *application.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// RegisterRoutes registers trip routes. Search and detail are public, the
// management routes require a company token.
func (h *TripHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	trips := r.Group("/api/v1/trips")
	{
		trips.GET("", h.SearchTrips)
		trips.GET("/:id", h.GetTrip)
	}

	company := r.Group("/api/v1/company/trips")
	company.Use(middleware.AuthMiddleware(jwtManager), middleware.RequireRole(auth.RoleCompany))
	{
		company.POST("", h.CreateTrip)
		company.GET("", h.ListCompanyTrips)
		company.PATCH("/:id", h.UpdateTrip)
		company.POST("/:id/status", h.ChangeTripStatus)
	}
}

// SearchTrips handles GET /api/v1/trips.
func (h *TripHandler) SearchTrips(c *gin.Context) {
	filter := tripDomain.SearchFilter{
		Origin:      c.Query("origin"),
		Destination: c.Query("destination"),
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(c, "invalid date, expected YYYY-MM-DD")
			return
		}
		filter.Date = &date
	}

	page, limit := parsePagination(c)

	result, err := h.service.SearchTrips(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetTrip handles GET /api/v1/trips/:id.
func (h *TripHandler) GetTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trip ID")
		return
	}

	result, err := h.service.GetTrip(c.Request.Context(), tripID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// CreateTrip handles POST /api/v1/company/trips.
func (h *TripHandler) CreateTrip(c *gin.Context) {
	companyID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.CreateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.CreateTrip(c.Request.Context(), companyID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListCompanyTrips handles GET /api/v1/company/trips.
func (h *TripHandler) ListCompanyTrips(c *gin.Context) {
	companyID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	page, limit := parsePagination(c)

	result, err := h.service.GetCompanyTrips(c.Request.Context(), companyID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// UpdateTrip handles PATCH /api/v1/company/trips/:id.
func (h *TripHandler) UpdateTrip(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trip ID")
		return
	}

	companyID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.UpdateTrip(c.Request.Context(), companyID, tripID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ChangeTripStatus handles POST /api/v1/company/trips/:id/status.
func (h *TripHandler) ChangeTripStatus(c *gin.Context) {
	tripID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid trip ID")
		return
	}

	companyID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.ChangeTripStatus(c.Request.Context(), companyID, tripID, body.Status)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
