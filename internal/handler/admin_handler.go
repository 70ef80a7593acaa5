package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/application"
	"github.com/Serai-Stays/service-reservation/internal/auth"
	"github.com/Serai-Stays/service-reservation/internal/domain/booking"
	"github.com/Serai-Stays/service-reservation/internal/middleware"
	"github.com/Serai-Stays/service-reservation/internal/response"
)

// AdminHandler handles admin HTTP requests for catalog management, inventory
// overrides and booking oversight.
type AdminHandler struct {
	accommodations *application.AccommodationService
	availability   *application.AvailabilityService
	bookings       *application.BookingService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(
	accommodations *application.AccommodationService,
	availability *application.AvailabilityService,
	bookings *application.BookingService,
) *AdminHandler {
	return &AdminHandler{
		accommodations: accommodations,
		availability:   availability,
		bookings:       bookings,
	}
}

// RegisterRoutes registers admin routes.
func (h *AdminHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)
	adminRole := middleware.RequireRole(auth.RoleAdmin)

	admin := r.Group("/api/v1/admin")
	admin.Use(authMW, adminRole)
	{
		admin.POST("/accommodations", h.CreateAccommodation)
		admin.PUT("/accommodations/:id", h.UpdateAccommodation)
		admin.POST("/accommodations/:id/activate", h.ActivateAccommodation)
		admin.POST("/accommodations/:id/deactivate", h.DeactivateAccommodation)
		admin.POST("/accommodations/:id/rooms", h.CreateRoom)

		admin.PUT("/rooms/:id", h.UpdateRoom)
		admin.POST("/rooms/:id/deactivate", h.DeactivateRoom)
		admin.PUT("/rooms/:id/inventory", h.SetInventory)

		admin.GET("/bookings", h.ListBookings)
		admin.PUT("/bookings/:id/status", h.UpdateBookingStatus)
		admin.GET("/bookings/:id/audit", h.GetAuditTrail)
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// CreateAccommodation handles POST /api/v1/admin/accommodations.
func (h *AdminHandler) CreateAccommodation(c *gin.Context) {
	var req application.CreateAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.accommodations.CreateAccommodation(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateAccommodation handles PUT /api/v1/admin/accommodations/:id.
func (h *AdminHandler) UpdateAccommodation(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	var req application.UpdateAccommodationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.accommodations.UpdateAccommodation(c.Request.Context(), accommodationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ActivateAccommodation handles POST /api/v1/admin/accommodations/:id/activate.
func (h *AdminHandler) ActivateAccommodation(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	if err := h.accommodations.ActivateAccommodation(c.Request.Context(), accommodationID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// DeactivateAccommodation handles POST /api/v1/admin/accommodations/:id/deactivate.
func (h *AdminHandler) DeactivateAccommodation(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	if err := h.accommodations.DeactivateAccommodation(c.Request.Context(), accommodationID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// CreateRoom handles POST /api/v1/admin/accommodations/:id/rooms.
func (h *AdminHandler) CreateRoom(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	var req application.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.accommodations.CreateRoom(c.Request.Context(), accommodationID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateRoom handles PUT /api/v1/admin/rooms/:id.
func (h *AdminHandler) UpdateRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req application.UpdateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.accommodations.UpdateRoom(c.Request.Context(), roomID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// DeactivateRoom handles POST /api/v1/admin/rooms/:id/deactivate.
func (h *AdminHandler) DeactivateRoom(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	if err := h.accommodations.DeactivateRoom(c.Request.Context(), roomID); err != nil {
		response.Error(c, err)
		return
	}

	response.NoContent(c)
}

// SetInventory handles PUT /api/v1/admin/rooms/:id/inventory.
func (h *AdminHandler) SetInventory(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room ID")
		return
	}

	var req application.SetInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.availability.SetInventoryOverride(c.Request.Context(), roomID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookings handles GET /api/v1/admin/bookings.
func (h *AdminHandler) ListBookings(c *gin.Context) {
	var filter booking.ListFilter

	if raw := c.Query("status"); raw != "" {
		status, err := booking.ParseBookingStatus(raw)
		if err != nil {
			response.BadRequest(c, err.Error())
			return
		}
		filter.Status = status
	}
	if raw := c.Query("accommodation_id"); raw != "" {
		accommodationID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid accommodation_id")
			return
		}
		filter.AccommodationID = accommodationID
	}
	if raw := c.Query("user_id"); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid user_id")
			return
		}
		filter.UserID = userID
	}

	page, limit := parsePagination(c)

	result, err := h.bookings.ListAllBookings(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// UpdateBookingStatus handles PUT /api/v1/admin/bookings/:id/status.
func (h *AdminHandler) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	actorID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.bookings.UpdateBookingStatus(c.Request.Context(), bookingID, actorID, req.Status, req.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetAuditTrail handles GET /api/v1/admin/bookings/:id/audit.
func (h *AdminHandler) GetAuditTrail(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	entries, err := h.bookings.GetAuditTrail(c.Request.Context(), bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, entries)
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
