package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/application"
	"github.com/Serai-Stays/service-reservation/internal/domain/accommodation"
	"github.com/Serai-Stays/service-reservation/internal/response"
)

// AccommodationHandler handles public HTTP requests for browsing
// accommodations, rooms and availability.
type AccommodationHandler struct {
	accommodations *application.AccommodationService
	availability   *application.AvailabilityService
}

// NewAccommodationHandler creates a new AccommodationHandler.
func NewAccommodationHandler(
	accommodations *application.AccommodationService,
	availability *application.AvailabilityService,
) *AccommodationHandler {
	return &AccommodationHandler{
		accommodations: accommodations,
		availability:   availability,
	}
}

// RegisterRoutes registers accommodation routes. Browsing requires no
// authentication.
func (h *AccommodationHandler) RegisterRoutes(r *gin.RouterGroup) {
	accommodations := r.Group("/api/v1/accommodations")
	{
		accommodations.GET("", h.Search)
		accommodations.GET("/:id", h.GetAccommodation)
		accommodations.GET("/:id/rooms", h.ListRooms)
		accommodations.GET("/:id/availability", h.CheckAvailability)
	}
}

// Search handles GET /api/v1/accommodations.
func (h *AccommodationHandler) Search(c *gin.Context) {
	filter := accommodation.SearchFilter{
		City:       c.Query("city"),
		Country:    c.Query("country"),
		Name:       c.Query("name"),
		ActiveOnly: true,
	}
	if raw := c.Query("min_stars"); raw != "" {
		minStars, err := strconv.Atoi(raw)
		if err != nil || minStars < 0 {
			response.BadRequest(c, "min_stars must be a non-negative integer")
			return
		}
		filter.MinStars = minStars
	}

	page, limit := parsePagination(c)

	result, err := h.accommodations.SearchAccommodations(c.Request.Context(), filter, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Paginated(c, result.Items, result.Total, result.Page, result.Limit)
}

// GetAccommodation handles GET /api/v1/accommodations/:id.
func (h *AccommodationHandler) GetAccommodation(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	result, err := h.accommodations.GetAccommodation(c.Request.Context(), accommodationID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListRooms handles GET /api/v1/accommodations/:id/rooms.
func (h *AccommodationHandler) ListRooms(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	rooms, err := h.accommodations.ListRooms(c.Request.Context(), accommodationID, true)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, rooms)
}

// CheckAvailability handles GET /api/v1/accommodations/:id/availability.
func (h *AccommodationHandler) CheckAvailability(c *gin.Context) {
	accommodationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid accommodation ID")
		return
	}

	checkIn := c.Query("check_in")
	checkOut := c.Query("check_out")
	if checkIn == "" || checkOut == "" {
		response.BadRequest(c, "check_in and check_out query parameters are required")
		return
	}

	result, err := h.availability.CheckAvailability(c.Request.Context(), accommodationID, checkIn, checkOut)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}
