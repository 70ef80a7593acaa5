package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Serai-Stays/service-reservation/internal/application"
	"github.com/Serai-Stays/service-reservation/internal/auth"
	"github.com/Serai-Stays/service-reservation/internal/middleware"
	"github.com/Serai-Stays/service-reservation/internal/response"
)

// PaymentHandler handles HTTP requests for payments and provider webhooks.
type PaymentHandler struct {
	service       *application.PaymentService
	webhookSecret string
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(service *application.PaymentService, webhookSecret string) *PaymentHandler {
	return &PaymentHandler{
		service:       service,
		webhookSecret: webhookSecret,
	}
}

// RegisterRoutes registers payment routes. The webhook endpoint is
// authenticated by a shared secret header instead of a JWT.
func (h *PaymentHandler) RegisterRoutes(r *gin.RouterGroup, jwtManager *auth.JWTManager) {
	authMW := middleware.AuthMiddleware(jwtManager)

	bookings := r.Group("/api/v1/bookings")
	bookings.Use(authMW)
	{
		bookings.POST("/:id/payments", h.InitiatePayment)
		bookings.GET("/:id/payments", h.ListPayments)
	}

	payments := r.Group("/api/v1/payments")
	{
		payments.POST("/webhook/:provider", h.HandleWebhook)
	}
}

// InitiatePayment handles POST /api/v1/bookings/:id/payments.
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req application.InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.InitiatePayment(c.Request.Context(), bookingID, userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// ListPayments handles GET /api/v1/bookings/:id/payments.
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid booking ID")
		return
	}

	userID, ok := middleware.GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	role, _ := middleware.GetUserRole(c)

	payments, err := h.service.ListPayments(c.Request.Context(), bookingID, userID, role == auth.RoleAdmin)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, payments)
}

// HandleWebhook handles POST /api/v1/payments/webhook/:provider.
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	presented := c.GetHeader("X-Webhook-Secret")
	if h.webhookSecret == "" ||
		subtle.ConstantTimeCompare([]byte(presented), []byte(h.webhookSecret)) != 1 {
		response.Unauthorized(c, "invalid webhook secret")
		return
	}

	var req application.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if err := h.service.HandleWebhook(c.Request.Context(), c.Param("provider"), req); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, gin.H{"status": "accepted"})
}
