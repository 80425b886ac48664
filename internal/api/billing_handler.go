package api

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"theorie-backend-go/internal/core"
	"theorie-backend-go/internal/models"
	"theorie-backend-go/internal/payment"
)

// maxWebhookBody bounds webhook payload reads. Provider events are small;
// anything bigger is garbage.
const maxWebhookBody = 1 << 20

// BillingHandler handles billing-related API endpoints.
type BillingHandler struct {
	billingService core.BillingService
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService) *BillingHandler {
	return &BillingHandler{billingService: bs}
}

// CreateCheckoutSessionResponse returns the hosted payment page URL.
type CreateCheckoutSessionResponse struct {
	CheckoutURL string `json:"checkoutUrl"`
}

// mapBillingErrorToStatus maps errors from core.BillingService to HTTP status codes and ErrorResponse.
func mapBillingErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrPlanNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Plan not found", Details: err.Error()}
	case errors.Is(err, core.ErrBundleNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Attempt bundle not found", Details: err.Error()}
	case errors.Is(err, core.ErrUnknownCheckoutKind):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrUnknownCheckoutKind.Error()}
	case errors.Is(err, core.ErrAuthRequired):
		statusCode = http.StatusUnauthorized
		errResponse = ErrorResponse{Error: "Sign in to start a purchase"}
	case errors.Is(err, core.ErrPaymentProvider):
		// 503: the problem sits with the upstream payment provider.
		statusCode = http.StatusServiceUnavailable
		errResponse = ErrorResponse{Error: "Payment provider error", Details: "Could not complete the operation with the payment provider."}
		log.Printf("Payment provider error: %v", err)
	case errors.Is(err, payment.ErrInvalidSignature):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook signature verification failed"}
	case errors.Is(err, payment.ErrInvalidPayload):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook payload could not be parsed"}
	case errors.Is(err, core.ErrWebhookMetadata):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook event is missing required metadata", Details: err.Error()}
	default:
		log.Printf("Internal Server Error in BillingHandler: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreateCheckoutSession handles POST /billing/create-checkout-session
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	userID, exists := c.Get("userID")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	var req models.CreateCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	checkoutURL, err := h.billingService.CreateCheckoutSession(c.Request.Context(), userID.(string), req)
	if err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, CreateCheckoutSessionResponse{CheckoutURL: checkoutURL})
}

// HandlePaymentWebhook handles POST /billing/webhooks/payment. The route is
// public: the provider authenticates itself with the signature header, which
// the service verifies against the shared secret. Non-2xx responses make the
// provider redeliver, so only real failures may error here.
func (h *BillingHandler) HandlePaymentWebhook(c *gin.Context) {
	payloadBytes, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		log.Printf("HandlePaymentWebhook Error: failed to read request body: %v", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read webhook payload"})
		return
	}

	signature := c.GetHeader(payment.SignatureHeader)
	if signature == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing " + payment.SignatureHeader + " header"})
		return
	}

	if err := h.billingService.HandleWebhook(c.Request.Context(), signature, payloadBytes); err != nil {
		mapBillingErrorToStatus(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Webhook processed"})
}
