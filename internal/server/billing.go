package server

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	billingdomain "github.com/mentorlane/mentorlane/internal/billing/domain"
)

// CheckoutSession redirects the caller to the provider's hosted payment
// page for a one-time session booking.
func (s *Server) CheckoutSession(c *gin.Context) {
	sessionID := strings.TrimSpace(c.Query("sessionId"))
	if sessionID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.checkoutSvc.ForSession(c.Request.Context(), sessionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, result.URL)
}

// CheckoutSubscription redirects the caller to the provider's hosted
// recurring checkout for a pending subscription.
func (s *Server) CheckoutSubscription(c *gin.Context) {
	subscriptionID := strings.TrimSpace(c.Query("subscriptionId"))
	if subscriptionID == "" {
		AbortWithError(c, invalidRequestError())
		return
	}

	result, err := s.checkoutSvc.ForSubscription(c.Request.Context(), subscriptionID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.Redirect(http.StatusSeeOther, result.URL)
}

// HandleBillingWebhook ingests provider events. Only signature problems
// produce a 400; processing failures are acknowledged so the provider
// does not hammer us with retries that cannot succeed.
func (s *Server) HandleBillingWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable payload"})
		return
	}

	err = s.webhooks.Handle(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, billingdomain.ErrMissingSignature) || errors.Is(err, billingdomain.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
			return
		}
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// BillingWebhookStatus lets the provider dashboard's test ping confirm
// the endpoint is reachable.
func (s *Server) BillingWebhookStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
