package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/insomnia-fuel/cafe-api/pkg/checkout"
	"github.com/insomnia-fuel/cafe-api/pkg/payment"
	"go.uber.org/zap"
)

// POST /api/checkout/create-session
func (s *Server) createCheckoutSession(c *gin.Context) {
	principal := principalFrom(c)

	sess, err := s.deps.Checkout.CreateSession(c.Request.Context(), principal)
	if err != nil {
		if errors.Is(err, checkout.ErrEmptyCart) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Cart is empty"})
			return
		}
		s.logger.Error("Failed to create checkout session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create checkout session"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": sess.URL, "sessionId": sess.ID})
}

// POST /api/checkout/webhook: Trigger A. Stripe reads only the status code;
// a non-2xx answer makes it retry, which CreateOnce makes safe.
func (s *Server) stripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Failed to read body"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	if err := s.deps.Checkout.HandleWebhook(c.Request.Context(), payload, sig); err != nil {
		if errors.Is(err, payment.ErrInvalidSignature) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid signature"})
			return
		}
		s.logger.Error("Webhook handling failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Webhook handling failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// GET /api/orders/session/:sessionId: Trigger B, polled by the checkout
// success page. Safe to call repeatedly.
func (s *Server) confirmSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"ok": false, "message": "Missing sessionId parameter"})
		return
	}

	result, err := s.deps.Checkout.ConfirmSession(c.Request.Context(), sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"ok": false, "message": "Stripe session not found"})
			return
		}
		s.logger.Error("Failed to confirm session",
			zap.String("session_id", sessionID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"ok": false, "message": "Failed to verify payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":      true,
		"outcome": result.Outcome,
		"session": result.Session,
		"order":   result.Order,
	})
}
